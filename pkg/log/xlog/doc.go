// Package xlog 是日志管道的装配与路由中枢。
//
// # 核心功能
//
//   - Registry 显式构造、显式传递（进程级单例场景有 Default/Configure）
//   - 多 appender 路由：级别下限 + logger 名称分组（子串/正则）独立匹配，
//     命中的每个 appender 投递自己的记录副本
//   - 通道目标：控制台、文件（轮转）、自定义、多路扇出、异步队列
//   - 内建 messages 队列：每条通过门控的记录全量投递，供横切消费者使用
//   - 动态全局级别（运行时热更新，appender 拓扑构造后不可变）
//   - 可插拔门控 Provider（standard 按全局级别过滤）
//   - 按 appender 的采样策略、时间戳布局与参数格式化器
//
// # 基本用法
//
//	reg, err := xlog.New(xlog.Config{
//		Level: xlog.LevelInfo,
//		Appenders: []xlog.Appender{{
//			Name:    "audit",
//			Level:   xlog.Ptr(xlog.LevelWarn),
//			Groups:  []xlog.Matcher{xlog.MustMatcher("/Auth/")},
//			Channel: xchannel.AsyncConfig{ChannelName: "audit-queue"},
//		}},
//	})
//	if err != nil {
//		return err
//	}
//	defer reg.Close(ctx)
//
//	logger := reg.GetLogger("AuthService")
//	logger.Error("login failed", errors.New("bad credentials"))
//
// # 失败语义
//
// 构造期配置错误 fail-fast；此后管道内部的一切失败（渲染、写入、
// 消费）都被就地隔离并上报兜底出口（Config.OnError 或进程 stderr），
// 绝不传播回日志调用点。日志调用无需调用方做任何错误处理。
//
// # 延迟求值
//
// 门控在消息物化前执行：Logger.LogFunc 的消息闭包与 xrecord.Lazy
// 参数只在记录真正被放行后求值，被过滤的调用接近零开销。
// 昂贵参数也可用 Logger.Enabled 手工前置检查。
//
// # Fatal 语义
//
// Fatal 只是最高严重级别，参与级别过滤与输出流选择；
// 不调用 os.Exit，也不 panic。进程是否退出由调用方决定。
package xlog
