// Package xconf 提供日志管道的声明式配置：基于 koanf 把 YAML/JSON
// 文件解码为 xlog.Config，并提供文件监视与 etcd 远程源两种全局级别
// 热更新途径。
//
// # 设计理念
//
// 代码装配是第一位的（xlog.Config 结构体），xconf 只承接可以
// 文本化的部分：通道拓扑、级别下限、分组匹配、输出格式与文件轮转。
// 函数值（自定义通道、采样器、参数格式化器、错误回调）没有文件
// 形态，解码后按需在代码里补充。
//
// # 文件结构
//
//	level: info
//	appenders:
//	  - name: audit
//	    level: warn
//	    groups: ["/^Auth/", "Payment"]
//	    channel: { kind: async, queue: audit-queue }
//	  - name: app
//	    channel:
//	      kind: file
//	      path: /var/log/app.log
//	      format: json
//	      max_size_mb: 128
//	      schedule: "0 0 * * *"
//
// kind 是封闭集合 console|file|multi|async，custom/raw 只能经代码
// 装配、出现在文件里报错。级别词宽松解析（未知词回落 Info），
// kind、格式预设与分组正则严格校验，错误信息携带位置。
//
// # 热更新
//
// 路由拓扑是构造期决定，文件变更不会重建 appender；热更新承接的
// 是全局级别。WatchLevel 监视配置文件（目录监视 + 防抖，兼容
// vim/emacs 的原子写入），重载成功后把 level 键应用到回调；
// NewLevelSource 监听 etcd 键，watch 断开后指数退避重订阅。
// 两者的 apply 回调通常直接传 Registry.SetLevel。
//
// # 并发安全
//
// Source 的快照经 atomic.Pointer 原子替换，Reload 由互斥锁序列化；
// Raw 返回的实例在 Reload 后仍可用但指向旧数据，按需重新获取。
package xconf
