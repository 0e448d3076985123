// Package xchannel 提供日志通道模型：渲染、分发与多路复用的统一抽象。
//
// 通道是日志记录的下游出口。Channel 接收完整记录，RawChannel 额外接收
// 参数格式化函数以便自定义序列化。所有通道实现都不得修改收到的记录，
// 副作用只落在自己的底层输出上。
//
// # 配置模型
//
// Config 是封闭的和类型（unexported 标记方法），变体即全部合法配置：
//
//   - ConsoleConfig: 控制台文本输出，按级别选择输出流
//   - CustomConfig / RawConfig: 应用自带的 Channel / RawChannel
//   - MultiConfig: 扇出到多个子通道，逐通道错误隔离
//   - AsyncConfig: 异步消费队列占位，路由层负责绑定具体队列
//   - FileConfig: 文件输出，经 xrotate 轮转
//
// 非法变体在编译期即不可能出现；配置文件边界（xconf）负责拒绝未知的
// kind 字符串。
//
// # 控制台格式
//
// Format 同样是封闭和类型：预设（SIMPLE/DETAILED/COMPACT/JSON）、
// 模板字符串（{timestamp} {level} {logger} {message} {args} 占位符）、
// 或完全自定义的 FormatFunc。
//
// 未指定格式时，如果消息形如上游引擎已渲染过的
// "date time LEVEL [logger] text"，会先反解出级别/名称/正文再渲染，
// 避免双重格式化。这是针对既有输出形态的启发式兜底，不构成稳定契约。
//
// # 构建
//
// Build 把 Config 构建为可写入的 Channel。Multi 配置在构建期校验：
// 排除嵌套 Multi 后直接子通道必须至少剩一个，否则返回 ErrEmptyMulti；
// 不做递归展平。
package xchannel
