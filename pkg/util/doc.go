// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xjson: JSON 展示序列化工具，面向日志参数渲染，失败自动降级
//   - xid: 日志载荷标识生成，Sonyflake 序列号 + 机器 ID 自动推导
//
// 设计原则：
//   - 只收留被管道多处复用的纯工具，单一使用方的逻辑留在使用方
//   - 失败降级优先于失败传播，工具缺席不阻断日志投递
//   - 跨平台兼容
package util
