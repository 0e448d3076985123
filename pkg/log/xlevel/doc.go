// Package xlevel 定义日志管道的级别模型。
//
// # 级别全序
//
// Trace(0) < Debug(1) < Info(2) < Warn(3) < Error(4) < Fatal(5) < Off(6)。
// 级别承担两个职责：过滤（记录级别 >= 阈值才会被处理）和输出路由
// （Error/Fatal 路由到错误流，Warn 路由到警告流等，见 xchannel）。
//
// 设计决策: 不复用 slog.Level。管道需要 Trace/Fatal/Off 三个 slog 没有的
// 档位，且路由比较依赖连续的整数秩；定义独立的紧凑枚举比在 slog 的
// 稀疏数值空间里插值更直接。
//
// # 解析
//
// [ParseLevel] 大小写不敏感并自动 TrimSpace，接受 "warning" 作为 Warn 的
// 别名。无法识别的输入返回 Info 和一个非 nil 错误，调用方可按需忽略错误
// 实现宽松降级（配置面即采用此契约）。
//
// Level 实现 encoding.TextMarshaler/TextUnmarshaler，支持配置文件直接
// 序列化/反序列化。
package xlevel
