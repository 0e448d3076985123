// Package observability 提供日志管道的可观测性相关子包。
//
// 子包列表：
//   - xmetrics: 厂商中立的观测接口（Observer/Span）与 OpenTelemetry 实现，
//     覆盖队列发布、队列消费与投递器出口
//   - xrotate: 日志文件轮转（按大小 + 可选 cron 定时），支撑文件通道
//
// 设计原则：
//   - 观测是注入式能力，零值与 nil 一律降级为 Noop，绝不强制依赖
//   - 观测失败不影响日志主流程
package observability
