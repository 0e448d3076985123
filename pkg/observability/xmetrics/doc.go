// Package xmetrics 提供日志管道的统一可观测性接口（metrics + tracing）。
//
// # 设计理念
//
// xmetrics 仅定义最小化接口：Observer/Span/Attr，
// 管道各层（路由、输出器、队列、落地出口）只依赖接口；具体实现可替换。
// 默认实现基于 OpenTelemetry，兼容主流可观测栈。
// Observer 未配置时各层经 Start 的 nil 短路走空实现，开销只有一次判空。
//
// # 使用示例
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "audit",
//		Operation: "append",
//		Kind:      xmetrics.KindInternal,
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标命名
//
// 统一指标：
//   - logkit.operation.total
//   - logkit.operation.duration
//
// 统一属性：component / operation / status。路由层以输出器名作
// component，队列投递以队列名作 component。
package xmetrics
