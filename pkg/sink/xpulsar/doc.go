// Package xpulsar 提供将日志记录投递到 Apache Pulsar 主题的消费端实现。
//
// 每条记录编码为 JSON 负载后通过 SendAsync 异步发送，分区键取自记录的
// logger 名（缺省回退到 appender 名），保证同一来源的日志落在同一分区、
// 保持相对顺序。记录的时间戳写入 Pulsar 消息的 EventTime，下游可按事件
// 时间而非发布时间消费。
//
// 异步语义:
//
// Consume 返回 nil 仅表示消息已提交给 Pulsar 客户端的发送队列，Broker
// 确认结果由回调异步记账:成功计入 Stats().Shipped,失败计入
// Stats().Failed 并通过 WithOnError 回调上报。关闭后残留的在途消息由
// Close 阶段的 Flush 统一等待。
//
// 使用示例:
//
//	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: "pulsar://localhost:6650"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	sink, err := xpulsar.New(client, "persistent://public/default/app-logs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close(context.Background())
//
// 设计决策:Sink 仅关闭自建的生产者,传入的 pulsar.Client 生命周期由
// 调用方管理。同一客户端可以安全地被多个 Sink 与其他组件共享。
package xpulsar
