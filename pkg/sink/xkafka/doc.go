// Package xkafka 把日志记录投递到 Kafka。
//
// 发送是异步的：Consume 把记录入队到 librdkafka 的本地缓冲后立即返回，
// Broker 侧的投递结果由后台回执循环消化，成功与失败分别计入 Stats()，
// 失败另行通过 WithOnError 回调上报。因此 Consume 返回的错误只代表
// 入队失败（本地缓冲满等），不代表 Broker 确认结果。
//
// 分区键使用记录的日志器名，同一日志器的记录落在同一分区内保持相对顺序。
//
// 使用示例：
//
//	s, err := xkafka.New(&kafka.ConfigMap{
//	    "bootstrap.servers": "localhost:9092",
//	}, "logs.app")
//	if err != nil {
//	    // 处理错误
//	}
//	defer s.Close(context.Background())
//
//	cancel, _ := queues.Register("messages", s)
//	defer cancel()
package xkafka
