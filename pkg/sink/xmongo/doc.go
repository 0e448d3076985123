// Package xmongo 提供将日志记录批量写入 MongoDB 集合的消费端实现。
//
// 记录先在内存中积攒,达到批大小或刷写间隔后通过 InsertMany 一次性写入。
// 默认使用无序插入(ordered=false),单条文档失败不阻断同批其余文档,
// 以尽可能多地保住日志;需要严格有序时通过 WithOrdered 切换。
//
// 文档结构示例:
//
//	{
//	    "event_id": "6b9f0cbd-...",
//	    "seq":      1024,
//	    "ts":       ISODate("2026-08-23T10:15:30.123Z"),
//	    "level":    "ERROR",
//	    "logger":   "PaymentService",
//	    "message":  "charge failed",
//	    "error":    "payment rejected",
//	    "args":     ["order_id", "42"],
//	    "appender": "audit"
//	}
//
// 批量语义:
//
// Consume 返回 nil 仅表示记录已进入本地缓冲,实际写入结果由后台刷写
// 记账:成功计入 Stats().Delivery.Shipped,失败计入 Failed 并通过
// WithOnError 回调上报。无序模式下部分成功按实际插入数拆分计数。
//
// 使用示例:
//
//	client, err := mongo.Connect(mongooptions.Client().ApplyURI("mongodb://localhost:27017"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sink, err := xmongo.New(client.Database("logging").Collection("app_logs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close(context.Background())
//
// 设计决策:传入的集合句柄背后的客户端由调用方管理,Close 只排空本地
// 缓冲,不断开客户端连接。
package xmongo
