// Package xclickhouse 提供将日志记录批量写入 ClickHouse 表的消费端实现。
//
// 记录先在内存中积攒,达到批大小或刷写间隔后通过 PrepareBatch 一次性
// 写入,适配 ClickHouse 面向批量插入的存储模型。单条 INSERT 在
// ClickHouse 上代价高昂,因此本包不提供逐条写入模式。
//
// 目标表需要与内置行结构对齐,参考建表语句:
//
//	CREATE TABLE app_logs (
//	    event_id String,
//	    seq      Int64,
//	    ts       DateTime64(9),
//	    level    LowCardinality(String),
//	    logger   LowCardinality(String),
//	    message  String,
//	    error    String,
//	    args     Array(String),
//	    appender LowCardinality(String)
//	) ENGINE = MergeTree()
//	ORDER BY (logger, ts)
//
// 批量语义:
//
// Consume 返回 nil 仅表示记录已进入本地缓冲,实际写入结果由后台刷写
// 记账:成功计入 Stats().Delivery.Shipped,失败计入 Failed 并通过
// WithOnError 回调上报。每个批次原子生效,Send 失败时整批记录均未写入。
//
// 使用示例:
//
//	conn, err := clickhouse.Open(&clickhouse.Options{
//	    Addr: []string{"localhost:9000"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sink, err := xclickhouse.New(conn, "app_logs",
//	    xclickhouse.WithBatchSize(512),
//	    xclickhouse.WithFlushInterval(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close(context.Background())
//
// 设计决策:传入的连接生命周期由调用方管理,Close 只排空本地缓冲,
// 不关闭连接。同一连接可在多个 Sink 与查询路径间共享。
package xclickhouse
