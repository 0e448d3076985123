// Package xredis 把日志记录投递到 Redis Stream。
//
// 每条记录编码为一个 Stream 条目：payload 字段携带完整 JSON，
// level 与 logger 以独立字段冗余，便于 XREAD 侧做快速筛选。
// 通过 MAXLEN ~ 近似裁剪限制 Stream 长度，防止无消费方时无界增长。
//
// 使用示例：
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s, err := xredis.New(client, "logs:app", xredis.WithMaxLen(1<<16))
//	if err != nil {
//	    // 处理错误
//	}
//	defer s.Close(context.Background())
//
//	cancel, _ := queues.Register("messages", s)
//	defer cancel()
//
// 投递器不关闭传入的 client，其生命周期由调用方管理。
package xredis
