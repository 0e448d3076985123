// Package xware 提供日志投递链路的消费者中间件。
//
// 每个中间件都实现 xqueue.Consumer 并包装下一级消费者，可自由组合后
// 注册到队列。组合顺序决定语义：靠近投递器的中间件先生效。
//
//	sink, _ := xclickhouse.New(conn, "logging.app_logs")
//	r, _ := xware.NewRetry(sink)
//	b, _ := xware.NewBreaker(r)
//	cancel, _ := mgr.Register("app-logs", b)
//	defer cancel()
//
// 推荐顺序（从内到外）：Retry 贴着投递器消化瞬时失败，Breaker 在其外
// 阻止持续故障下的无谓重试，Dedup、Throttle、Exclusive 放在最外层，
// 在进入重试与熔断之前就裁剪流量。
//
// 五个中间件：
//
//   - Retry：指数退避加随机抖动的重试，最终失败把最后一次错误交还队列。
//   - Breaker：连续失败达到阈值后打开熔断，冷却期内快速拒绝并返回 ErrOpen。
//   - Dedup：时间窗内抑制指纹相同的重复记录，重复被丢弃并计数。
//   - Throttle：按日志器名限速，超出配额的记录被丢弃并计数；
//     可选 Redis 后端做跨进程配额。
//   - Exclusive：分布式锁保证多副本部署下同一时刻只有一个副本投递。
//
// 主动丢弃（去重命中、限流超额、未持有锁）返回 nil 而不是错误：
// 这些是正常的调节行为，返回错误会触发队列的失败隔离与退避。
// 每种丢弃都有独立计数，通过各自的 Stats 方法观测。
//
// 设计决策: 中间件从不关闭被包装的消费者，也从不关闭传入的 Redis
// 客户端。Close 只释放中间件自建的资源：Dedup 的指纹缓存、Exclusive
// 持有的分布式锁。Retry、Breaker、Throttle 没有需要释放的资源，
// 因此没有 Close 方法。
package xware
