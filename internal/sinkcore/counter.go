package sinkcore

import "sync/atomic"

// =============================================================================
// 投递计数器
// =============================================================================

// DeliveryCounter 投递计数器，各 sink 统计口径的共享原子实现。
type DeliveryCounter struct {
	shipped atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// AddShipped 增加成功投递计数。
func (c *DeliveryCounter) AddShipped(n int64) {
	c.shipped.Add(n)
}

// AddFailed 增加投递失败计数。
func (c *DeliveryCounter) AddFailed(n int64) {
	c.failed.Add(n)
}

// AddDropped 增加主动舍弃计数。
func (c *DeliveryCounter) AddDropped(n int64) {
	c.dropped.Add(n)
}

// Snapshot 返回当前计数快照。
// 三个字段非同一瞬间读取，作为监控口径足够。
func (c *DeliveryCounter) Snapshot() DeliveryStats {
	return DeliveryStats{
		Shipped: c.shipped.Load(),
		Failed:  c.failed.Load(),
		Dropped: c.dropped.Load(),
	}
}

// DeliveryStats 投递统计信息。
type DeliveryStats struct {
	// Shipped 成功交给下游客户端的载荷数。
	Shipped int64

	// Failed 投递失败的载荷数。
	Failed int64

	// Dropped 被中间件（去重、限流、熔断、互斥锁）主动舍弃的载荷数。
	Dropped int64
}
