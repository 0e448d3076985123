package xqueue

// QueueStats 单条队列的运行计数快照
type QueueStats struct {
	// Enqueued 累计入队的记录数
	Enqueued uint64
	// Dropped 累计丢弃的记录数（发布或投递时刻无消费者）
	Dropped uint64
	// Delivered 累计完成扇出的记录数
	Delivered uint64
	// ConsumerErrors 累计消费失败次数（按消费者计，含 panic）
	ConsumerErrors uint64
	// Depth 当前缓冲中等待投递的记录数
	Depth int
	// Consumers 当前注册的消费者数
	Consumers int
}

// snapshot 采集当前计数
func (q *queue) snapshot() QueueStats {
	q.mu.Lock()
	depth := len(q.buf)
	consumers := len(q.consumers)
	q.mu.Unlock()

	return QueueStats{
		Enqueued:       q.enqueued.Load(),
		Dropped:        q.dropped.Load(),
		Delivered:      q.delivered.Load(),
		ConsumerErrors: q.consumerErrors.Load(),
		Depth:          depth,
		Consumers:      consumers,
	}
}
