package xqueue

import "errors"

var (
	// ErrClosed 表示 Manager 已关闭，无法发布或注册。
	ErrClosed = errors.New("xqueue: manager is closed")

	// ErrEmptyQueueName 表示队列名为空。
	ErrEmptyQueueName = errors.New("xqueue: queue name cannot be empty")

	// ErrNilConsumer 表示消费者为 nil。
	ErrNilConsumer = errors.New("xqueue: consumer cannot be nil")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xqueue: nil context")
)
