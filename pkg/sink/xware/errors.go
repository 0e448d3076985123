package xware

import "errors"

var (
	// ErrNilConsumer 表示被包装的消费者为 nil。
	ErrNilConsumer = errors.New("xware: nil consumer")

	// ErrNilClient 表示需要 Redis 的中间件收到了 nil 客户端。
	ErrNilClient = errors.New("xware: nil redis client")

	// ErrOpen 表示熔断器处于打开状态，记录被快速拒绝。
	ErrOpen = errors.New("xware: breaker open")

	// ErrClosed 表示中间件已经关闭。
	ErrClosed = errors.New("xware: middleware closed")
)
