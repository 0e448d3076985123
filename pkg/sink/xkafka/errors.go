package xkafka

import "errors"

var (
	// ErrNilConfig 表示传入的配置为 nil。
	ErrNilConfig = errors.New("xkafka: nil config")

	// ErrEmptyTopic 表示目标 Topic 为空。
	ErrEmptyTopic = errors.New("xkafka: empty topic")

	// ErrClosed 表示投递器已关闭。
	ErrClosed = errors.New("xkafka: sink closed")

	// ErrFlushTimeout 表示关闭时仍有消息未能在超时内发出。
	ErrFlushTimeout = errors.New("xkafka: flush timeout")
)
