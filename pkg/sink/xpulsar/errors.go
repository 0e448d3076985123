package xpulsar

import "errors"

var (
	// ErrNilClient 表示传入的 Pulsar 客户端为 nil。
	ErrNilClient = errors.New("xpulsar: nil client")

	// ErrEmptyTopic 表示未指定目标主题。
	ErrEmptyTopic = errors.New("xpulsar: empty topic")

	// ErrClosed 表示 Sink 已关闭,不再接受新记录。
	ErrClosed = errors.New("xpulsar: sink closed")
)
