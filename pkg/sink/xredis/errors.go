package xredis

import "errors"

var (
	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xredis: nil client")

	// ErrEmptyStream 表示 Stream 名为空。
	ErrEmptyStream = errors.New("xredis: empty stream name")

	// ErrClosed 表示投递器已关闭。
	ErrClosed = errors.New("xredis: sink closed")
)
