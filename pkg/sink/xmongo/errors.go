package xmongo

import "errors"

var (
	// ErrNilCollection 表示传入了 nil 集合句柄。
	ErrNilCollection = errors.New("xmongo: nil collection")

	// ErrClosed 表示 Sink 已关闭,不再接受新记录。
	ErrClosed = errors.New("xmongo: sink closed")
)
