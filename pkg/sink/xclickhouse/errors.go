package xclickhouse

import "errors"

var (
	// ErrNilConn 表示传入了 nil 连接。
	ErrNilConn = errors.New("xclickhouse: nil connection")

	// ErrEmptyTable 表示表名为空。
	ErrEmptyTable = errors.New("xclickhouse: empty table name")

	// ErrInvalidTableName 表示表名包含非法字符。
	ErrInvalidTableName = errors.New("xclickhouse: invalid table name, contains illegal characters")

	// ErrClosed 表示 Sink 已关闭,不再接受新记录。
	ErrClosed = errors.New("xclickhouse: sink closed")
)
