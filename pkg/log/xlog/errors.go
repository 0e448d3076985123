package xlog

import "errors"

var (
	// ErrAlreadyConfigured 表示全局注册表已存在，Configure 只允许成功一次。
	ErrAlreadyConfigured = errors.New("xlog: already configured")

	// ErrNoEnabledAppenders 表示配置了 appender 但没有一个处于启用状态。
	ErrNoEnabledAppenders = errors.New("xlog: no enabled appenders")

	// ErrUnknownProvider 表示门控提供者名未注册。
	ErrUnknownProvider = errors.New("xlog: unknown provider")

	// ErrEmptyAppenderName 表示 appender 名为空。
	ErrEmptyAppenderName = errors.New("xlog: appender name cannot be empty")

	// ErrDuplicateAppender 表示同一注册表内 appender 名重复。
	ErrDuplicateAppender = errors.New("xlog: duplicate appender name")

	// ErrClosed 表示注册表已关闭。
	ErrClosed = errors.New("xlog: registry is closed")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xlog: nil context")
)
