package xchannel

import "errors"

// 构建期配置错误
var (
	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("xchannel: config is required")

	// ErrNilChannel Custom/Raw 配置携带的通道为 nil
	ErrNilChannel = errors.New("xchannel: channel is required")

	// ErrNilFormatFunc FormatFunc 格式为 nil 函数
	ErrNilFormatFunc = errors.New("xchannel: format func is required")

	// ErrEmptyMulti Multi 配置排除嵌套 Multi 后没有任何直接子通道
	ErrEmptyMulti = errors.New("xchannel: multi config needs at least one non-multi channel")

	// ErrEmptyChannelName Async 配置的队列名为空
	ErrEmptyChannelName = errors.New("xchannel: async channel name is required")
)
