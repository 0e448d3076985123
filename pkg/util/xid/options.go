package xid

import "time"

type options struct {
	machineID     func() (uint16, error)
	maxWait       time.Duration
	retryInterval time.Duration
}

// Option 配置选项函数。nil Option 被静默跳过，
// 便于调用方条件式拼装选项列表。
type Option func(*options)

// WithMachineID 替换机器 ID 推导函数。
// 需要外部协调分配（etcd 注册、部署系统下发）时使用；
// 返回值必须在 0-65535 范围内。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(o *options) {
		if fn != nil {
			o.machineID = fn
		}
	}
}

// WithMaxWait 设置时钟回拨时 NewWithRetry 的最大等待时长。
// 默认 500ms；零值表示不等待（首次失败即超时）；负值在
// NewGenerator 中报 ErrInvalidOption。
func WithMaxWait(d time.Duration) Option {
	return func(o *options) {
		o.maxWait = d
	}
}

// WithRetryInterval 设置时钟回拨等待期间的重试间隔。
// 默认 10ms（与 sonyflake 的时间精度一致）；负值在
// NewGenerator 中报 ErrInvalidOption。
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) {
		o.retryInterval = d
	}
}
