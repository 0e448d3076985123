package xmetrics

import "errors"

// NewOTelObserver 的构造期错误。
var (
	// ErrCreateCounter 创建操作计数器失败。
	ErrCreateCounter = errors.New("xmetrics: create counter failed")
	// ErrCreateHistogram 创建耗时直方图失败。
	ErrCreateHistogram = errors.New("xmetrics: create histogram failed")
	// ErrInvalidBuckets 直方图桶边界无效（NaN、非正或未严格递增）。
	ErrInvalidBuckets = errors.New("xmetrics: invalid histogram buckets")
	// ErrNilOption 传入了 nil 的 Option 函数。
	ErrNilOption = errors.New("xmetrics: nil option")
)
