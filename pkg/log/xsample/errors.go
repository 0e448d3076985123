package xsample

import (
	"errors"
	"math"
)

// 采样器创建相关的错误
var (
	// ErrInvalidRate 表示采样比率不在 [0.0, 1.0] 范围内
	ErrInvalidRate = errors.New("xsample: rate must be in [0.0, 1.0]")

	// ErrInvalidCount 表示 CountSampler 的采样间隔 n 不合法（必须 >= 1）
	ErrInvalidCount = errors.New("xsample: count n must be >= 1")

	// ErrNilKeyFunc 表示 KeySampler 的 keyFunc 为 nil
	ErrNilKeyFunc = errors.New("xsample: keyFunc must not be nil")

	// ErrNilOption 表示传入了 nil 的 Option 函数
	ErrNilOption = errors.New("xsample: nil option")

	// ErrInvalidMode 表示 CompositeSampler 的组合模式不合法
	ErrInvalidMode = errors.New("xsample: invalid CompositeMode, must be ModeAND or ModeOR")

	// ErrNilSampler 表示子采样器为 nil
	ErrNilSampler = errors.New("xsample: sampler must not be nil")
)

// validateRate 校验采样比率是否在 [0.0, 1.0] 范围内且不为 NaN
func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
