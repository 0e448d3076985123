package xsample

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// alwaysSampler 全保留策略
type alwaysSampler struct{}

// alwaysSamplerInstance 全保留单例
var alwaysSamplerInstance = &alwaysSampler{}

// Always 返回全保留策略
//
// 返回的采样器总是返回 true，即所有记录都会被保留。
// 这是未配置采样器时 appender 的默认行为。
func Always() Sampler {
	return alwaysSamplerInstance
}

func (s *alwaysSampler) Sample(_ xrecord.Record) bool {
	return true
}

// neverSampler 全丢弃策略
type neverSampler struct{}

// neverSamplerInstance 全丢弃单例
var neverSamplerInstance = &neverSampler{}

// Never 返回全丢弃策略
//
// 返回的采样器总是返回 false，即所有记录都会被丢弃。
// 适用于临时静默某个 appender 而不改动其余配置。
func Never() Sampler {
	return neverSamplerInstance
}

func (s *neverSampler) Sample(_ xrecord.Record) bool {
	return false
}

// RateSampler 固定比率采样策略
//
// 按照指定的比率随机保留记录。例如 rate=0.1 表示约 10% 的记录会被保留。
//
// 设计决策: 工厂函数返回具体类型而非 Sampler 接口，因为 Rate() 方法提供了
// 有用的自省能力（如诊断输出），这些无法通过 Sampler 接口获得。
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建固定比率采样器
//
// rate 表示保留比率，范围 [0.0, 1.0]：
//   - rate=0.0: 等同于 Never()，丢弃所有记录
//   - rate=1.0: 等同于 Always()，保留所有记录
//
// rate 超出 [0.0, 1.0] 范围或为 NaN 时返回 ErrInvalidRate。
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

func (s *RateSampler) Sample(_ xrecord.Record) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return rand.Float64() < s.rate
}

// Rate 返回当前保留比率
func (s *RateSampler) Rate() float64 {
	return s.rate
}

// CountSampler 计数采样策略
//
// 每 N 条记录保留 1 条。第 1、n+1、2n+1... 条记录会被保留。
//
// 内部使用 atomic.Uint64 计数器，自然溢出后通过无符号取模保持正确的采样周期。
type CountSampler struct {
	n       int
	counter atomic.Uint64
}

// NewCountSampler 创建计数采样器
//
// n 表示采样间隔，即每 n 条记录保留 1 条。
// n < 1 时返回 ErrInvalidCount。
func NewCountSampler(n int) (*CountSampler, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}
	return &CountSampler{n: n}, nil
}

func (s *CountSampler) Sample(_ xrecord.Record) bool {
	n := s.n
	if n <= 0 {
		// 零值安全：未经 NewCountSampler 构造的零值实例按全保留处理，避免除零 panic
		return true
	}
	// 使用 uint64 避免 int64 溢出后取模产生负数的问题
	count := s.counter.Add(1)
	return (count-1)%uint64(n) == 0
}

// Reset 重置计数器到初始状态
func (s *CountSampler) Reset() {
	s.counter.Store(0)
}

// N 返回采样间隔
func (s *CountSampler) N() int {
	return s.n
}

// levelSampler 级别阈值采样策略
type levelSampler struct {
	min xlevel.Level
}

// LevelAtLeast 返回级别阈值采样器
//
// 级别达到 min 的记录被保留，低于 min 的丢弃。
// 与 Any 组合可以表达"错误全保留、其余按比率"这类策略。
func LevelAtLeast(min xlevel.Level) Sampler {
	return &levelSampler{min: min}
}

func (s *levelSampler) Sample(rec xrecord.Record) bool {
	return rec.Level.Enabled(s.min)
}

// 确保实现了接口
var (
	_ Sampler           = (*alwaysSampler)(nil)
	_ Sampler           = (*neverSampler)(nil)
	_ Sampler           = (*RateSampler)(nil)
	_ Sampler           = (*CountSampler)(nil)
	_ Sampler           = (*levelSampler)(nil)
	_ ResettableSampler = (*CountSampler)(nil)
)
