package xsample

import (
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// KeyFunc 从记录中提取采样 key 的函数
//
// 返回的 key 用于一致性哈希采样，相同的 key 总是产生相同的采样决策。
// 如果返回空字符串，KeySampler 会回退到随机采样，此时仍保持近似的
// 保留率语义，但失去跨记录一致性保证。
type KeyFunc func(rec xrecord.Record) string

// KeyOption 配置 KeySampler 的可选参数
type KeyOption func(*KeySampler)

// WithOnEmptyKey 设置空 key 回调函数
//
// 当 KeyFunc 返回空字符串时，在执行随机采样回退前调用此回调。
// 用于指标计数，帮助发现 key 提取逻辑的缺口。
// 回调应当轻量（如原子计数器递增），避免阻塞采样热路径。
// nil 回调会被忽略。
func WithOnEmptyKey(fn func()) KeyOption {
	return func(s *KeySampler) {
		if fn != nil {
			s.onEmptyKey = fn
		}
	}
}

// KeySampler 基于 key 的一致性采样策略
//
// 对于相同的 key，在相同的 rate 下总是产生相同的采样决策：
//   - 按 logger 名采样，同一个 logger 的记录要么全保留要么全丢弃
//   - 按消息文本采样，重复刷屏的同一条消息整体受控
//
// 设计决策: 工厂函数返回具体类型而非 Sampler 接口，因为 Rate() 方法提供了
// 有用的自省能力，这些无法通过 Sampler 接口获得。
type KeySampler struct {
	rate       float64
	keyFunc    KeyFunc
	onEmptyKey func()
}

// NewKeySampler 创建基于 key 的一致性采样器
//
// rate 表示保留比率，范围 [0.0, 1.0]，超出范围或为 NaN 时返回 ErrInvalidRate。
// keyFunc 用于从记录中提取采样 key，不能为 nil（为 nil 时返回 ErrNilKeyFunc）。
// nil option 返回 ErrNilOption。
//
// 当 keyFunc 返回空字符串时，采样器回退到随机采样（保持保留率语义但失去一致性）。
// 可通过 WithOnEmptyKey 注册回调来监控空 key 事件。
func NewKeySampler(rate float64, keyFunc KeyFunc, opts ...KeyOption) (*KeySampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeySampler{
		rate:    rate,
		keyFunc: keyFunc,
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(s)
	}
	return s, nil
}

// ByLogger 创建按 logger 名一致性采样的便捷采样器
//
// 等同于 NewKeySampler(rate, key 为记录的 LogName)。
// 同一个 logger 产出的记录获得一致的保留/丢弃决策。
func ByLogger(rate float64) (*KeySampler, error) {
	return NewKeySampler(rate, func(rec xrecord.Record) string {
		return rec.LogName
	})
}

func (s *KeySampler) Sample(rec xrecord.Record) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}

	key := s.keyFunc(rec)

	// 设计决策: 空 key 回退到随机采样而非 fail-fast，因为采样器应保持弹性——
	// key 提取失败不应导致采样功能完全失效。随机采样保持了近似的保留率语义，
	// 只是失去了一致性。
	if key == "" {
		if s.onEmptyKey != nil {
			s.onEmptyKey()
		}
		return rand.Float64() < s.rate
	}

	// xxhash 是确定性的，同一 key 在所有进程中产生相同哈希值
	hashValue := xxhash.Sum64String(key)

	// 将 hash 值归一化到 [0, 1] 区间。float64 精度有限，极大 uint64 值的
	// 归一化结果可能不精确，且当 hashValue == MaxUint64 时 normalized 可能
	// 等于 1.0。但 rate < 1 时（rate=1.0 有提前返回保护）normalized == 1.0
	// 不会通过 normalized < rate，因此行为正确。
	normalized := float64(hashValue) / float64(math.MaxUint64)

	return normalized < s.rate
}

// Rate 返回当前保留比率
func (s *KeySampler) Rate() float64 {
	return s.rate
}

// 确保实现了接口
var _ Sampler = (*KeySampler)(nil)
