package xid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/sonyflake/v2"
)

var (
	// ErrOverTimeLimit 时间分量溢出，生成器无法继续生成序列号。
	// 不可恢复，NewWithRetry 不重试此错误。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrClockBackward 时钟回拨等待超时。
	ErrClockBackward = errors.New("xid: clock backward wait timeout")

	// ErrNoMachineID 全部机器 ID 推导策略失败。
	ErrNoMachineID = errors.New("xid: machine id undeterminable")

	// ErrInvalidOption 选项参数无效（负的等待时长或间隔）。
	ErrInvalidOption = errors.New("xid: invalid option")

	// ErrNilContext context 为 nil。
	ErrNilContext = errors.New("xid: nil context")
)

// 时钟回拨等待的默认参数。sonyflake 时间精度 10ms，
// NTP 常规校正不会回拨超过几百毫秒。
const (
	defaultMaxWait       = 500 * time.Millisecond
	defaultRetryInterval = 10 * time.Millisecond
)

// Generator 序列号生成器，并发安全。
// 零值不可用，必须经 NewGenerator 创建。
type Generator struct {
	// next 默认为 sonyflake 实例的 NextID，测试可替换
	next          func() (int64, error)
	maxWait       time.Duration
	retryInterval time.Duration
}

// NewGenerator 创建生成器。
//
// 机器 ID 默认按包文档所述的多层策略推导，可用 WithMachineID 替换。
// 机器 ID 不可判定或选项非法时返回错误。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := options{
		machineID:     defaultMachineID,
		maxWait:       defaultMaxWait,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxWait < 0 {
		return nil, fmt.Errorf("%w: max wait %s", ErrInvalidOption, cfg.maxWait)
	}
	if cfg.retryInterval < 0 {
		return nil, fmt.Errorf("%w: retry interval %s", ErrInvalidOption, cfg.retryInterval)
	}

	sf, err := sonyflake.New(sonyflake.Settings{
		MachineID: func() (int, error) {
			id, err := cfg.machineID()
			return int(id), err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("xid: %w", err)
	}
	return &Generator{
		next:          sf.NextID,
		maxWait:       cfg.maxWait,
		retryInterval: cfg.retryInterval,
	}, nil
}

// New 生成下一个序列号，单次尝试。
// 时间分量溢出返回 ErrOverTimeLimit。
func (g *Generator) New() (int64, error) {
	id, err := g.next()
	if err != nil {
		return 0, normalize(err)
	}
	return id, nil
}

// NewWithRetry 生成下一个序列号，时钟回拨时按固定间隔重试，
// 最长等待 WithMaxWait 配置的时长。超时返回 ErrClockBackward，
// ctx 取消返回 ctx 的错误，溢出立即返回 ErrOverTimeLimit。
func (g *Generator) NewWithRetry(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// 快速路径：首次成功则不建定时器
	id, err := g.next()
	if err == nil {
		return id, nil
	}
	if errors.Is(err, sonyflake.ErrOverTimeLimit) {
		return 0, normalize(err)
	}

	interval := g.retryInterval
	if interval <= 0 {
		interval = time.Nanosecond
	}
	deadline := time.NewTimer(g.maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, fmt.Errorf("%w: waited %s: %w", ErrClockBackward, g.maxWait, err)
		case <-ticker.C:
			id, err = g.next()
			if err == nil {
				return id, nil
			}
			if errors.Is(err, sonyflake.ErrOverTimeLimit) {
				return 0, normalize(err)
			}
		}
	}
}

// normalize 把底层溢出错误映射到本包哨兵，保持错误契约稳定
func normalize(err error) error {
	if errors.Is(err, sonyflake.ErrOverTimeLimit) {
		return fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
	}
	return fmt.Errorf("xid: %w", err)
}
