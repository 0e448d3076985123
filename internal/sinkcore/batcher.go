package sinkcore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/logkit/internal/diag"
)

// =============================================================================
// 批量缓冲器
// =============================================================================

const (
	// DefaultBatchSize 默认批大小。
	DefaultBatchSize = 256

	// MaxBatchSize 批大小上限，防止单批内存与下游单请求体积失控。
	MaxBatchSize = 10000

	// DefaultFlushInterval 默认周期刷新间隔。
	DefaultFlushInterval = time.Second
)

var (
	// ErrBatcherClosed Batcher 已关闭。
	ErrBatcherClosed = errors.New("sinkcore: batcher closed")

	// ErrNilFlush 刷新函数缺失。
	ErrNilFlush = errors.New("sinkcore: flush func is required")
)

// FlushFunc 批量落地函数。batch 非空，所有权移交被调方。
// 返回的错误经 onError 上报后该批废弃：Batcher 不重试，
// 重试语义属于包装在外层的投递中间件。
type FlushFunc[T any] func(ctx context.Context, batch []T) error

// BatchOption 配置 Batcher。
type BatchOption func(*batchOptions)

type batchOptions struct {
	size     int
	interval time.Duration
	onError  func(error)
}

// WithBatchSize 设置触发立即刷新的批大小，
// 超出 [1, MaxBatchSize] 的值被钳制到边界。
func WithBatchSize(n int) BatchOption {
	return func(o *batchOptions) {
		switch {
		case n < 1:
			o.size = 1
		case n > MaxBatchSize:
			o.size = MaxBatchSize
		default:
			o.size = n
		}
	}
}

// WithFlushInterval 设置周期刷新间隔，非正值被忽略。
func WithFlushInterval(d time.Duration) BatchOption {
	return func(o *batchOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithBatchOnError 设置刷新失败回调，nil 走默认 stderr 兜底。
func WithBatchOnError(fn func(error)) BatchOption {
	return func(o *batchOptions) {
		o.onError = fn
	}
}

// Batcher 尺寸加周期双触发的批量缓冲器。
//
// Add 把元素交给后台 worker 聚批：攒满 size 立即刷新，
// 否则每 interval 刷一次非空缓冲。Close 停止进料、排空存量
// 并做最后一次刷新。
//
// 设计决策: Add 在进料缓冲满时阻塞而非丢弃。丢弃语义已经由
// 上游队列（无消费者时丢弃）承担，进入 sink 的记录只应因
// 下游真实失败而丢失，背压是这里更诚实的表达。
type Batcher[T any] struct {
	size     int
	interval time.Duration
	flush    FlushFunc[T]
	sink     *diag.Sink

	in   chan T
	quit chan struct{}
	done chan struct{}

	// mu 保护 closed 与 closeCtx：Close 持写锁翻转状态，
	// Add 持读锁提交，保证已返回 nil 的 Add 必被排空阶段看到。
	mu       sync.RWMutex
	closed   bool
	closeCtx context.Context

	flushes     atomic.Int64
	flushErrors atomic.Int64
}

// NewBatcher 创建并启动批量缓冲器。
func NewBatcher[T any](flush FlushFunc[T], opts ...BatchOption) (*Batcher[T], error) {
	if flush == nil {
		return nil, ErrNilFlush
	}
	o := batchOptions{size: DefaultBatchSize, interval: DefaultFlushInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	b := &Batcher[T]{
		size:     o.size,
		interval: o.interval,
		flush:    flush,
		sink:     diag.NewSink(o.onError),
		in:       make(chan T, o.size),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.run()
	return b, nil
}

// Add 提交一个元素。已关闭返回 ErrBatcherClosed。
// 进料缓冲满时阻塞，直到 worker 消化或 Batcher 关闭。
func (b *Batcher[T]) Add(item T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBatcherClosed
	}
	select {
	case b.in <- item:
		return nil
	case <-b.quit:
		return ErrBatcherClosed
	}
}

// Stats 返回 Batcher 统计。
func (b *Batcher[T]) Stats() BatchStats {
	return BatchStats{
		Flushes:     b.flushes.Load(),
		FlushErrors: b.flushErrors.Load(),
		Pending:     len(b.in),
	}
}

// BatchStats Batcher 统计信息。
type BatchStats struct {
	// Flushes 已执行的刷新批次数（含失败批）。
	Flushes int64

	// FlushErrors 刷新失败批次数。
	FlushErrors int64

	// Pending 进料缓冲中待聚批的元素数，瞬时值。
	Pending int
}

// Close 停止进料、排空存量并做最后一次刷新，刷新受 ctx 约束。
// ctx 先行到期时返回其错误，排空由后台继续完成。
// 重复调用返回 ErrBatcherClosed。
//
// 进料缓冲满且有 Add 正在阻塞时，Close 需等 worker 当前这次
// 刷新让出容量后才能进入排空，此段等待不受 ctx 约束；
// FlushFunc 自身应当带下游操作超时。
func (b *Batcher[T]) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBatcherClosed
	}
	b.closed = true
	b.closeCtx = ctx
	close(b.quit)
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sinkcore: close batcher: %w", ctx.Err())
	}
}

func (b *Batcher[T]) run() {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.size)
	for {
		select {
		case item := <-b.in:
			buf = append(buf, item)
			if len(buf) >= b.size {
				buf = b.flushBatch(context.Background(), buf)
			}
		case <-ticker.C:
			if len(buf) > 0 {
				buf = b.flushBatch(context.Background(), buf)
			}
		case <-b.quit:
			b.mu.RLock()
			ctx := b.closeCtx
			b.mu.RUnlock()
			b.drain(ctx, buf)
			return
		}
	}
}

// drain 排空进料缓冲中已接收的元素并做最后一次刷新。
// quit 关闭先于 drain 执行，Add 不再放进新元素，default 分支
// 意味着缓冲已空。
func (b *Batcher[T]) drain(ctx context.Context, buf []T) {
	for {
		select {
		case item := <-b.in:
			buf = append(buf, item)
			if len(buf) >= b.size {
				buf = b.flushBatch(ctx, buf)
			}
		default:
			if len(buf) > 0 {
				b.flushBatch(ctx, buf)
			}
			return
		}
	}
}

// flushBatch 落地当前缓冲并换新。缓冲所有权整体移交 flush，
// 重新分配而非复用，避免下游异步持有切片时的数据竞争。
func (b *Batcher[T]) flushBatch(ctx context.Context, buf []T) []T {
	b.flushes.Add(1)
	if err := b.flush(ctx, buf); err != nil {
		b.flushErrors.Add(1)
		b.sink.Report(fmt.Errorf("sinkcore: flush batch of %d: %w", len(buf), err))
	}
	return make([]T, 0, b.size)
}
