package xware

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// 去重默认参数。
const (
	// DefaultDedupWindow 默认去重时间窗。
	DefaultDedupWindow = 10 * time.Second

	// DefaultDedupMaxEntries 默认指纹缓存条目数上限。
	DefaultDedupMaxEntries = 1 << 16
)

// dedupOptions 去重中间件配置。
type dedupOptions struct {
	window     time.Duration
	maxEntries int64
}

// DedupOption 配置去重中间件。
type DedupOption func(*dedupOptions)

// WithDedupWindow 设置去重时间窗，非正值忽略。
func WithDedupWindow(d time.Duration) DedupOption {
	return func(o *dedupOptions) {
		if d > 0 {
			o.window = d
		}
	}
}

// WithDedupMaxEntries 设置指纹缓存的条目数上限，非正值忽略。
func WithDedupMaxEntries(n int64) DedupOption {
	return func(o *dedupOptions) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// DedupStats 去重中间件的累计计数。
type DedupStats struct {
	// Suppressed 窗口内命中指纹被丢弃的重复记录数。
	Suppressed int64
}

// Dedup 在时间窗内抑制重复记录。
//
// 指纹取级别、日志器名与消息文本的 xxhash 摘要，窗口内指纹再次
// 出现的记录被丢弃并返回 nil。参数不参与指纹，参数不同但消息相同
// 的记录同样视为重复。指纹在投递前登记，下游失败不会清除指纹，
// 重试中间件应放在去重内侧。
//
// 设计决策: 指纹缓存异步落位，同一指纹的并发首批记录可能有少量
// 漏判。去重定位为尽力而为的降噪手段，不提供精确一次语义。
type Dedup struct {
	next       xqueue.Consumer
	window     time.Duration
	cache      *ristretto.Cache[uint64, struct{}]
	suppressed atomic.Int64
	closed     atomic.Bool
}

// NewDedup 创建去重中间件。调用方负责在停用后调用 Close 释放缓存。
func NewDedup(next xqueue.Consumer, opts ...DedupOption) (*Dedup, error) {
	if next == nil {
		return nil, ErrNilConsumer
	}
	o := dedupOptions{
		window:     DefaultDedupWindow,
		maxEntries: DefaultDedupMaxEntries,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, struct{}]{
		NumCounters: o.maxEntries * 10,
		MaxCost:     o.maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("xware: create dedup cache: %w", err)
	}

	return &Dedup{
		next:   next,
		window: o.window,
		cache:  cache,
	}, nil
}

// fingerprint 计算记录指纹。
// 字段间以 0x1f 分隔，消除相邻字段拼接产生的歧义。
func fingerprint(rec xrecord.Record) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(rec.Level.String())
	_, _ = d.WriteString("\x1f")
	_, _ = d.WriteString(rec.LogName)
	_, _ = d.WriteString("\x1f")
	_, _ = d.WriteString(rec.Message)
	return d.Sum64()
}

// Consume 投递一条记录，窗口内的重复记录被丢弃。
func (d *Dedup) Consume(ctx context.Context, rec xrecord.Record) error {
	if d.closed.Load() {
		return ErrClosed
	}

	key := fingerprint(rec)
	if _, hit := d.cache.Get(key); hit {
		d.suppressed.Add(1)
		return nil
	}
	d.cache.SetWithTTL(key, struct{}{}, 1, d.window)

	return d.next.Consume(ctx, rec)
}

// Stats 返回累计计数。
func (d *Dedup) Stats() DedupStats {
	return DedupStats{Suppressed: d.suppressed.Load()}
}

// Close 关闭指纹缓存并停止其后台协程，可重复调用。
func (d *Dedup) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.cache.Close()
}

var _ xqueue.Consumer = (*Dedup)(nil)
