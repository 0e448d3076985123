package xconf

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xlevel"
)

// LevelClient 远程级别源需要的 etcd 客户端能力子集。
// *clientv3.Client 满足此接口；测试可注入替身。
type LevelClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Watch(ctx context.Context, key string, opts ...clientv3.OpOption) clientv3.WatchChan
}

var _ LevelClient = (*clientv3.Client)(nil)

// 重订阅退避的默认区间。
const (
	defaultLevelBackoff    = 1 * time.Second
	defaultLevelMaxBackoff = 30 * time.Second
)

// LevelOption 远程级别源选项。
type LevelOption func(*levelOptions)

type levelOptions struct {
	onError        func(error)
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// WithLevelOnError 设置内部错误回调（watch 失败、非法级别词等），
// 默认落进程 stderr。
func WithLevelOnError(fn func(error)) LevelOption {
	return func(o *levelOptions) {
		o.onError = fn
	}
}

// WithLevelBackoff 设置重订阅退避区间，非正值或 max < initial 被忽略。
// 默认 1s 起步、30s 封顶。
func WithLevelBackoff(initial, max time.Duration) LevelOption {
	return func(o *levelOptions) {
		if initial <= 0 || max < initial {
			return
		}
		o.initialBackoff = initial
		o.maxBackoff = max
	}
}

// LevelSource 全局级别的 etcd 远程源
//
// 构造时 Get 一次并应用当前值，随后 watch 同一个键：PUT 事件解析
// 级别词并调用 apply，DELETE 保持当前级别。watch 断开（网络错误、
// compaction）后按指数退避自动重订阅，compaction 从压缩点恢复，
// 其余从最后处理的版本恢复。非法级别词上报错误回调但不应用，
// 避免远端笔误把进程级别拽回默认值。
type LevelSource struct {
	client LevelClient
	key    string
	apply  func(xlevel.Level)
	sink   *diag.Sink

	initialBackoff time.Duration
	maxBackoff     time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	closed atomic.Bool
}

// NewLevelSource 创建远程级别源并启动监听
//
// ctx 只约束初始 Get；监听循环挂在内部 context 上，随 Close 退出。
// apply 在监听 goroutine 中被调用，通常直接传 Registry.SetLevel
// （其内部是原子写，天然并发安全）。
func NewLevelSource(ctx context.Context, client LevelClient, key string, apply func(xlevel.Level), opts ...LevelOption) (*LevelSource, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	if apply == nil {
		return nil, ErrNilApply
	}

	o := levelOptions{
		initialBackoff: defaultLevelBackoff,
		maxBackoff:     defaultLevelMaxBackoff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s := &LevelSource{
		client:         client,
		key:            key,
		apply:          apply,
		sink:           diag.NewSink(o.onError),
		initialBackoff: o.initialBackoff,
		maxBackoff:     o.maxBackoff,
		done:           make(chan struct{}),
	}

	resp, err := client.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("xconf: level source get %q: %w", key, err)
	}
	if len(resp.Kvs) > 0 {
		s.applyWord(string(resp.Kvs[0].Value))
	}

	// 从 Get 快照的下一个版本开始 watch，Get 与 Watch 之间无事件空洞
	var startRev int64
	if resp.Header != nil {
		startRev = resp.Header.Revision + 1
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(runCtx, startRev)
	return s, nil
}

// Key 返回监听的 etcd 键。
func (s *LevelSource) Key() string {
	return s.key
}

// Close 停止监听并等待监听 goroutine 退出，重复调用是空操作。
func (s *LevelSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	<-s.done
	return nil
}

// run 监听循环：消费 watch 通道直到断开，退避后重订阅。
func (s *LevelSource) run(ctx context.Context, rev int64) {
	defer close(s.done)

	backoff := s.initialBackoff
	for {
		var wopts []clientv3.OpOption
		if rev > 0 {
			wopts = append(wopts, clientv3.WithRev(rev))
		}

		for resp := range s.client.Watch(ctx, s.key, wopts...) {
			if err := resp.Err(); err != nil {
				if resp.CompactRevision > 0 {
					// 已压缩的版本不可 watch，跳到压缩点
					rev = resp.CompactRevision
				}
				s.sink.Report(fmt.Errorf("xconf: level watch %q: %w", s.key, err))
				break
			}
			backoff = s.initialBackoff
			for _, ev := range resp.Events {
				if ev.Kv == nil {
					continue
				}
				if ev.Type == mvccpb.PUT {
					s.applyWord(string(ev.Kv.Value))
				}
				rev = ev.Kv.ModRevision + 1
			}
		}

		if ctx.Err() != nil {
			return
		}
		if !sleepBackoff(ctx, jitter(backoff)) {
			return
		}
		backoff = min(backoff*2, s.maxBackoff)
	}
}

// applyWord 解析级别词并应用，非法词上报后跳过。
func (s *LevelSource) applyWord(word string) {
	lvl, err := xlevel.ParseLevel(word)
	if err != nil {
		s.sink.Report(fmt.Errorf("xconf: level key %q: %w", s.key, err))
		return
	}
	s.apply(lvl)
}

// jitter 给退避加 ±20% 抖动，避免多副本同时丢连接后的重连惊群。
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*(rand.Float64()*0.4-0.2))
}

func sleepBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
