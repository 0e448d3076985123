package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/logkit/pkg/log/xlevel"
)

// WatchCallback 文件变更回调。
// 防抖窗口收束后的每次重载调用一次，err 指示重载是否成功；
// 重载失败时快照保持旧值。
type WatchCallback func(src *Source, err error)

// Watcher 配置文件监视器
//
// 监视配置文件所在目录（编辑器保存常为写临时文件后 rename，
// 直接监视文件会丢事件），把 Write/Create/Rename 事件防抖后
// 触发 Reload 并回调。
type Watcher struct {
	src      *Source
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	running bool
	// timer 防抖定时器，Stop 时取消防止停机后仍触发回调
	timer *time.Timer
}

// WatchOption 监视器选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖窗口，窗口内的多次变更只触发一次重载。
// 默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watch 创建配置文件监视器
//
// 只支持文件创建的 Source。返回的监视器经 StartAsync（或阻塞的
// Start）启动，Stop 停止。
func Watch(src *Source, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if src == nil {
		return nil, errors.New("xconf: source is required")
	}
	if src.fromBytes {
		return nil, ErrNotReloadable
	}

	o := watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(src.path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %q: %w", dir, err), closeErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		src:      src,
		watcher:  fsWatcher,
		callback: callback,
		debounce: o.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// WatchLevel 监视配置文件并把全局级别变更应用到 apply 回调
//
// 路由拓扑只在构造期生效，文件热更新只承接级别：重载成功且
// 文件带 level 键时调用 apply（通常直接传 Registry.SetLevel）。
// 重载失败保持当前级别，等待下一次有效写入。
func WatchLevel(src *Source, apply func(xlevel.Level), opts ...WatchOption) (*Watcher, error) {
	if apply == nil {
		return nil, ErrNilApply
	}
	return Watch(src, func(s *Source, err error) {
		if err != nil {
			return
		}
		if lvl, ok := s.Level(); ok {
			apply(lvl)
		}
	}, opts...)
}

// Start 启动监视循环，阻塞直到 Stop 或监视通道关闭。
func (w *Watcher) Start() {
	if !w.markRunning() {
		return
	}
	w.run()
}

// StartAsync 在后台 goroutine 中启动监视循环，立即返回。
func (w *Watcher) StartAsync() {
	if !w.markRunning() {
		return
	}
	go w.run()
}

func (w *Watcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return false
	}
	w.running = true
	return true
}

// Stop 停止监视，返回后不再有回调执行。重复调用是空操作。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel()
	w.running = false
	return w.watcher.Close()
}

func (w *Watcher) run() {
	filename := filepath.Base(w.src.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.callback != nil {
				w.callback(w.src, fmt.Errorf("xconf: watch error: %w", err))
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	// Write 直接修改；Create 新建；Rename 原子写入（vim/emacs
	// 写临时文件后 rename）
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		err := w.src.Reload()
		if w.callback != nil {
			w.callback(w.src, err)
		}
	})
}
