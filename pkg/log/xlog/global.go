package xlog

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xqueue"
)

// =============================================================================
// 全局注册表
//
// 定位：脚手架/小工具等简单场景。
// 在服务端推荐依赖注入（显式持有 Registry）。
// =============================================================================

// globalReg 全局注册表实例（并发安全）
var globalReg atomic.Pointer[Registry]

// globalMu 序列化全局注册表的创建、替换与重置
var globalMu sync.Mutex

// Default 返回全局注册表。
//
// 惰性初始化：首次调用时按零值配置构造（SIMPLE 控制台、Trace 级别、
// standard 门控）。并发安全。
func Default() *Registry {
	if r := globalReg.Load(); r != nil {
		return r
	}
	return defaultRegistry()
}

// defaultRegistry 惰性构造默认注册表
func defaultRegistry() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()

	if r := globalReg.Load(); r != nil {
		return r
	}
	r, err := New(Config{})
	if err != nil {
		// 设计决策: 零值配置不应失败；如果失败则降级为最小可用注册表，
		// 避免库代码 panic 终止宿主进程（项目约定：构造不 panic）。
		fmt.Fprintf(os.Stderr, "xlog: failed to build default registry: %v, using fallback\n", err)
		r = fallbackRegistry()
	}
	globalReg.Store(r)
	return r
}

// fallbackRegistry 最小可用注册表：控制台输出，standard 门控
func fallbackRegistry() *Registry {
	r := &Registry{
		sink:      diag.NewSink(nil),
		loggers:   make(map[string]*Logger),
		queues:    xqueue.NewManager(),
		ownQueues: true,
	}
	r.provider = levelGate{reg: r}
	// 构建失败时 defaultCh 保持 nil，写入 panic 由路由层的 recover 兜底
	r.defaultCh, _ = xchannel.Build(xchannel.ConsoleConfig{}, xchannel.WithOnError(r.sink.Report))
	return r
}

// Configure 以显式配置构造全局注册表。
//
// 只允许成功配置一次：全局注册表已存在（无论来自 Configure、
// Default 的惰性构造还是 SetDefault）时返回 ErrAlreadyConfigured。
// 需要既有实例的调用方使用 Default。构造失败不占用配置机会，
// 修正配置后可重试。
func Configure(cfg Config) (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalReg.Load() != nil {
		return nil, ErrAlreadyConfigured
	}
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	globalReg.Store(r)
	return r, nil
}

// SetDefault 替换全局注册表。
//
// 用于测试或自定义装配场景。传入 nil 会被忽略；要重置为
// 未初始化状态请使用 ResetDefault。被替换的注册表不会被关闭。
func SetDefault(r *Registry) {
	if r == nil {
		return
	}
	globalMu.Lock()
	globalReg.Store(r)
	globalMu.Unlock()
}

// ResetDefault 重置全局注册表为未初始化状态（仅用于测试）。
//
// 调用后下次 Default 会重新惰性构造，Configure 重新可用。
// 既有注册表不会被关闭，持有其 Logger 的代码可继续使用。
func ResetDefault() {
	globalMu.Lock()
	globalReg.Store(nil)
	globalMu.Unlock()
}

// =============================================================================
// 便利函数：最小集，全部经 Default() 转发
// =============================================================================

// GetLogger 从全局注册表获取具名 Logger。
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// LoggerOf 从全局注册表获取按类型命名的 Logger。
func LoggerOf(v any) *Logger {
	return Default().LoggerOf(v)
}

// AddConsumer 在全局注册表的具名队列上注册消费者。
func AddConsumer(channelName string, c xqueue.Consumer) (func(), error) {
	return Default().AddConsumer(channelName, c)
}

// MessagesConsumer 在全局注册表的内建 messages 队列上注册消费者。
func MessagesConsumer(c xqueue.Consumer) (func(), error) {
	return Default().MessagesConsumer(c)
}
