package xlog

import (
	"sort"
	"sync"
)

// Provider 记录写入前的门控判定。
//
// Enabled 在消息物化与路由之前被咨询：返回 false 的调用不构造
// 记录，LogFunc 的消息闭包也不会执行。实现必须可并发调用。
type Provider interface {
	Enabled(logName string, lvl Level) bool
}

// ProviderFunc 把函数适配为 Provider。
type ProviderFunc func(logName string, lvl Level) bool

// Enabled 实现 Provider 接口。
func (f ProviderFunc) Enabled(logName string, lvl Level) bool {
	return f(logName, lvl)
}

var _ Provider = (ProviderFunc)(nil)

// ProviderFactory 按注册表构造门控实例。
// 工厂在 New 的收尾阶段被调用，此时注册表的级别与队列已就绪。
type ProviderFactory func(r *Registry) (Provider, error)

// ProviderStandard 内建门控名：按注册表的动态全局级别过滤。
const ProviderStandard = "standard"

var (
	providerMu sync.RWMutex
	providers  = make(map[string]ProviderFactory)
)

// RegisterProvider 注册具名门控工厂。
//
// 与 database/sql.Register 相同的约定：factory 为 nil 或 name 重复时
// panic，注册应发生在 init 阶段。
func RegisterProvider(name string, factory ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if factory == nil {
		panic("xlog: RegisterProvider factory is nil")
	}
	if _, dup := providers[name]; dup {
		panic("xlog: RegisterProvider called twice for provider " + name)
	}
	providers[name] = factory
}

// Providers 返回已注册的门控名，按字典序。
func Providers() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupProvider(name string) (ProviderFactory, bool) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	f, ok := providers[name]
	return f, ok
}

func init() {
	RegisterProvider(ProviderStandard, func(r *Registry) (Provider, error) {
		return levelGate{reg: r}, nil
	})
}

// levelGate standard 门控：记录级别达到注册表全局级别才放行。
// 全局级别可经 Registry.SetLevel 运行时调整。
type levelGate struct {
	reg *Registry
}

func (g levelGate) Enabled(_ string, lvl Level) bool {
	return lvl.Enabled(g.reg.Level())
}
