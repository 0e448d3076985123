package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

// unknownLogName 无法推导出可用名称时的哨兵 logger 名
const unknownLogName = "unknown"

// Config 注册表的构造配置，只在构造期读取。
type Config struct {
	// Provider 门控提供者名，空串使用 ProviderStandard。
	Provider string

	// Level 初始全局级别（standard 门控的阈值），可经
	// Registry.SetLevel 运行时调整。零值 LevelTrace 放行全部级别，
	// 过滤交给各 appender 的级别下限。
	Level Level

	// DefaultChannel 未配置任何 appender 时的固定路由目标，
	// nil 使用 SIMPLE 控制台。配置了 appender 时此字段被忽略。
	DefaultChannel xchannel.Config

	// Appenders 路由规则集。非空但全部被禁用时构造失败。
	Appenders []Appender

	// Observer 观测器，为路由与队列生成指标和追踪，可为 nil。
	Observer xmetrics.Observer

	// Queues 异步队列管理器。nil 时内部创建并归注册表所有，
	// 随 Close 一并排空关闭；注入的实例由调用方负责生命周期。
	Queues *xqueue.Manager

	// OnError 管道内部错误回调，可为 nil（默认落进程 stderr）。
	// 回调不得写回同一注册表，否则可能递归。
	OnError func(error)
}

// Registry 日志管道的装配中枢
//
// 持有门控提供者、路由规则、logger 缓存和异步队列注册表。
// 显式构造、显式传递；进程级单例场景使用包级 Default/Configure。
// appender 拓扑构造后不可变，唯一的动态旋钮是全局级别。
type Registry struct {
	provider  Provider
	appenders []boundAppender
	defaultCh xchannel.Channel
	queues    *xqueue.Manager
	ownQueues bool
	observer  xmetrics.Observer
	sink      *diag.Sink

	level atomic.Int32

	mu      sync.RWMutex
	loggers map[string]*Logger

	closed atomic.Bool
}

// New 按配置构造注册表，配置错误 fail-fast。
//
// 校验规则：级别必须合法；provider 名必须已注册；appender 名非空
// 且唯一；启用的 appender 的通道配置必须可构建（空 Multi、空异步
// 队列名等在此报错）；配置了 appender 但全部禁用返回
// ErrNoEnabledAppenders。
func New(cfg Config) (*Registry, error) {
	if !cfg.Level.Valid() {
		return nil, fmt.Errorf("xlog: invalid level %v", cfg.Level)
	}

	providerName := cfg.Provider
	if providerName == "" {
		providerName = ProviderStandard
	}
	factory, ok := lookupProvider(providerName)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, providerName)
	}

	r := &Registry{
		observer: cfg.Observer,
		sink:     diag.NewSink(cfg.OnError),
		loggers:  make(map[string]*Logger),
	}
	r.level.Store(int32(cfg.Level))

	seen := make(map[string]struct{}, len(cfg.Appenders))
	for _, a := range cfg.Appenders {
		if a.Name == "" {
			return nil, ErrEmptyAppenderName
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAppender, a.Name)
		}
		seen[a.Name] = struct{}{}
		if !a.isEnabled() {
			continue
		}
		ba, err := r.bind(a)
		if err != nil {
			return nil, fmt.Errorf("xlog: appender %q: %w", a.Name, err)
		}
		r.appenders = append(r.appenders, ba)
	}
	if len(cfg.Appenders) > 0 && len(r.appenders) == 0 {
		return nil, ErrNoEnabledAppenders
	}

	if len(cfg.Appenders) == 0 {
		defCfg := cfg.DefaultChannel
		if defCfg == nil {
			defCfg = xchannel.ConsoleConfig{}
		}
		ch, err := xchannel.Build(defCfg, xchannel.WithOnError(r.sink.Report))
		if err != nil {
			return nil, fmt.Errorf("xlog: default channel: %w", err)
		}
		r.defaultCh = ch
	}

	if cfg.Queues != nil {
		r.queues = cfg.Queues
	} else {
		r.queues = xqueue.NewManager(
			xqueue.WithObserver(cfg.Observer),
			xqueue.WithOnConsumeError(func(queue string, err error) {
				r.sink.Report(fmt.Errorf("xlog: queue %q: %w", queue, err))
			}),
		)
		r.ownQueues = true
	}

	p, err := factory(r)
	if err != nil {
		if r.ownQueues {
			_ = r.queues.Close(context.Background())
		}
		return nil, fmt.Errorf("xlog: provider %q: %w", providerName, err)
	}
	r.provider = p
	return r, nil
}

// Level 返回当前全局级别。
func (r *Registry) Level() Level {
	return Level(r.level.Load())
}

// SetLevel 调整全局级别，运行时生效，非法级别被忽略。
func (r *Registry) SetLevel(lvl Level) {
	if !lvl.Valid() {
		return
	}
	r.level.Store(int32(lvl))
}

// GetLogger 返回具名 Logger，同名调用返回同一实例。
// 空名称归入哨兵名 "unknown"。缓存与注册表同生命周期。
func (r *Registry) GetLogger(name string) *Logger {
	if name == "" {
		name = unknownLogName
	}

	r.mu.RLock()
	l := r.loggers[name]
	r.mu.RUnlock()
	if l != nil {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l = r.loggers[name]; l == nil {
		l = &Logger{name: name, reg: r}
		r.loggers[name] = l
	}
	return l
}

// LoggerOf 按值的类型推导 logger 名并返回对应 Logger。
//
// 字符串直接作为名称；其余值取指针解引用后的类型名。推导不出
// 可用名称（nil、匿名类型、未命名复合类型）时使用哨兵名 "unknown"。
func (r *Registry) LoggerOf(v any) *Logger {
	return r.GetLogger(logNameOf(v))
}

// logNameOf 从任意值推导稳定的 logger 名称
func logNameOf(v any) string {
	switch t := v.(type) {
	case nil:
		return unknownLogName
	case string:
		return t
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return unknownLogName
}

// AddConsumer 在具名队列上注册消费者，返回幂等的注销函数。
//
// 注册独立于 appender 拓扑：当前没有 appender 路由到该队列时
// 注册依然成功，消费者只是收不到记录。
func (r *Registry) AddConsumer(channelName string, c xqueue.Consumer) (func(), error) {
	return r.queues.Register(channelName, c)
}

// MessagesConsumer 在内建 messages 队列上注册消费者。
// 等价于 AddConsumer(MessagesChannel, c)。
func (r *Registry) MessagesConsumer(c xqueue.Consumer) (func(), error) {
	return r.queues.Register(MessagesChannel, c)
}

// Queues 返回底层队列管理器，用于访问运行计数或 Done 等能力。
func (r *Registry) Queues() *xqueue.Manager {
	return r.queues
}

// Close 关闭注册表：停止接受新记录，排空内部队列，关闭可关闭的通道。
//
// 只有内部创建的队列管理器随 Close 关闭，注入的实例保持原状。
// ctx 约束队列排空等待；超时后残留 worker 继续排空，可经
// Queues().Done() 等待最终完成。重复调用返回 ErrClosed。
func (r *Registry) Close(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if r.closed.Swap(true) {
		return ErrClosed
	}

	var errs []error
	if r.ownQueues {
		if err := r.queues.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := r.defaultCh.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("xlog: default channel: %w", err))
		}
	}
	for i := range r.appenders {
		if c, ok := r.appenders[i].ch.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("xlog: appender %q: %w", r.appenders[i].name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ErrorCount 返回管道内部错误的累计数（渲染失败、消费失败等）。
func (r *Registry) ErrorCount() uint64 {
	return r.sink.Count()
}

// enabled 门控判定：注册表未关闭、级别合法且提供者放行。
// LevelOff 只是阈值哨兵，不是可记录级别。
func (r *Registry) enabled(logName string, lvl Level) bool {
	if r.closed.Load() {
		return false
	}
	if !lvl.Valid() || lvl == LevelOff {
		return false
	}
	return r.provider.Enabled(logName, lvl)
}
