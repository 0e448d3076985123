package xqueue

import (
	"log/slog"
	"time"

	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

// Option 定义 Manager 可选配置函数类型。
type Option func(*options)

type options struct {
	logger        *slog.Logger
	slowThreshold time.Duration
	onError       func(queue string, err error)
	observer      xmetrics.Observer
}

func defaultOptions() options {
	return options{
		logger:        slog.Default(),
		slowThreshold: time.Second,
	}
}

// WithLogger 设置诊断日志记录器（慢消费告警等）。
// 默认使用 slog.Default()。传入 nil 将被忽略，保持使用默认值。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSlowThreshold 设置单条记录扇出耗时的告警阈值。
// 小于等于 0 时关闭慢消费诊断。默认 1 秒。
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowThreshold = d
	}
}

// WithOnConsumeError 设置消费失败的上报回调。
//
// 回调收到队列名和归一化后的错误（panic 也被转为错误）。
// 回调自身 panic 会被隔离并转投兜底出口。未设置时失败
// 直接走兜底出口（进程 stderr）。回调不得写回同一条日志管道。
//
// 自带 [ErrorHook] 的消费者失败由其钩子处理，不经过此回调；
// 钩子 panic 归一化后仍会送达这里。
func WithOnConsumeError(fn func(queue string, err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithObserver 设置观测器，为发布与排空生成指标和追踪。
// 默认不观测。传入 nil 将被忽略。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
