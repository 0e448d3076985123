package xchannel

import (
	"fmt"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// buildOptions 构建期注入的跨通道参数
type buildOptions struct {
	layout  string
	argf    xrecord.ArgFormatter
	onError func(error)
}

// BuildOption 配置 Build 的可选参数
type BuildOption func(*buildOptions)

// WithDateLayout 设置时间戳版式，空串使用 DefaultDateLayout
func WithDateLayout(layout string) BuildOption {
	return func(o *buildOptions) {
		o.layout = layout
	}
}

// WithArgFormatter 设置参数格式化函数，nil 使用 xrecord.FormatArg
func WithArgFormatter(f xrecord.ArgFormatter) BuildOption {
	return func(o *buildOptions) {
		o.argf = f
	}
}

// WithOnError 设置扇出隔离错误的上报回调
//
// Multi 通道的子通道失败会经此回调上报。nil 时落到进程 stderr。
// 回调不得写回同一条日志管道。
func WithOnError(fn func(error)) BuildOption {
	return func(o *buildOptions) {
		o.onError = fn
	}
}

// Build 把通道配置构建为可写入的 Channel
//
// 构建是纯函数式的：同一配置可多次构建，互不共享状态
// （FileConfig 除外，每次构建打开独立的轮转器）。
// Multi 校验失败、Custom 通道为 nil、Async 队列名为空等
// 配置错误在此 fail-fast。
func Build(cfg Config, opts ...BuildOption) (Channel, error) {
	var o buildOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return build(cfg, &o)
}

func build(cfg Config, o *buildOptions) (Channel, error) {
	switch c := cfg.(type) {
	case ConsoleConfig:
		if err := validateFormat(c.Format); err != nil {
			return nil, err
		}
		return &consoleChannel{
			streams: c.Streams,
			render:  newRenderer(c.Format, o.layout, o.argf),
			recover: c.Format == nil,
		}, nil

	case CustomConfig:
		if c.Channel == nil {
			return nil, ErrNilChannel
		}
		return &customChannel{inner: c.Channel}, nil

	case RawConfig:
		if c.Channel == nil {
			return nil, ErrNilChannel
		}
		argf := o.argf
		if argf == nil {
			argf = xrecord.FormatArg
		}
		return &rawAdapter{inner: c.Channel, argf: argf}, nil

	case MultiConfig:
		return buildMulti(c, o)

	case AsyncConfig:
		if c.ChannelName == "" {
			return nil, ErrEmptyChannelName
		}
		return &asyncChannel{name: c.ChannelName}, nil

	case FileConfig:
		return buildFile(c, o)

	case nil:
		return nil, ErrNilConfig

	default:
		// 封闭和类型下仅指针变体或包内疏漏会落到这里
		return nil, fmt.Errorf("xchannel: unsupported config type %T (pass config variants by value)", cfg)
	}
}

// buildMulti 构建多路扇出通道
//
// 排除嵌套 Multi 后直接子通道必须至少剩一个。嵌套 Multi 子项
// 照常构建（并递归执行同样的校验），但不计入父级的数量要求。
func buildMulti(c MultiConfig, o *buildOptions) (Channel, error) {
	nonMulti := 0
	for _, child := range c.Channels {
		if child == nil {
			return nil, ErrNilConfig
		}
		if _, isMulti := child.(MultiConfig); !isMulti {
			nonMulti++
		}
	}
	if nonMulti == 0 {
		return nil, ErrEmptyMulti
	}

	children := make([]Channel, 0, len(c.Channels))
	for _, child := range c.Channels {
		built, err := build(child, o)
		if err != nil {
			return nil, err
		}
		children = append(children, built)
	}
	return &multiChannel{
		children: children,
		sink:     diag.NewSink(o.onError),
	}, nil
}

// validateFormat 拒绝携带 nil 函数的 FormatFunc 变体，避免渲染期才暴露
func validateFormat(f Format) error {
	if ff, ok := f.(FormatFunc); ok && ff == nil {
		return ErrNilFormatFunc
	}
	return nil
}

// buildFile 构建文件通道
func buildFile(c FileConfig, o *buildOptions) (Channel, error) {
	if err := validateFormat(c.Format); err != nil {
		return nil, err
	}
	rot, err := xrotate.NewLumberjack(c.Path, c.Rotate...)
	if err != nil {
		return nil, err
	}
	if c.Schedule != "" {
		sched, err := xrotate.NewScheduled(rot, c.Schedule,
			xrotate.WithRotateErrorHandler(o.onError))
		if err != nil {
			_ = rot.Close()
			return nil, err
		}
		rot = sched
	}
	return &fileChannel{
		rot:     rot,
		render:  newRenderer(c.Format, o.layout, o.argf),
		recover: c.Format == nil,
	}, nil
}
