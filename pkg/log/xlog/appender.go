package xlog

import (
	"slices"

	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/log/xsample"
)

// Appender 一条独立配置的路由规则。
//
// 一条记录可以同时命中零个、一个或多个 appender，每个命中的
// appender 独立渲染、投递自己的记录副本。
type Appender struct {
	// Name appender 标识，非空且在注册表内唯一。
	Name string

	// Level 级别下限，nil 表示接受全部级别。
	Level *Level

	// Groups logger 名称匹配组，空表示匹配全部名称；
	// 命中任意一条规则即视为匹配。
	Groups []Matcher

	// Channel 目标通道配置。
	Channel xchannel.Config

	// Enabled 是否启用，nil 视为启用。被禁用的 appender
	// 在构造时被跳过，其通道配置不会被校验。
	Enabled *bool

	// DateLayout 本 appender 的时间戳布局，空串使用默认 ISO-8601。
	DateLayout string

	// ArgFormatter 本 appender 的参数格式化器，nil 使用默认规则。
	ArgFormatter xrecord.ArgFormatter

	// Sample 采样策略，nil 表示全量。
	Sample xsample.Sampler
}

// Ptr 返回 v 的指针，便于填写 Level、Enabled 等可选字段。
func Ptr[T any](v T) *T {
	return &v
}

func (a Appender) isEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// boundAppender 构造期固化的路由规则：通道已预构建，
// 可选字段已拷贝，构造后不再变化。
type boundAppender struct {
	name   string
	level  *Level
	groups []Matcher
	sample xsample.Sampler

	// queue 非空表示异步队列投递，此时 ch 为 nil
	queue string
	ch    xchannel.Channel
}

// bind 把声明式 appender 固化为路由规则。
// 异步配置只记录队列名，不经过通道构建；其余配置立即构建通道，
// 配置错误在此处 fail-fast。
func (r *Registry) bind(a Appender) (boundAppender, error) {
	ba := boundAppender{
		name:   a.Name,
		groups: slices.Clone(a.Groups),
		sample: a.Sample,
	}
	if a.Level != nil {
		lvl := *a.Level
		ba.level = &lvl
	}

	if async, ok := a.Channel.(xchannel.AsyncConfig); ok {
		if async.ChannelName == "" {
			return boundAppender{}, xchannel.ErrEmptyChannelName
		}
		ba.queue = async.ChannelName
		return ba, nil
	}

	opts := []xchannel.BuildOption{xchannel.WithOnError(r.sink.Report)}
	if a.DateLayout != "" {
		opts = append(opts, xchannel.WithDateLayout(a.DateLayout))
	}
	if a.ArgFormatter != nil {
		opts = append(opts, xchannel.WithArgFormatter(a.ArgFormatter))
	}
	ch, err := xchannel.Build(a.Channel, opts...)
	if err != nil {
		return boundAppender{}, err
	}
	ba.ch = ch
	return ba, nil
}

// matches 实现 appender 匹配谓词：级别达到下限（或无下限），
// 且 logger 名称命中任一分组规则（或无分组）。
func (b *boundAppender) matches(rec xrecord.Record) bool {
	if b.level != nil && !rec.Level.Enabled(*b.level) {
		return false
	}
	if len(b.groups) == 0 {
		return true
	}
	for _, g := range b.groups {
		if g.Match(rec.LogName) {
			return true
		}
	}
	return false
}
