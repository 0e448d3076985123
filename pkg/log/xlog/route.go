package xlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

// MessagesChannel 保留的内建队列名。
//
// 每条通过门控的记录都会额外投递到此队列（不设级别下限、不分
// logger），供 UI 提示条等横切消费者使用；没有消费者时记录被
// 队列层直接丢弃，不产生缓冲开销。
const MessagesChannel = "messages"

// write 路由一条记录：内建 messages 投递加逐 appender 分发。
//
// 单个 appender 的写入失败或 panic 被就地隔离并上报兜底出口，
// 不影响其余 appender，也绝不传播回日志调用点。
func (r *Registry) write(rec xrecord.Record) {
	_, span := xmetrics.Start(context.Background(), r.observer, xmetrics.SpanOptions{
		Component: "xlog",
		Operation: "route",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.String("logger", rec.LogName),
			xmetrics.String("level", rec.Level.String()),
		},
	})
	defer span.End(xmetrics.Result{})

	r.dispatchQueue(MessagesChannel, MessagesChannel, rec)

	if len(r.appenders) == 0 {
		r.writeChannel("", r.defaultCh, rec)
		return
	}
	for i := range r.appenders {
		a := &r.appenders[i]
		if !a.matches(rec) {
			continue
		}
		if a.sample != nil && !a.sample.Sample(rec) {
			continue
		}
		if a.queue != "" {
			r.dispatchQueue(a.name, a.queue, rec)
			continue
		}
		r.writeChannel(a.name, a.ch, rec)
	}
}

// dispatchQueue 把记录的规范形投递到具名队列。
// 投递前做预格式化消息反解（对常规记录是空操作），副本带上
// 来源 appender 标记。
func (r *Registry) dispatchQueue(appender, queue string, rec xrecord.Record) {
	canonical := xchannel.RecoverRecord(rec).WithAppender(appender)
	if err := r.queues.Publish(queue, canonical); err != nil {
		r.sink.Report(fmt.Errorf("xlog: appender %q: publish to %q: %w", appender, queue, err))
	}
}

// writeChannel 经预构建通道写入记录副本，错误与 panic 就地隔离。
// name 为空表示默认通道模式，此时不加 appender 标记。
func (r *Registry) writeChannel(name string, ch xchannel.Channel, rec xrecord.Record) {
	defer func() {
		if p := recover(); p != nil {
			r.sink.Report(fmt.Errorf("xlog: %s: write panicked: %v", channelLabel(name), p))
		}
	}()
	if name != "" {
		rec = rec.WithAppender(name)
	}
	if err := ch.Write(rec); err != nil {
		r.sink.Report(fmt.Errorf("xlog: %s: %w", channelLabel(name), err))
	}
}

func channelLabel(name string) string {
	if name == "" {
		return "default channel"
	}
	return "appender " + strconv.Quote(name)
}
