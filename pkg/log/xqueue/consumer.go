package xqueue

import (
	"context"
	"reflect"

	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// Consumer 队列消费者：接收一条日志记录并处理
//
// Consume 返回错误或 panic 不会中断队列，也不会传播到发布方；
// 失败被计数并经错误回调或兜底出口上报。ctx 在 Manager 关闭
// 且排空等待超时后被取消，长耗时消费者应监听它。
type Consumer interface {
	Consume(ctx context.Context, rec xrecord.Record) error
}

// ErrorHook 消费者可选实现的失败回调
//
// 实现了此接口的消费者失败时，错误（连同未送达的记录）交给
// OnConsumeError 处理，不再进入 Manager 的错误回调或兜底出口；
// 钩子自身 panic 被隔离后转投兜底路径。
type ErrorHook interface {
	OnConsumeError(err error, rec xrecord.Record)
}

// ConsumerFunc 把函数适配为 Consumer
type ConsumerFunc func(ctx context.Context, rec xrecord.Record) error

// Consume 实现 Consumer 接口
func (f ConsumerFunc) Consume(ctx context.Context, rec xrecord.Record) error {
	return f(ctx, rec)
}

var _ Consumer = (ConsumerFunc)(nil)

// sameConsumer 判断两个消费者是否为同一集合成员
//
// 仅当两者动态类型一致且该类型可比较时用 == 判定；func 等
// 不可比较类型的消费者永远视为不同成员（Go 观察不到闭包同一性）。
func sameConsumer(a, b Consumer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || tb == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
