package xqueue_test

import (
	"context"
	"fmt"
	"time"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// ExampleManager 注册消费者、发布记录、排空关闭。
func ExampleManager() {
	m := xqueue.NewManager()

	done := make(chan string, 1)
	dereg, err := m.Register("audit-queue", xqueue.ConsumerFunc(
		func(_ context.Context, rec xrecord.Record) error {
			done <- rec.Message
			return nil
		}))
	if err != nil {
		fmt.Println("register:", err)
		return
	}
	defer dereg()

	_ = m.Publish("audit-queue", xrecord.Record{
		Level:   xlevel.LevelWarn,
		Time:    time.Now(),
		LogName: "AuthService",
		Message: "login denied",
	})

	fmt.Println(<-done)
	if err := m.Close(context.Background()); err != nil {
		fmt.Println("close:", err)
		return
	}
	// Output:
	// login denied
}

// ExampleManager_stats 无消费者时发布的记录被丢弃并计数。
func ExampleManager_stats() {
	m := xqueue.NewManager()
	defer func() { _ = m.Close(context.Background()) }()

	_ = m.Publish("nobody-listens", xrecord.Record{Message: "lost"})

	stats, _ := m.QueueStats("nobody-listens")
	fmt.Println("dropped:", stats.Dropped)
	// Output:
	// dropped: 1
}
