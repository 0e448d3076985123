package xqueue

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain 在所有测试完成后检测 goroutine 泄漏。
// 队列 worker 必须随 Manager 关闭而退出。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
