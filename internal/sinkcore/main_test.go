package sinkcore

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain 校验批处理 worker 在 Close 后全部退出，不残留 goroutine。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
