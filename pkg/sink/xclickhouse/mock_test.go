package xclickhouse

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/column"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ClickHouse/clickhouse-go/v2/lib/proto"
)

// =============================================================================
// Mock 实现 - 用于单元测试
// =============================================================================

// mockConn 实现 driver.Conn 接口。创建过的批次记录在案供断言,
// 字段由互斥锁保护,刷写发生在后台协程。
type mockConn struct {
	mu             sync.Mutex
	prepareErr     error
	sendErr        error
	appendFailures int
	batches        []*mockBatch
	closed         bool
}

func (m *mockConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prepareErr != nil {
		return nil, m.prepareErr
	}
	b := &mockBatch{
		query:          query,
		sendErr:        m.sendErr,
		appendFailures: m.appendFailures,
	}
	m.batches = append(m.batches, b)
	return b, nil
}

func (m *mockConn) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockConn) lastBatch() *mockBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == 0 {
		return nil
	}
	return m.batches[len(m.batches)-1]
}

func (m *mockConn) Contributors() []string { return nil }

func (m *mockConn) ServerVersion() (*proto.ServerHandshake, error) {
	return &proto.ServerHandshake{}, nil
}

func (m *mockConn) Select(_ context.Context, _ any, _ string, _ ...any) error { return nil }

func (m *mockConn) Query(_ context.Context, _ string, _ ...any) (driver.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (m *mockConn) QueryRow(_ context.Context, _ string, _ ...any) driver.Row { return nil }

func (m *mockConn) Exec(_ context.Context, _ string, _ ...any) error { return nil }

func (m *mockConn) AsyncInsert(_ context.Context, _ string, _ bool, _ ...any) error { return nil }

func (m *mockConn) Ping(_ context.Context) error { return nil }

func (m *mockConn) Stats() driver.Stats { return driver.Stats{} }

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockBatch 实现 driver.Batch 接口。
type mockBatch struct {
	mu             sync.Mutex
	query          string
	sendErr        error
	appendFailures int
	appended       []row
	sent           bool
	aborted        bool
}

func (b *mockBatch) Abort() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aborted = true
	return nil
}

func (b *mockBatch) Append(_ ...any) error { return nil }

func (b *mockBatch) AppendStruct(v any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.appendFailures > 0 {
		b.appendFailures--
		return errors.New("append rejected")
	}
	if r, ok := v.(*row); ok {
		b.appended = append(b.appended, *r)
	}
	return nil
}

func (b *mockBatch) Column(_ int) driver.BatchColumn { return nil }

func (b *mockBatch) Flush() error { return nil }

func (b *mockBatch) Send() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = true
	return nil
}

func (b *mockBatch) IsSent() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent
}

func (b *mockBatch) Rows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.appended)
}

func (b *mockBatch) Columns() []column.Interface { return nil }

func (b *mockBatch) Close() error { return nil }

func (b *mockBatch) rowsCopy() []row {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]row, len(b.appended))
	copy(out, b.appended)
	return out
}

var (
	_ driver.Conn  = (*mockConn)(nil)
	_ driver.Batch = (*mockBatch)(nil)
)
