package xrotate

import (
	"path/filepath"
	"testing"
)

// =============================================================================
// 性能测试（Benchmark）
// =============================================================================

// BenchmarkWrite 测试写入性能
func BenchmarkWrite(b *testing.B) {
	tmpDir := b.TempDir()
	filename := filepath.Join(tmpDir, "bench.log")

	r, err := NewLumberjack(filename)
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()

	data := []byte("benchmark log line with some content\n")

	b.ReportAllocs()
	for b.Loop() {
		_, _ = r.Write(data)
	}
}

// BenchmarkWriteParallel 测试并发写入性能
func BenchmarkWriteParallel(b *testing.B) {
	tmpDir := b.TempDir()
	filename := filepath.Join(tmpDir, "bench_parallel.log")

	r, err := NewLumberjack(filename)
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()

	data := []byte("benchmark log line with some content\n")

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = r.Write(data)
		}
	})
}

// BenchmarkScheduledWrite 测试定时包装器的写入委托开销
func BenchmarkScheduledWrite(b *testing.B) {
	tmpDir := b.TempDir()
	rot, err := NewLumberjack(filepath.Join(tmpDir, "sched_bench.log"))
	if err != nil {
		b.Fatal(err)
	}

	s, err := NewScheduled(rot, "@midnight")
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	data := []byte("benchmark log line with some content\n")

	b.ReportAllocs()
	for b.Loop() {
		_, _ = s.Write(data)
	}
}
