package diag

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSinkReport(t *testing.T) {
	var got error
	s := NewSink(func(err error) { got = err })

	want := errors.New("boom")
	s.Report(want)

	if got != want {
		t.Errorf("callback received %v, want %v", got, want)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestSinkNilErrorIgnored(t *testing.T) {
	called := false
	s := NewSink(func(error) { called = true })

	s.Report(nil)

	if called {
		t.Error("callback invoked for nil error")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestSinkPanicIsolated(t *testing.T) {
	s := NewSink(func(error) { panic("callback exploded") })

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped Report: %v", r)
		}
	}()
	s.Report(errors.New("x"))

	// 原始错误 + 回调 panic 各计一次
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestSinkRecursionSkipped(t *testing.T) {
	var s *Sink
	var nested atomic.Int32
	s = NewSink(func(error) {
		nested.Add(1)
		if nested.Load() > 1 {
			t.Error("recursive Report re-entered the callback")
			return
		}
		// 回调内再次上报：应只计数，不再进回调
		s.Report(errors.New("recursive"))
	})

	s.Report(errors.New("outer"))

	if nested.Load() != 1 {
		t.Errorf("callback entered %d times, want 1", nested.Load())
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (both errors counted)", s.Count())
	}
}

func TestSinkNilReceiver(t *testing.T) {
	var s *Sink

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("nil receiver panicked: %v", r)
		}
	}()
	before := s.Count()
	s.Report(errors.New("through nil receiver"))
	if s.Count() != before+1 {
		t.Error("nil receiver did not fall back to the default sink")
	}
}

func TestSinkConcurrent(t *testing.T) {
	s := NewSink(func(error) {})

	var wg sync.WaitGroup
	const goroutines, perG = 8, 100
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				s.Report(errors.New("concurrent"))
			}
		}()
	}
	wg.Wait()

	if s.Count() != goroutines*perG {
		t.Errorf("Count() = %d, want %d", s.Count(), goroutines*perG)
	}
}
