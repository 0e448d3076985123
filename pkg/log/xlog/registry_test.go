package xlog_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xlog"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/log/xsample"
)

// captureChannel 线程安全地收集写入的记录
type captureChannel struct {
	mu   sync.Mutex
	recs []xrecord.Record
}

func (c *captureChannel) Write(rec xrecord.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
	return nil
}

func (c *captureChannel) records() []xrecord.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]xrecord.Record, len(c.recs))
	copy(out, c.recs)
	return out
}

// captureConfig 返回以 captureChannel 为目标的通道配置
func captureConfig(c *captureChannel) xchannel.Config {
	return xchannel.CustomConfig{Channel: c}
}

// closeRegistry 测试辅助函数，在测试结束时关闭注册表
func closeRegistry(t *testing.T, reg *xlog.Registry) {
	t.Helper()
	t.Cleanup(func() {
		if err := reg.Close(context.Background()); err != nil && !errors.Is(err, xlog.ErrClosed) {
			t.Errorf("close error: %v", err)
		}
	})
}

// waitRecord 等待异步投递的记录到达
func waitRecord(t *testing.T, ch <-chan xrecord.Record) xrecord.Record {
	t.Helper()
	select {
	case rec := <-ch:
		return rec
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for record")
		return xrecord.Record{}
	}
}

// =============================================================================
// 构造校验
// =============================================================================

func TestNew_ZeroConfig(t *testing.T) {
	reg, err := xlog.New(xlog.Config{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	if got := reg.Level(); got != xlog.LevelTrace {
		t.Errorf("zero config level = %v, want LevelTrace", got)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := xlog.New(xlog.Config{Level: xlog.Level(42)}); err == nil {
		t.Fatal("New() with invalid level should fail")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := xlog.New(xlog.Config{Provider: "no-such-gate"})
	if !errors.Is(err, xlog.ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
	if !strings.Contains(err.Error(), "no-such-gate") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestNew_EmptyAppenderName(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{Channel: xchannel.ConsoleConfig{}}},
	})
	if !errors.Is(err, xlog.ErrEmptyAppenderName) {
		t.Fatalf("err = %v, want ErrEmptyAppenderName", err)
	}
}

func TestNew_DuplicateAppenderName(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{
			{Name: "a", Channel: xchannel.ConsoleConfig{}},
			{Name: "a", Channel: xchannel.ConsoleConfig{}},
		},
	})
	if !errors.Is(err, xlog.ErrDuplicateAppender) {
		t.Fatalf("err = %v, want ErrDuplicateAppender", err)
	}
}

func TestNew_AllAppendersDisabled(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{
			{Name: "a", Channel: xchannel.ConsoleConfig{}, Enabled: xlog.Ptr(false)},
			{Name: "b", Channel: xchannel.ConsoleConfig{}, Enabled: xlog.Ptr(false)},
		},
	})
	if !errors.Is(err, xlog.ErrNoEnabledAppenders) {
		t.Fatalf("err = %v, want ErrNoEnabledAppenders", err)
	}
}

func TestNew_ChannelBuildFailurePropagates(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name: "bad",
			Channel: xchannel.MultiConfig{Channels: []xchannel.Config{
				xchannel.MultiConfig{Channels: []xchannel.Config{xchannel.ConsoleConfig{}}},
			}},
		}},
	})
	if !errors.Is(err, xchannel.ErrEmptyMulti) {
		t.Fatalf("err = %v, want wrapped ErrEmptyMulti", err)
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error should name the appender: %v", err)
	}
}

func TestNew_AsyncAppenderNeedsQueueName(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{Name: "q", Channel: xchannel.AsyncConfig{}}},
	})
	if !errors.Is(err, xchannel.ErrEmptyChannelName) {
		t.Fatalf("err = %v, want wrapped ErrEmptyChannelName", err)
	}
}

func TestNew_DisabledAppenderNotValidated(t *testing.T) {
	// 被禁用的 appender 的通道配置不参与构建
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{
			{Name: "dead", Channel: xchannel.MultiConfig{}, Enabled: xlog.Ptr(false)},
			{Name: "live", Channel: captureConfig(&captureChannel{})},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)
}

func TestNew_DefaultChannelBuildFailure(t *testing.T) {
	_, err := xlog.New(xlog.Config{
		DefaultChannel: xchannel.CustomConfig{},
	})
	if !errors.Is(err, xchannel.ErrNilChannel) {
		t.Fatalf("err = %v, want wrapped ErrNilChannel", err)
	}
}

// =============================================================================
// 路由语义
// =============================================================================

func TestRegistry_DefaultChannelMode(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{DefaultChannel: captureConfig(capture)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	reg.GetLogger("OrderService").Info("order placed")

	recs := capture.records()
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Appender != "" {
		t.Errorf("default channel mode should not tag records, got %q", recs[0].Appender)
	}
	if recs[0].Message != "order placed" || recs[0].LogName != "OrderService" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestRegistry_LevelFloor(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name:    "warnplus",
			Level:   xlog.Ptr(xlog.LevelWarn),
			Channel: captureConfig(capture),
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	logger := reg.GetLogger("svc")
	logger.Debug("below floor")
	logger.Warn("at floor")
	logger.Error("above floor")

	recs := capture.records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Level != xlog.LevelWarn || recs[1].Level != xlog.LevelError {
		t.Errorf("unexpected levels: %v, %v", recs[0].Level, recs[1].Level)
	}
}

func TestRegistry_GroupMatching(t *testing.T) {
	tests := []struct {
		name    string
		groups  []xlog.Matcher
		logName string
		match   bool
	}{
		{"无分组匹配一切", nil, "Anything", true},
		{"正则命中", []xlog.Matcher{xlog.MustMatcher("/^Auth/")}, "AuthService", true},
		{"正则不命中", []xlog.Matcher{xlog.MustMatcher("/^Auth/")}, "OAuthProxy", false},
		{"子串命中", []xlog.Matcher{xlog.MustMatcher("Auth")}, "OAuthProxy", true},
		{"子串不命中", []xlog.Matcher{xlog.MustMatcher("Auth")}, "Billing", false},
		{"任一命中即匹配", []xlog.Matcher{xlog.MustMatcher("Billing"), xlog.MustMatcher("/Pay/")}, "PayGateway", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureChannel{}
			reg, err := xlog.New(xlog.Config{
				Appenders: []xlog.Appender{{
					Name:    "grouped",
					Groups:  tt.groups,
					Channel: captureConfig(capture),
				}},
			})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			closeRegistry(t, reg)

			reg.GetLogger(tt.logName).Info("ping")

			got := len(capture.records()) == 1
			if got != tt.match {
				t.Errorf("delivered = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestRegistry_EachMatchGetsOwnCopy(t *testing.T) {
	first, second := &captureChannel{}, &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{
			{Name: "first", Channel: captureConfig(first)},
			{Name: "second", Channel: captureConfig(second)},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	reg.GetLogger("svc").Info("fan out")

	f, s := first.records(), second.records()
	if len(f) != 1 || len(s) != 1 {
		t.Fatalf("got %d/%d records, want 1/1", len(f), len(s))
	}
	if f[0].Appender != "first" || s[0].Appender != "second" {
		t.Errorf("appender tags = %q/%q, want first/second", f[0].Appender, s[0].Appender)
	}
}

// failingChannel 写入永远失败的通道
type failingChannel struct{}

func (failingChannel) Write(xrecord.Record) error {
	return errors.New("sink unavailable")
}

// panickyChannel 写入永远 panic 的通道
type panickyChannel struct{}

func (panickyChannel) Write(xrecord.Record) error {
	panic("sink exploded")
}

func TestRegistry_AppenderFailureIsolated(t *testing.T) {
	var reported []error
	var mu sync.Mutex
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		OnError: func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		},
		Appenders: []xlog.Appender{
			{Name: "broken", Channel: xchannel.CustomConfig{Channel: failingChannel{}}},
			{Name: "panicky", Channel: xchannel.CustomConfig{Channel: panickyChannel{}}},
			{Name: "healthy", Channel: captureConfig(capture)},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	reg.GetLogger("svc").Info("must survive")

	if got := len(capture.records()); got != 1 {
		t.Fatalf("healthy appender got %d records, want 1", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 2 {
		t.Fatalf("reported %d errors, want 2: %v", len(reported), reported)
	}
	if reg.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", reg.ErrorCount())
	}
}

func TestRegistry_SamplerGatesAppender(t *testing.T) {
	sampled, full := &captureChannel{}, &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{
			{Name: "sampled", Channel: captureConfig(sampled), Sample: xsample.Never()},
			{Name: "full", Channel: captureConfig(full)},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	for range 5 {
		reg.GetLogger("svc").Info("tick")
	}

	if got := len(sampled.records()); got != 0 {
		t.Errorf("Never sampler delivered %d records, want 0", got)
	}
	if got := len(full.records()); got != 5 {
		t.Errorf("unsampled appender got %d records, want 5", got)
	}
}

func TestRegistry_PerAppenderFormatting(t *testing.T) {
	// 每个 appender 独立的时间戳布局与参数格式化器
	var out bytes.Buffer
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name: "styled",
			Channel: xchannel.ConsoleConfig{
				Format:  xchannel.Template("{timestamp}|{args}|{message}"),
				Streams: &xchannel.Streams{Standard: &out},
			},
			DateLayout:   "2006",
			ArgFormatter: func(v any) string { return "<redacted>" },
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	reg.GetLogger("svc").Info("styled write", "secret-token")

	line := strings.TrimSpace(out.String())
	if !strings.HasSuffix(line, "|<redacted>|styled write") {
		t.Errorf("formatter not applied: %q", line)
	}
	if prefix, _, ok := strings.Cut(line, "|"); !ok || len(prefix) != 4 {
		t.Errorf("date layout not applied: %q", line)
	}
	if strings.Contains(line, "secret-token") {
		t.Errorf("raw argument leaked into output: %q", line)
	}
}

// =============================================================================
// 异步路由与 messages 队列
// =============================================================================

func TestRegistry_AuditScenario(t *testing.T) {
	received := make(chan xrecord.Record, 8)
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name:    "audit",
			Level:   xlog.Ptr(xlog.LevelWarn),
			Groups:  []xlog.Matcher{xlog.MustMatcher("/Auth/")},
			Channel: xchannel.AsyncConfig{ChannelName: "audit-queue"},
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	dereg, err := reg.AddConsumer("audit-queue", xqueue.ConsumerFunc(func(_ context.Context, rec xrecord.Record) error {
		received <- rec
		return nil
	}))
	if err != nil {
		t.Fatalf("AddConsumer() error: %v", err)
	}
	defer dereg()

	reg.GetLogger("AuthService").Error("login failed", errors.New("bad credentials"))
	reg.GetLogger("PaymentService").Warn("slow settlement")

	rec := waitRecord(t, received)
	if rec.Level != xlog.LevelError {
		t.Errorf("level = %v, want Error", rec.Level)
	}
	if rec.LogName != "AuthService" {
		t.Errorf("logName = %q, want AuthService", rec.LogName)
	}
	if rec.Message != "login failed" {
		t.Errorf("message = %q", rec.Message)
	}
	if rec.Err == nil || rec.Err.Error() != "bad credentials" {
		t.Errorf("err = %v, want bad credentials", rec.Err)
	}
	if rec.Appender != "audit" {
		t.Errorf("appender = %q, want audit", rec.Appender)
	}

	// PaymentService 的记录不命中 /Auth/ 分组，必须零投递
	select {
	case extra := <-received:
		t.Fatalf("unexpected delivery: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRegistry_MessagesQueueAlwaysOn(t *testing.T) {
	received := make(chan xrecord.Record, 8)
	// appender 只收 Error，messages 队列仍应全量投递
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name:    "errors-only",
			Level:   xlog.Ptr(xlog.LevelError),
			Channel: captureConfig(&captureChannel{}),
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	dereg, err := reg.MessagesConsumer(xqueue.ConsumerFunc(func(_ context.Context, rec xrecord.Record) error {
		received <- rec
		return nil
	}))
	if err != nil {
		t.Fatalf("MessagesConsumer() error: %v", err)
	}
	defer dereg()

	logger := reg.GetLogger("svc")
	logger.Trace("t")
	logger.Info("i")
	logger.Error("e")

	for _, want := range []xlog.Level{xlog.LevelTrace, xlog.LevelInfo, xlog.LevelError} {
		rec := waitRecord(t, received)
		if rec.Level != want {
			t.Errorf("level = %v, want %v", rec.Level, want)
		}
		if rec.Appender != xlog.MessagesChannel {
			t.Errorf("appender = %q, want %q", rec.Appender, xlog.MessagesChannel)
		}
	}
}

func TestRegistry_InjectedManagerSurvivesClose(t *testing.T) {
	mgr := xqueue.NewManager()
	defer func() { _ = mgr.Close(context.Background()) }()

	reg, err := xlog.New(xlog.Config{Queues: mgr})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if reg.Queues() != mgr {
		t.Fatal("Queues() should expose the injected manager")
	}
	if err := reg.Close(context.Background()); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// 注入的管理器不随注册表关闭
	if err := mgr.Publish("after", xrecord.New(xlog.LevelInfo, "svc", "still open")); err != nil {
		t.Fatalf("injected manager should stay usable: %v", err)
	}
}

// =============================================================================
// 门控与动态级别
// =============================================================================

func TestRegistry_StandardProviderGates(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Level:     xlog.LevelWarn,
		Appenders: []xlog.Appender{{Name: "all", Channel: captureConfig(capture)}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	logger := reg.GetLogger("svc")
	logger.Info("filtered")
	logger.Warn("passes")

	recs := capture.records()
	if len(recs) != 1 || recs[0].Level != xlog.LevelWarn {
		t.Fatalf("got %+v, want single Warn record", recs)
	}
	if logger.Enabled(xlog.LevelInfo) {
		t.Error("Enabled(Info) = true under Warn gate")
	}
	if !logger.Enabled(xlog.LevelFatal) {
		t.Error("Enabled(Fatal) = false under Warn gate")
	}
}

func TestRegistry_SetLevelTakesEffect(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Level:     xlog.LevelInfo,
		Appenders: []xlog.Appender{{Name: "all", Channel: captureConfig(capture)}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	logger := reg.GetLogger("svc")
	logger.Debug("dropped")

	reg.SetLevel(xlog.LevelDebug)
	logger.Debug("delivered")

	reg.SetLevel(xlog.Level(99)) // 非法级别被忽略
	if got := reg.Level(); got != xlog.LevelDebug {
		t.Errorf("Level() = %v after invalid SetLevel, want Debug", got)
	}

	recs := capture.records()
	if len(recs) != 1 || recs[0].Message != "delivered" {
		t.Fatalf("got %+v, want single delivered record", recs)
	}
}

func init() {
	// 自定义门控：只放行 payments 组件，供 TestRegistry_CustomProvider 使用
	xlog.RegisterProvider("payments-only", func(r *xlog.Registry) (xlog.Provider, error) {
		return xlog.ProviderFunc(func(logName string, _ xlog.Level) bool {
			return strings.HasPrefix(logName, "Payment")
		}), nil
	})
}

func TestRegistry_CustomProvider(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{
		Provider:  "payments-only",
		Appenders: []xlog.Appender{{Name: "all", Channel: captureConfig(capture)}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	reg.GetLogger("PaymentService").Info("kept")
	reg.GetLogger("AuthService").Info("gated")

	recs := capture.records()
	if len(recs) != 1 || recs[0].LogName != "PaymentService" {
		t.Fatalf("got %+v, want single PaymentService record", recs)
	}
}

func TestProviders_ListsRegistered(t *testing.T) {
	names := xlog.Providers()
	found := false
	for _, n := range names {
		if n == xlog.ProviderStandard {
			found = true
		}
	}
	if !found {
		t.Errorf("Providers() = %v, missing %q", names, xlog.ProviderStandard)
	}
}

// =============================================================================
// Logger 缓存与名称推导
// =============================================================================

func TestRegistry_GetLoggerCached(t *testing.T) {
	reg, err := xlog.New(xlog.Config{DefaultChannel: captureConfig(&captureChannel{})})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	a := reg.GetLogger("svc")
	b := reg.GetLogger("svc")
	c := reg.GetLogger("other")
	if a != b {
		t.Error("same name must return the same instance")
	}
	if a == c {
		t.Error("different names must return different instances")
	}
	if a.Name() != "svc" {
		t.Errorf("Name() = %q, want svc", a.Name())
	}
}

type billingService struct{}

func TestRegistry_LoggerOf(t *testing.T) {
	reg, err := xlog.New(xlog.Config{DefaultChannel: captureConfig(&captureChannel{})})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"结构体值", billingService{}, "billingService"},
		{"指针解引用", &billingService{}, "billingService"},
		{"多级指针", new(*billingService), "billingService"},
		{"字符串直通", "ExplicitName", "ExplicitName"},
		{"nil 哨兵", nil, "unknown"},
		{"匿名类型哨兵", struct{ x int }{}, "unknown"},
		{"未命名切片哨兵", []int{1}, "unknown"},
		{"空字符串哨兵", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.LoggerOf(tt.v).Name(); got != tt.want {
				t.Errorf("LoggerOf(%T).Name() = %q, want %q", tt.v, got, tt.want)
			}
		})
	}

	if reg.LoggerOf(billingService{}) != reg.LoggerOf(&billingService{}) {
		t.Error("value and pointer must share one logger")
	}
}

// =============================================================================
// 关闭语义
// =============================================================================

func TestRegistry_CloseDrainsOwnedQueues(t *testing.T) {
	received := make(chan xrecord.Record, 16)
	reg, err := xlog.New(xlog.Config{
		Appenders: []xlog.Appender{{
			Name:    "q",
			Channel: xchannel.AsyncConfig{ChannelName: "drain-me"},
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	_, err = reg.AddConsumer("drain-me", xqueue.ConsumerFunc(func(_ context.Context, rec xrecord.Record) error {
		received <- rec
		return nil
	}))
	if err != nil {
		t.Fatalf("AddConsumer() error: %v", err)
	}

	logger := reg.GetLogger("svc")
	for range 4 {
		logger.Info("queued")
	}

	if err := reg.Close(context.Background()); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if got := len(received); got != 4 {
		t.Errorf("drained %d records, want 4", got)
	}

	if err := reg.Close(context.Background()); !errors.Is(err, xlog.ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
}

func TestRegistry_CloseNilContext(t *testing.T) {
	reg, err := xlog.New(xlog.Config{DefaultChannel: captureConfig(&captureChannel{})})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closeRegistry(t, reg)

	var nilCtx context.Context
	if err := reg.Close(nilCtx); !errors.Is(err, xlog.ErrNilContext) {
		t.Errorf("Close(nil) = %v, want ErrNilContext", err)
	}
}

func TestRegistry_LoggingAfterCloseIsNoop(t *testing.T) {
	capture := &captureChannel{}
	reg, err := xlog.New(xlog.Config{DefaultChannel: captureConfig(capture)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger := reg.GetLogger("svc")

	if err := reg.Close(context.Background()); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	logger.Error("into the void")
	if logger.Enabled(xlog.LevelError) {
		t.Error("Enabled() must be false after close")
	}
	if got := len(capture.records()); got != 0 {
		t.Errorf("closed registry delivered %d records", got)
	}
}
