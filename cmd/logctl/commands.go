package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/logkit/pkg/config/xconf"
	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xlog"
)

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示命令参数错误，统一映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// isCLIUsageError 识别 cli 框架自身产生的参数类错误（未知 flag、未知命令）。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic for") ||
		strings.Contains(msg, "unknown command")
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "logctl",
		Usage:   "日志管道命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Commands: []*cli.Command{
			createValidateCommand(),
			createEmitCommand(),
			createLevelsCommand(),
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			// ExitCoder 错误（如未知命令）的消息需在此输出，
			// 替代 HandleExitCoder 的默认 os.Exit 行为。
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

// createValidateCommand 创建 validate 子命令。
func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "校验日志配置文件",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "配置文件路径 (.yaml/.yml/.json)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			if path == "" {
				return &usageError{msg: "缺少 --file 参数"}
			}
			return cmdValidate(ctx, cmd.Root().Writer, path)
		},
	}
}

// createEmitCommand 创建 emit 子命令。
func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "经真实注册表发射示例日志记录",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "记录级别 (trace/debug/info/warn/error/fatal)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "logger",
				Usage: "日志器名",
				Value: "logctl",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "消息文本",
				Value:   "sample record",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "发射条数",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "输出格式 (simple/detailed/compact/json)",
				Value: "simple",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lvl, err := xlog.ParseLevel(cmd.String("level"))
			if err != nil {
				return &usageError{msg: fmt.Sprintf("无效级别 %q", cmd.String("level"))}
			}
			if lvl == xlog.LevelOff {
				return &usageError{msg: "不能以 OFF 级别发射记录"}
			}
			preset, err := xchannel.ParsePreset(cmd.String("format"))
			if err != nil {
				return &usageError{msg: fmt.Sprintf("无效格式 %q", cmd.String("format"))}
			}
			count := cmd.Int("count")
			if count <= 0 {
				return &usageError{msg: "发射条数必须为正"}
			}
			return cmdEmit(ctx, cmd.Root().Writer, emitParams{
				level:   lvl,
				logger:  cmd.String("logger"),
				message: cmd.String("message"),
				count:   count,
				format:  preset,
			})
		},
	}
}

// createLevelsCommand 创建 levels 子命令。
func createLevelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "列出全部日志级别与秩",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdLevels(cmd.Root().Writer)
		},
	}
}

// cmdValidate 校验配置文件：先解码，再做构造期校验。
func cmdValidate(ctx context.Context, w io.Writer, path string) error {
	cfg, err := xconf.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		return &exitError{code: 1}
	}

	reg, err := xlog.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		return &exitError{code: 1}
	}

	fmt.Fprintf(w, "配置有效: level=%s appenders=%d\n", cfg.Level, len(cfg.Appenders))
	for _, a := range cfg.Appenders {
		fmt.Fprintf(w, "  - %s\n", a.Name)
	}

	return reg.Close(ctx)
}

// emitParams emit 命令的展开参数。
type emitParams struct {
	level   xlog.Level
	logger  string
	message string
	count   int
	format  xchannel.Preset
}

// cmdEmit 构造仅含控制台通道的注册表并发射示例记录。
// 所有级别统一写 w，避免 WARN 以上的样例走 stderr 被管道丢失。
func cmdEmit(ctx context.Context, w io.Writer, p emitParams) error {
	reg, err := xlog.New(xlog.Config{
		Level: xlog.LevelTrace,
		DefaultChannel: xchannel.ConsoleConfig{
			Format: p.format,
			Streams: &xchannel.Streams{
				Standard: w,
				Debug:    w,
				Warn:     w,
				Error:    w,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("构造注册表: %w", err)
	}

	lg := reg.GetLogger(p.logger)
	for i := 0; i < p.count; i++ {
		lg.Log(p.level, p.message)
	}

	return reg.Close(ctx)
}

// cmdLevels 输出级别秩表。
func cmdLevels(w io.Writer) error {
	fmt.Fprintln(w, "LEVEL  RANK")
	for _, lvl := range xlevel.Levels() {
		fmt.Fprintf(w, "%-6s %d\n", lvl, int(lvl))
	}
	return nil
}

// setupSignalHandler 设置信号处理。
// 设计决策: 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
// 当命令阻塞时，用户可通过再次 Ctrl+C 强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 优雅取消

		<-sigCh
		signal.Stop(sigCh) // 回收订阅
		os.Exit(130) // 第二次信号: 强制退出
	}()
}
