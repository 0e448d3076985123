// logctl 是日志管道的命令行工具。
//
// 用法:
//
//	logctl <命令> [命令参数]
//
// 命令:
//
//	validate -f <文件>   校验日志配置文件（YAML/JSON）
//	emit                 经真实注册表发射示例日志记录
//	levels               列出全部日志级别与秩
//	help                 显示帮助信息
//
// validate 命令说明:
//
//	配置先经 xconf 解码，再用 xlog.New 做构造期校验，两步任一失败
//	都视为配置无效。校验通过时输出级别与 appender 摘要。
//
// emit 命令说明:
//
//	构造一个仅含控制台通道的注册表，把示例记录按指定级别、日志器名
//	与格式发射到标准输出，用于确认格式预设与级别门控的实际效果。
//
// 退出码:
//
//	0: 命令执行成功（validate 命令: 配置有效）
//	1: 命令执行失败（validate 命令: 配置无效）
//	2: 参数错误（缺少必需参数、无效级别、未知命令等）
//
// 示例:
//
//	logctl validate -f logging.yaml       # 校验配置文件
//	logctl emit -l warn -m "disk full"    # 发射一条 WARN 记录
//	logctl emit -c 3 --format json        # 以 JSON 格式发射三条记录
//	logctl levels                         # 查看级别秩表
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2，
		// 与文档契约"参数错误 → 退出码 2"保持一致。
		if isCLIUsageError(err) {
			// ExitErrHandler 或 flag 解析器已向 stderr 输出错误详情，此处仅设置退出码
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
