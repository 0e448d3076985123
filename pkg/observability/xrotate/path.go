package xrotate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultDirPerm 自动创建的父目录权限：所有者读写执行，组读执行
const defaultDirPerm os.FileMode = 0o750

// sanitizePath 校验并规范化日志文件路径。
//
// 拒绝空路径、含空字节的路径、以分隔符结尾的目录路径，
// 以及规范化后仍包含 ".." 段的路径穿越输入。
func sanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", ErrEmptyFilename
	}
	if strings.IndexByte(filename, 0) >= 0 {
		return "", fmt.Errorf("%w: filename contains null byte", ErrInvalidPath)
	}

	// Clean 会移除尾部斜杠，目录语义必须在原始输入上检查。
	// 同时检查 / 和 \：Linux 上以反斜杠结尾的文件名理论上合法，
	// 但几乎总是跨平台拼接错误，统一拒绝以避免语义歧义。
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("%w: path is a directory", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)

	// 按路径段精确判断 ".."，不能用 strings.Contains——
	// 会误伤 "app..2024.log" 这类合法文件名
	for _, seg := range strings.Split(cleaned, string(filepath.Separator)) {
		if seg == ".." {
			return "", fmt.Errorf("%w: path traversal in filename", ErrInvalidPath)
		}
	}
	return cleaned, nil
}

// ensureDir 确保日志文件的父目录存在，不存在时以 defaultDirPerm 创建
func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, defaultDirPerm)
}
