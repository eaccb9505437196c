package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
)

// FileSink 把导出文件原子地写入本地目录
type FileSink struct {
	dir string
}

// NewFileSink 创建目录归档，目录不存在时自动创建
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("导出目录不能为空")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建导出目录 %s 失败: %w", dir, err)
	}
	return &FileSink{dir: dir}, nil
}

// Dir 导出目录
func (f *FileSink) Dir() string {
	return f.dir
}

// Put 写入文件并返回其路径，实现 session.ExportSink。
// name 中的相对子目录会保留，但不允许跳出导出目录。
func (f *FileSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("非法的导出文件名: %q", name)
	}

	target := filepath.Join(f.dir, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := renameio.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("写入导出文件 %s 失败: %w", target, err)
	}
	return target, nil
}
