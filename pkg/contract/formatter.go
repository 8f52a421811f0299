package contract

import (
	"context"
	"io"
)

// Formatter: 将 Report 渲染为可写出的字节流。
// multi 表示本次运行包含多个输入（文本格式据此决定是否带 FileID 前缀）。
type Formatter interface {
	Format(ctx context.Context, rep Report, multi bool) (io.Reader, error)
	// Ext 返回落盘时使用的扩展名（含点）。
	Ext() string
}
