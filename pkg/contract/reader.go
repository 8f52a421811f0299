package contract

import (
	"context"
	"io"
)

// Reader: 密文来源抽象（文件/目录/STDIN/交互输入）。
// 约束：
// 1) 按输入维度回调，顺序稳定；
// 2) FileID 稳定且去平台差异化；
// 3) 不做解码/清洗，仅提供字节流；
// 4) 不在内部起并发。
type Reader interface {
	Iterate(ctx context.Context, roots []string, yield func(fileID FileID, r io.ReadCloser) error) error
}

// MultiInput: Reader 的可选能力，在 Iterate 之前声明 roots 是否可能产生多个输入
// （例如目录 root）。未实现时按 len(roots) > 1 判定。
type MultiInput interface {
	MultiInput(roots []string) bool
}
