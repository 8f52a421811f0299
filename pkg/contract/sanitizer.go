package contract

import (
	"context"
	"io"
)

// Sanitizer: 将单个输入的字节流解码为密文符号序列。
// 约束：
// 1) 非法 UTF-8 或清洗后为空返回 ErrInput；
// 2) 不做语言相关判断（字母表由后续阶段决定）；
// 3) 无内部并发、幂等。
type Sanitizer interface {
	Sanitize(ctx context.Context, fileID FileID, r io.Reader) ([]rune, error)
}
