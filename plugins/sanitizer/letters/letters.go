// Package letters 将输入清洗为大写字母序列：去除空白、标点与数字。
package letters

import (
	"context"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"vigcrack/pkg/contract"
)

// DefaultMaxBytes: 单个输入默认读取上限。
const DefaultMaxBytes int64 = 16 << 20

// Options: letters 清洗器配置。
type Options struct {
	// MaxBytes: 单个输入读取上限（字节）；<=0 默认 16MiB。超限返回 ErrInput。
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`
	// KeepCase: 为 true 时不做大写折叠。
	KeepCase bool `json:"keep_case" yaml:"keep_case"`
}

type Letters struct {
	maxBytes int64
	keepCase bool
}

func New(opts *Options) *Letters {
	l := &Letters{maxBytes: DefaultMaxBytes}
	if opts != nil {
		if opts.MaxBytes > 0 {
			l.maxBytes = opts.MaxBytes
		}
		l.keepCase = opts.KeepCase
	}
	return l
}

var _ contract.Sanitizer = (*Letters)(nil)

// Sanitize 读取全部字节，校验 UTF-8，仅保留字母（unicode.IsLetter）。
func (l *Letters) Sanitize(ctx context.Context, fileID contract.FileID, r io.Reader) ([]rune, error) {
	b, err := ReadLimited(ctx, fileID, r, l.maxBytes)
	if err != nil {
		return nil, err
	}
	out := make([]rune, 0, len(b))
	for _, c := range string(b) {
		if !unicode.IsLetter(c) {
			continue
		}
		if !l.keepCase {
			c = unicode.ToUpper(c)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s contains no letters", contract.ErrInput, fileID)
	}
	return out, nil
}

// ReadLimited 读取至多 max 字节并校验 UTF-8；超限、非法编码与读错误均归为 ErrInput。
func ReadLimited(ctx context.Context, fileID contract.FileID, r io.Reader, max int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", contract.ErrInput, fileID, err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", contract.ErrInput, fileID, max)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", contract.ErrInput, fileID)
	}
	return b, nil
}
