// Package raw 保留输入原文，仅去除首尾空白。
package raw

import (
	"context"
	"fmt"
	"io"
	"strings"

	"vigcrack/pkg/contract"
	"vigcrack/plugins/sanitizer/letters"
)

type Options struct {
	// MaxBytes: 同 letters；<=0 默认 16MiB。
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`
}

type Raw struct{ maxBytes int64 }

func New(opts *Options) *Raw {
	r := &Raw{maxBytes: letters.DefaultMaxBytes}
	if opts != nil && opts.MaxBytes > 0 {
		r.maxBytes = opts.MaxBytes
	}
	return r
}

var _ contract.Sanitizer = (*Raw)(nil)

// Sanitize 按原样返回符号（空格、标点均参与 Kasiski 检测）。
func (s *Raw) Sanitize(ctx context.Context, fileID contract.FileID, r io.Reader) ([]rune, error) {
	b, err := letters.ReadLimited(ctx, fileID, r, s.maxBytes)
	if err != nil {
		return nil, err
	}
	txt := strings.TrimSpace(string(b))
	if txt == "" {
		return nil, fmt.Errorf("%w: %s is empty", contract.ErrInput, fileID)
	}
	return []rune(txt), nil
}
