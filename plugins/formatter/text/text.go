// Package text 输出人类可读的单行结果。
package text

import (
	"context"
	"io"
	"strings"

	"vigcrack/pkg/contract"
)

// Options: text 格式配置。
type Options struct {
	// Label 为空时使用 "Suggested Passkey"。
	Label string `json:"label" yaml:"label"`
}

type Text struct{ label string }

func New(opts *Options) *Text {
	t := &Text{label: "Suggested Passkey"}
	if opts != nil && strings.TrimSpace(opts.Label) != "" {
		t.label = strings.TrimSpace(opts.Label)
	}
	return t
}

var _ contract.Formatter = (*Text)(nil)

// Format 输出 "Suggested Passkey: KEY"；多输入时前缀 "<file>: "。
func (t *Text) Format(ctx context.Context, rep contract.Report, multi bool) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b strings.Builder
	if multi {
		b.WriteString(string(rep.FileID))
		b.WriteString(": ")
	}
	b.WriteString(t.label)
	b.WriteString(": ")
	b.WriteString(rep.Key)
	b.WriteByte('\n')
	return strings.NewReader(b.String()), nil
}

func (t *Text) Ext() string { return ".key.txt" }
