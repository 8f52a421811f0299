// Package jsonfmt 以 JSON 对象输出分析报告（含 Kasiski 距离证据）。
package jsonfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"vigcrack/pkg/contract"
)

// Options: json 格式配置。
type Options struct {
	// Indent: 缩进字符串；空为紧凑单行。
	Indent string `json:"indent" yaml:"indent"`
}

type JSON struct{ indent string }

func New(opts *Options) *JSON {
	if opts == nil {
		return &JSON{}
	}
	return &JSON{indent: opts.Indent}
}

var _ contract.Formatter = (*JSON)(nil)

type document struct {
	File             string `json:"file"`
	Language         string `json:"language"`
	LanguageDetected bool   `json:"language_detected"`
	KeyLength        int    `json:"key_length"`
	Distances        []int  `json:"distances"`
	Key              string `json:"key"`
}

// Format 每个输入输出一个对象并以换行结尾（多输入时即 JSON Lines）。
func (j *JSON) Format(ctx context.Context, rep contract.Report, _ bool) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := document{
		File:             string(rep.FileID),
		Language:         rep.Language,
		LanguageDetected: rep.LanguageDetected,
		KeyLength:        rep.KeyLength,
		Distances:        rep.Distances,
		Key:              rep.Key,
	}
	if doc.Distances == nil {
		doc.Distances = []int{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if j.indent != "" {
		enc.SetIndent("", j.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (j *JSON) Ext() string { return ".json" }
