// Package language 提供语言标签、字母频率概率表与基于最高频字符的语言识别。
package language

import (
	"fmt"
	"strings"

	"vigcrack/pkg/contract"
)

// Language: 封闭的四值语言标签。Unknown 为零值，消费方必须显式处理。
type Language int

const (
	Unknown Language = iota
	English
	Spanish
	French
)

// All 返回全部已知语言（不含 Unknown），顺序即识别优先级。
func All() []Language { return []Language{English, Spanish, French} }

func (l Language) String() string {
	switch l {
	case English:
		return "English"
	case Spanish:
		return "Spanish"
	case French:
		return "French"
	case Unknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// Parse 解析语言名（大小写不敏感）。"" 与 "auto" 返回 Unknown，表示交给识别器。
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Unknown, nil
	case "english", "en":
		return English, nil
	case "spanish", "es":
		return Spanish, nil
	case "french", "fr":
		return French, nil
	default:
		return Unknown, fmt.Errorf("%w: unknown language %q", contract.ErrInvalidInput, s)
	}
}
