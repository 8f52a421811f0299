package language

import "strings"

// Rule: 若最高频字符落在 Common 中则判为 Lang。
type Rule struct {
	Lang   Language
	Common string
}

// DefaultRules 为固定优先级的“最常见字母”集合。
// 注意：西语集合是英语集合的子集，因此仅凭识别永远不会选中西语；需要时用显式语言覆盖。
func DefaultRules() []Rule {
	return []Rule{
		{Lang: English, Common: "ETAOINSHRD"},
		{Lang: Spanish, Common: "EASIONRT"},
		{Lang: French, Common: "ETAINOSRL"},
	}
}

// Detector: 基于密文最高频字符的启发式语言分类器。
type Detector struct {
	rules []Rule
}

// NewDetector 以给定规则（按优先级）构造识别器；rules 为空时使用 DefaultRules。
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Detector{rules: cp}
}

// Detect 返回识别出的语言与最高频字符。
// 并列时取最先出现者；空文本或无规则命中返回 Unknown。
func (d *Detector) Detect(text []rune) (Language, rune) {
	top, ok := MostFrequent(text)
	if !ok {
		return Unknown, 0
	}
	rules := DefaultRules()
	if d != nil {
		rules = d.rules
	}
	for _, r := range rules {
		if strings.ContainsRune(r.Common, top) {
			return r.Lang, top
		}
	}
	return Unknown, top
}

// MostFrequent 返回出现次数最多的字符；并列时取最先出现者。
func MostFrequent(text []rune) (rune, bool) {
	if len(text) == 0 {
		return 0, false
	}
	counts := make(map[rune]int)
	order := make([]rune, 0, 32)
	for _, r := range text {
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}
	best := order[0]
	for _, r := range order[1:] {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best, true
}
