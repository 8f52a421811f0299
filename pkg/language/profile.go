package language

import (
	"fmt"
	"math"

	"vigcrack/pkg/contract"
)

// sumTolerance: 概率表求和与 1.0 的允许偏差（公开统计表存在舍入误差）。
const sumTolerance = 0.02

// Profile: 某语言的有序字母表及下标对齐的期望字母概率。
// 构造后只读；访问器不暴露内部切片。
type Profile struct {
	lang     Language
	alphabet []rune
	probs    []float64
	index    map[rune]int
}

// NewProfile 校验并构造 Profile。
// 约束：lang 非 Unknown；字母表非空且无重复；概率非负、与字母表等长、总和≈1。
func NewProfile(lang Language, alphabet string, probs []float64) (Profile, error) {
	if lang == Unknown {
		return Profile{}, fmt.Errorf("%w: profile for Unknown", contract.ErrInvalidInput)
	}
	rs := []rune(alphabet)
	if len(rs) == 0 {
		return Profile{}, fmt.Errorf("%w: %s alphabet empty", contract.ErrInvalidInput, lang)
	}
	if len(rs) != len(probs) {
		return Profile{}, fmt.Errorf("%w: %s alphabet has %d symbols but %d probabilities",
			contract.ErrInvalidInput, lang, len(rs), len(probs))
	}
	idx := make(map[rune]int, len(rs))
	for i, r := range rs {
		if _, dup := idx[r]; dup {
			return Profile{}, fmt.Errorf("%w: %s alphabet repeats %q", contract.ErrInvalidInput, lang, r)
		}
		idx[r] = i
	}
	sum := 0.0
	for i, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return Profile{}, fmt.Errorf("%w: %s probability for %q is %v", contract.ErrInvalidInput, lang, rs[i], p)
		}
		sum += p
	}
	if math.Abs(sum-1) > sumTolerance {
		return Profile{}, fmt.Errorf("%w: %s probabilities sum to %.4f", contract.ErrInvalidInput, lang, sum)
	}
	ps := make([]float64, len(probs))
	copy(ps, probs)
	return Profile{lang: lang, alphabet: rs, probs: ps, index: idx}, nil
}

func (p Profile) Language() Language { return p.lang }

// Size 返回字母表长度（亦即候选位移个数）。
func (p Profile) Size() int { return len(p.alphabet) }

func (p Profile) Symbol(i int) rune { return p.alphabet[i] }

func (p Profile) Prob(i int) float64 { return p.probs[i] }

// Index 返回符号在字母表中的下标。
func (p Profile) Index(r rune) (int, bool) {
	i, ok := p.index[r]
	return i, ok
}

func (p Profile) Contains(r rune) bool {
	_, ok := p.index[r]
	return ok
}

func (p Profile) Alphabet() string { return string(p.alphabet) }

// Probabilities 返回概率表副本。
func (p Profile) Probabilities() []float64 {
	out := make([]float64, len(p.probs))
	copy(out, p.probs)
	return out
}
