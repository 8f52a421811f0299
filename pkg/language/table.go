package language

import (
	"fmt"

	"vigcrack/pkg/contract"
)

const (
	latinAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	spanishAlphabet = "ABCDEFGHIJKLMNÑOPQRSTUVWXYZ"
)

// 字母频率（A..Z；西语在 N 之后插入 Ñ）。
var (
	englishProbs = []float64{
		.08167, .01492, .02782, .04253, .12702, .02228, .02015, // A-G
		.06094, .06966, .00153, .00772, .04025, .02406, .06749, // H-N
		.07507, .01929, .00095, .05987, .06327, .09056, .02758, // O-U
		.00978, .02360, .00150, .01974, .00074, // V-Z
	}
	spanishProbs = []float64{
		.1216, .0149, .0387, .0467, .1408, .0069, .0100, // A-G
		.0180, .0598, .0052, .0011, .0524, .0308, .0700, // H-N
		.0031,                                           // Ñ
		.0920, .0289, .0111, .0641, .0720, .0460, .0469, // O-U
		.0105, .0004, .0014, .0109, .0047, // V-Z
	}
	frenchProbs = []float64{
		.08173, .00901, .03345, .03669, .16716, .01066, .00866, // A-G
		.00737, .07579, .00613, .00740, .05456, .02968, .07095, // H-N
		.05837, .02521, .01362, .06930, .07948, .07244, .06429, // O-U
		.01838, .00049, .00427, .00128, .00326, // V-Z
	}
)

// Table: 语言 → Profile 的只读映射。显式构造后注入识别器与打分器。
type Table struct {
	profiles map[Language]Profile
}

// NewTable 由若干 Profile 构造 Table；同一语言重复出现视为错误。
func NewTable(profiles ...Profile) (*Table, error) {
	m := make(map[Language]Profile, len(profiles))
	for _, p := range profiles {
		if p.Size() == 0 {
			return nil, fmt.Errorf("%w: zero-value profile", contract.ErrInvalidInput)
		}
		if _, dup := m[p.lang]; dup {
			return nil, fmt.Errorf("%w: duplicate profile for %s", contract.ErrInvalidInput, p.lang)
		}
		m[p.lang] = p
	}
	return &Table{profiles: m}, nil
}

// DefaultTable 返回内置的 English/Spanish/French 表。
// 内置常量在包测试中校验，此处构造失败即程序错误。
func DefaultTable() *Table {
	t, err := NewTable(
		mustProfile(English, latinAlphabet, englishProbs),
		mustProfile(Spanish, spanishAlphabet, spanishProbs),
		mustProfile(French, latinAlphabet, frenchProbs),
	)
	if err != nil {
		panic(err)
	}
	return t
}

func mustProfile(lang Language, alphabet string, probs []float64) Profile {
	p, err := NewProfile(lang, alphabet, probs)
	if err != nil {
		panic(err)
	}
	return p
}

// Profile 返回语言对应的 Profile。Unknown 或缺失语言返回 ErrDetection。
func (t *Table) Profile(lang Language) (Profile, error) {
	switch lang {
	case Unknown:
		return Profile{}, fmt.Errorf("%w: no profile for %s language", contract.ErrDetection, lang)
	case English, Spanish, French:
		if t == nil {
			return Profile{}, fmt.Errorf("%w: profile table not set", contract.ErrInvalidInput)
		}
		p, ok := t.profiles[lang]
		if !ok {
			return Profile{}, fmt.Errorf("%w: %s not in profile table", contract.ErrDetection, lang)
		}
		return p, nil
	default:
		return Profile{}, fmt.Errorf("%w: language %d out of range", contract.ErrInvalidInput, int(lang))
	}
}

// Languages 返回表内语言（按识别优先级顺序）。
func (t *Table) Languages() []Language {
	if t == nil {
		return nil
	}
	out := make([]Language, 0, len(t.profiles))
	for _, l := range All() {
		if _, ok := t.profiles[l]; ok {
			out = append(out, l)
		}
	}
	return out
}
