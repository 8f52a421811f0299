package frequency

import (
	"fmt"
	"strings"

	"vigcrack/pkg/contract"
	"vigcrack/pkg/language"
)

// BestShift 返回得分最大的位移；并列取最小位移（稳定 argmax）。空向量返回 -1。
func BestShift(scores []float64) int {
	best := -1
	for g, s := range scores {
		if best < 0 || s > scores[best] {
			best = g
		}
	}
	return best
}

// SynthesizeKey 逐列取最佳位移并映射为字母表符号，按列序拼接为密钥。
// 不设置置信阈值：最高分位移总被采纳。
func SynthesizeKey(scores [][]float64, p language.Profile) (string, error) {
	if len(scores) == 0 {
		return "", fmt.Errorf("%w: no columns", contract.ErrInvalidInput)
	}
	var b strings.Builder
	for i, s := range scores {
		if len(s) != p.Size() {
			return "", fmt.Errorf("%w: column %d has %d scores for %d-symbol alphabet",
				contract.ErrInvalidInput, i, len(s), p.Size())
		}
		b.WriteRune(p.Symbol(BestShift(s)))
	}
	return b.String(), nil
}
