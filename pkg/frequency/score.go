package frequency

import "vigcrack/pkg/language"

// Counts 返回列中每个字母表符号的出现次数（与字母表下标对齐）。
// 字母表外的符号被忽略。
func Counts(col []rune, p language.Profile) []int {
	counts := make([]int, p.Size())
	for _, r := range col {
		if i, ok := p.Index(r); ok {
			counts[i]++
		}
	}
	return counts
}

// Score 返回列的得分向量：
//
//	score(g) = Σ_i prob[i] * count[(i+g) mod n] / len(col)
//
// 即固定期望概率，将观测计数循环左移 g 位后做内积；g 为撤销凯撒位移 g 的候选。
// 计数数组只读，各位移独立计算。空列返回零向量。
func Score(col []rune, p language.Profile) []float64 {
	n := p.Size()
	scores := make([]float64, n)
	if len(col) == 0 || n == 0 {
		return scores
	}
	counts := Counts(col, p)
	total := float64(len(col))
	for g := 0; g < n; g++ {
		scores[g] = ShiftScore(counts, p, g) / total
	}
	return scores
}

// ShiftScore 返回单个位移 g 的未归一化内积 Σ_i prob[i] * counts[(i+g) mod n]。
func ShiftScore(counts []int, p language.Profile, g int) float64 {
	n := p.Size()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += p.Prob(i) * float64(counts[(i+g)%n])
	}
	return sum
}
