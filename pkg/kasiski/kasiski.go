// Package kasiski 实现 Kasiski 检验：定位重复 gram 并以 GCD 估计重复密钥周期。
package kasiski

import (
	"fmt"

	"vigcrack/pkg/contract"
)

// DefaultGramLength 为重复检测所用的 gram 长度。
const DefaultGramLength = 6

// LocateRepeats 返回所有重复 gram 的距离集合。
// 规则：
// - 每个不同的 gram 只统计一次；出现位置含重叠出现；
// - 仅取“首次出现 → 之后每次出现”的距离，不取全部两两组合；
// - 距离按 gram 首次出现的顺序排列，同一 gram 内按位置升序。
// 文本短于 gramLen 返回 ErrDegenerateInput；无重复 gram 返回 ErrEstimation。
func LocateRepeats(text []rune, gramLen int) ([]int, error) {
	if gramLen < 1 {
		return nil, fmt.Errorf("%w: gram length %d", contract.ErrInvalidInput, gramLen)
	}
	if len(text) < gramLen {
		return nil, fmt.Errorf("%w: %d symbols, gram length %d", contract.ErrDegenerateInput, len(text), gramLen)
	}
	// 以 gram 为键建立出现位置索引，避免逐位置子串搜索的二次开销。
	occ := make(map[string][]int)
	order := make([]string, 0, len(text)-gramLen+1)
	for i := 0; i+gramLen <= len(text); i++ {
		g := string(text[i : i+gramLen])
		if _, seen := occ[g]; !seen {
			order = append(order, g)
		}
		occ[g] = append(occ[g], i)
	}
	var dists []int
	for _, g := range order {
		locs := occ[g]
		for j := 1; j < len(locs); j++ {
			dists = append(dists, locs[j]-locs[0])
		}
	}
	if len(dists) == 0 {
		return nil, fmt.Errorf("%w: no repeated %d-grams in %d symbols", contract.ErrEstimation, gramLen, len(text))
	}
	return dists, nil
}

// EstimateKeyLength 返回全部距离的最大公约数。
//
// GCD 仅在存在足够多的独立重复时收敛到真实周期；对短文本或低重复文本，
// 估计值可能是真实周期的倍数（重复恰好都落在倍数位置）或约数（偶然重复引入
// 非倍数距离）。这是方法本身的统计局限，不视为错误。
func EstimateKeyLength(distances []int) (int, error) {
	if len(distances) == 0 {
		return 0, fmt.Errorf("%w: empty distance collection", contract.ErrEstimation)
	}
	g := 0
	for _, d := range distances {
		if d <= 0 {
			return 0, fmt.Errorf("%w: non-positive distance %d", contract.ErrInvalidInput, d)
		}
		g = GCD(g, d)
	}
	return g, nil
}

// GCD 返回 a、b 的最大公约数（GCD(0, b) == b）。
func GCD(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
