// Package frequency 实现按密钥周期分列、逐列频率打分与密钥合成。
package frequency

import (
	"fmt"

	"vigcrack/pkg/contract"
)

// Partition 将 text 按位置 mod k 轮转分入 k 列。
// len(text) >= k 时每列非空；k > len(text) 时尾部列为空。
func Partition(text []rune, k int) ([][]rune, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: key length %d", contract.ErrInvalidInput, k)
	}
	cols := make([][]rune, k)
	per := len(text)/k + 1
	for i := range cols {
		cols[i] = make([]rune, 0, per)
	}
	for i, r := range text {
		cols[i%k] = append(cols[i%k], r)
	}
	return cols, nil
}

// Interleave 为 Partition 的逆运算：按原始位置交织各列。
func Interleave(cols [][]rune) []rune {
	n := 0
	for _, c := range cols {
		n += len(c)
	}
	out := make([]rune, n)
	k := len(cols)
	for i, c := range cols {
		for j, r := range c {
			out[j*k+i] = r
		}
	}
	return out
}
