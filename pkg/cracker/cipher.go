package cracker

import (
	"fmt"

	"vigcrack/pkg/contract"
	"vigcrack/pkg/language"
)

// Encrypt 以重复密钥对 plaintext 做维吉尼亚加密：c[i] = p[i] + key[i mod len(key)]。
// 字母表外的明文符号原样保留且不消耗密钥位；密钥必须完全由字母表符号构成。
// 用于生成练习密文与测试夹具。
func Encrypt(plaintext []rune, key string, p language.Profile) ([]rune, error) {
	shifts, err := keyShifts(key, p)
	if err != nil {
		return nil, err
	}
	n := p.Size()
	out := make([]rune, len(plaintext))
	j := 0
	for i, r := range plaintext {
		idx, ok := p.Index(r)
		if !ok {
			out[i] = r
			continue
		}
		out[i] = p.Symbol((idx + shifts[j%len(shifts)]) % n)
		j++
	}
	return out, nil
}

func keyShifts(key string, p language.Profile) ([]int, error) {
	rs := []rune(key)
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: empty key", contract.ErrInvalidInput)
	}
	shifts := make([]int, len(rs))
	for i, r := range rs {
		idx, ok := p.Index(r)
		if !ok {
			return nil, fmt.Errorf("%w: key symbol %q not in %s alphabet", contract.ErrInvalidInput, r, p.Language())
		}
		shifts[i] = idx
	}
	return shifts, nil
}
