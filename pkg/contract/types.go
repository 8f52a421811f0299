package contract

// FileID: 逻辑输入ID（通常为路径，需规范化，跨平台一致；STDIN 为 "stdin"）。
type FileID string

// Report: 单个输入的分析结果（展示用，只读）。
// 约束：
// - Key 长度恰为 KeyLength（按 rune 计）；
// - Distances 为密钥长度估计所依据的证据，KeyLength 由外部覆盖时可为空；
// - 失败的输入不产生 Report。
type Report struct {
	FileID           FileID
	Language         string
	LanguageDetected bool
	KeyLength        int
	Distances        []int
	Key              string
}
