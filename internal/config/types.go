package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// 字段使用 snake_case；未知字段在解析期失败（JSON 与 YAML 同规则）。
type Config struct {
	// Inputs: 文件/目录；"-" 表示 STDIN；为空时由 CLI 决定 STDIN 或交互输入。
	Inputs []string `json:"inputs"`
	// Language: auto|english|spanish|french；空同 auto。
	Language string `json:"language"`
	// GramLength: 重复检测 gram 长度；0 使用默认 6。
	GramLength int `json:"gram_length"`
	// KeyLength: >0 时跳过 Kasiski 估计。
	KeyLength int     `json:"key_length"`
	Logging   Logging `json:"logging"`
	Metrics   Metrics `json:"metrics"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`
	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与目录；轮转策略固定。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Metrics: 非空时在运行结束后以 Prometheus 文本格式写出。
type Metrics struct {
	File string `json:"file"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader    string `json:"reader"`
	Sanitizer string `json:"sanitizer"`
	Formatter string `json:"formatter"`
	Writer    string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader    json.RawMessage `json:"reader,omitempty"`
	Sanitizer json.RawMessage `json:"sanitizer,omitempty"`
	Formatter json.RawMessage `json:"formatter,omitempty"`
	Writer    json.RawMessage `json:"writer,omitempty"`
}
