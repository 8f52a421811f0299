package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix: 环境变量覆盖前缀。
const EnvPrefix = "VIGCRACK_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Language: "auto",
		Logging:  Logging{Level: "info"},
		Components: Components{
			Reader:    "fs",
			Sanitizer: "letters",
			Formatter: "text",
			Writer:    "stdout",
		},
	}
}

// Load 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
// 路径以 .yaml/.yml 结尾时按 YAML 解析：YAML → 通用值 → JSON → 严格解码，两种格式共享同一校验。
func Load(path string, raw []byte) (Config, error) {
	var cfg Config
	switch {
	case len(raw) > 0:
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		raw = b
		if isYAML(path) {
			if raw, err = yamlToJSON(b); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		}
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config decode: %w", err)
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func yamlToJSON(b []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if s := strings.TrimSpace(over.Language); s != "" {
		out.Language = s
	}
	if over.GramLength != 0 {
		out.GramLength = over.GramLength
	}
	if over.KeyLength != 0 {
		out.KeyLength = over.KeyLength
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}
	if s := strings.TrimSpace(over.Metrics.File); s != "" {
		out.Metrics.File = s
	}

	// 组件名（空不覆盖）
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Sanitizer != "" {
		out.Components.Sanitizer = over.Components.Sanitizer
	}
	if over.Components.Formatter != "" {
		out.Components.Formatter = over.Components.Formatter
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if len(over.Options.Reader) > 0 {
		out.Options.Reader = cloneRaw(over.Options.Reader)
	}
	if len(over.Options.Sanitizer) > 0 {
		out.Options.Sanitizer = cloneRaw(over.Options.Sanitizer)
	}
	if len(over.Options.Formatter) > 0 {
		out.Options.Formatter = cloneRaw(over.Options.Formatter)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 VIGCRACK_；支持：INPUTS, LANGUAGE, GRAM_LENGTH, KEY_LENGTH, LOG_LEVEL, LOG_DIR,
// METRICS_FILE, COMPONENTS_{READER,SANITIZER,FORMATTER,WRITER}, OPTIONS_{...}_JSON。
// CONFIG_FILE/CONFIG_JSON 由调用方读取。整数值非法时返回错误。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[len(EnvPrefix):eq]
		val := strings.TrimSpace(kv[eq+1:])
		if val == "" {
			// 空值视为未设置
			continue
		}
		switch key {
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "LANGUAGE":
			over.Language = val
		case "GRAM_LENGTH":
			n, err := atoi(key, val)
			if err != nil {
				return over, err
			}
			over.GramLength = n
		case "KEY_LENGTH":
			n, err := atoi(key, val)
			if err != nil {
				return over, err
			}
			over.KeyLength = n
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "LOG_DIR":
			over.Logging.Dir = val
		case "METRICS_FILE":
			over.Metrics.File = val
		case "COMPONENTS_READER":
			over.Components.Reader = val
		case "COMPONENTS_SANITIZER":
			over.Components.Sanitizer = val
		case "COMPONENTS_FORMATTER":
			over.Components.Formatter = val
		case "COMPONENTS_WRITER":
			over.Components.Writer = val
		case "OPTIONS_READER_JSON":
			over.Options.Reader = json.RawMessage(val)
		case "OPTIONS_SANITIZER_JSON":
			over.Options.Sanitizer = json.RawMessage(val)
		case "OPTIONS_FORMATTER_JSON":
			over.Options.Formatter = json.RawMessage(val)
		case "OPTIONS_WRITER_JSON":
			over.Options.Writer = json.RawMessage(val)
		}
	}
	return over, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(key, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("env %s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}
