package config

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// 输入为 STDIN，自动识别语言，文本结果写到 stdout；各组件选项列出全部键。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Inputs = []string{"-"}
	cfg.GramLength = 6
	cfg.Logging.Dir = "logs"
	cfg.Options.Reader = json.RawMessage(`{"buf_size": 65536, "exclude_dir_names": [".git"], "allow_exts": []}`)
	cfg.Options.Sanitizer = json.RawMessage(`{"max_bytes": 16777216, "keep_case": false}`)
	cfg.Options.Formatter = json.RawMessage(`{"label": "Suggested Passkey"}`)
	// stdout writer 无配置项；切换为 fs 时需提供 output_dir
	cfg.Options.Writer = json.RawMessage(`{}`)
	return cfg
}

// MarshalYAML 将配置渲染为块风格 YAML（键顺序与 JSON 字段顺序一致）。
func MarshalYAML(cfg Config) ([]byte, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	// JSON 是 YAML 的子集：解析为节点树后清除 flow/引号风格
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	return yaml.Marshal(&doc)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// DotEnvTemplate 返回 .env 模板：列出全部受支持的覆盖键（空值即未设置）。
func DotEnvTemplate() string {
	var b strings.Builder
	b.WriteString("# vigcrack .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件\n\n")
	b.WriteString("# 配置来源（二选一）\n")
	b.WriteString(EnvPrefix + "CONFIG_FILE=\n")
	b.WriteString(EnvPrefix + "CONFIG_JSON=\n\n")
	b.WriteString("# 分析参数\n")
	for _, k := range []string{"INPUTS", "LANGUAGE", "GRAM_LENGTH", "KEY_LENGTH"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 日志与指标\n")
	for _, k := range []string{"LOG_LEVEL", "LOG_DIR", "METRICS_FILE"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择与选项（原样 JSON）\n")
	for _, c := range []string{"READER", "SANITIZER", "FORMATTER", "WRITER"} {
		b.WriteString(EnvPrefix + "COMPONENTS_" + c + "=\n")
	}
	for _, c := range []string{"READER", "SANITIZER", "FORMATTER", "WRITER"} {
		b.WriteString(EnvPrefix + "OPTIONS_" + c + "_JSON=\n")
	}
	return b.String()
}
