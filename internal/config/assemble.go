package config

import (
	"errors"
	"fmt"
	"strings"

	"vigcrack/internal/diag"
	"vigcrack/internal/pipeline"
	"vigcrack/pkg/cracker"
	"vigcrack/pkg/language"
	"vigcrack/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		switch strings.TrimSpace(r) {
		case "":
			return errors.New("config: input path cannot be empty")
		case "-":
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return errors.New("config: '-' cannot be mixed with other roots")
	}
	if _, err := language.Parse(cfg.Language); err != nil {
		return fmt.Errorf("config: language: %w", err)
	}
	if cfg.GramLength < 0 {
		return errors.New("config: gram_length must be >= 0")
	}
	if cfg.KeyLength < 0 {
		return errors.New("config: key_length must be >= 0")
	}
	if !diag.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("config: logging.level %q not one of debug|info|warn|error", cfg.Logging.Level)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered (have %v)", name, registry.Names(registry.Reader))
	}
	if name := effName(cfg.Components.Sanitizer, d.Sanitizer); registry.Sanitizer[name] == nil {
		return fmt.Errorf("config: sanitizer %q not registered (have %v)", name, registry.Names(registry.Sanitizer))
	}
	if name := effName(cfg.Components.Formatter, d.Formatter); registry.Formatter[name] == nil {
		return fmt.Errorf("config: formatter %q not registered (have %v)", name, registry.Names(registry.Formatter))
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered (have %v)", name, registry.Names(registry.Writer))
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	d := Defaults().Components

	r, err := registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: reader options: %w", err)
	}
	s, err := registry.Sanitizer[effName(cfg.Components.Sanitizer, d.Sanitizer)](cfg.Options.Sanitizer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: sanitizer options: %w", err)
	}
	f, err := registry.Formatter[effName(cfg.Components.Formatter, d.Formatter)](cfg.Options.Formatter)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: formatter options: %w", err)
	}
	w, err := registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: writer options: %w", err)
	}

	lang, _ := language.Parse(cfg.Language)
	set := pipeline.Settings{
		Inputs: cloneStrings(cfg.Inputs),
		Analysis: cracker.Options{
			GramLength: cfg.GramLength,
			Language:   lang,
			KeyLength:  cfg.KeyLength,
		},
	}
	return pipeline.Components{Reader: r, Sanitizer: s, Formatter: f, Writer: w}, set, nil
}

func effName(got, def string) string {
	if strings.TrimSpace(got) == "" {
		return def
	}
	return strings.TrimSpace(got)
}
