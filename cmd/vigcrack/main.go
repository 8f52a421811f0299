package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "vigcrack/internal/config"
	"vigcrack/internal/diag"
	"vigcrack/internal/pipeline"
	"vigcrack/pkg/contract"
	wstdout "vigcrack/plugins/writer/stdout"
)

// 退出码
const (
	exitOK      = 0
	exitFailure = 1 // 分析/运行期失败
	exitInput   = 2 // 输入不可读、为空或编码非法
	exitConfig  = 3 // 配置/参数错误
)

var (
	pipelineRun     = pipeline.Run
	stdinIsTerminal = func() bool { return diag.IsTerminal(os.Stdin) }
)

// exitError 携带退出码；消息已在返回前打印。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error { return &exitError{code: code, err: err} }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		// nil 时 cobra 回落到 os.Args
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra 自身的参数/旗标错误
	fmt.Fprintf(stderr, "参数错误: %v\n", err)
	return exitConfig
}

type rootFlags struct {
	config      string
	lang        string
	gramLength  int
	keyLength   int
	format      string
	outputDir   string
	logLevel    string
	logDir      string
	status      bool
	metricsFile string
	initDir     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "vigcrack [flags] [file|dir|-]...",
		Short: "Recover Vigenère keys with Kasiski examination and frequency analysis",
		Long: `vigcrack 对每个输入执行：语言识别 → Kasiski 周期估计 → 逐列频率分析，输出建议密钥。
无位置参数且 STDIN 为终端时进入交互输入；否则读取 STDIN。
优先级：CLI > ENV(VIGCRACK_*) > 配置文件（YAML/JSON） > 默认值。`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return crack(cmd, f, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "配置文件（.yaml/.yml/.json）；缺省依次查找 ./config.yaml ./config.yml ./config.json")
	fl.StringVar(&f.lang, "lang", "", "语言：auto|english|spanish|french（覆盖配置）")
	fl.IntVar(&f.gramLength, "gram-length", 0, "重复检测 gram 长度（覆盖配置；默认 6）")
	fl.IntVar(&f.keyLength, "key-length", 0, "已知密钥长度，跳过 Kasiski 估计")
	fl.StringVar(&f.format, "format", "", "输出格式：text|json")
	fl.StringVar(&f.outputDir, "output-dir", "", "结果写入该目录（每个输入一个文件），而非 stdout")
	fl.StringVar(&f.logLevel, "log-level", "", "日志级别：debug|info|warn|error")
	fl.StringVar(&f.logDir, "log-dir", "", "日志目录（默认 ./logs）")
	fl.BoolVar(&f.status, "status", false, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "运行结束后以 Prometheus 文本格式写出指标")
	fl.StringVar(&f.initDir, "init-config", "", "在指定目录生成 config.yaml 与 .env 模板（已存在则跳过）；不带值时为当前目录")
	fl.Lookup("init-config").NoOptDefVal = "."

	cmd.AddCommand(newEncryptCmd(stdout, stderr), newLanguagesCmd(stdout))
	return cmd
}

func crack(cmd *cobra.Command, f rootFlags, roots []string, stdout, stderr io.Writer) error {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前加载 .env（不覆盖已有 ENV）
	_ = loadDotEnv(".env")

	if dir := strings.TrimSpace(f.initDir); dir != "" {
		if err := initConfig(dir, stderr); err != nil {
			fmt.Fprintf(stderr, "生成默认配置失败: %v\n", err)
			return exitWith(exitConfig, err)
		}
		return nil
	}

	cfg, err := resolveConfig(cmd, f, roots)
	if err != nil {
		fmt.Fprintf(stderr, "配置错误: %v\n", err)
		return exitWith(exitConfig, err)
	}
	logger := diag.NewLogger(corrID, cfg.Logging.Level, cfg.Logging.Dir)
	defer logger.Close()

	if err := cfgpkg.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "配置校验失败: %v\n", err)
		dumpConfig(stderr, cfg)
		logger.Error("config", string(diag.Classify(err)), err.Error(), &start)
		return exitWith(exitConfig, err)
	}
	if err := preflightCheckOutputDir(cfg); err != nil {
		fmt.Fprintf(stderr, "输出目录不可写或无法创建: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), err.Error(), &start)
		return exitWith(exitConfig, err)
	}
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), err.Error(), &start)
		return exitWith(exitConfig, err)
	}
	if _, ok := comp.Writer.(*wstdout.Stdout); ok {
		comp.Writer = wstdout.NewWriter(stdout)
	}

	logger.DebugStage("config", "effective", "resolved", "", start, map[string]string{
		"inputs_count": strconv.Itoa(len(cfg.Inputs)),
		"language":     cfg.Language,
		"gram_length":  strconv.Itoa(cfg.GramLength),
		"key_length":   strconv.Itoa(cfg.KeyLength),
		"reader":       cfg.Components.Reader,
		"sanitizer":    cfg.Components.Sanitizer,
		"formatter":    cfg.Components.Formatter,
		"writer":       cfg.Components.Writer,
	})

	term := diag.NewTerminal(stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(len(cfg.Inputs), cfg.Language)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	t := logger.Start("pipeline", "run")
	runErr := pipelineRun(ctx, comp, set, logger)
	if cfg.Metrics.File != "" {
		if err := diag.WriteMetrics(cfg.Metrics.File); err != nil {
			fmt.Fprintf(stderr, "提示：指标写出失败（已跳过）：%v\n", err)
		}
	}
	if runErr != nil {
		code := diag.Classify(runErr)
		logger.Error("pipeline", string(code), "first error", &start)
		diag.IncOp("pipeline", "run", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		if !errors.Is(runErr, context.Canceled) {
			fmt.Fprintf(stderr, "运行失败: %v\n", runErr)
		}
		term.RunFinish(false, time.Since(start))
		if errors.Is(runErr, contract.ErrInput) {
			return exitWith(exitInput, runErr)
		}
		return exitWith(exitFailure, runErr)
	}
	t.Finish("run", 0)
	diag.IncOp("pipeline", "run", "success")
	diag.ObserveDuration("pipeline", "run", float64(time.Since(start).Microseconds())/1000.0)
	term.RunFinish(true, time.Since(start))
	return nil
}

// resolveConfig: 默认值 → 配置文件 → ENV → CLI。
func resolveConfig(cmd *cobra.Command, f rootFlags, roots []string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()

	path := f.config
	if path == "" {
		path = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	if path == "" {
		for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	var raw []byte
	if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); s != "" {
		raw = []byte(s)
	}
	if path != "" || len(raw) > 0 {
		base, err := cfgpkg.Load(path, raw)
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, err
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	var over cfgpkg.Config
	over.Inputs = roots
	over.Language = f.lang
	over.Logging = cfgpkg.Logging{Level: f.logLevel, Dir: f.logDir}
	over.Metrics.File = f.metricsFile
	over.Components.Formatter = f.format
	if cmd.Flags().Changed("gram-length") {
		if f.gramLength <= 0 {
			return cfg, fmt.Errorf("--gram-length must be > 0, got %d", f.gramLength)
		}
		over.GramLength = f.gramLength
	}
	if cmd.Flags().Changed("key-length") {
		if f.keyLength <= 0 {
			return cfg, fmt.Errorf("--key-length must be > 0, got %d", f.keyLength)
		}
		over.KeyLength = f.keyLength
	}
	if dir := strings.TrimSpace(f.outputDir); dir != "" {
		over.Components.Writer = "fs"
		b, _ := json.Marshal(map[string]string{"output_dir": dir})
		over.Options.Writer = b
	}
	cfg = cfgpkg.Merge(cfg, over)

	// 无输入：终端 → 交互；否则 STDIN
	if len(cfg.Inputs) == 0 {
		if cfg.Components.Reader == cfgpkg.Defaults().Components.Reader && stdinIsTerminal() {
			cfg.Components.Reader = "prompt"
		} else {
			cfg.Inputs = []string{"-"}
		}
	}
	return cfg, nil
}

func dumpConfig(w io.Writer, c cfgpkg.Config) {
	b, err := cfgpkg.MarshalYAML(c)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "有效配置:\n%s", b)
}

// initConfig 生成 config.yaml 与 .env 模板；已存在的文件跳过，不覆盖。
func initConfig(dir string, stderr io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := cfgpkg.MarshalYAML(cfgpkg.DefaultTemplateConfig())
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	created, err := writeIfAbsent(cfgPath, b)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(stderr, "已存在，跳过: %s\n", cfgPath)
	}
	// .env 失败不影响主配置
	if _, err := writeIfAbsent(filepath.Join(dir, ".env"), []byte(cfgpkg.DotEnvTemplate())); err != nil {
		fmt.Fprintf(stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
	}
	return nil
}

func writeIfAbsent(path string, b []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return false, err
	}
	return true, nil
}

// preflightCheckOutputDir: fs writer 启动前检查输出目录可写性。
// 目录存在则尝试创建并删除临时文件；不存在则检查父目录。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	if strings.TrimSpace(cfg.Components.Writer) != "fs" {
		return nil
	}
	var wopts struct {
		OutputDir string `json:"output_dir"`
	}
	if len(cfg.Options.Writer) > 0 {
		_ = json.Unmarshal(cfg.Options.Writer, &wopts)
	}
	dir := strings.TrimSpace(wopts.OutputDir)
	if dir == "" {
		// 交给装配阶段按实现报错
		return nil
	}
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	case err == nil:
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case !os.IsNotExist(err):
		return err
	}
	parent := filepath.Dir(filepath.Clean(dir))
	for {
		pst, err := os.Stat(parent)
		if err == nil {
			if !pst.IsDir() {
				return fmt.Errorf("父路径不是目录: %s", parent)
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		// 多级不存在：继续向上
		next := filepath.Dir(parent)
		if next == parent {
			return fmt.Errorf("无法确定父目录: %s", dir)
		}
		parent = next
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	return os.RemoveAll(tmpd)
}
