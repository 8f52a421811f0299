package stress

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/require"

	cfgpkg "vigcrack/internal/config"
	"vigcrack/internal/pipeline"
	"vigcrack/pkg/cracker"
	"vigcrack/pkg/language"
)

var keys = []string{"LEMON", "KEY", "CIPHER"}

// baseConfig 构造可运行的最小配置：目录输入，fs 输出，语言固定英语。
func baseConfig(input, outDir string) cfgpkg.Config {
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Inputs = []string{input}
	cfg.Language = "english"
	cfg.Components.Reader = "fs"
	cfg.Components.Writer = "fs"
	cfg.Logging.Level = "error"
	cfg.Options.Writer = json.RawMessage(fmt.Sprintf(`{"output_dir":%q,"atomic":false,"flat":true}`, outDir))
	return cfg
}

// runPipeline 执行完整流水线并返回汇总。
func runPipeline(cfg cfgpkg.Config) (pipeline.Summary, error) {
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}
	return pipeline.RunSummary(context.Background(), comp, set, nil)
}

// TestStress 在不同输入规模下运行流水线并记录延迟统计。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress skipped in -short")
	}
	p, err := language.DefaultTable().Profile(language.English)
	require.NoError(t, err)
	plain := loadPlain(t, filepath.Join("..", "testdata", "gettysburg.txt"), p)

	for _, n := range []int{1, 8, 32, 64} {
		t.Run(fmt.Sprintf("inputs_%d", n), func(t *testing.T) {
			inDir := t.TempDir()
			want := map[string]string{}
			for i := 0; i < n; i++ {
				key := keys[i%len(keys)]
				ct, err := cracker.Encrypt(plain, key, p)
				require.NoError(t, err)
				name := fmt.Sprintf("c%03d.txt", i)
				require.NoError(t, os.WriteFile(filepath.Join(inDir, name), []byte(string(ct)), 0o644))
				want[name] = key
			}

			const runs = 5
			latencies := make([]time.Duration, 0, runs)
			for i := 0; i < runs; i++ {
				outDir := t.TempDir()
				start := time.Now()
				sum, err := runPipeline(baseConfig(inDir, outDir))
				dur := time.Since(start)
				require.NoError(t, err, "run %d", i)
				require.Equal(t, n, sum.Files)
				for id, key := range sum.Keys {
					require.Equal(t, want[filepath.Base(string(id))], key, string(id))
				}
				latencies = append(latencies, dur)
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			var total time.Duration
			for _, d := range latencies {
				total += d
			}
			avg := total / time.Duration(len(latencies))
			idx := int(math.Ceil(float64(len(latencies))*0.95)) - 1
			if idx < 0 {
				idx = 0
			}
			t.Logf("输入%d 平均%v 95%%延迟%v", n, avg, latencies[idx])
		})
	}
}

func loadPlain(t *testing.T, path string, p language.Profile) []rune {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []rune
	for _, r := range string(b) {
		r = unicode.ToUpper(r)
		if p.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}
