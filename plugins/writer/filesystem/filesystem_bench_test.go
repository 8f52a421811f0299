package filesystem

import (
	"bytes"
	"context"
	"testing"

	"vigcrack/pkg/contract"
)

// BenchmarkWrite 测量单个报告文件的原子写入开销。
func BenchmarkWrite(b *testing.B) {
	data := []byte("Suggested Passkey: LEMON\n")
	w, err := New(&Options{OutputDir: b.TempDir()})
	if err != nil {
		b.Fatalf("创建 Writer 失败: %v", err)
	}
	id := contract.ArtifactID("out.key.txt")
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Write(ctx, id, bytes.NewReader(data)); err != nil {
			b.Fatalf("写入失败: %v", err)
		}
	}
}
