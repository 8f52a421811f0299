package contract

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeFileID 验证路径规范化逻辑。
func TestNormalizeFileID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"本地分隔符", filepath.Join("a", "b", "c"), "a/b/c"},
		{"父目录回退", "./x/../y", "y"},
		{"空串", "", "."},
		{"Windows路径", "C:\\Users\\test\\cipher.txt", "C:/Users/test/cipher.txt"},
		{"清理多余斜杠", "path//to///file.txt", "path/to/file.txt"},
		{"混合分隔符", "C:\\Users/test\\Documents/file.txt", "C:/Users/test/Documents/file.txt"},
		{"中文路径", "项目\\密文/测试.txt", "项目/密文/测试.txt"},
		{"复杂父目录", "a\\b\\c\\..\\..\\..\\..\\d", "../d"},
		{"根路径", "/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(NormalizeFileID(tt.input)))
		})
	}
}

// 退化输入同时属于估计失败
func TestDegenerateIsEstimation(t *testing.T) {
	assert.ErrorIs(t, ErrDegenerateInput, ErrEstimation)
	assert.NotErrorIs(t, ErrEstimation, ErrDegenerateInput)
	assert.NotErrorIs(t, ErrDetection, ErrEstimation)
}

func TestStageError(t *testing.T) {
	err := WrapStage(StageEstimate, fmt.Errorf("%w: no repeated grams", ErrEstimation))
	require.Error(t, err)
	assert.Equal(t, "estimate: key length estimation failed: no repeated grams", err.Error())
	assert.ErrorIs(t, err, ErrEstimation)
	assert.Equal(t, StageEstimate, StageOf(err))

	// 外层再包装后仍可取回阶段
	outer := fmt.Errorf("file a.txt: %w", err)
	assert.Equal(t, StageEstimate, StageOf(outer))

	var se *StageError
	require.True(t, errors.As(outer, &se))
	assert.Equal(t, StageEstimate, se.Stage)

	assert.NoError(t, WrapStage(StageDetect, nil))
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
}

func TestStageErrorNilSafe(t *testing.T) {
	var se *StageError
	assert.Equal(t, "<nil>", se.Error())
	assert.Nil(t, se.Unwrap())
}
