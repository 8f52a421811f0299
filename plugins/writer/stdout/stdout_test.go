package stdout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutWritesInOrder(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)
	ctx := context.Background()
	require.NoError(t, w.Write(ctx, "a", strings.NewReader("a.txt: Suggested Passkey: KEY\n")))
	require.NoError(t, w.Write(ctx, "b", strings.NewReader("b.txt: Suggested Passkey: LEMON\n")))
	assert.Equal(t, "a.txt: Suggested Passkey: KEY\nb.txt: Suggested Passkey: LEMON\n", sb.String())

	c, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, w.Write(c, "c", strings.NewReader("x")), context.Canceled)
	assert.NotNil(t, New(nil).w)
}
