package text

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigcrack/pkg/contract"
)

func render(t *testing.T, f *Text, rep contract.Report, multi bool) string {
	t.Helper()
	r, err := f.Format(context.Background(), rep, multi)
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestTextFormat(t *testing.T) {
	rep := contract.Report{FileID: "in/secret.txt", Key: "LEMON", KeyLength: 5}
	assert.Equal(t, "Suggested Passkey: LEMON\n", render(t, New(nil), rep, false))
	assert.Equal(t, "in/secret.txt: Suggested Passkey: LEMON\n", render(t, New(nil), rep, true))
	assert.Equal(t, "Key: LEMON\n", render(t, New(&Options{Label: " Key "}), rep, false))
	assert.Equal(t, ".key.txt", New(nil).Ext())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Format(ctx, rep, false)
	assert.ErrorIs(t, err, context.Canceled)
}
