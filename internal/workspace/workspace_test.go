package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	h, err := Ensure(root)
	require.NoError(t, err)

	for _, d := range []string{"logs", "traces", "reports", "scenarios"} {
		info, err := os.Stat(filepath.Join(root, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}

	assert.Equal(t, filepath.Join(root, "reports", "a.json"), h.Path("reports", "a.json"))
	assert.Equal(t, filepath.Join(root, "traces", "abc.log"), h.TracePath("abc"))
}

func TestEnsureIsIdempotent(t *testing.T) {
	root := t.TempDir()
	_, err := Ensure(root)
	require.NoError(t, err)
	_, err = Ensure(root)
	assert.NoError(t, err)
}

func TestEnsureFailsOnFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))
	_, err := Ensure(root)
	assert.Error(t, err)
}
