package guide

import (
	"os"
	"path/filepath"
	"testing"

	"spikereview/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out := string(Render([]byte("## Units\n\nClick **a card**.\n\n<script>alert(1)</script>\n")))
	assert.Contains(t, out, `<h2 id="units">Units</h2>`)
	assert.Contains(t, out, "<strong>a card</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestLoadDefault(t *testing.T) {
	out, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, string(out), "ISI (ms)")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Lab rules\n"), 0o644))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Lab rules")

	_, err = Load(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
}
