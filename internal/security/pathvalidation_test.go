package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "report.json"), dir))
	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "sub", "report.json"), dir))

	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(dir, "..", "escape.json"), dir))
	assert.Error(t, ValidatePathWithinDirectory("/etc/passwd", dir))
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	t.Parallel()
	safe := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(safe, "link")
	require.NoError(t, os.Symlink(outside, link))

	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(link, "file.json"), safe))
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	t.Parallel()
	a := t.TempDir()
	b := t.TempDir()

	assert.NoError(t, ValidatePathWithinAllowedDirs(filepath.Join(b, "x.json"), []string{a, b}))
	assert.Error(t, ValidatePathWithinAllowedDirs(filepath.Join(t.TempDir(), "x.json"), []string{a, b}))
	assert.Error(t, ValidatePathWithinAllowedDirs("x.json", nil))
}

func TestValidateExportPath(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateExportPath(filepath.Join(os.TempDir(), "out.json")))
	assert.Error(t, ValidateExportPath("/etc/shadow"))
}
