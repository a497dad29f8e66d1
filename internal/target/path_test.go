package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandVars(t *testing.T) {
	t.Setenv("WHOLOCKED_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{"$WHOLOCKED_TEST_DIR/a.txt", "/srv/data/a.txt"},
		{"${WHOLOCKED_TEST_DIR}/a.txt", "/srv/data/a.txt"},
		{"%WHOLOCKED_TEST_DIR%/a.txt", "/srv/data/a.txt"},
		{"%WHOLOCKED_TEST_UNSET%/a.txt", "%WHOLOCKED_TEST_UNSET%/a.txt"},
		{"$WHOLOCKED_TEST_UNSET/a.txt", "$WHOLOCKED_TEST_UNSET/a.txt"},
		{"plain/path", "plain/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandVars(tt.in), tt.in)
	}
}

func TestResolvePathAbsolute(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolvePath("some/../file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "file.txt"), got)
}

func TestResolvePathEmpty(t *testing.T) {
	_, err := ResolvePath("  ")
	assert.Error(t, err)
}

func TestCanonicalKeyFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(real, 0o755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	assert.Equal(t, CanonicalKey(real), CanonicalKey(link))
}

func TestCanonicalKeyMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "..", "gone")
	assert.Equal(t, filepath.Clean(missing), CanonicalKey(missing))
}
