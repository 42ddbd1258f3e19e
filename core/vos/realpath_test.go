package vos

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealpath_memFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/a/b/c", 0o755))

	cases := map[string]string{
		"b/c":           "/a/b/c",
		"./b/../b/c/":   "/a/b/c",
		"/a//b":         "/a/b",
		"..":            "/",
		"../../../../a": "/a",
		"":              "/a",
	}
	for in, want := range cases {
		got, err := Realpath(fsys, "/a", in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Realpath(fsys, "/a", "missing/b")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRealpath_symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	fsys := afero.NewOsFs()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "real", "inner"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "abs")))
	require.NoError(t, os.Symlink("real/inner", filepath.Join(root, "rel")))
	require.NoError(t, os.Symlink("loop", filepath.Join(root, "loop")))

	got, err := Realpath(fsys, root, "abs/inner")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "inner"), got)

	got, err = Realpath(fsys, root, "rel/..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real"), got)

	_, err = Realpath(fsys, root, "loop")
	assert.ErrorIs(t, err, errTooManyLinks)
}
