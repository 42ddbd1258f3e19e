package tracelog

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersist(t *testing.T) {
	t.Run("creates dir and starts at one", func(t *testing.T) {
		fsys := afero.NewMemMapFs()

		path, err := Persist(fsys, "/work/.sesh", "trace one")
		require.NoError(t, err)
		assert.Equal(t, "/work/.sesh/1.txt", path)

		contents, err := Read(fsys, "/work/.sesh", 1)
		require.NoError(t, err)
		assert.Equal(t, "trace one", contents)
	})

	t.Run("one past the highest", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		afero.WriteFile(fsys, "/logs/2.txt", nil, 0644)
		afero.WriteFile(fsys, "/logs/9.txt", nil, 0644)
		afero.WriteFile(fsys, "/logs/10", nil, 0644)
		afero.WriteFile(fsys, "/logs/notes.txt", nil, 0644)
		fsys.MkdirAll("/logs/99", 0755)

		path, err := Persist(fsys, "/logs", "trace")
		require.NoError(t, err)
		assert.Equal(t, "/logs/11.txt", path)
	})

	t.Run("read only", func(t *testing.T) {
		fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())

		_, err := Persist(fsys, "/logs", "trace")
		assert.Error(t, err)
	})
}

func TestList(t *testing.T) {
	fsys := afero.NewMemMapFs()

	entries, err := List(fsys, "/missing")
	assert.NoError(t, err)
	assert.Empty(t, entries)

	for _, text := range []string{"a", "bb", "ccc"} {
		_, err := Persist(fsys, "/logs", text)
		require.NoError(t, err)
	}

	entries, err = List(fsys, "/logs")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Number)
		assert.Equal(t, int64(i+1), e.Size)
	}
}
