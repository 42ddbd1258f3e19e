package vos

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestLookPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/usr/bin/tool", []byte("#!/bin/sh"), 0755)
	afero.WriteFile(fsys, "/usr/bin/data", []byte("x"), 0644)
	afero.WriteFile(fsys, "/work/bin/local", []byte("#!/bin/sh"), 0755)
	fsys.MkdirAll("/usr/bin/dir", 0755)

	env := NewMapEnvFromEnvList([]string{"PATH=/opt/bin:/usr/bin:bin"})

	cases := map[string]struct {
		file    string
		want    string
		wantErr error
	}{
		"on path":          {file: "tool", want: "/usr/bin/tool"},
		"relative element": {file: "local", want: "/work/bin/local"},
		"missing":          {file: "nope", wantErr: ErrNotFound},
		"not executable":   {file: "data", wantErr: ErrNotFound},
		"slash absolute":   {file: "/usr/bin/tool", want: "/usr/bin/tool"},
		"slash relative":   {file: "./bin/local", want: "/work/bin/local"},
		"slash missing":    {file: "/usr/bin/nope", wantErr: ErrNotFound},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := LookPath(fsys, env, "/work", tc.file)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewWorkdirFs(t *testing.T) {
	base := afero.NewMemMapFs()
	wd := "/a"
	fsys := NewWorkdirFs(base, func() string { return wd })

	assert.NoError(t, afero.WriteFile(fsys, "note.txt", []byte("first"), 0644))
	wd = "/b"
	assert.NoError(t, afero.WriteFile(fsys, "note.txt", []byte("second"), 0644))
	assert.NoError(t, afero.WriteFile(fsys, "/abs.txt", []byte("abs"), 0644))

	got, err := afero.ReadFile(base, "/a/note.txt")
	assert.NoError(t, err)
	assert.Equal(t, "first", string(got))

	got, err = afero.ReadFile(base, "/b/note.txt")
	assert.NoError(t, err)
	assert.Equal(t, "second", string(got))

	exists, err := afero.Exists(base, "/abs.txt")
	assert.NoError(t, err)
	assert.True(t, exists)
}
