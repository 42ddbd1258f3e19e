package vos

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(fsys afero.Fs, file string) error {
	d, err := fsys.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH variable of env rather than the host's. If file contains a slash,
// it is tried directly relative to dir and the PATH is not consulted. The
// result is always absolute.
func LookPath(fsys afero.Fs, env VEnv, dir, file string) (string, error) {
	if strings.Contains(file, "/") {
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		if err := findExecutable(fsys, file); err != nil {
			return "", err
		}
		return file, nil
	}
	for _, elem := range filepath.SplitList(env.Getenv("PATH")) {
		if elem == "" {
			// Unix shell semantics: path element "" means "."
			elem = "."
		}
		if !filepath.IsAbs(elem) {
			elem = filepath.Join(dir, elem)
		}
		path := filepath.Join(elem, file)
		if err := findExecutable(fsys, path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
