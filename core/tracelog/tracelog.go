// Package tracelog stores the trace logs of failed sessions as numbered
// files so they can be inspected after the process is gone.
package tracelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// FileExt is appended to every persisted log.
const FileExt = ".txt"

// Entry is a persisted log.
type Entry struct {
	Number int
	Path   string
	Size   int64
}

// Persist writes text to dir/N.txt where N is one more than the highest
// numbered log already in dir, or 1 if there are none. The directory is
// created if it doesn't exist. It returns the path that was written.
func Persist(fsys afero.Fs, dir, text string) (string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	entries, err := List(fsys, dir)
	if err != nil {
		return "", err
	}

	next := 1
	if len(entries) > 0 {
		next = entries[len(entries)-1].Number + 1
	}

	name := filepath.Join(dir, fmt.Sprintf("%d%s", next, FileExt))
	fd, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	if _, err := fd.WriteString(text); err != nil {
		return "", err
	}
	return name, fd.Close()
}

// List returns the numbered logs in dir in ascending order. A missing
// directory has no logs.
func List(fsys afero.Fs, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(fsys, dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}

	var out []Entry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		n, ok := parseNumber(info.Name())
		if !ok {
			continue
		}
		out = append(out, Entry{
			Number: n,
			Path:   filepath.Join(dir, info.Name()),
			Size:   info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Number < out[j].Number
	})
	return out, nil
}

// Read returns the contents of log number n in dir.
func Read(fsys afero.Fs, dir string, n int) (string, error) {
	contents, err := afero.ReadFile(fsys, filepath.Join(dir, fmt.Sprintf("%d%s", n, FileExt)))
	if err != nil {
		return "", err
	}
	return string(contents), nil
}

// parseNumber extracts N from names like "N" or "N.txt".
func parseNumber(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	n, err := strconv.Atoi(base)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
