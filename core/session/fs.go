package session

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/josephlewis42/sesh/core/vos"
	"github.com/spf13/afero"
)

// Fs returns the session's filesystem with relative paths resolved against
// the session directory.
func (s *Session) Fs() afero.Fs {
	return vos.NewWorkdirFs(s.fs, func() string {
		return s.state.Dir
	})
}

// Absolute resolves p against the session directory.
func (s *Session) Absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.state.Dir, p)
}

// Canonical returns the absolute path of p with symbolic links resolved.
// p must exist.
func (s *Session) Canonical(p string) (string, error) {
	out, err := vos.Realpath(s.fs, s.state.Dir, p)
	return out, WithContext(err, "canonicalizing %s", p)
}

// TestDir reports whether p is a directory.
func (s *Session) TestDir(p string) bool {
	ok, err := afero.IsDir(s.Fs(), p)
	return err == nil && ok
}

// TestFile reports whether p is a regular file.
func (s *Session) TestFile(p string) bool {
	fi, err := s.Fs().Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// TestExists reports whether anything exists at p.
func (s *Session) TestExists(p string) bool {
	ok, err := afero.Exists(s.Fs(), p)
	return err == nil && ok
}

// MkdirTree creates p and any missing parents. It does nothing if p
// already exists.
func (s *Session) MkdirTree(p string) error {
	s.Trace("mkdir -p " + quoteArg(p))
	return WithContext(s.Fs().MkdirAll(p, 0o755), "mkdir -p %s", p)
}

// Mkdir creates the directory p, its parent must exist.
func (s *Session) Mkdir(p string) error {
	s.Trace("mkdir " + quoteArg(p))
	return WithContext(s.Fs().Mkdir(p, 0o755), "mkdir %s", p)
}

// Rm removes the file or empty directory p.
func (s *Session) Rm(p string) error {
	s.Trace("rm " + quoteArg(p))
	return WithContext(s.Fs().Remove(p), "rm %s", p)
}

// RmF removes p, doing nothing if it doesn't exist.
func (s *Session) RmF(p string) error {
	s.Trace("rm -f " + quoteArg(p))
	err := s.Fs().Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return WithContext(err, "rm -f %s", p)
}

// RmTree removes p and everything under it.
func (s *Session) RmTree(p string) error {
	s.Trace("rm -rf " + quoteArg(p))
	return WithContext(s.Fs().RemoveAll(p), "rm -rf %s", p)
}

// Cp copies the file src to dst. If dst is a directory the copy is placed
// inside it.
func (s *Session) Cp(src, dst string) error {
	s.Trace("cp " + quoteArg(src) + " " + quoteArg(dst))
	fsys := s.Fs()
	if s.TestDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	return WithContext(copyFile(fsys, src, dst), "cp %s %s", src, dst)
}

// CpTree recursively copies src to dst. If dst is an existing directory
// src is copied inside it.
func (s *Session) CpTree(src, dst string) error {
	s.Trace("cp -r " + quoteArg(src) + " " + quoteArg(dst))
	fsys := s.Fs()
	if s.TestDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	err := afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyFile(fsys, path, target)
	})
	return WithContext(err, "cp -r %s %s", src, dst)
}

// Mv moves src to dst. If dst is a directory src is moved inside it.
func (s *Session) Mv(src, dst string) error {
	s.Trace("mv " + quoteArg(src) + " " + quoteArg(dst))
	if s.TestDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	return WithContext(s.Fs().Rename(src, dst), "mv %s %s", src, dst)
}

// ReadFile reads p as text. Malformed UTF-8 is replaced rather than
// reported.
func (s *Session) ReadFile(p string) (string, error) {
	s.Trace("cat " + quoteArg(p))
	b, err := afero.ReadFile(s.Fs(), p)
	if err != nil {
		return "", WithContext(err, "reading %s", p)
	}
	return DecodeLenient(b), nil
}

// WriteFile replaces the contents of p with text.
func (s *Session) WriteFile(p, text string) error {
	s.Trace("write " + quoteArg(p))
	return WithContext(afero.WriteFile(s.Fs(), p, []byte(text), 0o644), "writing %s", p)
}

// AppendFile adds text to the end of p, creating it if needed.
func (s *Session) AppendFile(p, text string) error {
	s.Trace("append " + quoteArg(p))
	f, err := s.Fs().OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return WithContext(err, "appending to %s", p)
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return WithContext(err, "appending to %s", p)
	}
	return WithContext(f.Close(), "appending to %s", p)
}

// Ls returns the names of the entries in dir, sorted.
func (s *Session) Ls(dir string) ([]string, error) {
	s.Trace("ls " + quoteArg(dir))
	infos, err := afero.ReadDir(s.Fs(), dir)
	if err != nil {
		return nil, WithContext(err, "ls %s", dir)
	}
	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names, nil
}

// Find returns every path under dir, not including dir itself, in lexical
// order. Paths are relative to the session directory if dir is.
func (s *Session) Find(dir string) ([]string, error) {
	s.Trace("find " + quoteArg(dir))
	var out []string
	err := afero.Walk(s.Fs(), dir, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != dir {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, WithContext(err, "find %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s: is a directory", src)
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
