package vos

import (
	"os"
	"strings"
)

// CopyEnv copies all the environment variables from src to dst.
func CopyEnv(dst VEnv, src EnvironFetcher) error {
	for _, e := range src.Environ() {
		key, value := splitEnv(e)
		if err := dst.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

func splitEnv(e string) (key, value string) {
	split := strings.SplitN(e, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return key, value
}

// NewMapEnv creates a new, empty environment.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFrom creates a new environment with a copy of the environment
// variables in the original environment.
func NewMapEnvFrom(src EnvironFetcher) *MapEnv {
	return NewMapEnvFromEnvList(src.Environ())
}

// NewMapEnvFromEnvList creates an environment from "key=value" pairs. Later
// duplicates win.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}

	for _, e := range environ {
		key, value := splitEnv(e)
		// Ignore error, it will never be set for MapEnv.
		_ = out.Setenv(key, value)
	}

	return out
}

// MapEnv is an in-memory VEnv that remembers the order variables were set in.
// Setting an existing variable moves it to the end.
//
// MapEnv isn't safe for concurrent use, it's owned by exactly one session.
type MapEnv struct {
	keys []string
	env  map[string]string
}

var _ VEnv = (*MapEnv)(nil)

// Unsetenv implements VEnv.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	if _, ok := m.env[key]; !ok {
		return nil
	}
	delete(m.env, key)
	m.removeKey(key)
	return nil
}

func (m *MapEnv) removeKey(key string) {
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return
		}
	}
}

// Setenv implements VEnv.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	if m.env == nil {
		m.env = make(map[string]string)
	}
	if _, ok := m.env[key]; ok {
		m.removeKey(key)
	}
	m.keys = append(m.keys, key)
	m.env[key] = value
	return nil
}

// LookupEnv implements VEnv.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	val, ok := m.env[key]
	if val == "" {
		return "", false
	}
	return val, ok
}

// Getenv implements VEnv.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv implements VEnv.ExpandEnv.
func (m *MapEnv) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ implements VEnv.Environ, variables are listed in the order they
// were last set. Empty variables are included so children see them.
func (m *MapEnv) Environ() []string {
	env := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		env = append(env, k+"="+m.env[k])
	}
	return env
}

// Len returns the number of variables, including empty ones.
func (m *MapEnv) Len() int {
	return len(m.keys)
}

// Clone returns an independent copy of the environment.
func (m *MapEnv) Clone() *MapEnv {
	out := &MapEnv{
		keys: append([]string(nil), m.keys...),
		env:  make(map[string]string, len(m.env)),
	}
	for k, v := range m.env {
		out.env[k] = v
	}
	return out
}
