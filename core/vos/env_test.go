package vos

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, EnvList{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"A=1", "B=2", "A=3"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"A\"): %q\n", env.Getenv("A"))

	// Output: Environ(): ["B=2" "A=3"]
	// Getenv("A"): "3"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("EMPTY", "")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("EMPTY")
	fmt.Println("Empty", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
	// Empty val:  ok: false
}

func TestMapEnv_Clone(t *testing.T) {
	orig := NewMapEnvFromEnvList([]string{"A=1", "B=2"})
	clone := orig.Clone()

	clone.Setenv("A", "changed")
	clone.Unsetenv("B")
	clone.Setenv("C", "3")

	assert.Equal(t, []string{"A=1", "B=2"}, orig.Environ())
	assert.Equal(t, []string{"A=changed", "C=3"}, clone.Environ())
}

func TestMapEnv_ExpandEnv(t *testing.T) {
	env := NewMapEnvFromEnvList([]string{"NAME=world"})

	assert.Equal(t, "hello world", env.ExpandEnv("hello $NAME"))
	assert.Equal(t, "hello world!", env.ExpandEnv("hello ${NAME}!"))
	assert.Equal(t, "missing: ", env.ExpandEnv("missing: $NOPE"))
}
