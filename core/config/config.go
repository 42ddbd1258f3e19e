package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

// Configuration holds the defaults a session starts with.
type Configuration struct {
	EchoStdout        bool `json:"echo_stdout"`
	EchoCommands      bool `json:"echo_commands"`
	Tracing           bool `json:"tracing"`
	EscapeArgs        bool `json:"escape_args"`
	FailOnNonzeroExit bool `json:"fail_on_nonzero_exit"`

	Shell string `json:"shell" validate:"required"`

	LogDir       string `json:"log_dir" validate:"required"`
	PersistTrace bool   `json:"persist_trace"`

	LogLevel  string `json:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `json:"log_format" validate:"required,oneof=console json"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
