// Package config loads the server configuration. Configuration files are
// Jsonnet; the external variable "verbose" carries the -v count so a file
// can pick its log level from the command line.
package config

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/go-jsonnet"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const DefaultMaxInferenceDepth = 32

type Config struct {
	LogLevel          string   `json:"logLevel"`
	PythonLanguageIDs []string `json:"pythonLanguageIds"`
	PythonExtensions  []string `json:"pythonExtensions"`
	MaxInferenceDepth int      `json:"maxInferenceDepth"`
}

func Default() *Config {
	return &Config{
		LogLevel:          "INFO",
		PythonLanguageIDs: []string{"python"},
		PythonExtensions:  []string{".py", ".pyi", ".pyw"},
		MaxInferenceDepth: DefaultMaxInferenceDepth,
	}
}

// Load evaluates the Jsonnet file at path. An empty path yields the
// defaults.
func Load(path string, verbose int) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	output, err := newVM(verbose).EvaluateFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", path)
	}
	return decode(output)
}

// Evaluate is Load for in-memory Jsonnet source.
func Evaluate(filename string, snippet string, verbose int) (*Config, error) {
	output, err := newVM(verbose).EvaluateAnonymousSnippet(filename, snippet)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", filename)
	}
	return decode(output)
}

func newVM(verbose int) *jsonnet.VM {
	vm := jsonnet.MakeVM()
	vm.ExtVar("verbose", strconv.Itoa(verbose))
	return vm
}

func decode(output string) (*Config, error) {
	config := Default()
	if err := json.Unmarshal([]byte(output), config); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *Config) Validate() error {
	if _, err := config.Level(); err != nil {
		return err
	}
	if config.MaxInferenceDepth <= 0 {
		return errors.Errorf("maxInferenceDepth must be positive, got %d", config.MaxInferenceDepth)
	}
	for _, extension := range config.PythonExtensions {
		if !strings.HasPrefix(extension, ".") {
			return errors.Errorf("python extension %q must start with a dot", extension)
		}
	}
	return nil
}

func (config *Config) Level() (logging.Level, error) {
	level, err := logging.LogLevel(config.LogLevel)
	if err != nil {
		return logging.INFO, errors.Wrapf(err, "log level %q", config.LogLevel)
	}
	return level, nil
}

// IsPython reports whether a document with the given language id and URI
// should be parsed as Python.
func (config *Config) IsPython(languageID string, uri string) bool {
	for _, id := range config.PythonLanguageIDs {
		if languageID == id {
			return true
		}
	}
	for _, extension := range config.PythonExtensions {
		if strings.HasSuffix(uri, extension) {
			return true
		}
	}
	return false
}
