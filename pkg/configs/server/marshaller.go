package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// load protocaas server config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *Config, error:
//
//	When loading success, returns `(*Config, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadConfig(filepath string) (*Config, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal parses config.
//
// `${VAR}` and `$VAR` in conf are expanded with environment variables before parsing.
func Unmarshal(conf []byte) (out *Config, err error) {
	expanded := os.ExpandEnv(string(conf))

	var _out *ConfigMarshall
	if err := yaml.Unmarshal([]byte(expanded), &_out); err != nil {
		return nil, err
	}
	if _out == nil {
		return nil, fmt.Errorf("config is empty")
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()
	return TrySeal(_out), nil
}
