// SPDX-License-Identifier: Apache-2.0
// Package config holds the launcher's key/value configuration files and its
// process settings.
//
// A configuration file is a flat JSON object. It is read as JSONC, so
// comments and trailing commas are tolerated, and scalar values of any JSON
// type are kept as their literal text. Files are written back as indented
// JSON.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/jsonc"

	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Well-known keys.
const (
	KeyMinRAM      = "min_ram"
	KeyMaxRAM      = "max_ram"
	KeyJavaPath    = "current_java_path"
	KeyPlayerName  = "auth_player_name"
	KeyAccessToken = "auth_access_token"
	KeyJVMArgs     = "jvm_args"
	KeyAuthUUID    = "auth_uuid"
)

const (
	DefaultMinRAM      = "512"
	DefaultMaxRAM      = "2048"
	defaultPlayerName  = "dev"
	defaultAccessToken = "0"
)

// Config is a string-keyed configuration map.
type Config map[string]string

// Get returns the value of key.
func (c Config) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Require returns the value of key or a ConfigError if it is absent.
func (c Config) Require(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", &crerrors.ConfigError{Key: key, Err: crerrors.ErrMissingConfigKey}
	}
	return v, nil
}

func (c Config) Set(key, value string) { c[key] = value }

func (c Config) Remove(key string) { delete(c, key) }

// Keys returns the keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge layers override on top of base key by key. Neither input is
// modified.
func Merge(base, override Config) Config {
	out := make(Config, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Decode parses JSONC bytes into a Config.
func Decode(data []byte) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	cfg := make(Config, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			cfg[k] = val
		case json.Number:
			cfg[k] = val.String()
		case bool:
			cfg[k] = fmt.Sprint(val)
		case nil:
			// null leaves the key unset
		default:
			return nil, fmt.Errorf("key %q: value must be a string, number or bool", k)
		}
	}
	return cfg, nil
}

// Load reads the configuration file at path. A missing file is an empty
// Config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return nil, &crerrors.FSError{Op: "read", Path: path, Err: err}
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, &crerrors.ConfigError{Err: fmt.Errorf("%s: %w", path, err)}
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &crerrors.ConfigError{Err: err}
	}
	return download.WriteFile(path, append(data, '\n'))
}

// Defaults is the configuration written on first run. javaPath is left out
// when empty.
func Defaults(javaPath string) Config {
	cfg := Config{
		KeyMinRAM:      DefaultMinRAM,
		KeyMaxRAM:      DefaultMaxRAM,
		KeyPlayerName:  defaultPlayerName,
		KeyAccessToken: defaultAccessToken,
	}
	if javaPath != "" {
		cfg[KeyJavaPath] = javaPath
	}
	return cfg
}

// LoadGlobal reads the global configuration, creating it with Defaults on
// first run.
func LoadGlobal(path, javaPath string, logger hclog.Logger) (Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &crerrors.FSError{Op: "stat", Path: path, Err: err}
	}

	cfg := Defaults(javaPath)
	if javaPath == "" {
		logger.Warn("⚠️ No Java installation found, current_java_path left unset")
	}
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	logger.Info("⚙️ Created global config", "path", path)
	return cfg, nil
}
