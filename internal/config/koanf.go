// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces Emotive environment variables.
const envPrefix = "EMOTIVE_"

// sliceKeys lists configuration keys that accept comma-separated values from
// the environment.
var sliceKeys = []string{
	"api.cors_origins",
}

// Load builds the configuration from defaults, an optional YAML file, and the
// environment, in increasing precedence.
//
// The file path is taken from the CONFIG_PATH environment variable when set,
// otherwise the first existing entry of DefaultConfigPaths is used. A missing
// file is not an error; defaults and environment still apply.
//
// Environment variables map to configuration keys by stripping the EMOTIVE_
// prefix, lowercasing, and treating a double underscore as a section
// separator, so EMOTIVE_SERVER__READ_TIMEOUT sets server.read_timeout and
// EMOTIVE_ENGINE__DIAGNOSIS__NEGATIVE_BOOST sets
// engine.diagnosis.negative_boost.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit configuration file path. An empty path
// skips the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default configuration: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading configuration file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment configuration: %w", err)
	}

	normalizeSliceKeys(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile resolves the configuration file path, or "" when none
// exists.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps EMOTIVE_SECTION__KEY_NAME to section.key_name.
func envTransform(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// normalizeSliceKeys splits comma-separated string values into slices for
// keys that unmarshal into []string. YAML lists pass through untouched.
func normalizeSliceKeys(k *koanf.Koanf) {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		// Set cannot fail for an in-memory provider chain already holding
		// the key.
		_ = k.Set(key, parts)
	}
}
