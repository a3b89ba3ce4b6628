/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
// Minimal schema to start; can evolve with config_version migrations.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields should be preserved when possible (yaml handles this by ignoring extras on unmarshal).

// DraftingConfig holds defaults applied to newly created documents and to
// engine calls whose parameters the caller left unset. All lengths are in
// abstract drawing units.
type DraftingConfig struct {
	UnitsPerCm     float64 `yaml:"units_per_cm"`
	SeamAllowance  float64 `yaml:"seam_allowance"`
	CurveSteps     int     `yaml:"curve_steps"`
	CircleSegments int     `yaml:"circle_segments"`
}

type SnappingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Threshold     float64 `yaml:"threshold"`
	SnapToEdges   bool    `yaml:"snap_to_edges"`
	SnapToCenters bool    `yaml:"snap_to_centers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Drafting      DraftingConfig `yaml:"drafting"`
	Snapping      SnappingConfig `yaml:"snapping"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Drafting:      DraftingConfig{UnitsPerCm: 10, SeamAllowance: 10, CurveSteps: 24, CircleSegments: 36},
		Snapping:      SnappingConfig{Enabled: true, Threshold: 8, SnapToEdges: true, SnapToCenters: true},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvSeamAllowance  = "GPS_SEAM_ALLOWANCE"
	EnvCurveSteps     = "GPS_CURVE_STEPS"
	EnvCircleSegments = "GPS_CIRCLE_SEGMENTS"
	EnvSnapEnabled    = "GPS_SNAP"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GPS_LOG_LEVEL"
	EnvLogFormat = "GPS_LOG_FORMAT"
	EnvLogSource = "GPS_LOG_SOURCE"
	EnvLogFile   = "GPS_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoPatternStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoPatternStudio")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gopatternstudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Drafting.UnitsPerCm > 0 {
		dst.Drafting.UnitsPerCm = src.Drafting.UnitsPerCm
	}
	if src.Drafting.SeamAllowance > 0 {
		dst.Drafting.SeamAllowance = src.Drafting.SeamAllowance
	}
	if src.Drafting.CurveSteps > 0 {
		dst.Drafting.CurveSteps = src.Drafting.CurveSteps
	}
	if src.Drafting.CircleSegments > 0 {
		dst.Drafting.CircleSegments = src.Drafting.CircleSegments
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Snapping.Enabled = src.Snapping.Enabled
	dst.Snapping.SnapToEdges = src.Snapping.SnapToEdges
	dst.Snapping.SnapToCenters = src.Snapping.SnapToCenters
	if src.Snapping.Threshold > 0 {
		dst.Snapping.Threshold = src.Snapping.Threshold
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSeamAllowance)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Drafting.SeamAllowance = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCurveSteps)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Drafting.CurveSteps = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCircleSegments)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Drafting.CircleSegments = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapEnabled)); v != "" {
		lv := strings.ToLower(v)
		cfg.Snapping.Enabled = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "drafting.seam_allowance":
		if os.Getenv(EnvSeamAllowance) != "" {
			return EnvSeamAllowance, true
		}
	case "drafting.curve_steps":
		if os.Getenv(EnvCurveSteps) != "" {
			return EnvCurveSteps, true
		}
	case "drafting.circle_segments":
		if os.Getenv(EnvCircleSegments) != "" {
			return EnvCircleSegments, true
		}
	case "snapping.enabled":
		if os.Getenv(EnvSnapEnabled) != "" {
			return EnvSnapEnabled, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
