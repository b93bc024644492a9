// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

// DefaultFile is read when no --config flag is given.
const DefaultFile = "graphdemo.yaml"

const envPrefix = "GRAPHDEMO_"

// Config is the full graphdemo configuration.
type Config struct {
	// BufferPoolMB is the memory budget offered to the engine, in MB.
	BufferPoolMB uint64 `yaml:"buffer_pool_mb"`

	// Threads is the engine's maximum thread count.
	Threads uint64 `yaml:"threads"`

	// Storage is the engine storage kind: rocksdb, sqlite or mem.
	Storage string `yaml:"storage"`

	// TempDir holds the graphdemo/<uuid> session directories.
	TempDir string `yaml:"temp_dir"`

	// DatasetDir holds the dataset files.
	DatasetDir string `yaml:"dataset_dir"`

	// CleanupOnExit removes the session directory when a command ends.
	CleanupOnExit bool `yaml:"cleanup_on_exit"`

	Log LogConfig `yaml:"log"`

	// MetricsAddr serves Prometheus /metrics when set, e.g. ":9091".
	MetricsAddr string `yaml:"metrics_addr"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BufferPoolMB: 1024,
		Threads:      uint64(runtime.NumCPU()),
		Storage:      engine.StorageRocksDB,
		TempDir:      os.TempDir(),
		DatasetDir:   "dataset",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves defaults, the YAML file at path and the environment. An
// empty path reads DefaultFile if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML in the same layout Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyEnv overrides fields from GRAPHDEMO_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get("BUFFER_POOL_MB"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sBUFFER_POOL_MB: %w", envPrefix, err)
		}
		c.BufferPoolMB = n
	}
	if v, ok := get("THREADS"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sTHREADS: %w", envPrefix, err)
		}
		c.Threads = n
	}
	if v, ok := get("CLEANUP_ON_EXIT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCLEANUP_ON_EXIT: %w", envPrefix, err)
		}
		c.CleanupOnExit = b
	}
	if v, ok := get("STORAGE"); ok {
		c.Storage = v
	}
	if v, ok := get("TEMP_DIR"); ok {
		c.TempDir = v
	}
	if v, ok := get("DATASET_DIR"); ok {
		c.DatasetDir = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := get("METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if c.BufferPoolMB == 0 {
		errs = append(errs, "buffer_pool_mb must be greater than zero")
	}
	if c.Threads == 0 {
		errs = append(errs, "threads must be greater than zero")
	}
	switch c.Storage {
	case engine.StorageRocksDB, engine.StorageSQLite, engine.StorageMem:
	default:
		errs = append(errs, fmt.Sprintf("storage must be rocksdb, sqlite or mem, got %q", c.Storage))
	}
	if c.TempDir == "" {
		errs = append(errs, "temp_dir is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Flags holds the command-line overrides registered by RegisterFlags.
type Flags struct {
	fs *flag.FlagSet

	bufferPoolMB  uint64
	threads       uint64
	storage       string
	tempDir       string
	datasetDir    string
	cleanupOnExit bool
	logLevel      string
	logFormat     string
	metricsAddr   string
	debug         bool
}

// RegisterFlags adds the configuration flags to fs. Call Apply after
// fs.Parse.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	fs.Uint64Var(&f.bufferPoolMB, "buffer-pool-mb", d.BufferPoolMB, "Engine memory budget in MB")
	fs.Uint64Var(&f.threads, "threads", d.Threads, "Maximum engine threads")
	fs.StringVar(&f.storage, "storage", d.Storage, "Storage engine: rocksdb, sqlite or mem")
	fs.StringVar(&f.tempDir, "temp-dir", d.TempDir, "Directory holding graphdemo session directories")
	fs.StringVar(&f.datasetDir, "dataset-dir", d.DatasetDir, "Directory holding the dataset files")
	fs.BoolVar(&f.cleanupOnExit, "cleanup", d.CleanupOnExit, "Remove the session directory on exit")
	fs.StringVar(&f.logLevel, "log-level", d.Log.Level, "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", d.Log.Format, "Log format: text or json")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9091)")
	fs.BoolVar(&f.debug, "debug", false, "Shorthand for --log-level debug")
	return f
}

// Apply copies the flags that were set explicitly onto cfg and validates
// the result.
func (f *Flags) Apply(cfg *Config) error {
	changed := f.fs.Changed
	if changed("buffer-pool-mb") {
		cfg.BufferPoolMB = f.bufferPoolMB
	}
	if changed("threads") {
		cfg.Threads = f.threads
	}
	if changed("storage") {
		cfg.Storage = f.storage
	}
	if changed("temp-dir") {
		cfg.TempDir = f.tempDir
	}
	if changed("dataset-dir") {
		cfg.DatasetDir = f.datasetDir
	}
	if changed("cleanup") {
		cfg.CleanupOnExit = f.cleanupOnExit
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}
	return cfg.Validate()
}
