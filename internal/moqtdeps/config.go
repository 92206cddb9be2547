package moqtdeps

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFile is the default location of the optional settings file.
// Everything in it can also be supplied through MOQTDEPS_* environment
// variables, which take precedence.
var ConfigFile = "moqtdeps.conf"

// Config carries every path and toggle the tool needs. It is built once
// at startup and passed explicitly into each component; nothing reads
// the environment after LoadConfig returns.
type Config struct {
	Root         string // dependency cache root (sources, builds, installs, dist)
	ManifestPath string // deps.yaml
	IOSToolchain string // cmake toolchain file for iOS cross builds
	NDKHome      string // Android NDK installation, empty when unset
	Debug        bool
	Values       map[string]string // raw settings, e.g. bucket credentials
}

// LoadConfig reads the optional KEY=VALUE settings file at path, merges
// MOQTDEPS_* environment overrides, and resolves defaults. A missing
// settings file is not an error.
func LoadConfig(path string) (*Config, error) {
	values := make(map[string]string)

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	// Merge MOQTDEPS_* env overrides
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MOQTDEPS_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				values[parts[0]] = parts[1]
			}
		}
	}

	cfg := &Config{Values: values}
	initConfig(cfg)
	return cfg, nil
}

func initConfig(cfg *Config) {
	cfg.Root = cfg.Values["MOQTDEPS_ROOT"]
	if cfg.Root == "" {
		cfg.Root = "_deps"
	}

	cfg.ManifestPath = cfg.Values["MOQTDEPS_MANIFEST"]
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "deps.yaml"
	}

	cfg.IOSToolchain = cfg.Values["MOQTDEPS_IOS_TOOLCHAIN"]
	if cfg.IOSToolchain == "" {
		cfg.IOSToolchain = filepath.Join("cmake", "ios.toolchain.cmake")
	}

	// The NDK location is only needed when Android is targeted; the
	// toolchain builder checks for it before any build work starts.
	cfg.NDKHome = cfg.Values["MOQTDEPS_NDK_HOME"]
	if cfg.NDKHome == "" {
		cfg.NDKHome = os.Getenv("ANDROID_NDK_HOME")
	}

	cfg.Debug = cfg.Values["MOQTDEPS_DEBUG"] == "1"
}
