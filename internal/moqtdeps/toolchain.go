package moqtdeps

import (
	"fmt"
	"path/filepath"
)

// iOS deployment floor shared by every dependency build.
const iosDeploymentTarget = "13.0"

// Android API level the ABIs are built against.
const androidPlatform = "android-29"

// Per-library cmake feature flags. Each set produces a position
// independent, static-only archive with no tools, tests or samples.
// The sets never mix: the builder picks exactly one by library name.
var libraryFlags = map[string][]string{
	"msquic": {
		"-DQUIC_BUILD_SHARED=OFF",
		"-DQUIC_TLS_LIB=quictls",
		"-DQUIC_BUILD_TOOLS=OFF",
		"-DQUIC_BUILD_TEST=OFF",
		"-DQUIC_BUILD_PERF=OFF",
	},
	"nghttp3": {
		"-DENABLE_LIB_ONLY=ON",
		"-DENABLE_STATIC_LIB=ON",
		"-DENABLE_SHARED_LIB=OFF",
		"-DBUILD_TESTING=OFF",
	},
	"nghttp2": {
		"-DENABLE_LIB_ONLY=ON",
		"-DBUILD_STATIC_LIBS=ON",
		"-DBUILD_SHARED_LIBS=OFF",
		"-DBUILD_TESTING=OFF",
	},
}

// androidToolchainFile locates the NDK's cmake toolchain descriptor.
// It fails before any build work when the NDK location is not known.
func (c *Config) androidToolchainFile() (string, error) {
	if c.NDKHome == "" {
		return "", fmt.Errorf("%w: ANDROID_NDK_HOME is not set (or MOQTDEPS_NDK_HOME)", ErrConfigMissing)
	}
	return filepath.Join(c.NDKHome, "build", "cmake", "android.toolchain.cmake"), nil
}

// ConfigureArgs builds the ordered cmake parameter list for one matrix
// cell: cross-toolchain selection, target/ABI, build type, install
// prefix, then the library's own feature flags. Pure configuration; no
// filesystem or process side effects.
func ConfigureArgs(cfg *Config, platform Platform, target Target, bt BuildType, lib, installDir string) ([]string, error) {
	flags, ok := libraryFlags[lib]
	if !ok {
		return nil, fmt.Errorf("no build profile for library %q", lib)
	}

	var args []string
	switch platform.Name {
	case "ios":
		args = append(args,
			"-DCMAKE_TOOLCHAIN_FILE="+cfg.IOSToolchain,
			"-DPLATFORM="+target.ApplePlatform,
			"-DDEPLOYMENT_TARGET="+iosDeploymentTarget,
			// Deprecated upstream but the toolchain file still defaults it on.
			"-DENABLE_BITCODE=OFF",
		)
	case "android":
		toolchain, err := cfg.androidToolchainFile()
		if err != nil {
			return nil, err
		}
		args = append(args,
			"-DCMAKE_TOOLCHAIN_FILE="+toolchain,
			"-DANDROID_ABI="+target.Name,
			"-DANDROID_PLATFORM="+androidPlatform,
		)
	default:
		return nil, fmt.Errorf("unknown platform %q", platform.Name)
	}

	args = append(args,
		"-DCMAKE_BUILD_TYPE="+string(bt),
		"-DCMAKE_INSTALL_PREFIX="+installDir,
		"-DCMAKE_POSITION_INDEPENDENT_CODE=ON",
	)
	args = append(args, flags...)
	return args, nil
}
