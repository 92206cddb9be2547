package moqtdeps

import (
	"errors"
	"strings"
	"testing"
)

func argsContain(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argsContainPrefix(args []string, prefix string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

func TestConfigureArgsIOS(t *testing.T) {
	cfg := &Config{IOSToolchain: "cmake/ios.toolchain.cmake", NDKHome: "/opt/android-ndk"}

	tests := []struct {
		target       Target
		wantPlatform string
	}{
		{PlatformIOS.Targets[0], "-DPLATFORM=OS64"},
		{PlatformIOS.Targets[1], "-DPLATFORM=SIMULATORARM64"},
	}
	for _, tt := range tests {
		args, err := ConfigureArgs(cfg, PlatformIOS, tt.target, BuildRelease, "nghttp3", "prefix")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{
			"-DCMAKE_TOOLCHAIN_FILE=cmake/ios.toolchain.cmake",
			tt.wantPlatform,
			"-DDEPLOYMENT_TARGET=13.0",
			"-DENABLE_BITCODE=OFF",
			"-DCMAKE_BUILD_TYPE=Release",
			"-DCMAKE_INSTALL_PREFIX=prefix",
		} {
			if !argsContain(args, want) {
				t.Errorf("%s: missing %s in %v", tt.target.Name, want, args)
			}
		}
		// NDK parameters must never leak into iOS invocations.
		if argsContainPrefix(args, "-DANDROID_") {
			t.Errorf("%s: Android flags leaked into iOS args: %v", tt.target.Name, args)
		}
	}
}

func TestConfigureArgsAndroid(t *testing.T) {
	cfg := &Config{IOSToolchain: "cmake/ios.toolchain.cmake", NDKHome: "/opt/android-ndk"}

	args, err := ConfigureArgs(cfg, PlatformAndroid, PlatformAndroid.Targets[0], BuildDebug, "nghttp2", "prefix")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"-DCMAKE_TOOLCHAIN_FILE=/opt/android-ndk/build/cmake/android.toolchain.cmake",
		"-DANDROID_ABI=arm64-v8a",
		"-DANDROID_PLATFORM=android-29",
		"-DCMAKE_BUILD_TYPE=Debug",
	} {
		if !argsContain(args, want) {
			t.Errorf("missing %s in %v", want, args)
		}
	}
	// iOS parameters must never leak into Android invocations.
	for _, leak := range []string{"-DPLATFORM=", "-DDEPLOYMENT_TARGET=", "-DENABLE_BITCODE="} {
		if argsContainPrefix(args, leak) {
			t.Errorf("iOS flag %s leaked into Android args: %v", leak, args)
		}
	}
}

func TestConfigureArgsMissingNDK(t *testing.T) {
	cfg := &Config{IOSToolchain: "cmake/ios.toolchain.cmake"}

	_, err := ConfigureArgs(cfg, PlatformAndroid, PlatformAndroid.Targets[0], BuildRelease, "nghttp3", "prefix")
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	// iOS does not need the NDK.
	if _, err := ConfigureArgs(cfg, PlatformIOS, PlatformIOS.Targets[0], BuildRelease, "nghttp3", "prefix"); err != nil {
		t.Fatalf("iOS must not require the NDK: %v", err)
	}
}

func TestLibraryFlagIsolation(t *testing.T) {
	cfg := &Config{IOSToolchain: "cmake/ios.toolchain.cmake"}

	tests := []struct {
		lib     string
		want    []string
		forbid  []string
	}{
		{
			lib:    "msquic",
			want:   []string{"-DQUIC_BUILD_SHARED=OFF", "-DQUIC_TLS_LIB=quictls", "-DQUIC_BUILD_TOOLS=OFF", "-DQUIC_BUILD_TEST=OFF", "-DQUIC_BUILD_PERF=OFF"},
			forbid: []string{"-DENABLE_LIB_ONLY=ON", "-DBUILD_SHARED_LIBS=OFF"},
		},
		{
			lib:    "nghttp3",
			want:   []string{"-DENABLE_LIB_ONLY=ON", "-DENABLE_STATIC_LIB=ON", "-DENABLE_SHARED_LIB=OFF", "-DBUILD_TESTING=OFF"},
			forbid: []string{"-DQUIC_BUILD_SHARED=OFF", "-DBUILD_STATIC_LIBS=ON"},
		},
		{
			lib:    "nghttp2",
			want:   []string{"-DENABLE_LIB_ONLY=ON", "-DBUILD_STATIC_LIBS=ON", "-DBUILD_SHARED_LIBS=OFF", "-DBUILD_TESTING=OFF"},
			forbid: []string{"-DQUIC_TLS_LIB=quictls", "-DENABLE_STATIC_LIB=ON"},
		},
	}
	for _, tt := range tests {
		args, err := ConfigureArgs(cfg, PlatformIOS, PlatformIOS.Targets[0], BuildRelease, tt.lib, "prefix")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range tt.want {
			if !argsContain(args, want) {
				t.Errorf("%s: missing %s", tt.lib, want)
			}
		}
		for _, forbid := range tt.forbid {
			if argsContain(args, forbid) {
				t.Errorf("%s: flag %s leaked from another library", tt.lib, forbid)
			}
		}
		if !argsContain(args, "-DCMAKE_POSITION_INDEPENDENT_CODE=ON") {
			t.Errorf("%s: missing PIC flag", tt.lib)
		}
	}
}

func TestConfigureArgsUnknownLibrary(t *testing.T) {
	cfg := &Config{IOSToolchain: "cmake/ios.toolchain.cmake"}
	if _, err := ConfigureArgs(cfg, PlatformIOS, PlatformIOS.Targets[0], BuildRelease, "openssl", "prefix"); err == nil {
		t.Fatal("expected an error for a library without a build profile")
	}
}
