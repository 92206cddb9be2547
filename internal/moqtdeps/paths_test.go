package moqtdeps

import (
	"path/filepath"
	"testing"
)

func TestBuildDirDeterministicAndCollisionFree(t *testing.T) {
	cfg := &Config{Root: "_deps"}
	libs := []string{"msquic", "nghttp3", "nghttp2"}
	types := []BuildType{BuildRelease, BuildDebug}

	seen := make(map[string]string)
	for _, p := range []Platform{PlatformIOS, PlatformAndroid} {
		for _, target := range p.Targets {
			for _, bt := range types {
				for _, lib := range libs {
					dir := cfg.BuildDir(p.Name, target.Name, bt, lib)
					if again := cfg.BuildDir(p.Name, target.Name, bt, lib); again != dir {
						t.Fatalf("BuildDir is not deterministic: %s vs %s", dir, again)
					}
					key := p.Name + "/" + target.Name + "/" + string(bt) + "/" + lib
					if prev, dup := seen[dir]; dup {
						t.Fatalf("cells %s and %s share build dir %s", prev, key, dir)
					}
					seen[dir] = key
				}
			}
		}
	}
}

func TestInstallDirSharedAcrossLibraries(t *testing.T) {
	cfg := &Config{Root: "_deps"}
	dir := cfg.InstallDir("ios", "device-arm64", BuildRelease)
	want := filepath.Join("_deps", "install", "ios", "device-arm64", "Release")
	if dir != want {
		t.Errorf("InstallDir = %s, want %s", dir, want)
	}
	// The prefix does not depend on which library installs into it, and
	// build types never share it.
	if cfg.InstallDir("ios", "device-arm64", BuildDebug) == dir {
		t.Error("Release and Debug must not share an install prefix")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Root: "_deps"}
	if got, want := cfg.SourceDir("nghttp3"), filepath.Join("_deps", "source", "nghttp3"); got != want {
		t.Errorf("SourceDir = %s, want %s", got, want)
	}
	if got, want := cfg.XCFrameworkPath(BuildRelease, "nghttp3"), filepath.Join("_deps", "install", "xcframework", "Release", "nghttp3.xcframework"); got != want {
		t.Errorf("XCFrameworkPath = %s, want %s", got, want)
	}
	if got, want := cfg.DistDir(), filepath.Join("_deps", "dist"); got != want {
		t.Errorf("DistDir = %s, want %s", got, want)
	}
}
