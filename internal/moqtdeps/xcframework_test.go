package moqtdeps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func installSlice(t *testing.T, cfg *Config, target string, bt BuildType, lib string, withHeaders bool) {
	t.Helper()
	prefix := cfg.InstallDir("ios", target, bt)
	if err := os.MkdirAll(filepath.Join(prefix, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(prefix, "lib", "lib"+lib+".a"), []byte("!<arch>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if withHeaders {
		if err := os.MkdirAll(filepath.Join(prefix, "include", lib), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAssembleBothSlices(t *testing.T) {
	cfg := testConfig(t)
	installSlice(t, cfg, "device-arm64", BuildRelease, "nghttp3", true)
	installSlice(t, cfg, "simulator-arm64", BuildRelease, "nghttp3", true)
	fr := &fakeRunner{}

	if err := AssembleXCFrameworks(context.Background(), cfg, fr, []string{"nghttp3"}, []BuildType{BuildRelease}); err != nil {
		t.Fatal(err)
	}
	if len(fr.calls) != 1 || fr.calls[0].Name != "xcodebuild" {
		t.Fatalf("expected one xcodebuild invocation, got %v", fr.lines())
	}

	line := fr.calls[0].line()
	if strings.Count(line, "-library ") != 2 || strings.Count(line, "-headers ") != 2 {
		t.Errorf("expected two library/headers pairs: %s", line)
	}
	if !strings.Contains(line, "-output "+cfg.XCFrameworkPath(BuildRelease, "nghttp3")) {
		t.Errorf("missing output path: %s", line)
	}
}

func TestAssembleSkipsMissingSlice(t *testing.T) {
	cfg := testConfig(t)
	installSlice(t, cfg, "device-arm64", BuildRelease, "nghttp3", true)
	fr := &fakeRunner{}

	// One of two slices missing: warn, build the bundle from the rest.
	if err := AssembleXCFrameworks(context.Background(), cfg, fr, []string{"nghttp3"}, []BuildType{BuildRelease}); err != nil {
		t.Fatalf("a partial bundle must still be produced: %v", err)
	}
	line := fr.calls[0].line()
	if strings.Count(line, "-library ") != 1 {
		t.Errorf("expected a single library pair: %s", line)
	}
	if strings.Contains(line, "simulator-arm64") {
		t.Errorf("missing slice must not be referenced: %s", line)
	}
}

func TestAssembleNoSlicesFails(t *testing.T) {
	cfg := testConfig(t)
	fr := &fakeRunner{}

	err := AssembleXCFrameworks(context.Background(), cfg, fr, []string{"nghttp3"}, []BuildType{BuildRelease})
	if err == nil {
		t.Fatal("expected an error when no slice exists at all")
	}
	if len(fr.calls) != 0 {
		t.Errorf("xcodebuild must not run without inputs: %v", fr.lines())
	}
}

func TestAssembleReplacesExistingBundle(t *testing.T) {
	cfg := testConfig(t)
	installSlice(t, cfg, "device-arm64", BuildRelease, "nghttp3", false)

	stale := filepath.Join(cfg.XCFrameworkPath(BuildRelease, "nghttp3"), "Info.plist")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	fr := &fakeRunner{}
	if err := AssembleXCFrameworks(context.Background(), cfg, fr, []string{"nghttp3"}, []BuildType{BuildRelease}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("previous bundle contents must be removed before assembly")
	}
}
