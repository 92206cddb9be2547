package moqtdeps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// EnsureSource makes sure the library's source tree exists at its
// deterministic path and sits exactly on the manifest pin. Re-entry is
// cheap: a tree already checked out at the pin touches the network not
// at all. The whole operation holds a per-library flock so two
// invocations of the tool cannot interleave clone and checkout.
func EnsureSource(ctx context.Context, cfg *Config, r Runner, lib Library) (string, error) {
	srcDir := cfg.SourceDir(lib.Name)
	if err := os.MkdirAll(cfg.sourceRoot(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create source root: %w", err)
	}

	lockPath := srcDir + ".lock"
	lFile, err := os.Create(lockPath)
	if err != nil {
		return "", fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()
	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return "", fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	pin := lib.Pin()

	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		colArrow.Print("-> ")
		colSuccess.Printf("Cloning %s\n", lib.Name)
		if _, err := r.Run(ctx, "", "git", "clone", lib.URL, srcDir); err != nil {
			return "", fmt.Errorf("clone of %s failed: %w", lib.Name, err)
		}
	} else if pin != "" && alreadyPinned(ctx, r, srcDir, pin) {
		cfg.debugf("%s already checked out at %s, skipping fetch\n", lib.Name, pin)
		return srcDir, nil
	}

	if pin != "" {
		colArrow.Print("-> ")
		colSuccess.Printf("Checking out %s @ %s\n", lib.Name, pin)
		if _, err := r.Run(ctx, srcDir, "git", "fetch", "--all", "--tags"); err != nil {
			return "", fmt.Errorf("fetch for %s failed: %w", lib.Name, err)
		}
		if _, err := r.Run(ctx, srcDir, "git", "checkout", pin); err != nil {
			return "", fmt.Errorf("checkout of %s @ %s failed: %w", lib.Name, pin, err)
		}
	}

	// Shallow submodules keep the fetch cost of vendored TLS stacks bounded.
	if _, err := r.Run(ctx, srcDir, "git", "submodule", "update", "--init", "--recursive", "--depth", "1"); err != nil {
		return "", fmt.Errorf("submodule init for %s failed: %w", lib.Name, err)
	}
	return srcDir, nil
}

// alreadyPinned reports whether HEAD of the tree already resolves to the
// pin. Unresolvable pins report false so the caller refreshes remotes.
func alreadyPinned(ctx context.Context, r Runner, srcDir, pin string) bool {
	want, err := r.Run(ctx, srcDir, "git", "rev-parse", "--verify", pin+"^{commit}")
	if err != nil {
		return false
	}
	head, err := r.Run(ctx, srcDir, "git", "rev-parse", "HEAD")
	if err != nil {
		return false
	}
	return strings.TrimSpace(want) != "" && strings.TrimSpace(head) == strings.TrimSpace(want)
}

// FetchSources resolves every requested library, isolating failures: a
// broken pin on one library does not stop the others from being
// fetched. The returned map holds the source dir of each success.
func FetchSources(ctx context.Context, cfg *Config, r Runner, libs []Library) (map[string]string, map[string]error) {
	sources := make(map[string]string)
	failed := make(map[string]error)
	for _, lib := range libs {
		srcDir, err := EnsureSource(ctx, cfg, r, lib)
		if err != nil {
			cPrintf(colError, "Fetch failed for %s: %v\n", lib.Name, err)
			failed[lib.Name] = err
			continue
		}
		sources[lib.Name] = srcDir
	}
	// Lock files are only meaningful while held.
	for _, lib := range libs {
		_ = os.Remove(filepath.Join(cfg.sourceRoot(), lib.Name+".lock"))
	}
	return sources, failed
}
