package moqtdeps

import (
	"fmt"
	"os"
)

// CleanAll removes the whole dependency cache: sources, builds,
// installs and dist packages. Needed when a pin change also changes
// submodule structure and the source trees cannot be trusted anymore.
func CleanAll(cfg *Config) error {
	colArrow.Print("-> ")
	cPrintf(colWarn, "Cleaning %s\n", cfg.Root)
	if err := os.RemoveAll(cfg.Root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", cfg.Root, err)
	}
	return nil
}

// CleanBuilds removes build and install trees but keeps the fetched
// sources, avoiding a re-clone of unchanged code.
func CleanBuilds(cfg *Config) error {
	for _, dir := range []string{cfg.buildRoot(), cfg.installRoot()} {
		colArrow.Print("-> ")
		cPrintf(colWarn, "Cleaning %s\n", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return nil
}
