package moqtdeps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AssembleXCFrameworks merges the per-target iOS install outputs of each
// requested (library, build type) pair into one xcframework. A target
// whose archive is missing is skipped with a warning; the bundle is
// still produced from whatever slices exist. Any previous bundle at the
// destination is removed first, so the result is always a clean rebuild.
func AssembleXCFrameworks(ctx context.Context, cfg *Config, r Runner, libs []string, buildTypes []BuildType) error {
	var errs []error
	for _, bt := range buildTypes {
		for _, lib := range libs {
			if err := assembleOne(ctx, cfg, r, lib, bt); err != nil {
				cPrintf(colError, "xcframework failed for %s (%s): %v\n", lib, bt, err)
				errs = append(errs, fmt.Errorf("%s (%s): %w", lib, bt, err))
			}
		}
	}
	return errors.Join(errs...)
}

func assembleOne(ctx context.Context, cfg *Config, r Runner, lib string, bt BuildType) error {
	output := cfg.XCFrameworkPath(bt, lib)

	args := []string{"-create-xcframework"}
	included := 0
	for _, target := range PlatformIOS.Targets {
		installDir := cfg.InstallDir(PlatformIOS.Name, target.Name, bt)
		libPath := filepath.Join(installDir, "lib", "lib"+lib+".a")
		headerPath := filepath.Join(installDir, "include")

		if _, err := os.Stat(libPath); err != nil {
			cPrintf(colWarn, "Warning: %s not found, skipping %s slice\n", libPath, target.Name)
			continue
		}
		args = append(args, "-library", libPath)
		if _, err := os.Stat(headerPath); err == nil {
			args = append(args, "-headers", headerPath)
		}
		included++
	}
	if included == 0 {
		return fmt.Errorf("no built slices found for %s (%s)", lib, bt)
	}
	args = append(args, "-output", output)

	if err := os.RemoveAll(output); err != nil {
		return fmt.Errorf("failed to remove previous bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create bundle dir: %w", err)
	}

	colArrow.Print("=> ")
	colSuccess.Printf("Creating %s.xcframework (%s)\n", lib, bt)
	if _, err := r.Run(ctx, "", "xcodebuild", args...); err != nil {
		return err
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Created %s\n", output)
	return nil
}
