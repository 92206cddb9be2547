package moqtdeps

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// BuildRequest is one resolved invocation of the matrix runner.
type BuildRequest struct {
	Platforms  []Platform
	BuildTypes []BuildType
	Libraries  []Library
}

// CellFailure identifies a matrix cell that did not reach installed.
type CellFailure struct {
	Platform  string
	Target    string
	BuildType BuildType
	Library   string
	Err       error
}

func (f CellFailure) String() string {
	if f.Target == "" {
		return fmt.Sprintf("%s: %v", f.Platform, f.Err)
	}
	return fmt.Sprintf("%s/%s/%s/%s: %v", f.Platform, f.Target, f.BuildType, f.Library, f.Err)
}

// RunMatrix walks the requested platform targets in their fixed order,
// build types in the requested order, and libraries in manifest order,
// driving each cell through configure, build and install. A failing
// cell is recorded and the matrix moves on; nothing a cell does may
// depend on any other cell.
func RunMatrix(ctx context.Context, cfg *Config, r Runner, req BuildRequest, sources map[string]string) []CellFailure {
	var failures []CellFailure

	total := 0
	for _, p := range req.Platforms {
		total += len(p.Targets) * len(req.BuildTypes) * len(req.Libraries)
	}
	var bar *progressbar.ProgressBar
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("matrix"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	advance := func() {
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	for _, p := range req.Platforms {
		// Missing toolchain input fails the whole platform up front,
		// before a single directory is created for it.
		if p.Name == "android" {
			if _, err := cfg.androidToolchainFile(); err != nil {
				cPrintf(colError, "Skipping android: %v\n", err)
				failures = append(failures, CellFailure{Platform: p.Name, Err: err})
				continue
			}
		}

		for _, target := range p.Targets {
			for _, bt := range req.BuildTypes {
				colArrow.Print("=> ")
				colSuccess.Printf("Building %s %s (%s)\n", p.Name, target.Name, bt)

				for _, lib := range req.Libraries {
					srcDir, ok := sources[lib.Name]
					if !ok {
						advance()
						continue
					}
					if err := buildCell(ctx, cfg, r, p, target, bt, lib, srcDir); err != nil {
						cPrintf(colError, "Build failed for %s (%s %s %s): %v\n", lib.Name, p.Name, target.Name, bt, err)
						failures = append(failures, CellFailure{
							Platform: p.Name, Target: target.Name, BuildType: bt, Library: lib.Name, Err: err,
						})
					}
					advance()
					if ctx.Err() != nil {
						return failures
					}
				}
			}
		}
	}
	return failures
}

// buildCell drives one (platform, target, buildType, library) cell to
// installed. The configure parameters are derived before anything is
// created on disk, and a stamp mismatch against the cell record wipes
// the scratch tree so stale cmake caches can never leak into this run.
func buildCell(ctx context.Context, cfg *Config, r Runner, p Platform, target Target, bt BuildType, lib Library, srcDir string) error {
	buildDir := cfg.BuildDir(p.Name, target.Name, bt, lib.Name)
	installDir := cfg.InstallDir(p.Name, target.Name, bt)

	args, err := ConfigureArgs(cfg, p, target, bt, lib.Name, installDir)
	if err != nil {
		return err
	}
	stamp := configureStamp(lib.Pin(), args)

	rec := readCellRecord(buildDir)
	if rec.Stamp != "" && rec.Stamp != stamp {
		cfg.debugf("Configuration changed for %s, recreating %s\n", lib.Name, buildDir)
		if err := os.RemoveAll(buildDir); err != nil {
			return fmt.Errorf("failed to reset build dir: %w", err)
		}
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create build dir: %w", err)
	}

	fail := func(step string, err error) error {
		_ = writeCellRecord(buildDir, cellRecord{State: StateFailed, Stamp: stamp})
		return fmt.Errorf("%s: %w", step, err)
	}

	cmakeArgs := append([]string{"-S", srcDir, "-B", buildDir}, args...)
	if _, err := r.Run(ctx, "", "cmake", cmakeArgs...); err != nil {
		return fail("configure", err)
	}
	if err := writeCellRecord(buildDir, cellRecord{State: StateConfigured, Stamp: stamp}); err != nil {
		return err
	}

	if _, err := r.Run(ctx, "", "cmake", "--build", buildDir, "--parallel"); err != nil {
		return fail("build", err)
	}
	if err := writeCellRecord(buildDir, cellRecord{State: StateBuilt, Stamp: stamp}); err != nil {
		return err
	}

	if _, err := r.Run(ctx, "", "cmake", "--install", buildDir); err != nil {
		return fail("install", err)
	}
	return writeCellRecord(buildDir, cellRecord{State: StateInstalled, Stamp: stamp})
}
