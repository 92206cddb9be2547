package moqtdeps

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

// Command handlers, one per subcommand. Each parses its own FlagSet and
// returns an error when the requested work did not fully succeed; main
// turns that into the exit status.

func splitLibraries(sel string) []string {
	if sel == "" || sel == "all" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(sel, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func printManifest(m *Manifest) {
	fmt.Println("Dependencies:")
	for _, lib := range m.Libraries {
		pin := lib.Pin()
		if pin == "" {
			pin = "unpinned"
		} else if lib.Tag == "" && len(pin) > 8 {
			pin = pin[:8]
		}
		fmt.Printf("  %s: %s\n", lib.Name, pin)
	}
	fmt.Println()
}

// HandleFetchCommand resolves sources only; no build or install tree is
// touched.
func HandleFetchCommand(ctx context.Context, args []string, cfg *Config, r Runner) error {
	fetchCmd := flag.NewFlagSet("fetch", flag.ExitOnError)
	libSel := fetchCmd.String("library", "all", "Library subset to fetch (comma separated, or all).")
	if err := fetchCmd.Parse(args); err != nil {
		return err
	}

	manifest, err := LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	printManifest(manifest)

	libs, err := manifest.Select(splitLibraries(*libSel))
	if err != nil {
		return err
	}

	_, failed := FetchSources(ctx, cfg, r, libs)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d sources failed to fetch", len(failed), len(libs))
	}
	colArrow.Print("-> ")
	colSuccess.Println("Sources fetched successfully")
	return nil
}

// HandleBuildCommand runs the full pipeline: optional clean, fetch,
// matrix build, optional xcframework assembly.
func HandleBuildCommand(ctx context.Context, args []string, cfg *Config, r Runner) error {
	buildCmd := flag.NewFlagSet("build", flag.ExitOnError)
	platformSel := buildCmd.String("platform", "ios", "Target platform: ios, android or all.")
	typeSel := buildCmd.String("type", "all", "Build type: release, debug or all.")
	libSel := buildCmd.String("library", "all", "Library subset to build (comma separated, or all).")
	xcframework := buildCmd.Bool("xcframework", false, "Create xcframeworks after building (iOS only).")
	clean := buildCmd.Bool("clean", false, "Remove build and install trees first.")
	cleanAll := buildCmd.Bool("clean-all", false, "Remove the whole cache (including sources) first.")
	if err := buildCmd.Parse(args); err != nil {
		return err
	}

	platforms, err := PlatformsFor(*platformSel)
	if err != nil {
		return err
	}
	buildTypes, err := BuildTypesFor(*typeSel)
	if err != nil {
		return err
	}

	if *cleanAll {
		if err := CleanAll(cfg); err != nil {
			return err
		}
	} else if *clean {
		if err := CleanBuilds(cfg); err != nil {
			return err
		}
	}

	manifest, err := LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	printManifest(manifest)

	libs, err := manifest.Select(splitLibraries(*libSel))
	if err != nil {
		return err
	}

	sources, fetchFailed := FetchSources(ctx, cfg, r, libs)

	req := BuildRequest{Platforms: platforms, BuildTypes: buildTypes, Libraries: libs}
	failures := RunMatrix(ctx, cfg, r, req, sources)

	if *xcframework && len(failures) == 0 && hasPlatform(platforms, "ios") {
		names := make([]string, len(libs))
		for i, lib := range libs {
			names[i] = lib.Name
		}
		if err := AssembleXCFrameworks(ctx, cfg, r, names, buildTypes); err != nil {
			return err
		}
	}

	if len(fetchFailed) > 0 || len(failures) > 0 {
		cPrintf(colError, "\nBuild finished with failures:\n")
		for name, err := range fetchFailed {
			cPrintf(colError, "  fetch %s: %v\n", name, err)
		}
		for _, f := range failures {
			cPrintf(colError, "  %s\n", f)
		}
		return fmt.Errorf("%d fetch and %d build failures", len(fetchFailed), len(failures))
	}

	colArrow.Print("-> ")
	colSuccess.Println("Build completed successfully")
	return nil
}

// HandleXCFrameworkCommand assembles bundles from existing install
// outputs, skipping the build entirely.
func HandleXCFrameworkCommand(ctx context.Context, args []string, cfg *Config, r Runner) error {
	xcCmd := flag.NewFlagSet("xcframework", flag.ExitOnError)
	typeSel := xcCmd.String("type", "all", "Build type: release, debug or all.")
	libSel := xcCmd.String("library", "all", "Library subset (comma separated, or all).")
	if err := xcCmd.Parse(args); err != nil {
		return err
	}

	buildTypes, err := BuildTypesFor(*typeSel)
	if err != nil {
		return err
	}
	manifest, err := LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	libs, err := manifest.Select(splitLibraries(*libSel))
	if err != nil {
		return err
	}
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = lib.Name
	}
	if err := AssembleXCFrameworks(ctx, cfg, r, names, buildTypes); err != nil {
		return err
	}
	colArrow.Print("-> ")
	colSuccess.Println("xcframeworks created successfully")
	return nil
}

// HandleCleanCommand removes cached trees.
func HandleCleanCommand(args []string, cfg *Config) error {
	cleanCmd := flag.NewFlagSet("clean", flag.ExitOnError)
	all := cleanCmd.Bool("all", false, "Also remove fetched sources, not just builds and installs.")
	if err := cleanCmd.Parse(args); err != nil {
		return err
	}
	if *all {
		return CleanAll(cfg)
	}
	return CleanBuilds(cfg)
}

// HandlePackageCommand wraps built outputs into tar.zst artifacts.
func HandlePackageCommand(ctx context.Context, args []string, cfg *Config) error {
	pkgCmd := flag.NewFlagSet("package", flag.ExitOnError)
	platformSel := pkgCmd.String("platform", "all", "Target platform: ios, android or all.")
	typeSel := pkgCmd.String("type", "all", "Build type: release, debug or all.")
	libSel := pkgCmd.String("library", "all", "Library subset (comma separated, or all).")
	if err := pkgCmd.Parse(args); err != nil {
		return err
	}

	platforms, err := PlatformsFor(*platformSel)
	if err != nil {
		return err
	}
	buildTypes, err := BuildTypesFor(*typeSel)
	if err != nil {
		return err
	}
	manifest, err := LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	libs, err := manifest.Select(splitLibraries(*libSel))
	if err != nil {
		return err
	}
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = lib.Name
	}

	created, err := PackageArtifacts(cfg, platforms, buildTypes, names)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("nothing to package: no built artifacts found under %s", cfg.installRoot())
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Packaged %d artifacts into %s\n", len(created), cfg.DistDir())
	return nil
}

// HandlePublishCommand uploads packaged artifacts to the bucket.
func HandlePublishCommand(ctx context.Context, args []string, cfg *Config) error {
	pubCmd := flag.NewFlagSet("publish", flag.ExitOnError)
	prefix := pubCmd.String("prefix", "", "Key prefix inside the bucket.")
	if err := pubCmd.Parse(args); err != nil {
		return err
	}
	return PublishDist(ctx, cfg, *prefix)
}

func hasPlatform(platforms []Platform, name string) bool {
	for _, p := range platforms {
		if p.Name == name {
			return true
		}
	}
	return false
}
