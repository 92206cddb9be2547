package moqtdeps

import "path/filepath"

// Build key space: every cached tree hangs off Config.Root through the
// pure derivations below. No two distinct (platform, target, buildType,
// library) tuples may map to the same build directory; the install
// prefix is deliberately shared by all libraries of one cell so their
// headers and archives co-install.

func (c *Config) sourceRoot() string  { return filepath.Join(c.Root, "source") }
func (c *Config) buildRoot() string   { return filepath.Join(c.Root, "build") }
func (c *Config) installRoot() string { return filepath.Join(c.Root, "install") }

// SourceDir is where a library's checked-out source tree lives.
func (c *Config) SourceDir(lib string) string {
	return filepath.Join(c.sourceRoot(), lib)
}

// BuildDir is the per-library cmake scratch directory of one matrix cell.
func (c *Config) BuildDir(platform, target string, bt BuildType, lib string) string {
	return filepath.Join(c.buildRoot(), platform, target, string(bt), lib)
}

// InstallDir is the install prefix shared by all libraries of one cell.
func (c *Config) InstallDir(platform, target string, bt BuildType) string {
	return filepath.Join(c.installRoot(), platform, target, string(bt))
}

// XCFrameworkPath is where the merged multi-architecture bundle of one
// (library, build type) pair is written.
func (c *Config) XCFrameworkPath(bt BuildType, lib string) string {
	return filepath.Join(c.installRoot(), "xcframework", string(bt), lib+".xcframework")
}

// DistDir holds the packaged tar.zst artifacts.
func (c *Config) DistDir() string {
	return filepath.Join(c.Root, "dist")
}
