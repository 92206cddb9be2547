package moqtdeps

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// PackageArtifacts wraps the built outputs into distributable tar.zst
// archives under <root>/dist, one per xcframework bundle (iOS) and one
// per install prefix (Android), each with a sibling .b3 checksum file.
// Missing inputs are skipped with a warning so a partial matrix still
// yields packages for what was built.
func PackageArtifacts(cfg *Config, platforms []Platform, buildTypes []BuildType, libs []string) ([]string, error) {
	if err := os.MkdirAll(cfg.DistDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dist dir: %w", err)
	}

	var created []string
	for _, p := range platforms {
		for _, bt := range buildTypes {
			switch p.Name {
			case "ios":
				for _, lib := range libs {
					bundle := cfg.XCFrameworkPath(bt, lib)
					if _, err := os.Stat(bundle); err != nil {
						cPrintf(colWarn, "Warning: %s not found, skipping package\n", bundle)
						continue
					}
					out := filepath.Join(cfg.DistDir(), fmt.Sprintf("%s-ios-%s.xcframework.tar.zst", lib, bt))
					if err := packageOne(cfg, bundle, out); err != nil {
						return created, err
					}
					created = append(created, out)
				}
			case "android":
				for _, target := range p.Targets {
					prefix := cfg.InstallDir(p.Name, target.Name, bt)
					if _, err := os.Stat(prefix); err != nil {
						cPrintf(colWarn, "Warning: %s not found, skipping package\n", prefix)
						continue
					}
					out := filepath.Join(cfg.DistDir(), fmt.Sprintf("android-%s-%s.tar.zst", target.Name, bt))
					if err := packageOne(cfg, prefix, out); err != nil {
						return created, err
					}
					created = append(created, out)
				}
			}
		}
	}
	return created, nil
}

func packageOne(cfg *Config, srcDir, outPath string) error {
	colArrow.Print("-> ")
	colSuccess.Printf("Packaging %s\n", filepath.Base(outPath))
	if err := createTarZst(srcDir, outPath); err != nil {
		return fmt.Errorf("packaging %s: %w", srcDir, err)
	}
	sum, err := writeBlake3Sum(outPath)
	if err != nil {
		return err
	}
	cfg.debugf("%s  %s\n", sum, outPath)
	return nil
}

// createTarZst writes srcDir as a tar.zst archive with paths relative
// to the directory root.
func createTarZst(srcDir, outPath string) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	zw, err := zstd.NewWriter(outFile)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}
		}

		hdr, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// writeBlake3Sum hashes the file and drops the hex digest next to it in
// a .b3 file, returning the digest.
func writeBlake3Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	sum := fmt.Sprintf("%x", h.Sum(nil))

	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
	if err := os.WriteFile(path+".b3", []byte(line), 0o644); err != nil {
		return "", err
	}
	return sum, nil
}
