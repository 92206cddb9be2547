package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moqtdeps/internal/moqtdeps"
)

var version = "dev" // overridden at build time

func usage() {
	fmt.Println("Usage: moqtdeps <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  fetch        Fetch dependency sources at their pinned revisions")
	fmt.Println("  build        Build the dependency matrix (configure, build, install)")
	fmt.Println("  xcframework  Merge built iOS slices into xcframework bundles")
	fmt.Println("  package      Wrap built outputs into tar.zst artifacts")
	fmt.Println("  publish      Upload packaged artifacts to the configured bucket")
	fmt.Println("  clean        Remove build/install trees (-all: sources too)")
	fmt.Println("  version      Print the tool version")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		fmt.Printf("\n[INFO] Received %v. Cancelling gracefully...\n", sig)
		cancel()
		<-sigs
		fmt.Println("\n[FATAL] Second interrupt received. Forcing immediate exit.")
		os.Exit(130)
	}()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := moqtdeps.LoadConfig(moqtdeps.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	runner := &moqtdeps.Executor{Echo: true}

	switch os.Args[1] {
	case "version":
		fmt.Printf("moqtdeps %s\n", version)
	case "fetch":
		err = moqtdeps.HandleFetchCommand(ctx, os.Args[2:], cfg, runner)
	case "build":
		err = moqtdeps.HandleBuildCommand(ctx, os.Args[2:], cfg, runner)
	case "xcframework":
		err = moqtdeps.HandleXCFrameworkCommand(ctx, os.Args[2:], cfg, runner)
	case "package":
		err = moqtdeps.HandlePackageCommand(ctx, os.Args[2:], cfg)
	case "publish":
		err = moqtdeps.HandlePublishCommand(ctx, os.Args[2:], cfg)
	case "clean":
		err = moqtdeps.HandleCleanCommand(os.Args[2:], cfg)
	default:
		fmt.Println("Unknown command:", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
