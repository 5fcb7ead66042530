package builder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: claude-desktop-builder <command> [arguments]")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"build", "", "Run the full repackaging pipeline and produce an RPM"},
		{"package", "<version> <arch> <workdir> <stagingdir> <name> <maintainer> <description>", "Build the RPM from a prepared staging tree"},
		{"clean", "[-all] [-y]", "Remove the work tree (and with -all the caches)"},
		{"log", "", "View the most recent build log"},
		{"upload", "[file.rpm]", "Upload a built RPM to the configured mirror"},
		{"version, --version", "", "Version information"},
		{"help", "", "This text"},
	}
	for _, c := range cmds {
		fmt.Printf("  %-10s %-70s %s\n", c.Cmd, c.Args, c.Desc)
	}
}

// Main is the CLI entry point.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// First Ctrl+C cancels gracefully; during a critical phase (asar
	// repack, rpmbuild) it is blocked and a second one forces exit.
	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					colArrow.Print("\n-> ")
					colError.Printf("Critical operation in progress. Press Ctrl+C AGAIN to force exit NOW.\n")
					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				} else {
					colArrow.Print("\n-> ")
					color.Danger.Printf("Received %v. Cancelling gracefully\n", sig)
					cancel()
					time.Sleep(100 * time.Millisecond)
					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
						os.Exit(130)
					case <-time.After(2 * time.Second):
						colArrow.Print("\n-> ")
						color.Danger.Printf("Graceful shutdown timeout. Exiting.")
						os.Exit(0)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if len(os.Args) < 2 {
		printHelp()
		return
	}

	cfg, err := loadConfig(ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", ConfigFile, err)
	}
	initConfig(cfg)

	UserExec = &Executor{Context: ctx, ShouldRunAsRoot: false}
	RootExec = &Executor{Context: ctx, ShouldRunAsRoot: true}

	var cmdErr error
	switch os.Args[1] {
	case "build", "b":
		cmdErr = runBuild(ctx, cfg)
	case "package":
		var job *PackageJob
		job, cmdErr = PackageJobFromArgs(os.Args[2:])
		if cmdErr == nil {
			cmdErr = BuildPackage(ctx, job)
		}
	case "clean":
		cmdErr = handleCleanCommand(os.Args[2:])
	case "log":
		cmdErr = handleLogCommand()
	case "upload":
		cmdErr = handleUploadCommand(ctx, os.Args[2:], cfg)
	case "version", "--version":
		fmt.Printf("claude-desktop-builder %s (%s, built %s)\n", version, hostArch, buildDate)
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}

	if cmdErr != nil {
		colError.Printf("Error: %v\n", cmdErr)
		os.Exit(1)
	}
}
