package builder

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
)

// askForConfirmation prompts for a yes/no answer, defaulting to no.
func askForConfirmation(prompt string) bool {
	colArrow.Print("-> ")
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// handleCleanCommand removes the work tree; with -all also the download
// cache and the provisioned toolchain.
func handleCleanCommand(args []string) error {
	cleanCmd := flag.NewFlagSet("clean", flag.ExitOnError)
	cleanAll := cleanCmd.Bool("all", false, "also remove the download cache and toolchain")
	assumeYes := cleanCmd.Bool("y", false, "do not ask for confirmation")
	if err := cleanCmd.Parse(args); err != nil {
		return err
	}

	targets := []string{WorkDir}
	if *cleanAll {
		targets = append(targets, CacheDir)
	}

	for _, dir := range targets {
		if _, err := os.Stat(dir); err != nil {
			debugf("Nothing to clean at %s\n", dir)
			continue
		}
		if !*assumeYes && !askForConfirmation(fmt.Sprintf("Remove %s?", dir)) {
			cPrintln(colInfo, "Skipped", dir)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		stepBanner("Removed %s", dir)
	}
	return nil
}
