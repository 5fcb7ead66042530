package builder

import (
	"context"
	"fmt"
	"os"
)

// Step is one stage of the repackaging pipeline. Earlier shell versions of
// this process let each stage silently assume the filesystem side effects
// of its predecessors; here every step declares the paths it consumes and
// produces, and the runner checks both, so a broken assumption surfaces as
// an up-front error instead of a missing-file failure halfway through.
type Step struct {
	Name string
	// Needs returns paths that must exist before the step runs.
	Needs func(bc *BuildContext) []string
	// Makes returns paths that must exist after the step ran.
	Makes func(bc *BuildContext) []string
	Run   func(ctx context.Context, bc *BuildContext) error
}

// runSteps executes the pipeline strictly in order, honouring context
// cancellation between steps.
func runSteps(ctx context.Context, bc *BuildContext, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build cancelled before step %q: %w", step.Name, err)
		}

		if step.Needs != nil {
			for _, path := range step.Needs(bc) {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("step %q requires %s which is missing: %w", step.Name, path, err)
				}
			}
		}

		stepBanner("[%d/%d] %s", i+1, len(steps), step.Name)
		if err := step.Run(ctx, bc); err != nil {
			return fmt.Errorf("step %q failed: %w", step.Name, err)
		}

		if step.Makes != nil {
			for _, path := range step.Makes(bc) {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("step %q did not produce expected output %s: %w", step.Name, path, err)
				}
			}
		}
	}
	return nil
}
