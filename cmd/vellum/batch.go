package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		outDir string
		jobs   int
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Render many documents concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			return a.batch(cmd.Context(), args, outDir, jobs, scale)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "directory for the PNG files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "documents rendered at once")
	cmd.Flags().Float64Var(&scale, "scale", 1, "device pixels per CSS pixel")
	return cmd
}

// batch renders every input. A failing document does not stop the others;
// all failures are reported together.
func (a *app) batch(ctx context.Context, inputs []string, outDir string, jobs int, scale float64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			out := filepath.Join(outDir, base+".png")
			if err := a.renderPNG(ctx, input, out, scale, true); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", input, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
