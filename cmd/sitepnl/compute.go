package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/railzwaylabs/sitepnl/internal/observability"
	"github.com/railzwaylabs/sitepnl/internal/pnl"
	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/railzwaylabs/sitepnl/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type computeOptions struct {
	sites   []string
	year    int
	outDir  string
	timeout time.Duration
}

func newComputeCmd() *cobra.Command {
	opts := computeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the P&L of a set of sites and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVar(&opts.sites, "sites", nil, "comma separated site numbers")
	cmd.Flags().IntVar(&opts.year, "year", time.Now().Year(), "billing year")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "write the result into this directory instead of stdout")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "computation timeout")
	_ = cmd.MarkFlagRequired("sites")
	return cmd
}

func runCompute(ctx context.Context, opts computeOptions, stdout io.Writer) error {
	req := pnldomain.ComputeRequest{SiteIDs: opts.sites, Year: opts.year}
	if err := req.Validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var svc pnldomain.Service
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		pnl.Module,
		fx.Populate(&svc),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	computeCtx, cancelCompute := context.WithTimeout(ctx, opts.timeout)
	defer cancelCompute()

	result, err := svc.Compute(computeCtx, req)
	if err != nil {
		return err
	}

	if opts.outDir == "" {
		return writeResult(stdout, result)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(opts.outDir, resultFileName(req))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeResult(f, result); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func writeResult(w io.Writer, result *pnldomain.PnlResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// resultFileName names the output after the year and the site list, e.g.
// pnl-2025-0101-0102.json.
func resultFileName(req pnldomain.ComputeRequest) string {
	name := slug.Make(fmt.Sprintf("pnl %d %s", req.Year, strings.Join(req.SiteIDs, " ")))
	if len(name) > 120 {
		name = strings.TrimRight(name[:120], "-")
	}
	return name + ".json"
}
