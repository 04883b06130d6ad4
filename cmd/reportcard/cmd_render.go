package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/reportcard/report"
)

var (
	outputPath string
	textPath   string
	outputDir  string
	jobs       int
)

var renderCmd = &cobra.Command{
	Use:   "render <request.yaml>",
	Short: "Render one report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var batchCmd = &cobra.Command{
	Use:   "batch <request>...",
	Short: "Render many reports in parallel",
	Long: `Render every request file into --out-dir. Each report is written next to
the others under its input name with a .pdf extension. The first failure
cancels the remaining work.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gen, err := newGenerator()
	if err != nil {
		return err
	}
	out := outputPath
	if out == "" {
		out = pdfName(args[0])
	}
	req, res, err := generate(ctx, gen, args[0], out)
	if err != nil {
		return err
	}
	if textPath != "" {
		if err := writeText(cmd.OutOrStdout(), textPath, gen, req, res); err != nil {
			return err
		}
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gen, err := newGenerator()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, in := range args {
		in := in
		out := filepath.Join(outputDir, filepath.Base(pdfName(in)))
		g.Go(func() error {
			_, _, err := generate(ctx, gen, in, out)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("batch complete", zap.Int("reports", len(args)), zap.String("dir", outputDir))
	return nil
}

// generate renders one request file to out. Nothing is written when
// generation fails.
func generate(ctx context.Context, gen *report.Generator, in, out string) (*report.Request, *report.Result, error) {
	req, err := report.LoadRequest(in)
	if err != nil {
		return nil, nil, err
	}
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("report written",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("pages", res.Pages),
		zap.String("id", res.ID.String()))
	return req, res, nil
}

func writeText(stdout io.Writer, path string, gen *report.Generator, req *report.Request, res *report.Result) error {
	if path == "-" {
		return report.WriteText(stdout, req, res.Summary, gen.Config().Labels)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create text report: %w", err)
	}
	if err := report.WriteText(f, req, res.Summary, gen.Config().Labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pdfName(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".pdf"
}
