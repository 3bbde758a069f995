package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"article-digest/internal/app"
	"article-digest/internal/config"
	"article-digest/internal/domain/entity"
	"article-digest/internal/observability/logging"
	"article-digest/internal/usecase/digest"
	"article-digest/internal/utils/text"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type runner interface {
	Run(ctx context.Context, url string, progress digest.ProgressReporter) (*entity.Digest, error)
}

type summarizeOptions struct {
	out      string
	format   string
	maxChunk int
}

// report is the machine-readable output of the summarize command.
type report struct {
	URL              string   `json:"url" yaml:"url"`
	Title            string   `json:"title,omitempty" yaml:"title,omitempty"`
	ArticleLength    int      `json:"article_length" yaml:"article_length"`
	ArticleWords     int      `json:"article_words" yaml:"article_words"`
	Summary          string   `json:"summary" yaml:"summary"`
	SummaryLength    int      `json:"summary_length" yaml:"summary_length"`
	SummaryWords     int      `json:"summary_words" yaml:"summary_words"`
	Chunks           int      `json:"chunks" yaml:"chunks"`
	ChunkSummaries   []string `json:"chunk_summaries" yaml:"chunk_summaries"`
	CompressionRatio float64  `json:"compression_ratio" yaml:"compression_ratio"`
	CompressionLabel string   `json:"compression_label" yaml:"compression_label"`
	Message          string   `json:"message" yaml:"message"`
	PDF              string   `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	DurationMS       int64    `json:"duration_ms" yaml:"duration_ms"`
}

func summarizeCmd() *cobra.Command {
	opts := summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize URL",
		Short: "Summarize the article at URL and write it as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}

			// Logs go to stderr so stdout stays parseable
			logger := logging.NewTextLogger()
			slog.SetDefault(logger)

			cfg, err := config.LoadDigestConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chunk") {
				cfg.MaxChunkWords = opts.maxChunk
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			pipeline, err := app.BuildPipeline(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			ctx = logging.WithLogger(ctx, logger)

			return runSummarize(ctx, pipeline.Service, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "summarized_article.pdf", "PDF output path; empty skips the PDF")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().IntVar(&opts.maxChunk, "max-chunk", 300, "maximum words per chunk (overrides MAX_CHUNK_WORDS)")

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q: want text, json or yaml", format)
	}
}

// runSummarize runs the pipeline, writes the PDF and prints the result.
// Progress lines go to stderr.
func runSummarize(ctx context.Context, svc runner, url string, opts summarizeOptions, stdout, stderr io.Writer) error {
	progress := digest.ProgressFunc(func(p digest.Progress) {
		fmt.Fprintln(stderr, p.String())
	})

	d, err := svc.Run(ctx, url, progress)
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, d.PDF, 0o600); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}

	return printReport(stdout, opts.format, newReport(d, opts.out))
}

func newReport(d *entity.Digest, pdfPath string) report {
	r := report{
		URL:              d.URL,
		Summary:          d.Summary,
		SummaryLength:    text.CountRunes(d.Summary),
		SummaryWords:     text.CountWords(d.Summary),
		Chunks:           len(d.Chunks),
		ChunkSummaries:   d.Summaries,
		CompressionRatio: d.Compression.Ratio,
		CompressionLabel: d.Compression.Label,
		Message:          d.Compression.Message,
		PDF:              pdfPath,
		DurationMS:       d.Duration.Milliseconds(),
	}
	if d.Article != nil {
		r.Title = d.Article.Title
		r.ArticleLength = text.CountRunes(d.Article.Text)
		r.ArticleWords = text.CountWords(d.Article.Text)
	}
	return r
}

func printReport(w io.Writer, format string, r report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Article Length: %d characters\n\n", r.ArticleLength)
	fmt.Fprintf(&b, "Summary:\n%s\n\n", r.Summary)
	fmt.Fprintf(&b, "Summary Length: %d characters\n", r.SummaryLength)
	fmt.Fprintf(&b, "%s\n", r.Message)
	if r.PDF != "" {
		fmt.Fprintf(&b, "PDF written to %s\n", r.PDF)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
