package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"article-digest/internal/domain/entity"
	"article-digest/internal/observability/logging"
	"article-digest/internal/observability/tracing"
	"article-digest/internal/utils/text"
)

// Service runs the digest pipeline. Collaborators are injected once at
// startup and shared by every request; the Service itself keeps no
// per-request state and is safe for concurrent use when they are.
type Service struct {
	Fetcher    PageFetcher
	Extractor  Extractor
	Chunker    *Chunker
	Summarizer Summarizer
	Renderer   Renderer

	tracer  trace.Tracer
	metrics MetricsRecorder
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock used for durations and progress.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a digest Service with the provided collaborators.
func NewService(
	fetcher PageFetcher,
	extractor Extractor,
	chunker *Chunker,
	summarizer Summarizer,
	renderer Renderer,
	opts ...Option,
) *Service {
	s := &Service{
		Fetcher:    fetcher,
		Extractor:  extractor,
		Chunker:    chunker,
		Summarizer: summarizer,
		Renderer:   renderer,
		tracer:     tracing.GetTracer(),
		metrics:    noopMetrics{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the pipeline for rawURL. Stages run strictly in order and
// chunks are summarized one at a time; progress, when non-nil, is notified
// after every chunk. Any failure aborts the run and is returned as a
// *StageError; no partial digest is returned.
func (s *Service) Run(ctx context.Context, rawURL string, progress ProgressReporter) (*entity.Digest, error) {
	rawURL = strings.TrimSpace(rawURL)
	ctx, span := s.tracer.Start(ctx, "digest.Run", trace.WithAttributes(attribute.String("url", rawURL)))
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("url", rawURL))
	start := s.now()

	d, err := s.run(ctx, logger, rawURL, progress)
	if err != nil {
		stage, _ := StageOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordRun("error_" + string(stage))
		logger.Warn("digest failed",
			slog.String("stage", string(stage)),
			slog.Duration("duration", s.now().Sub(start)),
			slog.Any("error", err))
		return nil, err
	}

	d.CreatedAt = start
	d.Duration = s.now().Sub(start)
	s.metrics.RecordRun("success")
	s.metrics.ObserveDigest(len(d.Chunks), d.Compression.Ratio, d.Compression.Label)
	logger.Info("digest completed",
		slog.Int("article_words", text.CountWords(d.Article.Text)),
		slog.Int("summary_words", text.CountWords(d.Summary)),
		slog.Int("chunks", len(d.Chunks)),
		slog.Float64("compression_ratio", d.Compression.Ratio),
		slog.String("compression_label", d.Compression.Label),
		slog.Duration("duration", d.Duration))
	return d, nil
}

func (s *Service) run(ctx context.Context, logger *slog.Logger, rawURL string, progress ProgressReporter) (*entity.Digest, error) {
	var (
		page      *Page
		article   *entity.Article
		chunks    []entity.Chunk
		summaries []string
		summary   string
		verdict   entity.Compression
		pdf       []byte
	)

	err := s.stage(ctx, logger, StageFetch, func(ctx context.Context) error {
		if err := entity.ValidateURL(rawURL); err != nil {
			return err
		}
		var err error
		page, err = s.Fetcher.Fetch(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, logger, StageExtract, func(ctx context.Context) error {
		var err error
		article, err = s.Extractor.Extract(ctx, page)
		if err != nil {
			return err
		}
		if text.CountWords(article.Text) == 0 {
			return ErrNoContent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, logger, StageChunk, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunks = s.Chunker.Split(article.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, logger, StageSummarize, func(ctx context.Context) error {
		var err error
		summaries, err = s.summarizeChunks(ctx, logger, chunks, progress)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, logger, StageAggregate, func(context.Context) error {
		summary = Aggregate(summaries)
		var err error
		verdict, err = Compress(article.Text, summary)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, logger, StageRender, func(ctx context.Context) error {
		var err error
		pdf, err = s.Renderer.Render(ctx, summary)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRenderFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entity.Digest{
		URL:         rawURL,
		Article:     article,
		Chunks:      chunks,
		Summaries:   summaries,
		Summary:     summary,
		Compression: verdict,
		PDF:         pdf,
	}, nil
}

// summarizeChunks calls the summarizer once per chunk, in order. Chunks
// without words are skipped rather than sent to the model.
func (s *Service) summarizeChunks(ctx context.Context, logger *slog.Logger, chunks []entity.Chunk, progress ProgressReporter) ([]string, error) {
	summaries := make([]string, 0, len(chunks))
	start := s.now()

	for i, chunk := range chunks {
		if chunk.Words == 0 {
			logger.Debug("skipping empty chunk", slog.Int("chunk", i))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := s.Summarizer.Summarize(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of %d: %w: %w", i+1, len(chunks), ErrSummarizationFailed, err)
		}
		summaries = append(summaries, strings.TrimSpace(out))

		p := newProgress(i+1, len(chunks), s.now().Sub(start))
		logger.Debug("chunk summarized",
			slog.Int("chunk", i+1),
			slog.Int("total", len(chunks)),
			slog.Int("chunk_words", chunk.Words),
			slog.Float64("percent", p.Percent),
			slog.Duration("remaining", p.Remaining))
		if progress != nil {
			progress.ChunkSummarized(p)
		}
	}
	return summaries, nil
}

// stage runs fn inside a span, records its duration and tags any error with
// the stage name.
func (s *Service) stage(ctx context.Context, logger *slog.Logger, stage Stage, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "digest."+string(stage))
	defer span.End()

	start := s.now()
	err := fn(ctx)
	elapsed := s.now().Sub(start)
	s.metrics.ObserveStage(string(stage), elapsed.Seconds(), err != nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var se *StageError
		if errors.As(err, &se) {
			return err
		}
		return &StageError{Stage: stage, Err: err}
	}

	logger.Debug("stage completed",
		slog.String("stage", string(stage)),
		slog.Duration("duration", elapsed))
	return nil
}
