package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"consolidator/internal/calendar"
	"consolidator/internal/config"
	"consolidator/internal/dataprocessing"
	apperrors "consolidator/internal/errors"
	"consolidator/internal/exporter"
	"consolidator/internal/infrastructure"
	"consolidator/internal/validation"
	"consolidator/pkg/contracts/domain"
)

// ConsolidationRequest is one user action: a date range and the files to
// align on it.
type ConsolidationRequest struct {
	Start string          `json:"start" validate:"required"`
	End   string          `json:"end" validate:"required"`
	Files []domain.Upload `json:"files" validate:"required,min=1,dive"`
}

// ConsolidationResult is a finalized table with the report describing it.
type ConsolidationResult struct {
	Range  calendar.Range
	Table  *domain.ConsolidatedTable
	Report domain.ConsolidationReport
}

// ConsolidationService runs the consolidation pipeline for one request
type ConsolidationService struct {
	cfg        config.ConsolidationConfig
	limits     config.LimitsConfig
	normalizer *dataprocessing.Normalizer
	exporter   *exporter.Exporter
	validator  *validation.RequestValidator
	tracer     trace.Tracer
	metrics    *infrastructure.ConsolidationMetrics
	logger     *slog.Logger
}

// NewConsolidationService creates the service from configuration. A nil
// telemetry records nothing.
func NewConsolidationService(cfg *config.Config, telemetry *infrastructure.Telemetry, logger *slog.Logger) (*ConsolidationService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	logger = logger.With(slog.String("service", "consolidation"))

	policy, err := dataprocessing.ParseDuplicatePolicy(cfg.Consolidation.KeepDuplicate)
	if err != nil {
		return nil, apperrors.NewConfigError("keep_duplicate", err)
	}
	normalizer, err := dataprocessing.NewNormalizer(dataprocessing.NormalizerOptions{
		PrimaryEncoding:  cfg.Consolidation.PrimaryEncoding,
		FallbackEncoding: cfg.Consolidation.FallbackEncoding,
		Duplicates:       policy,
	}, logger)
	if err != nil {
		return nil, err
	}

	metrics, err := infrastructure.NewConsolidationMetrics(telemetry.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to register consolidation metrics: %w", err)
	}

	return &ConsolidationService{
		cfg:        cfg.Consolidation,
		limits:     cfg.Limits,
		normalizer: normalizer,
		exporter: exporter.New(exporter.Options{
			SheetName: cfg.Consolidation.SheetName,
			BaseName:  cfg.Consolidation.OutputName,
			CSVBOM:    true,
		}, logger),
		validator: validation.NewRequestValidator(),
		tracer:    telemetry.Tracer,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Consolidate validates the request, normalizes every upload and returns
// the finalized table. The join order is the upload order whatever the
// order in which files finish parsing.
func (s *ConsolidationService) Consolidate(ctx context.Context, req ConsolidationRequest) (result *ConsolidationResult, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "consolidation.consolidate",
		trace.WithAttributes(
			attribute.String("consolidation.start", req.Start),
			attribute.String("consolidation.end", req.End),
			attribute.Int("consolidation.files", len(req.Files)),
		))
	defer func() {
		outcome, rows := "success", 0
		if err != nil {
			outcome = outcomeOf(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			rows = result.Table.Len()
		}
		s.metrics.RecordRun(ctx, outcome, rows, time.Since(started))
		span.End()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	rng, err := calendar.Build(req.Start, req.End, s.limits.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	outcomes, err := s.normalizeAll(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	report := domain.ConsolidationReport{
		Start: rng.Start.Format(domain.DateLayout),
		End:   rng.End.Format(domain.DateLayout),
		Days:  rng.Days(),
		Files: make([]domain.FileReport, 0, len(req.Files)),
	}
	series := make([]*domain.StockSeries, 0, len(req.Files))

	for i, out := range outcomes {
		upload := req.Files[i]
		if out.err != nil {
			if !s.cfg.SkipInvalidFiles {
				s.metrics.RecordFile(ctx, string(domain.FileStatusFailed), "", len(upload.Content))
				return nil, out.err
			}
			s.metrics.RecordFile(ctx, string(domain.FileStatusSkipped), "", len(upload.Content))
			s.logger.WarnContext(ctx, "skipping invalid file",
				slog.String("file", upload.Name),
				slog.String("error", out.err.Error()))
			report.Skipped = append(report.Skipped, upload.Name)
			report.Files = append(report.Files, domain.FileReport{
				File:   upload.Name,
				Status: domain.FileStatusSkipped,
				Error:  apperrors.UserMessage(out.err),
			})
			continue
		}

		s.metrics.RecordFile(ctx, string(domain.FileStatusOK), out.series.Encoding, len(upload.Content))
		series = append(series, out.series)
		report.Stocks = append(report.Stocks, out.series.Name)
		report.Files = append(report.Files, domain.FileReport{
			File:       upload.Name,
			Stock:      out.series.Name,
			Status:     domain.FileStatusOK,
			Encoding:   out.series.Encoding,
			RowsRead:   out.series.RowsRead,
			RowsKept:   out.series.Len(),
			Dropped:    out.series.Dropped,
			Duplicates: out.series.Duplicates,
		})
	}

	if len(series) == 0 {
		return nil, apperrors.NewAppValidationError("none of the uploaded files could be read").
			WithContext("skipped", report.Skipped)
	}

	table, stats, err := dataprocessing.Consolidate(rng, series)
	if err != nil {
		return nil, err
	}
	report.FilledCells = stats.FilledCells
	report.DurationMS = time.Since(started).Milliseconds()

	span.SetAttributes(
		attribute.Int("consolidation.rows", stats.Rows),
		attribute.Int("consolidation.stocks", stats.StockColumns),
		attribute.Int("consolidation.filled_cells", stats.FilledCells),
	)
	s.logger.InfoContext(ctx, "consolidation completed",
		slog.String("range", rng.String()),
		slog.Int("rows", stats.Rows),
		slog.Int("stocks", stats.StockColumns),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("filled_cells", stats.FilledCells),
		slog.Int("leading_gaps", stats.LeadingGaps),
		slog.Int64("duration_ms", report.DurationMS))

	return &ConsolidationResult{Range: rng, Table: table, Report: report}, nil
}

func (s *ConsolidationService) validate(req ConsolidationRequest) error {
	if len(req.Files) == 0 {
		return apperrors.NewAppValidationError("please upload at least one CSV file")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}
	if s.limits.MaxFiles > 0 && len(req.Files) > s.limits.MaxFiles {
		return apperrors.NewAppValidationError(fmt.Sprintf(
			"%d files uploaded, the maximum is %d", len(req.Files), s.limits.MaxFiles))
	}
	return nil
}

type normalizeOutcome struct {
	series *domain.StockSeries
	err    error
}

// normalizeAll parses the uploads with at most ParseWorkers goroutines.
// Per-file errors are kept in the outcomes; only cancellation aborts.
func (s *ConsolidationService) normalizeAll(ctx context.Context, uploads []domain.Upload) ([]normalizeOutcome, error) {
	outcomes := make([]normalizeOutcome, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.ParseWorkers, 1))
	for i := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			series, err := s.normalizer.Normalize(uploads[i])
			outcomes[i] = normalizeOutcome{series: series, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Export serializes a result in the given format
func (s *ConsolidationService) Export(ctx context.Context, result *ConsolidationResult, format exporter.Format) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "consolidation.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	data, err := s.exporter.Bytes(result.Table, format)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.bytes", len(data)))
	return data, nil
}

// Preview renders the configured number of leading rows
func (s *ConsolidationService) Preview(result *ConsolidationResult) domain.Preview {
	return exporter.BuildPreview(result.Table, s.cfg.PreviewRows)
}

// FileName returns the download name for the format
func (s *ConsolidationService) FileName(format exporter.Format) string {
	return s.exporter.FileName(format)
}

// DefaultRange returns the dates pre-filled in the upload form
func (s *ConsolidationService) DefaultRange() (start, end string) {
	return s.cfg.DefaultStart, s.cfg.DefaultEnd
}

// MaxUploadBytes is the request body limit for uploads
func (s *ConsolidationService) MaxUploadBytes() int64 {
	return s.limits.MaxUploadBytes
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case apperrors.IsType(err, apperrors.ErrTypeFormat):
		return "format_error"
	case apperrors.IsType(err, apperrors.ErrTypeValidation), apperrors.IsType(err, apperrors.ErrTypeParse):
		return "invalid_request"
	default:
		return "error"
	}
}
