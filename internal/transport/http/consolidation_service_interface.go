package http

import (
	"context"

	"consolidator/internal/exporter"
	"consolidator/internal/services"
	"consolidator/pkg/contracts/domain"
)

// ConsolidationServiceInterface defines the interface for consolidation operations
type ConsolidationServiceInterface interface {
	Consolidate(ctx context.Context, req services.ConsolidationRequest) (*services.ConsolidationResult, error)
	Export(ctx context.Context, result *services.ConsolidationResult, format exporter.Format) ([]byte, error)
	Preview(result *services.ConsolidationResult) domain.Preview
	FileName(format exporter.Format) string
	DefaultRange() (start, end string)
	MaxUploadBytes() int64
}

// Ensure ConsolidationService implements ConsolidationServiceInterface
var _ ConsolidationServiceInterface = (*services.ConsolidationService)(nil)
