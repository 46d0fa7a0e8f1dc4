package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

// History page size bounds accepted by the API.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

type PredictionService interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictResponse, error)
	History(ctx context.Context, page, limit int) (*models.PredictionHistory, error)
	Get(ctx context.Context, id string) (*models.PredictionRecord, error)
	Stats(ctx context.Context) (*models.PredictionStats, error)
}

type predictionService struct {
	client client.Client
	logger logging.Logger
}

func NewPredictionService(c client.Client, l logging.Logger) PredictionService {
	return &predictionService{client: c, logger: l}
}

func (s *predictionService) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictResponse, error) {
	req.CustomIdentifier = strings.TrimSpace(req.CustomIdentifier)
	if err := ValidatePrediction(req); err != nil {
		return nil, err
	}
	resp, err := s.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", req.CustomIdentifier, err)
	}
	if resp.PredictionID == "" {
		s.logger.Warn(ctx, "prediction not saved to history", "candidate", req.CustomIdentifier)
	}
	return resp, nil
}

// History clamps page to at least 1 and limit to [1, MaxHistoryLimit],
// using DefaultHistoryLimit for a non-positive limit.
func (s *predictionService) History(ctx context.Context, page, limit int) (*models.PredictionHistory, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)
	h, err := s.client.PredictionHistory(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	return h, nil
}

func (s *predictionService) Get(ctx context.Context, id string) (*models.PredictionRecord, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.client.PredictionGet(ctx, strings.TrimSpace(id))
}

func (s *predictionService) Stats(ctx context.Context) (*models.PredictionStats, error) {
	return s.client.PredictionStats(ctx)
}
