package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

// AnnotationService manages the user's research notes. Tags are given as
// comma separated text.
type AnnotationService interface {
	List(ctx context.Context) ([]models.Annotation, error)
	Create(ctx context.Context, datasetType, datasetID, notes, tags string) (*models.Annotation, error)
	Update(ctx context.Context, id, datasetType, datasetID, notes, tags string) (*models.Annotation, error)
	Delete(ctx context.Context, id string) error
}

type annotationService struct {
	client client.Client
	logger logging.Logger
}

func NewAnnotationService(c client.Client, l logging.Logger) AnnotationService {
	return &annotationService{client: c, logger: l}
}

func annotationInput(datasetType, datasetID, notes, tags string) (models.AnnotationInput, error) {
	in := models.AnnotationInput{
		DatasetID:   strings.TrimSpace(datasetID),
		DatasetType: strings.ToLower(strings.TrimSpace(datasetType)),
		Notes:       notes,
		Tags:        models.ParseTags(tags),
	}
	return in, ValidateAnnotation(in)
}

func (s *annotationService) List(ctx context.Context) ([]models.Annotation, error) {
	items, err := s.client.Annotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return items, nil
}

func (s *annotationService) Create(ctx context.Context, datasetType, datasetID, notes, tags string) (*models.Annotation, error) {
	in, err := annotationInput(datasetType, datasetID, notes, tags)
	if err != nil {
		return nil, err
	}
	a, err := s.client.CreateAnnotation(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create annotation: %w", err)
	}
	s.logger.Debug(ctx, "annotation created", "id", a.ID, "dataset", in.DatasetType, "record", in.DatasetID)
	return a, nil
}

func (s *annotationService) Update(ctx context.Context, id, datasetType, datasetID, notes, tags string) (*models.Annotation, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	in, err := annotationInput(datasetType, datasetID, notes, tags)
	if err != nil {
		return nil, err
	}
	a, err := s.client.UpdateAnnotation(ctx, strings.TrimSpace(id), in)
	if err != nil {
		return nil, fmt.Errorf("update annotation %s: %w", id, err)
	}
	return a, nil
}

func (s *annotationService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.client.DeleteAnnotation(ctx, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete annotation %s: %w", id, err)
	}
	return nil
}
