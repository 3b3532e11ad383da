package service

import (
	"context"
	"errors"

	openinghourserrors "tavola/internal/openinghours/errors"
	"tavola/internal/openinghours/repository"
	"tavola/internal/openinghours/validator"
	"tavola/pkg/config"
	apperrors "tavola/pkg/errors"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
)

type OpeningHoursService interface {
	Get(ctx context.Context) (*model.OpeningHours, error)
	Put(ctx context.Context, doc *model.OpeningHours) ([]schedule.Warning, error)
	Normalized(ctx context.Context) (*schedule.NormalizedOpeningHours, []schedule.Warning, error)
}

type openingHoursService struct {
	repo      repository.OpeningHoursRepository
	validator *validator.OpeningHoursValidator
	cfg       *config.Config
}

func NewOpeningHoursService(
	repo repository.OpeningHoursRepository,
	validator *validator.OpeningHoursValidator,
	cfg *config.Config,
) OpeningHoursService {
	return &openingHoursService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *openingHoursService) Get(ctx context.Context) (*model.OpeningHours, error) {
	doc, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, openinghourserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Opening hours")
		}
		s.cfg.Log.Error("Failed to load opening hours", "error", err)
		return nil, apperrors.Internal("Failed to load opening hours", err)
	}
	return doc, nil
}

// Put validates and stores a replacement schedule document. The warning
// list from a normalization dry run is returned so the admin UI can show
// what the engine will ignore or substitute.
func (s *openingHoursService) Put(ctx context.Context, doc *model.OpeningHours) ([]schedule.Warning, error) {
	if err := s.validator.Validate(doc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			s.cfg.Log.Warn("Opening hours validation failed", "errors", len(validationErrs))
			return nil, apperrors.Validation("Opening hours validation failed", map[string]any{
				"fields": validationErrs,
			})
		}
		return nil, apperrors.Internal("Opening hours validation failed", err)
	}

	_, warnings := schedule.Normalize(doc)

	if err := s.repo.Replace(ctx, doc); err != nil {
		s.cfg.Log.Error("Failed to store opening hours", "error", err)
		return nil, apperrors.Internal("Failed to store opening hours", err)
	}

	s.cfg.Log.Info("Opening hours updated", "warnings", len(warnings))
	return warnings, nil
}

// Normalized loads the stored document and runs it through the engine's
// normalizer. A missing document degrades to "closed every day" rather
// than an error so the public site keeps working before initial setup.
func (s *openingHoursService) Normalized(ctx context.Context) (*schedule.NormalizedOpeningHours, []schedule.Warning, error) {
	doc, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, openinghourserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to load opening hours", "error", err)
		return nil, nil, apperrors.Internal("Failed to load opening hours", err)
	}

	normalized, warnings := schedule.Normalize(doc)
	for _, w := range warnings {
		s.cfg.Log.Warn("Opening hours configuration issue", "field", w.Field, "message", w.Message)
	}
	return normalized, warnings, nil
}
