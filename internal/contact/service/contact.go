package service

import (
	"context"
	"errors"

	contacterrors "tavola/internal/contact/errors"
	"tavola/internal/contact/repository"
	"tavola/internal/contact/validator"
	"tavola/pkg/config"
	apperrors "tavola/pkg/errors"
	"tavola/pkg/kafka"
	"tavola/pkg/model"
)

type ContactService interface {
	Create(ctx context.Context, message *model.ContactMessage) (*model.ContactMessage, error)
	List(ctx context.Context, limit int, offset int64) ([]model.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) (*model.ContactMessage, error)
}

type contactService struct {
	repo      repository.ContactRepository
	validator *validator.ContactValidator
	publisher kafka.Publisher
	cfg       *config.Config
}

func NewContactService(
	repo repository.ContactRepository,
	validator *validator.ContactValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) ContactService {
	return &contactService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *contactService) Create(ctx context.Context, message *model.ContactMessage) (*model.ContactMessage, error) {
	if err := s.validator.Validate(message); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			s.cfg.Log.Warn("Contact message validation failed", "errors", len(validationErrs))
			return nil, apperrors.Validation("Contact message validation failed", map[string]any{
				"fields": validationErrs,
			})
		}
		return nil, apperrors.Internal("Contact message validation failed", err)
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		s.cfg.Log.Error("Failed to store contact message", "error", err)
		return nil, apperrors.Internal("Failed to store contact message", err)
	}

	s.cfg.Log.Info("Contact message received", "message_id", created.ID)

	msg, err := kafka.NewMessage(kafka.EventContactReceived).
		WithKey(created.ID).
		WithPayload(created).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build event", "event_type", kafka.EventContactReceived, "error", err)
		return created, nil
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish event",
			"event_type", kafka.EventContactReceived,
			"message_id", created.ID,
			"error", err,
		)
	}

	return created, nil
}

func (s *contactService) List(ctx context.Context, limit int, offset int64) ([]model.ContactMessage, int64, error) {
	messages, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list contact messages", "error", err)
		return nil, 0, apperrors.Internal("Failed to list contact messages", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count contact messages", "error", err)
		return nil, 0, apperrors.Internal("Failed to count contact messages", err)
	}
	return messages, total, nil
}

func (s *contactService) MarkRead(ctx context.Context, id string) (*model.ContactMessage, error) {
	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, contacterrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid contact message ID format")
		case errors.Is(err, contacterrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Contact message", id)
		default:
			s.cfg.Log.Error("Failed to mark contact message read", "message_id", id, "error", err)
			return nil, apperrors.Internal("Failed to mark contact message read", err)
		}
	}
	return updated, nil
}
