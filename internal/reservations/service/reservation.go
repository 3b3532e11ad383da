package service

import (
	"context"
	"errors"
	"time"

	openinghoursservice "tavola/internal/openinghours/service"
	reservationerrors "tavola/internal/reservations/errors"
	"tavola/internal/reservations/repository"
	"tavola/internal/reservations/validator"
	"tavola/pkg/config"
	dbmongo "tavola/pkg/db/mongo"
	apperrors "tavola/pkg/errors"
	"tavola/pkg/kafka"
	"tavola/pkg/model"
	"tavola/pkg/sealer"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateResult is what a successful booking returns to the guest. The
// confirmation code is the only handle a guest gets; raw IDs stay
// admin-only.
type CreateResult struct {
	Reservation      *model.Reservation `json:"reservation"`
	ConfirmationCode string             `json:"confirmation_code,omitempty"`
}

type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest) (*CreateResult, error)
	GetByCode(ctx context.Context, code string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]model.Reservation, int64, error)
	Decide(ctx context.Context, id, status string) (*model.Reservation, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	schedules openinghoursservice.OpeningHoursService
	validator *validator.ReservationValidator
	txManager dbmongo.TransactionManager
	publisher kafka.Publisher
	sealer    *sealer.Sealer
	cfg       *config.Config

	// Swapped for a fixed clock in tests.
	now func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	schedules openinghoursservice.OpeningHoursService,
	validator *validator.ReservationValidator,
	txManager dbmongo.TransactionManager,
	publisher kafka.Publisher,
	sealer *sealer.Sealer,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		schedules: schedules,
		validator: validator,
		txManager: txManager,
		publisher: publisher,
		sealer:    sealer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create validates the request against the current schedule, re-checks
// remaining capacity inside a transaction and persists the reservation
// as pending. Capacity has to be re-checked transactionally because the
// availability endpoint the guest saw may be seconds stale.
func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest) (*CreateResult, error) {
	normalized, _, err := s.schedules.Normalized(ctx)
	if err != nil {
		return nil, err
	}

	reservation, validationErrs := s.validator.Validate(req, normalized, s.now())
	if len(validationErrs) > 0 {
		s.cfg.Log.Warn("Reservation validation failed",
			"date", req.Date,
			"errors", len(validationErrs),
		)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"fields": validationErrs,
		})
	}

	capacity := normalized.AreaCapacity(reservation.Area)

	err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		totals, err := s.repo.PartySizeTotals(sessCtx, reservation.Date, reservation.Area)
		if err != nil {
			return err
		}
		if totals[reservation.Time]+reservation.PartySize > capacity {
			return reservationerrors.ErrCapacityExceeded
		}

		created, err := s.repo.Create(sessCtx, reservation)
		if err != nil {
			return err
		}
		reservation = created
		return nil
	})
	if err != nil {
		if errors.Is(err, reservationerrors.ErrCapacityExceeded) {
			return nil, apperrors.Conflict("This time slot no longer has enough capacity")
		}
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	s.cfg.Log.Info("Reservation created",
		"reservation_id", reservation.ID,
		"date", reservation.Date,
		"time", reservation.Time,
		"area", reservation.Area,
		"party_size", reservation.PartySize,
	)

	code := ""
	if s.sealer != nil {
		code, err = s.sealer.Seal(reservation.ID, reservation.ContactPhone)
		if err != nil {
			// Losing the code is not worth losing the booking.
			s.cfg.Log.Error("Failed to seal confirmation code", "reservation_id", reservation.ID, "error", err)
			code = ""
		}
	}

	s.publishEvent(ctx, kafka.EventReservationCreated, reservation)

	return &CreateResult{Reservation: reservation, ConfirmationCode: code}, nil
}

// GetByCode resolves a sealed confirmation code back to its reservation.
// The sealed phone must still match the stored record, so a code stops
// working if an admin corrects the guest's phone number.
func (s *reservationService) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if s.sealer == nil {
		return nil, apperrors.Unavailable("Confirmation code lookup is not configured")
	}

	id, phone, err := s.sealer.Open(code)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid confirmation code")
	}

	reservation, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.ContactPhone != phone {
		return nil, apperrors.NotFound("Reservation")
	}
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return s.findByID(ctx, id)
}

func (s *reservationService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]model.Reservation, int64, error) {
	if filter.Status != "" &&
		filter.Status != model.ReservationStatusPending &&
		filter.Status != model.ReservationStatusConfirmed &&
		filter.Status != model.ReservationStatusDeclined {
		return nil, 0, apperrors.InvalidInput("status must be pending, confirmed or declined")
	}

	reservations, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations", "error", err)
		return nil, 0, apperrors.Internal("Failed to list reservations", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count reservations", "error", err)
		return nil, 0, apperrors.Internal("Failed to count reservations", err)
	}
	return reservations, total, nil
}

// Decide moves a pending reservation to confirmed or declined. The
// transition is one way; repeated decisions conflict instead of
// silently overwriting the first one.
func (s *reservationService) Decide(ctx context.Context, id, status string) (*model.Reservation, error) {
	if status != model.ReservationStatusConfirmed && status != model.ReservationStatusDeclined {
		return nil, apperrors.InvalidInput("status must be confirmed or declined")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, reservationerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		case errors.Is(err, reservationerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		case errors.Is(err, reservationerrors.ErrAlreadyDecided):
			return nil, apperrors.Conflict("Reservation has already been decided")
		default:
			s.cfg.Log.Error("Failed to update reservation status", "reservation_id", id, "error", err)
			return nil, apperrors.Internal("Failed to update reservation status", err)
		}
	}

	s.cfg.Log.Info("Reservation decided", "reservation_id", id, "status", status)

	eventType := kafka.EventReservationConfirmed
	if status == model.ReservationStatusDeclined {
		eventType = kafka.EventReservationDeclined
	}
	s.publishEvent(ctx, eventType, updated)

	return updated, nil
}

func (s *reservationService) findByID(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, reservationerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		case errors.Is(err, reservationerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		default:
			s.cfg.Log.Error("Failed to load reservation", "reservation_id", id, "error", err)
			return nil, apperrors.Internal("Failed to load reservation", err)
		}
	}
	return reservation, nil
}

// publishEvent emits a lifecycle event for the notification worker.
// Delivery failures are logged, never surfaced; the booking itself is
// already durable.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	msg, err := kafka.NewMessage(eventType).
		WithKey(reservation.ID).
		WithPayload(reservation).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build event", "event_type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
