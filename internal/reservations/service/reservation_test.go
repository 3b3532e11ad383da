package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	openinghoursservice "tavola/internal/openinghours/service"
	"tavola/internal/reservations/repository"
	"tavola/internal/reservations/validator"
	"tavola/pkg/config"
	dbmongo "tavola/pkg/db/mongo"
	apperrors "tavola/pkg/errors"
	"tavola/pkg/kafka"
	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
	"tavola/pkg/sealer"
)

type mockScheduleService struct {
	normalized func(ctx context.Context) (*schedule.NormalizedOpeningHours, []schedule.Warning, error)
}

func (m *mockScheduleService) Get(context.Context) (*model.OpeningHours, error) {
	return nil, nil
}

func (m *mockScheduleService) Put(context.Context, *model.OpeningHours) ([]schedule.Warning, error) {
	return nil, nil
}

func (m *mockScheduleService) Normalized(ctx context.Context) (*schedule.NormalizedOpeningHours, []schedule.Warning, error) {
	return m.normalized(ctx)
}

var _ openinghoursservice.OpeningHoursService = (*mockScheduleService)(nil)

type mockRepository struct {
	create          func(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	findByID        func(ctx context.Context, id string) (*model.Reservation, error)
	updateStatus    func(ctx context.Context, id, status string) (*model.Reservation, error)
	partySizeTotals func(ctx context.Context, date, area string) (map[string]int, error)
}

func (m *mockRepository) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	return m.create(ctx, reservation)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	return m.findByID(ctx, id)
}

func (m *mockRepository) FindAll(context.Context, repository.ListFilter, int, int64) ([]model.Reservation, error) {
	return nil, nil
}

func (m *mockRepository) Count(context.Context, repository.ListFilter) (int64, error) {
	return 0, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Reservation, error) {
	return m.updateStatus(ctx, id, status)
}

func (m *mockRepository) PartySizeTotals(ctx context.Context, date, area string) (map[string]int, error) {
	return m.partySizeTotals(ctx, date, area)
}

var _ repository.ReservationRepository = (*mockRepository)(nil)

// inlineTxManager runs the transaction body directly; the mocks have no
// session to speak of.
type inlineTxManager struct{}

func (inlineTxManager) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return fn(mongo.SessionContext(nil))
}

type recordingPublisher struct {
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) eventTypes() []string {
	var types []string
	for _, msg := range p.messages {
		types = append(types, msg.Headers[kafka.HeaderEventType])
	}
	return types
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func testSealer(t *testing.T) *sealer.Sealer {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	s, err := sealer.New(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// 2025-06-02 is a Monday with an 18:00-22:00 shift, capacity 40 indoor.
func testNormalized(t *testing.T) *schedule.NormalizedOpeningHours {
	t.Helper()
	n, warnings := schedule.Normalize(&model.OpeningHours{
		Timezone: "UTC",
		Week: map[string]model.DaySchedule{
			"mon": {Intervals: []model.TimeInterval{{Start: "18:00", End: "22:00"}}},
		},
		Slot: &model.SlotConfig{StepMinutes: 30, MinLeadMinutes: 60, MaxAdvanceDays: 60},
		Areas: map[string]model.AreaConfig{
			model.AreaIndoor:  {Capacity: 40, Enabled: true},
			model.AreaOutdoor: {Capacity: 24, Enabled: true},
		},
	})
	if len(warnings) != 0 {
		t.Fatalf("test schedule should normalize cleanly, got warnings: %v", warnings)
	}
	return n
}

func newTestService(t *testing.T, repo *mockRepository, publisher *recordingPublisher, codeSealer *sealer.Sealer) *reservationService {
	t.Helper()

	n := testNormalized(t)
	schedules := &mockScheduleService{
		normalized: func(context.Context) (*schedule.NormalizedOpeningHours, []schedule.Warning, error) {
			return n, nil, nil
		},
	}
	cfg := testConfig()

	svc := NewReservationService(
		repo,
		schedules,
		validator.NewReservationValidator(cfg.Log),
		inlineTxManager{},
		publisher,
		codeSealer,
		cfg,
	).(*reservationService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		Date:         "2025-06-02",
		Time:         "19:00",
		PartySize:    4,
		Area:         model.AreaIndoor,
		ContactName:  "Anna Beck",
		ContactPhone: "+49 151 23456789",
	}
}

func TestCreateReservation(t *testing.T) {
	publisher := &recordingPublisher{}
	repo := &mockRepository{
		partySizeTotals: func(context.Context, string, string) (map[string]int, error) {
			return map[string]int{"19:00": 20}, nil
		},
		create: func(_ context.Context, reservation *model.Reservation) (*model.Reservation, error) {
			reservation.ID = "665a1b2c3d4e5f6a7b8c9d0e"
			reservation.CreatedAt = time.Now().UTC()
			return reservation, nil
		},
	}
	codeSealer := testSealer(t)
	svc := newTestService(t, repo, publisher, codeSealer)

	result, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reservation.Status != model.ReservationStatusPending {
		t.Errorf("expected pending status, got %q", result.Reservation.Status)
	}
	if result.ConfirmationCode == "" {
		t.Fatal("expected a confirmation code")
	}

	id, phone, err := codeSealer.Open(result.ConfirmationCode)
	if err != nil {
		t.Fatalf("confirmation code does not open: %v", err)
	}
	if id != result.Reservation.ID || phone != result.Reservation.ContactPhone {
		t.Errorf("confirmation code contents mismatch: %s %s", id, phone)
	}

	types := publisher.eventTypes()
	if len(types) != 1 || types[0] != kafka.EventReservationCreated {
		t.Errorf("expected a %s event, got %v", kafka.EventReservationCreated, types)
	}
}

func TestCreateReservationCapacityConflict(t *testing.T) {
	publisher := &recordingPublisher{}
	repo := &mockRepository{
		partySizeTotals: func(context.Context, string, string) (map[string]int, error) {
			// 38 of 40 seats taken; a party of 4 does not fit.
			return map[string]int{"19:00": 38}, nil
		},
		create: func(context.Context, *model.Reservation) (*model.Reservation, error) {
			t.Fatal("create must not be reached when capacity is exhausted")
			return nil, nil
		},
	}
	svc := newTestService(t, repo, publisher, nil)

	_, err := svc.Create(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if len(publisher.messages) != 0 {
		t.Error("no event should be published for a rejected booking")
	}
}

func TestCreateReservationValidationFailure(t *testing.T) {
	publisher := &recordingPublisher{}
	repo := &mockRepository{
		partySizeTotals: func(context.Context, string, string) (map[string]int, error) {
			t.Fatal("capacity check must not be reached for an invalid request")
			return nil, nil
		},
	}
	svc := newTestService(t, repo, publisher, nil)

	req := validRequest()
	req.Date = "2025-05-01"
	req.ContactPhone = ""

	_, err := svc.Create(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
	if appErr.Details["fields"] == nil {
		t.Error("expected field errors in details")
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		wantEvent string
	}{
		{name: "confirm", status: model.ReservationStatusConfirmed, wantEvent: kafka.EventReservationConfirmed},
		{name: "decline", status: model.ReservationStatusDeclined, wantEvent: kafka.EventReservationDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			repo := &mockRepository{
				updateStatus: func(_ context.Context, id, status string) (*model.Reservation, error) {
					return &model.Reservation{ID: id, Status: status}, nil
				},
			}
			svc := newTestService(t, repo, publisher, nil)

			updated, err := svc.Decide(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", tt.status)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Status != tt.status {
				t.Errorf("expected status %q, got %q", tt.status, updated.Status)
			}

			types := publisher.eventTypes()
			if len(types) != 1 || types[0] != tt.wantEvent {
				t.Errorf("expected a %s event, got %v", tt.wantEvent, types)
			}
		})
	}
}

func TestDecideRejectsInvalidStatus(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &recordingPublisher{}, nil)

	_, err := svc.Decide(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", "pending")
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestGetByCode(t *testing.T) {
	codeSealer := testSealer(t)
	stored := &model.Reservation{
		ID:           "665a1b2c3d4e5f6a7b8c9d0e",
		ContactPhone: "+4915123456789",
		Status:       model.ReservationStatusConfirmed,
	}
	repo := &mockRepository{
		findByID: func(_ context.Context, id string) (*model.Reservation, error) {
			if id != stored.ID {
				t.Errorf("unexpected lookup ID %q", id)
			}
			return stored, nil
		},
	}
	svc := newTestService(t, repo, &recordingPublisher{}, codeSealer)

	code, err := codeSealer.Seal(stored.ID, stored.ContactPhone)
	if err != nil {
		t.Fatal(err)
	}

	reservation, err := svc.GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reservation.ID != stored.ID {
		t.Errorf("expected reservation %q, got %q", stored.ID, reservation.ID)
	}
}

func TestGetByCodeRejectsTamperedCode(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &recordingPublisher{}, testSealer(t))

	_, err := svc.GetByCode(context.Background(), "bm90LWEtcmVhbC1jb2Rl")
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestGetByCodeStalePhoneMismatch(t *testing.T) {
	codeSealer := testSealer(t)
	repo := &mockRepository{
		findByID: func(context.Context, string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:           "665a1b2c3d4e5f6a7b8c9d0e",
				ContactPhone: "+4917612345678",
			}, nil
		},
	}
	svc := newTestService(t, repo, &recordingPublisher{}, codeSealer)

	code, err := codeSealer.Seal("665a1b2c3d4e5f6a7b8c9d0e", "+4915123456789")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.GetByCode(context.Background(), code)
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}
