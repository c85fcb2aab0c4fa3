// Package maintenance implements the maintenance record lifecycle: the PENDING to DONE state machine,
// photo attachments kept consistent with the attachment store, and assignment notifications.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/model"
	"maintenance-records-backend/internal/storage"
	"maintenance-records-backend/internal/store"
)

// DefaultObjectPrefix is the top-level folder for photo objects.
const DefaultObjectPrefix = "maintenance-records"

// Dispatcher schedules an assignment notification for a record. It must not block.
type Dispatcher interface {
	Dispatch(recordID int64)
}

// Service owns the maintenance record operations.
type Service struct {
	store        store.Store
	attachments  storage.AttachmentStore
	dispatcher   Dispatcher
	objectPrefix string
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for finish timestamps and object names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithObjectPrefix sets the folder photo objects are stored under.
func WithObjectPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.objectPrefix = prefix
		}
	}
}

// New creates a Service.
func New(st store.Store, attachments storage.AttachmentStore, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		store:        st,
		attachments:  attachments,
		dispatcher:   dispatcher,
		objectPrefix: DefaultObjectPrefix,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// notifyAssignment hands recordID to the dispatcher. Nothing that happens there reaches the caller.
func (s *Service) notifyAssignment(ctx context.Context, recordID int64) {
	if s.dispatcher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic while dispatching assignment", "record_id", recordID, "panic", r)
		}
	}()
	s.dispatcher.Dispatch(recordID)
}

// bestEffort runs fn and logs its error instead of returning it.
func bestEffort(ctx context.Context, msg string, fn func() error, attrs ...any) {
	if err := fn(); err != nil {
		logging.From(ctx).Warn(msg, append(attrs, logging.ErrAttrs(err)...)...)
	}
}

func (s *Service) ensureMachine(ctx context.Context, machineID int64) error {
	if _, err := s.store.FindMachine(ctx, machineID); err != nil {
		return translate(err, ErrMachineNotFound, goerr.V("machine_id", machineID))
	}
	return nil
}

func (s *Service) ensureActiveUser(ctx context.Context, userID int64) error {
	if _, err := s.store.FindActiveUser(ctx, userID); err != nil {
		return translate(err, ErrResponsibleNotFound, goerr.V("user_id", userID))
	}
	return nil
}

func (s *Service) getRecord(ctx context.Context, machineID, recordID int64) (*model.MaintenanceRecord, error) {
	record, err := s.store.GetRecord(ctx, machineID, recordID)
	if err != nil {
		return nil, translate(err, ErrRecordNotFound,
			goerr.V("machine_id", machineID), goerr.V("record_id", recordID))
	}
	return record, nil
}

// translate maps store.ErrNotFound to notFound and store.ErrConflict to ErrAlreadyFinished.
func translate(err error, notFound error, values ...goerr.Option) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return goerr.Wrap(notFound, "lookup failed", values...)
	case errors.Is(err, store.ErrConflict):
		return goerr.Wrap(ErrAlreadyFinished, "conditional write rejected", values...)
	default:
		return err
	}
}

func invalid(msg string, values ...goerr.Option) error {
	return goerr.Wrap(ErrInvalidInput, msg, values...)
}
