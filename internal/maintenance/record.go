package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"maintenance-records-backend/internal/model"
	"maintenance-records-backend/internal/store"
)

// CreateInput holds the caller-supplied attributes of a new record.
type CreateInput struct {
	ProblemDescription string
	Priority           *model.Priority
	Category           *model.Category
	Shift              *model.Shift
	ResponsibleID      *int64
	StartedAt          *time.Time
}

// UpdateInput is a shallow patch. Nil fields are left untouched.
type UpdateInput struct {
	ProblemDescription *string
	Priority           *model.Priority
	Category           *model.Category
	Shift              *model.Shift
	ResponsibleID      *int64
	StartedAt          *time.Time
}

// FinishInput completes a record. FinishedAt defaults to now.
type FinishInput struct {
	SolutionDescription string
	FinishedAt          *time.Time
}

// Filter narrows record listings. Zero-valued fields impose no constraint.
type Filter struct {
	MachineID     *int64
	Status        *model.RecordStatus
	Priority      *model.Priority
	Category      *model.Category
	Shift         *model.Shift
	ResponsibleID *int64
	Query         string
}

func validateClassification(priority *model.Priority, category *model.Category, shift *model.Shift) error {
	if priority != nil && !priority.IsValid() {
		return invalid("unknown priority", goerr.V("priority", *priority))
	}
	if category != nil && !category.IsValid() {
		return invalid("unknown category", goerr.V("category", *category))
	}
	if shift != nil && !shift.IsValid() {
		return invalid("unknown shift", goerr.V("shift", *shift))
	}
	return nil
}

// Create opens a PENDING record on machineID. A supplied responsible must be an active user and is notified.
func (s *Service) Create(ctx context.Context, machineID int64, in CreateInput, createdBy int64) (*model.MaintenanceRecord, error) {
	if strings.TrimSpace(in.ProblemDescription) == "" {
		return nil, invalid("problem description is required")
	}
	if err := validateClassification(in.Priority, in.Category, in.Shift); err != nil {
		return nil, err
	}

	if err := s.ensureMachine(ctx, machineID); err != nil {
		return nil, err
	}
	if in.ResponsibleID != nil {
		if err := s.ensureActiveUser(ctx, *in.ResponsibleID); err != nil {
			return nil, err
		}
	}

	priority := model.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	record := &model.MaintenanceRecord{
		MachineID:          machineID,
		CreatedBy:          createdBy,
		ResponsibleID:      in.ResponsibleID,
		Status:             model.RecordStatusPending,
		Priority:           priority,
		Category:           in.Category,
		Shift:              in.Shift,
		ProblemDescription: in.ProblemDescription,
		StartedAt:          in.StartedAt,
	}
	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, err
	}

	if record.ResponsibleID != nil {
		s.notifyAssignment(ctx, record.ID)
	}
	return record, nil
}

// Update patches a PENDING record. Reassigning the responsible to a different user notifies the new one.
func (s *Service) Update(ctx context.Context, machineID, recordID int64, in UpdateInput) (*model.MaintenanceRecord, error) {
	existing, err := s.getRecord(ctx, machineID, recordID)
	if err != nil {
		return nil, err
	}
	if existing.IsDone() {
		return nil, goerr.Wrap(ErrAlreadyFinished, "cannot update record", goerr.V("record_id", recordID))
	}

	if in.ResponsibleID != nil {
		if err := s.ensureActiveUser(ctx, *in.ResponsibleID); err != nil {
			return nil, err
		}
	}

	changes := store.RecordChanges{
		ProblemDescription: in.ProblemDescription,
		Priority:           in.Priority,
		Category:           in.Category,
		Shift:              in.Shift,
		ResponsibleID:      in.ResponsibleID,
		StartedAt:          in.StartedAt,
	}
	if changes.IsEmpty() {
		return nil, goerr.Wrap(ErrNothingToUpdate, "empty patch", goerr.V("record_id", recordID))
	}
	if in.ProblemDescription != nil && strings.TrimSpace(*in.ProblemDescription) == "" {
		return nil, invalid("problem description cannot be blank")
	}
	if err := validateClassification(in.Priority, in.Category, in.Shift); err != nil {
		return nil, err
	}

	reassigned := in.ResponsibleID != nil &&
		(existing.ResponsibleID == nil || *existing.ResponsibleID != *in.ResponsibleID)

	updated, err := s.store.UpdatePendingRecord(ctx, machineID, recordID, changes)
	if err != nil {
		return nil, translate(err, ErrRecordNotFound, goerr.V("record_id", recordID))
	}

	if reassigned {
		s.notifyAssignment(ctx, recordID)
	}
	return updated, nil
}

// Finish moves a PENDING record to DONE. It fails with ErrAlreadyFinished if the record is, or concurrently became, DONE.
func (s *Service) Finish(ctx context.Context, machineID, recordID int64, in FinishInput, finishedBy int64) (*model.MaintenanceRecord, error) {
	existing, err := s.getRecord(ctx, machineID, recordID)
	if err != nil {
		return nil, err
	}
	if existing.IsDone() {
		return nil, goerr.Wrap(ErrAlreadyFinished, "cannot finish record", goerr.V("record_id", recordID))
	}
	if strings.TrimSpace(in.SolutionDescription) == "" {
		return nil, invalid("solution description is required")
	}

	finishedAt := s.now()
	if in.FinishedAt != nil {
		finishedAt = *in.FinishedAt
	}

	updated, err := s.store.FinishPendingRecord(ctx, machineID, recordID, store.Completion{
		SolutionDescription: in.SolutionDescription,
		FinishedBy:          finishedBy,
		FinishedAt:          finishedAt,
	})
	if err != nil {
		return nil, translate(err, ErrRecordNotFound, goerr.V("record_id", recordID))
	}
	return updated, nil
}

// Find returns the record recordID of machineID.
func (s *Service) Find(ctx context.Context, machineID, recordID int64) (*model.MaintenanceRecord, error) {
	return s.getRecord(ctx, machineID, recordID)
}

// ListRecords lists the records of one machine, newest first.
func (s *Service) ListRecords(ctx context.Context, machineID int64, filter Filter) ([]model.MaintenanceRecord, error) {
	if err := s.ensureMachine(ctx, machineID); err != nil {
		return nil, err
	}
	f := filter.toStore()
	f.MachineID = &machineID
	return s.store.ListRecords(ctx, f)
}

// ListAllRecords lists records across machines, each carrying its machine's id and name.
func (s *Service) ListAllRecords(ctx context.Context, filter Filter) ([]model.MaintenanceRecord, error) {
	f := filter.toStore()
	f.WithMachine = true
	return s.store.ListRecords(ctx, f)
}

func (f Filter) toStore() store.RecordFilter {
	return store.RecordFilter{
		MachineID:     f.MachineID,
		Status:        f.Status,
		Priority:      f.Priority,
		Category:      f.Category,
		Shift:         f.Shift,
		ResponsibleID: f.ResponsibleID,
		Query:         f.Query,
	}
}
