package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"maintenance-records-backend/internal/model"
)

// EventInput describes an action taken while working a record.
type EventInput struct {
	ComponentName       string
	EventType           model.EventType
	EventDate           time.Time
	UsedPartDescription *string
	Quantity            *float64
	RemovedCondition    *string
	Destination         *model.EventDestination
	Observation         *string
	PhotoURL            *string
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.ComponentName) == "" {
		return invalid("component name is required")
	}
	if !in.EventType.IsValid() {
		return invalid("unknown event type", goerr.V("event_type", in.EventType))
	}
	if in.EventDate.IsZero() {
		return invalid("event date is required")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return invalid("quantity cannot be negative", goerr.V("quantity", *in.Quantity))
	}
	if in.Destination != nil && !in.Destination.IsValid() {
		return invalid("unknown destination", goerr.V("destination", *in.Destination))
	}
	return nil
}

// CreateEvent appends an event to the record. Events are history and may be added in any status.
func (s *Service) CreateEvent(ctx context.Context, machineID, recordID int64, in EventInput, createdBy int64) (*model.MaintenanceEvent, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.getRecord(ctx, machineID, recordID); err != nil {
		return nil, err
	}

	event := &model.MaintenanceEvent{
		MaintenanceRecordID: recordID,
		MachineID:           machineID,
		ComponentName:       in.ComponentName,
		EventType:           in.EventType,
		EventDate:           in.EventDate,
		UsedPartDescription: in.UsedPartDescription,
		Quantity:            in.Quantity,
		RemovedCondition:    in.RemovedCondition,
		Destination:         in.Destination,
		Observation:         in.Observation,
		PhotoURL:            in.PhotoURL,
		CreatedBy:           createdBy,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns the record's events, most recent event date first.
func (s *Service) ListEvents(ctx context.Context, machineID, recordID int64) ([]model.MaintenanceEvent, error) {
	if _, err := s.getRecord(ctx, machineID, recordID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, machineID, recordID)
}
