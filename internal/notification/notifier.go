package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/store"
)

const defaultMachineName = "Machine"

// AssignmentLoader resolves a record together with its machine and responsible.
type AssignmentLoader interface {
	GetAssignment(ctx context.Context, recordID int64) (*store.Assignment, error)
}

// Notifier tells the responsible of a record that the record was assigned to them.
type Notifier struct {
	loader AssignmentLoader
	sender Sender
	appURL string
}

// NewNotifier creates a notifier building deep links from appURL.
func NewNotifier(loader AssignmentLoader, sender Sender, appURL string) *Notifier {
	return &Notifier{
		loader: loader,
		sender: sender,
		appURL: strings.TrimSuffix(appURL, "/"),
	}
}

// Notify sends the assignment message for recordID. It never fails: errors are logged with the record id and dropped.
func (n *Notifier) Notify(ctx context.Context, recordID int64) {
	logger := logging.From(ctx).With("record_id", recordID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while notifying responsible", "panic", r)
		}
	}()

	msg, ok, err := n.Build(ctx, recordID)
	if err != nil {
		logger.Error("failed to load assignment", logging.ErrAttrs(err)...)
		return
	}
	if !ok {
		logger.Debug("record or responsible not resolvable, skipping notification")
		return
	}

	if err := n.sender.SendAssignment(ctx, msg); err != nil {
		logger.Error("failed to notify responsible", logging.ErrAttrs(err)...)
		return
	}
	logger.Info("responsible notified", "user_id", msg.UserID)
}

// Build resolves the message for recordID. ok is false when the record is gone or has no responsible
// with an email to notify.
func (n *Notifier) Build(ctx context.Context, recordID int64) (AssignmentMessage, bool, error) {
	a, err := n.loader.GetAssignment(ctx, recordID)
	if errors.Is(err, store.ErrNotFound) {
		return AssignmentMessage{}, false, nil
	}
	if err != nil {
		return AssignmentMessage{}, false, err
	}
	if a.Responsible == nil || a.Responsible.Email == "" {
		return AssignmentMessage{}, false, nil
	}

	machineName := a.MachineName
	if machineName == "" {
		machineName = defaultMachineName
	}

	r := a.Record
	msg := AssignmentMessage{
		RecordID:           r.ID,
		MachineID:          r.MachineID,
		UserID:             a.Responsible.ID,
		To:                 a.Responsible.Email,
		Name:               a.Responsible.Name,
		MachineName:        machineName,
		Priority:           PriorityLabel(string(r.Priority)),
		ProblemDescription: r.ProblemDescription,
		ActionURL:          n.recordURL(r.MachineID, r.ID),
	}
	msg.Category = emptyLabel
	if r.Category != nil {
		msg.Category = CategoryLabel(string(*r.Category))
	}
	msg.Shift = emptyLabel
	if r.Shift != nil {
		msg.Shift = ShiftLabel(string(*r.Shift))
	}
	return msg, true, nil
}

func (n *Notifier) recordURL(machineID, recordID int64) string {
	return fmt.Sprintf("%s/machines/%d/maintenance-records/%d", n.appURL, machineID, recordID)
}
