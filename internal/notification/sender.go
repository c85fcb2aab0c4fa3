package notification

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AssignmentMessage is everything a sender needs to tell a responsible about a record assigned to them.
type AssignmentMessage struct {
	RecordID           int64
	MachineID          int64
	UserID             int64
	To                 string
	Name               string
	MachineName        string
	Priority           string
	Category           string
	Shift              string
	ProblemDescription string
	ActionURL          string
}

// Sender delivers assignment messages over one channel.
type Sender interface {
	SendAssignment(ctx context.Context, msg AssignmentMessage) error
}

// MultiSender delivers a message through every configured sender concurrently.
type MultiSender struct {
	senders []Sender
}

// NewMultiSender fans out to senders. Nil senders are skipped.
func NewMultiSender(senders ...Sender) *MultiSender {
	m := &MultiSender{}
	for _, s := range senders {
		if s != nil {
			m.senders = append(m.senders, s)
		}
	}
	return m
}

// Len returns the number of configured senders.
func (m *MultiSender) Len() int {
	return len(m.senders)
}

// SendAssignment waits for every sender and returns all of their errors joined.
// A failing sender does not cancel the others.
func (m *MultiSender) SendAssignment(ctx context.Context, msg AssignmentMessage) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, s := range m.senders {
		g.Go(func() error {
			if err := s.SendAssignment(ctx, msg); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
