package maintenance

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every missing-entity error below via errors.Is.
	ErrNotFound = errors.New("not found")

	ErrMachineNotFound     = fmt.Errorf("machine %w", ErrNotFound)
	ErrRecordNotFound      = fmt.Errorf("maintenance record %w", ErrNotFound)
	ErrResponsibleNotFound = fmt.Errorf("active responsible %w", ErrNotFound)
	ErrPhotoNotFound       = fmt.Errorf("photo %w", ErrNotFound)

	ErrAlreadyFinished   = errors.New("maintenance record is already finished")
	ErrNothingToUpdate   = errors.New("nothing to update")
	ErrInvalidAttachment = errors.New("attachment must be a non-empty image")
	ErrInvalidInput      = errors.New("invalid input")
)
