package composer

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBusy rejects commit/submit attempts while an upload or submission
	// is already in flight for this composer.
	ErrBusy = errors.New("composer is busy, wait for the current operation to finish")

	// ErrNothingQueued rejects batch submission of an empty ledger.
	ErrNothingQueued = errors.New("no products queued for submission")

	// ErrNoImages rejects a commit with neither staged files nor retained
	// image URLs. At least one image is mandatory per entry.
	ErrNoImages = errors.New("at least one image is required")

	// ErrNoSuchEntry reports an operator-supplied ledger index that does
	// not exist.
	ErrNoSuchEntry = errors.New("no such batch entry")
)

// ValidationError lists the required draft fields that are empty or invalid.
// It blocks the attempted transition before any network activity.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "required fields missing or invalid: " + strings.Join(e.Fields, ", ")
}
