package source

import (
	"context"
	"errors"

	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

// ErrNoReading signals that no reading could be obtained this cycle. The
// caller skips the tick; it never substitutes a stale or default value.
var ErrNoReading = errors.New("no reading available")

// Source produces normalized readings. Implementations either poll an
// external endpoint or wrap an already-arrived payload.
type Source interface {
	Fetch(ctx context.Context) (*models.Reading, error)
}
