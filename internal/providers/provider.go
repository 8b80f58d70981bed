package providers

import (
	"context"
	"errors"

	"github.com/dharmasatrya/flightscout/internal/models"
)

// Provider is a flight-data source. Search returns an error only when the
// provider could not answer (transport failure, bad status, malformed
// payload); "no flights" is an empty result.
type Provider interface {
	Name() string
	Search(ctx context.Context, q models.LegQuery) (*models.ProviderResult, error)
}

var (
	ErrTemporaryFailure = errors.New("temporary service unavailable")
	ErrMalformedPayload = errors.New("malformed provider payload")
)

type ProviderError struct {
	Provider  string
	Err       error
	Temporary bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Err:       err,
		Temporary: errors.Is(err, ErrTemporaryFailure),
	}
}

// IsRetryable reports whether a failed call is worth repeating.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary
	}
	return errors.Is(err, ErrTemporaryFailure)
}
