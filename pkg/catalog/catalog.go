// Package catalog defines the music catalog capability used to enrich song
// selections with track identity and genre tags.
package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the catalog has no result for a query.
	ErrNotFound = errors.New("catalog: not found")
	// ErrUnauthorized is returned when the catalog rejects the credentials.
	ErrUnauthorized = errors.New("catalog: unauthorized")
)

// Track is the catalog metadata of a single track.
type Track struct {
	ID         string
	Name       string
	Album      string
	ImageURL   string
	URL        string
	PreviewURL string
	Genres     []string
}

type Catalog interface {
	SearchTrack(ctx context.Context, song, artist string) (*Track, error)
	SearchArtist(ctx context.Context, artist string) ([]string, error)
}

// TransientError marks a failure that may succeed if retried later, such as
// a timeout or a rate limit response.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a transient error. A nil error stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err or any error it wraps is transient.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// Outcome classifies the result of a catalog call.
type Outcome int

const (
	OK Outcome = iota
	NotFound
	Failed
	TransientFailure
	Unauthorized
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case NotFound:
		return "not found"
	case TransientFailure:
		return "transient"
	case Unauthorized:
		return "unauthorized"
	default:
		return "failed"
	}
}

// Classify maps an error returned by a Catalog to its outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized
	case IsTransient(err):
		return TransientFailure
	case errors.Is(err, ErrNotFound):
		return NotFound
	default:
		return Failed
	}
}
