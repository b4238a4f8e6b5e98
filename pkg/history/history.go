// Package history records finalize requests served by the finalize service.
//
// Each successful POST to the generate endpoint appends one [Record]. The
// record keeps only aggregate figures: how many cards were submitted, the
// complexity score of their analysis and the size of the generated algorithm.
// Card contents are never persisted.
//
// Three [Store] implementations are provided:
//   - [MemoryStore]: process lifetime only, the default
//   - [FileStore]: one JSON file per record under a directory
//   - [MongoStore]: a MongoDB collection, for multi-instance deployments
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cardstack/pkg/errors"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "history record not found")

// Record is one served finalize request.
type Record struct {
	ID            string  `json:"id" bson:"_id"`
	Timestamp     float64 `json:"timestamp" bson:"timestamp"` // Unix seconds
	CardsCount    int     `json:"cards_count" bson:"cards_count"`
	Complexity    int     `json:"complexity" bson:"complexity"`
	AlgorithmSize int     `json:"algorithm_size" bson:"algorithm_size"`
}

// NewRecord builds a record stamped with t and a fresh id.
func NewRecord(t time.Time, cards, complexity, algorithmSize int) Record {
	return Record{
		ID:            uuid.NewString(),
		Timestamp:     float64(t.UnixNano()) / 1e9,
		CardsCount:    cards,
		Complexity:    complexity,
		AlgorithmSize: algorithmSize,
	}
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Store persists records. List returns records oldest first.
type Store interface {
	Add(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Close() error
}
