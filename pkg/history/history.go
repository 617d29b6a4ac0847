// Package history records the expressions a user has turned into trees.
//
// Every REPL line, one-shot render and API request appends an [Entry]. The
// [Store] interface has three implementations:
//   - [FileStore]: JSON lines in the user's config directory, for the CLI
//   - [MemoryStore]: process-local, for tests and the server without a database
//   - [MongoStore]: a MongoDB collection shared by server instances
//
// # Usage
//
//	store, err := history.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	entry := history.NewEntry(expr, result.Root.String(), result.Lines, result.Value, nil)
//	if err := store.Add(ctx, entry); err != nil {
//	    return err
//	}
//	recent, err := store.List(ctx, 20)
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	perrors "github.com/matzehuels/partree/pkg/errors"
)

// DefaultLimit is the number of entries List returns when limit <= 0.
const DefaultLimit = 50

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("history store closed")

// Entry is one recorded expression.
type Entry struct {
	ID         string    `json:"id" bson:"_id"`
	Expression string    `json:"expression" bson:"expression"`
	Tree       string    `json:"tree,omitempty" bson:"tree,omitempty"`
	Grid       []string  `json:"grid,omitempty" bson:"grid,omitempty"`
	Value      string    `json:"value,omitempty" bson:"value,omitempty"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewEntry creates an entry with a fresh ID. A non-nil err marks the
// expression as rejected; tree and grid are then usually empty.
func NewEntry(expr, tree string, grid []string, value string, err error) *Entry {
	e := &Entry{
		ID:         uuid.NewString(),
		Expression: expr,
		Tree:       tree,
		Grid:       grid,
		Value:      value,
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		e.Error = perrors.UserMessage(err)
	}
	return e
}

// Failed reports whether the expression could not be built.
func (e *Entry) Failed() bool { return e.Error != "" }

// Store is the interface for history backends. Implementations are safe for
// concurrent use.
type Store interface {
	// Add appends an entry.
	Add(ctx context.Context, e *Entry) error

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Nop is a Store that records nothing.
type Nop struct{}

func (Nop) Add(context.Context, *Entry) error           { return nil }
func (Nop) List(context.Context, int) ([]*Entry, error) { return nil, nil }
func (Nop) Clear(context.Context) error                 { return nil }
func (Nop) Close() error                                { return nil }

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// newestFirst returns the last n entries of an insertion-ordered slice in
// reverse order.
func newestFirst(entries []*Entry, n int) []*Entry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]*Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}

var (
	_ Store = Nop{}
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*MongoStore)(nil)
)
