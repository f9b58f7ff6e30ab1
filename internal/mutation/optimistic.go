package mutation

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/feral-file/ff-social/internal/domain"
)

const provisionalPrefix = "provisional:"

// ErrPendingChange is returned by Apply while a previous change is neither committed nor rolled back
var ErrPendingChange = errors.New("optimistic change already pending")

// Pending is a provisional local change awaiting the outcome of a mutation
type Pending interface {
	Commit()
	Rollback()
}

// Optimistic holds a displayed list together with the snapshot taken before
// the provisional change applied to it
type Optimistic[T any] struct {
	mu       sync.Mutex
	items    []T
	snapshot []T
	pending  bool
}

// NewOptimistic creates an optimistic list holding a copy of items
func NewOptimistic[T any](items []T) *Optimistic[T] {
	return &Optimistic[T]{items: slices.Clone(items)}
}

// Items returns a copy of the current list
func (o *Optimistic[T]) Items() []T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.items)
}

// Pending reports whether a change awaits commit or rollback
func (o *Optimistic[T]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Replace installs a freshly derived list and discards any snapshot
func (o *Optimistic[T]) Replace(items []T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = slices.Clone(items)
	o.snapshot = nil
	o.pending = false
}

// Apply snapshots the list and then applies change to a copy of it
func (o *Optimistic[T]) Apply(change func(items []T) []T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending {
		return ErrPendingChange
	}
	o.snapshot = slices.Clone(o.items)
	o.items = change(slices.Clone(o.items))
	o.pending = true
	return nil
}

// Rollback restores the snapshot verbatim
func (o *Optimistic[T]) Rollback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.pending {
		return
	}
	o.items = o.snapshot
	o.snapshot = nil
	o.pending = false
}

// Commit keeps the provisional list until the next Replace
func (o *Optimistic[T]) Commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshot = nil
	o.pending = false
}

// Prepend returns a change inserting item at the head of the list
func Prepend[T any](item T) func([]T) []T {
	return func(items []T) []T {
		return append([]T{item}, items...)
	}
}

// RemoveWhere returns a change dropping every item matching match
func RemoveWhere[T any](match func(T) bool) func([]T) []T {
	return func(items []T) []T {
		return slices.DeleteFunc(items, match)
	}
}

// UpdateWhere returns a change rewriting every item matching match
func UpdateWhere[T any](match func(T) bool, update func(T) T) func([]T) []T {
	return func(items []T) []T {
		for i := range items {
			if match(items[i]) {
				items[i] = update(items[i])
			}
		}
		return items
	}
}

// ProvisionalID returns a sortable local id for an entry that is not on chain yet
func ProvisionalID() string {
	return provisionalPrefix + ulid.Make().String()
}

// IsProvisional reports whether id was minted by ProvisionalID
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// ProvisionalPost is the local stand-in shown while a publish is in flight
func ProvisionalPost(actor Actor, content string, now time.Time) domain.Post {
	ms := domain.UnixMs(now.UnixMilli())
	return domain.Post{
		ID:              ProvisionalID(),
		AuthorProfileID: actor.ProfileID,
		Author:          actor.Address,
		Content:         strings.TrimSpace(content),
		CreatedMs:       ms,
		UpdatedMs:       ms,
	}
}
