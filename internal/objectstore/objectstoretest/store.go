// Package objectstoretest provides an in-memory ObjectStore for tests.
package objectstoretest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/objectstore"
)

// Method names recorded by the store
const (
	MethodGetObject         = "GetObject"
	MethodGetObjects        = "GetObjects"
	MethodGetOwnedObjects   = "GetOwnedObjects"
	MethodGetKeyedEntry     = "GetKeyedEntry"
	MethodListKeys          = "ListKeys"
	MethodSubmitTransaction = "SubmitTransaction"
	MethodAwaitFinality     = "AwaitFinality"
)

// Call is one recorded store call
type Call struct {
	Method string
	Args   []string
}

// Hook runs before every call; a non-nil error is returned from the call
type Hook func(ctx context.Context, method string, args []string) error

type table struct {
	keys    []string
	entries map[string]objectstore.Object
	raw     map[string]bool
}

// Store is a deterministic in-memory objectstore.ObjectStore
type Store struct {
	mu      sync.Mutex
	objects map[string]objectstore.Object
	owned   map[string][]string
	tables  map[string]*table
	results map[string]domain.TxResult
	calls   []Call
	seq     int

	// Hook, when set, runs before every call
	Hook Hook

	// OnSubmit, when set, decides the digest of a submitted transaction
	OnSubmit func(tx domain.SignedTransaction) (string, error)
}

var _ objectstore.ObjectStore = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		objects: map[string]objectstore.Object{},
		owned:   map[string][]string{},
		tables:  map[string]*table{},
		results: map[string]domain.TxResult{},
	}
}

// Put stores objects by id
func (s *Store) Put(objs ...objectstore.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range objs {
		s.objects[o.ObjectID] = o
	}
}

// Delete removes an object and any ownership of it
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	for owner, ids := range s.owned {
		kept := ids[:0]
		for _, x := range ids {
			if x != id {
				kept = append(kept, x)
			}
		}
		s.owned[owner] = kept
	}
}

// Give stores objects and appends them to owner's owned set in order
func (s *Store) Give(owner string, objs ...objectstore.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range objs {
		o.Owner = owner
		s.objects[o.ObjectID] = o
		key := domain.NormalizeID(owner)
		s.owned[key] = append(s.owned[key], o.ObjectID)
	}
}

// SetEntry stores value under key in table, keeping first-insertion key order
func (s *Store) SetEntry(tableID, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		t = &table{entries: map[string]objectstore.Object{}}
		s.tables[tableID] = t
	}
	if _, exists := t.entries[key]; !exists {
		t.keys = append(t.keys, key)
	}
	s.seq++
	t.entries[key] = MoveObject(
		fmt.Sprintf("0xdf%04d", s.seq),
		"0x2::dynamic_field::Field<address, value>",
		map[string]interface{}{
			"id":    map[string]interface{}{"id": fmt.Sprintf("0xdf%04d", s.seq)},
			"name":  key,
			"value": value,
		},
	)
}

// SetRawKey registers a key that has no decodable address name (e.g. a struct key)
func (s *Store) SetRawKey(tableID, key string) {
	s.SetEntry(tableID, key, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tables[tableID]
	if t.raw == nil {
		t.raw = map[string]bool{}
	}
	t.raw[key] = true
}

// SetTxResult registers the final outcome returned by AwaitFinality for digest
func (s *Store) SetTxResult(digest string, result domain.TxResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.Digest = digest
	s.results[digest] = result
}

// Calls returns a copy of every recorded call
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of recorded calls of method
func (s *Store) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Store) record(ctx context.Context, method string, args ...string) error {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Args: args})
	hook := s.Hook
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if hook != nil {
		return hook(ctx, method, args)
	}
	return nil
}

func (s *Store) GetObject(ctx context.Context, id string) (*objectstore.Object, error) {
	if err := s.record(ctx, MethodGetObject, id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, id)
	}
	return &o, nil
}

func (s *Store) GetObjects(ctx context.Context, ids []string) ([]objectstore.Object, error) {
	if err := s.record(ctx, MethodGetObjects, ids...); err != nil {
		return nil, err
	}
	if len(ids) > objectstore.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d", objectstore.ErrBatchTooLarge, len(ids))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]objectstore.Object, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) GetOwnedObjects(ctx context.Context, owner string, cursor string, limit int) (*objectstore.ObjectPage, error) {
	if err := s.record(ctx, MethodGetOwnedObjects, owner, cursor, strconv.Itoa(limit)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.owned[domain.NormalizeID(owner)]
	start, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	end := min(start+limit, len(ids))
	page := &objectstore.ObjectPage{}
	for _, id := range ids[min(start, end):end] {
		if o, ok := s.objects[id]; ok {
			page.Items = append(page.Items, o)
		}
	}
	if end < len(ids) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *Store) GetKeyedEntry(ctx context.Context, tableID string, key string) (*objectstore.Object, error) {
	if err := s.record(ctx, MethodGetKeyedEntry, tableID, key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, tableID)
	}
	o, ok := t.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%s]", objectstore.ErrObjectNotFound, tableID, key)
	}
	return &o, nil
}

func (s *Store) ListKeys(ctx context.Context, tableID string, cursor string, limit int) (*objectstore.FieldPage, error) {
	if err := s.record(ctx, MethodListKeys, tableID, cursor, strconv.Itoa(limit)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	page := &objectstore.FieldPage{}
	t, ok := s.tables[tableID]
	if !ok {
		return page, nil
	}
	start, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	end := min(start+limit, len(t.keys))
	for _, k := range t.keys[min(start, end):end] {
		field := objectstore.DynamicField{
			Key:      k,
			KeyType:  "address",
			ObjectID: t.entries[k].ObjectID,
		}
		if t.raw[k] {
			field.Key = ""
			field.KeyType = "0x2::object::ID"
		}
		page.Items = append(page.Items, field)
	}
	if end < len(t.keys) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *Store) SubmitTransaction(ctx context.Context, tx domain.SignedTransaction) (*domain.Submission, error) {
	if err := s.record(ctx, MethodSubmitTransaction, tx.TxBytes); err != nil {
		return nil, err
	}
	s.mu.Lock()
	onSubmit := s.OnSubmit
	s.seq++
	digest := fmt.Sprintf("digest-%d", s.seq)
	s.mu.Unlock()

	if onSubmit != nil {
		d, err := onSubmit(tx)
		if err != nil {
			return nil, err
		}
		digest = d
	}
	return &domain.Submission{Digest: digest}, nil
}

func (s *Store) AwaitFinality(ctx context.Context, digest string) (*domain.TxResult, error) {
	if err := s.record(ctx, MethodAwaitFinality, digest); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.results[digest]; ok {
		return &r, nil
	}
	return &domain.TxResult{Digest: digest, Success: true}, nil
}

// OwnedIDs returns the ids owned by owner in scan order
func (s *Store) OwnedIDs(owner string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.owned[domain.NormalizeID(owner)]...)
	return out
}

// TableKeys returns the keys of a table sorted ascending
func (s *Store) TableKeys(tableID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return nil
	}
	out := append([]string(nil), t.keys...)
	sort.Strings(out)
	return out
}

// MoveObject builds a raw move object with JSON fields
func MoveObject(id, typeTag string, fields map[string]interface{}) objectstore.Object {
	raw, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return objectstore.Object{
		ObjectID: id,
		Version:  "1",
		Type:     typeTag,
		DataType: "moveObject",
		Fields:   raw,
	}
}

func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cursor)
	if err != nil {
		return 0, fmt.Errorf("bad cursor %q: %w", cursor, err)
	}
	return n, nil
}
