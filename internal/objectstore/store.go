package objectstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/feral-file/ff-social/internal/domain"
)

// MaxBatchSize is the practical ceiling of a single multi-get call
const MaxBatchSize = 50

var (
	// ErrObjectNotFound is returned when an object or dynamic field does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrBatchTooLarge is returned when a multi-get exceeds MaxBatchSize
	ErrBatchTooLarge = errors.New("batch exceeds store ceiling")
)

// Object is a raw on-chain object as returned by the store
type Object struct {
	ObjectID string
	Version  string
	Type     string
	// DataType is "moveObject" for struct instances and "package" for published code
	DataType string
	// Owner is the owning address when the object is address-owned
	Owner string
	// Fields is the raw JSON object of the struct fields
	Fields json.RawMessage
}

// IsMoveObject reports whether the object carries decodable struct fields
func (o *Object) IsMoveObject() bool {
	return o != nil && o.DataType == "moveObject" && len(o.Fields) > 0
}

// DynamicField describes one entry of a table-like dynamic field namespace
type DynamicField struct {
	// Key is the entry name when it is a plain string or address, empty otherwise
	Key      string
	KeyType  string
	ObjectID string
}

// ObjectPage is one page of an ownership scan
type ObjectPage struct {
	Items      []Object
	NextCursor string
	HasMore    bool
}

// FieldPage is one page of a dynamic field enumeration
type FieldPage struct {
	Items      []DynamicField
	NextCursor string
	HasMore    bool
}

// ObjectStore is the chain query and submission API consumed by this client
//
//go:generate mockgen -source=store.go -destination=../mocks/object_store.go -package=mocks -mock_names=ObjectStore=MockObjectStore
type ObjectStore interface {
	// GetObject returns a single object or ErrObjectNotFound
	GetObject(ctx context.Context, id string) (*Object, error)

	// GetObjects returns the objects that exist among ids; absent ids are omitted.
	// Callers must chunk ids to MaxBatchSize.
	GetObjects(ctx context.Context, ids []string) ([]Object, error)

	// GetOwnedObjects returns one page of the objects owned by owner
	GetOwnedObjects(ctx context.Context, owner string, cursor string, limit int) (*ObjectPage, error)

	// GetKeyedEntry returns the dynamic field object stored under key in table, or ErrObjectNotFound
	GetKeyedEntry(ctx context.Context, table string, key string) (*Object, error)

	// ListKeys returns one page of the entries of table
	ListKeys(ctx context.Context, table string, cursor string, limit int) (*FieldPage, error)

	// SubmitTransaction submits a signed transaction
	SubmitTransaction(ctx context.Context, tx domain.SignedTransaction) (*domain.Submission, error)

	// AwaitFinality blocks until the transaction is final and returns its outcome
	AwaitFinality(ctx context.Context, digest string) (*domain.TxResult, error)
}
