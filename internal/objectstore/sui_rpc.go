package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// RPCError is a JSON-RPC error object returned by the fullnode
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Config holds Sui RPC store configuration
type Config struct {
	URL               string
	RequestsPerSecond float64
	Burst             int
	// FinalityPollInterval is the initial delay between transaction lookups while awaiting finality
	FinalityPollInterval time.Duration
	// FinalityTimeout bounds the total time spent awaiting finality
	FinalityTimeout time.Duration
}

type suiStore struct {
	config  Config
	http    adapter.HTTPClient
	codec   adapter.Codec
	limiter *rate.Limiter
}

// NewSuiStore creates an ObjectStore backed by a Sui fullnode JSON-RPC endpoint
func NewSuiStore(cfg Config, httpClient adapter.HTTPClient, codec adapter.Codec) ObjectStore {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.FinalityPollInterval <= 0 {
		cfg.FinalityPollInterval = 500 * time.Millisecond
	}
	if cfg.FinalityTimeout <= 0 {
		cfg.FinalityTimeout = time.Minute
	}
	return &suiStore{
		config:  cfg,
		http:    httpClient,
		codec:   codec,
		limiter: rate.NewLimiter(limit, cfg.Burst),
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

var objectOptions = map[string]bool{
	"showType":    true,
	"showContent": true,
	"showOwner":   true,
}

// call performs one JSON-RPC call and returns the "result" member
func (s *suiStore) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	if params == nil {
		params = []interface{}{}
	}
	body, err := s.codec.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	logger.DebugCtx(ctx, "Calling object store", zap.String("method", method))

	resp, err := s.http.Post(ctx, s.config.URL, "application/json", body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}

	if !gjson.ValidBytes(resp) {
		return gjson.Result{}, fmt.Errorf("%s: invalid JSON response", method)
	}
	parsed := gjson.ParseBytes(resp)
	if e := parsed.Get("error"); e.Exists() {
		return gjson.Result{}, &RPCError{Code: e.Get("code").Int(), Message: e.Get("message").String()}
	}
	return parsed.Get("result"), nil
}

// GetObject returns a single object or ErrObjectNotFound
func (s *suiStore) GetObject(ctx context.Context, id string) (*Object, error) {
	res, err := s.call(ctx, "sui_getObject", id, objectOptions)
	if err != nil {
		return nil, err
	}
	obj, ok := parseObjectResponse(res)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return obj, nil
}

// GetObjects returns the objects that exist among ids
func (s *suiStore) GetObjects(ctx context.Context, ids []string) ([]Object, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(ids), MaxBatchSize)
	}

	res, err := s.call(ctx, "sui_multiGetObjects", ids, objectOptions)
	if err != nil {
		return nil, err
	}

	out := make([]Object, 0, len(ids))
	for _, item := range res.Array() {
		if obj, ok := parseObjectResponse(item); ok {
			out = append(out, *obj)
		}
	}
	return out, nil
}

// GetOwnedObjects returns one page of the objects owned by owner
func (s *suiStore) GetOwnedObjects(ctx context.Context, owner string, cursor string, limit int) (*ObjectPage, error) {
	query := map[string]interface{}{"options": objectOptions}
	res, err := s.call(ctx, "suix_getOwnedObjects", owner, query, nullableCursor(cursor), limit)
	if err != nil {
		return nil, err
	}

	page := &ObjectPage{
		NextCursor: res.Get("nextCursor").String(),
		HasMore:    res.Get("hasNextPage").Bool(),
	}
	for _, item := range res.Get("data").Array() {
		if obj, ok := parseObjectResponse(item); ok {
			page.Items = append(page.Items, *obj)
		}
	}
	return page, nil
}

// GetKeyedEntry returns the dynamic field object stored under an address key
func (s *suiStore) GetKeyedEntry(ctx context.Context, table string, key string) (*Object, error) {
	name := map[string]string{"type": "address", "value": key}
	res, err := s.call(ctx, "suix_getDynamicFieldObject", table, name)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && isNotFoundMessage(rpcErr.Message) {
			return nil, fmt.Errorf("%w: %s[%s]", ErrObjectNotFound, table, key)
		}
		return nil, err
	}
	obj, ok := parseObjectResponse(res)
	if !ok {
		return nil, fmt.Errorf("%w: %s[%s]", ErrObjectNotFound, table, key)
	}
	return obj, nil
}

// ListKeys returns one page of the entries of table
func (s *suiStore) ListKeys(ctx context.Context, table string, cursor string, limit int) (*FieldPage, error) {
	res, err := s.call(ctx, "suix_getDynamicFields", table, nullableCursor(cursor), limit)
	if err != nil {
		return nil, err
	}

	page := &FieldPage{
		NextCursor: res.Get("nextCursor").String(),
		HasMore:    res.Get("hasNextPage").Bool(),
	}
	for _, item := range res.Get("data").Array() {
		field := DynamicField{
			KeyType:  item.Get("name.type").String(),
			ObjectID: item.Get("objectId").String(),
		}
		if v := item.Get("name.value"); v.Type == gjson.String {
			field.Key = v.String()
		}
		page.Items = append(page.Items, field)
	}
	return page, nil
}

// SubmitTransaction submits a signed transaction
func (s *suiStore) SubmitTransaction(ctx context.Context, tx domain.SignedTransaction) (*domain.Submission, error) {
	if tx.TxBytes == "" || len(tx.Signatures) == 0 {
		return nil, domain.NewValidationError("transaction", "missing bytes or signatures")
	}

	res, err := s.call(ctx, "sui_executeTransactionBlock",
		tx.TxBytes,
		tx.Signatures,
		map[string]bool{"showEffects": true},
		"WaitForEffectsCert",
	)
	if err != nil {
		return nil, err
	}

	digest := res.Get("digest").String()
	if digest == "" {
		return nil, fmt.Errorf("%w: submission returned no digest", domain.ErrTransactionFailed)
	}
	if status := res.Get("effects.status.status").String(); status == "failure" {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionFailed, res.Get("effects.status.error").String())
	}
	return &domain.Submission{Digest: digest}, nil
}

// AwaitFinality polls for the transaction until it is indexed and returns its outcome
func (s *suiStore) AwaitFinality(ctx context.Context, digest string) (*domain.TxResult, error) {
	var result *domain.TxResult

	operation := func() error {
		res, err := s.call(ctx, "sui_getTransactionBlock", digest, map[string]bool{
			"showEffects":       true,
			"showObjectChanges": true,
		})
		if err != nil {
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) && isNotFoundMessage(rpcErr.Message) {
				logger.DebugCtx(ctx, "Transaction not yet indexed", zap.String("digest", digest))
				return err
			}
			return backoff.Permanent(err)
		}
		result = parseTxResult(digest, res)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.FinalityPollInterval
	b.MaxInterval = 4 * s.config.FinalityPollInterval
	b.MaxElapsedTime = s.config.FinalityTimeout

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("failed awaiting finality of %s: %w", digest, err)
	}
	return result, nil
}

// parseObjectResponse decodes a SuiObjectResponse ({data} or {error})
func parseObjectResponse(res gjson.Result) (*Object, bool) {
	data := res.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, false
	}
	id := data.Get("objectId").String()
	if id == "" {
		return nil, false
	}

	obj := &Object{
		ObjectID: id,
		Version:  data.Get("version").String(),
		Type:     data.Get("type").String(),
		DataType: data.Get("content.dataType").String(),
		Owner:    data.Get("owner.AddressOwner").String(),
	}
	if obj.Type == "" {
		obj.Type = data.Get("content.type").String()
	}
	if fields := data.Get("content.fields"); fields.IsObject() {
		obj.Fields = []byte(fields.Raw)
	}
	return obj, true
}

func parseTxResult(digest string, res gjson.Result) *domain.TxResult {
	result := &domain.TxResult{
		Digest:  digest,
		Success: res.Get("effects.status.status").String() == "success",
		Error:   res.Get("effects.status.error").String(),
	}

	types := map[string]string{}
	for _, change := range res.Get("objectChanges").Array() {
		if change.Get("type").String() == "created" {
			types[change.Get("objectId").String()] = change.Get("objectType").String()
		}
	}
	for _, created := range res.Get("effects.created").Array() {
		id := created.Get("reference.objectId").String()
		if id == "" {
			continue
		}
		result.Created = append(result.Created, domain.CreatedObject{ObjectID: id, Type: types[id]})
	}
	return result
}

func nullableCursor(cursor string) interface{} {
	if cursor == "" {
		return nil
	}
	return cursor
}

func isNotFoundMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") ||
		strings.Contains(m, "could not find") ||
		strings.Contains(m, "notexists") ||
		strings.Contains(m, "dynamicfieldnotfound")
}
