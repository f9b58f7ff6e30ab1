package objectstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/mocks"
	"github.com/feral-file/ff-social/internal/objectstore"
)

const rpcURL = "http://fullnode.local"

func setupTestSuiStore(t *testing.T) (*mocks.MockHTTPClient, objectstore.ObjectStore) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	store := objectstore.NewSuiStore(objectstore.Config{
		URL:                  rpcURL,
		FinalityPollInterval: time.Millisecond,
		FinalityTimeout:      time.Second,
	}, httpClient, adapter.NewCodec())
	return httpClient, store
}

// expectCall asserts the JSON-RPC method of the next request and answers with resp
func expectCall(httpClient *mocks.MockHTTPClient, t *testing.T, method string, resp string) *gomock.Call {
	return httpClient.EXPECT().
		Post(gomock.Any(), rpcURL, "application/json", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ string, body []byte) ([]byte, error) {
			assert.Equal(t, method, gjson.GetBytes(body, "method").String())
			assert.Equal(t, "2.0", gjson.GetBytes(body, "jsonrpc").String())
			return []byte(resp), nil
		})
}

func TestGetObject(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "sui_getObject", `{"jsonrpc":"2.0","id":"1","result":{"data":{
		"objectId":"0x01","version":"7","type":"0x2::social::Post",
		"owner":{"AddressOwner":"0xabc"},
		"content":{"dataType":"moveObject","fields":{"content":"hello"}}}}}`)

	obj, err := store.GetObject(t.Context(), "0x01")
	require.NoError(t, err)
	assert.Equal(t, "0x01", obj.ObjectID)
	assert.Equal(t, "7", obj.Version)
	assert.Equal(t, "0x2::social::Post", obj.Type)
	assert.Equal(t, "0xabc", obj.Owner)
	assert.True(t, obj.IsMoveObject())
	assert.JSONEq(t, `{"content":"hello"}`, string(obj.Fields))
}

func TestGetObject_NotFound(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "sui_getObject", `{"jsonrpc":"2.0","id":"1","result":{"error":{"code":"notExists","object_id":"0x01"}}}`)

	_, err := store.GetObject(t.Context(), "0x01")
	assert.ErrorIs(t, err, objectstore.ErrObjectNotFound)
}

func TestGetObjects(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "sui_multiGetObjects", `{"jsonrpc":"2.0","id":"1","result":[
		{"data":{"objectId":"0x01","content":{"dataType":"moveObject","type":"0x2::social::Post","fields":{}}}},
		{"error":{"code":"deleted"}}]}`)

	objs, err := store.GetObjects(t.Context(), []string{"0x01", "0x02"})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "0x2::social::Post", objs[0].Type)
}

func TestGetObjects_BatchTooLarge(t *testing.T) {
	_, store := setupTestSuiStore(t)

	_, err := store.GetObjects(t.Context(), make([]string, objectstore.MaxBatchSize+1))
	assert.ErrorIs(t, err, objectstore.ErrBatchTooLarge)
}

func TestListKeys(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "suix_getDynamicFields", `{"jsonrpc":"2.0","id":"1","result":{
		"data":[
			{"name":{"type":"address","value":"0xabc"},"objectId":"0x10"},
			{"name":{"type":"0x2::social::Key","value":{"id":1}},"objectId":"0x11"}],
		"nextCursor":"0x11","hasNextPage":true}}`)

	page, err := store.ListKeys(t.Context(), "0xtable", "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "0xabc", page.Items[0].Key)
	assert.Equal(t, "", page.Items[1].Key)
	assert.Equal(t, "0x11", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestGetKeyedEntry_NotFound(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "suix_getDynamicFieldObject", `{"jsonrpc":"2.0","id":"1","error":{"code":-32000,"message":"DynamicFieldNotFound"}}`)

	_, err := store.GetKeyedEntry(t.Context(), "0xtable", "0xabc")
	assert.ErrorIs(t, err, objectstore.ErrObjectNotFound)
}

func TestRPCError(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "suix_getOwnedObjects", `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"invalid params"}}`)

	_, err := store.GetOwnedObjects(t.Context(), "0xabc", "", 10)
	var rpcErr *objectstore.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(-32602), rpcErr.Code)
}

func TestSubmitTransaction(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    string
		wantErr error
	}{
		{
			name: "accepted",
			resp: `{"jsonrpc":"2.0","id":"1","result":{"digest":"D1","effects":{"status":{"status":"success"}}}}`,
			want: "D1",
		},
		{
			name:    "failed effects",
			resp:    `{"jsonrpc":"2.0","id":"1","result":{"digest":"D1","effects":{"status":{"status":"failure","error":"MoveAbort"}}}}`,
			wantErr: domain.ErrTransactionFailed,
		},
		{
			name:    "no digest",
			resp:    `{"jsonrpc":"2.0","id":"1","result":{}}`,
			wantErr: domain.ErrTransactionFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient, store := setupTestSuiStore(t)
			expectCall(httpClient, t, "sui_executeTransactionBlock", tt.resp)

			sub, err := store.SubmitTransaction(t.Context(), domain.SignedTransaction{TxBytes: "AAEC", Signatures: []string{"sig"}})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Digest)
		})
	}
}

func TestSubmitTransaction_Unsigned(t *testing.T) {
	_, store := setupTestSuiStore(t)

	_, err := store.SubmitTransaction(t.Context(), domain.SignedTransaction{TxBytes: "AAEC"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAwaitFinality(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	gomock.InOrder(
		expectCall(httpClient, t, "sui_getTransactionBlock", `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"Could not find the referenced transaction"}}`),
		expectCall(httpClient, t, "sui_getTransactionBlock", `{"jsonrpc":"2.0","id":"1","result":{
			"digest":"D1",
			"effects":{"status":{"status":"success"},"created":[{"reference":{"objectId":"0x20"}}]},
			"objectChanges":[{"type":"created","objectId":"0x20","objectType":"0x2::social::Post"}]}}`),
	)

	result, err := store.AwaitFinality(t.Context(), "D1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []domain.CreatedObject{{ObjectID: "0x20", Type: "0x2::social::Post"}}, result.Created)
}

func TestAwaitFinality_PermanentError(t *testing.T) {
	httpClient, store := setupTestSuiStore(t)
	expectCall(httpClient, t, "sui_getTransactionBlock", `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"invalid digest"}}`)

	_, err := store.AwaitFinality(t.Context(), "bad")
	require.Error(t, err)
}
