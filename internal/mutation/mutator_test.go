package mutation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/decoder"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/graph"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/mocks"
	"github.com/feral-file/ff-social/internal/mutation"
	"github.com/feral-file/ff-social/internal/objectstore/objectstoretest"
)

func oid(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

var (
	me      = mutation.Actor{Address: oid(0xa11ce), ProfileID: oid(1)}
	signed  = &domain.SignedTransaction{TxBytes: "dHg=", Signatures: []string{"sig"}}
	testTag = domain.NewTypeTags(oid(0xabc))
)

type testMutator struct {
	ctrl        *gomock.Controller
	signer      *mocks.MockSigner
	store       *objectstoretest.Store
	mutator     *mutation.Mutator
	transitions []string
	refetches   []mutation.Outcome
	// refetch records every re-derivation it is passed to
	refetch mutation.Option
	mu      sync.Mutex
}

func setupTestMutator(t *testing.T) *testMutator {
	ctrl := gomock.NewController(t)
	store := objectstoretest.New()
	registries := domain.RegistryIDs{
		Profiles:  oid(1001),
		Followers: oid(1002),
		Posts:     oid(1003),
		Likes:     oid(1004),
		Comments:  oid(1005),
	}
	reconstructor := graph.New(graph.DefaultConfig(registries), store, decoder.New(testTag))

	tm := &testMutator{
		ctrl:   ctrl,
		signer: mocks.NewMockSigner(ctrl),
		store:  store,
	}
	tm.mutator = mutation.New(
		mutation.Config{
			Registries: registries,
			Discovery:  mutation.DiscoveryConfig{PollInterval: 0, MaxAttempts: 3},
		},
		testTag,
		store,
		tm.signer,
		adapter.NewCodec(),
		reconstructor,
	)
	tm.mutator.OnTransition(func(_ mutation.Action, _ string, from, to mutation.State) {
		tm.mu.Lock()
		defer tm.mu.Unlock()
		tm.transitions = append(tm.transitions, string(from)+">"+string(to))
	})
	tm.refetch = mutation.WithRefetch(func(_ context.Context, out mutation.Outcome) error {
		tm.mu.Lock()
		defer tm.mu.Unlock()
		tm.refetches = append(tm.refetches, out)
		return nil
	})
	return tm
}

func tearDownTestMutator(tm *testMutator) {
	tm.ctrl.Finish()
}

func TestPublishPost_Confirmed(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().
		Sign(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, call domain.MoveCall) (*domain.SignedTransaction, error) {
			assert.Equal(t, testTag.Target("publish_post"), call.Target)
			assert.Equal(t, domain.StringArg("hello"), call.Arguments[2])
			return signed, nil
		})

	list := mutation.NewOptimistic([]string{oid(11)})
	require.NoError(t, list.Apply(mutation.Prepend("provisional")))

	out := tm.mutator.PublishPost(t.Context(), me, "  hello  ", mutation.WithPending(list), tm.refetch)
	require.NoError(t, out.Err)
	assert.True(t, out.OK())
	assert.Equal(t, mutation.StateConfirmed, out.State)
	assert.NotEmpty(t, out.Digest)
	assert.NotEmpty(t, out.OperationID)
	assert.False(t, list.Pending())

	assert.Equal(t, []string{
		"idle>submitting",
		"submitting>confirmed",
		"confirmed>refetching",
		"refetching>idle",
	}, tm.transitions)
	require.Len(t, tm.refetches, 1)
	assert.Equal(t, out.Digest, tm.refetches[0].Digest)
	assert.Equal(t, 1, tm.store.CallCount(objectstoretest.MethodSubmitTransaction))
	assert.Equal(t, 1, tm.store.CallCount(objectstoretest.MethodAwaitFinality))
}

func TestPublishPost_ValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name    string
		actor   mutation.Actor
		content string
		wantErr error
	}{
		{name: "empty content", actor: me, content: "   ", wantErr: domain.ErrValidation},
		{name: "too long", actor: me, content: string(make([]byte, 1001)) + "x", wantErr: domain.ErrValidation},
		{name: "no account", actor: mutation.Actor{ProfileID: me.ProfileID}, content: "hi", wantErr: domain.ErrValidation},
		{name: "no profile", actor: mutation.Actor{Address: me.Address}, content: "hi", wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMutator(t)
			defer tearDownTestMutator(tm)

			list := mutation.NewOptimistic([]string{"a"})
			require.NoError(t, list.Apply(mutation.Prepend("tmp")))

			out := tm.mutator.PublishPost(t.Context(), tt.actor, tt.content, mutation.WithPending(list))
			assert.ErrorIs(t, out.Err, tt.wantErr)
			assert.Equal(t, mutation.StateFailed, out.State)
			assert.Empty(t, tm.store.Calls())
			assert.Empty(t, tm.transitions)
			assert.Equal(t, []string{"a"}, list.Items())
		})
	}
}

func TestPublishPost_SignatureDeclined(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().
		Sign(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: user rejected", domain.ErrSignatureDeclined))

	out := tm.mutator.PublishPost(t.Context(), me, "hi", tm.refetch)
	assert.ErrorIs(t, out.Err, domain.ErrSignatureDeclined)
	assert.Equal(t, "Signature declined", out.Message())
	assert.False(t, out.OK())
	assert.Equal(t, []string{"idle>submitting", "submitting>failed", "failed>idle"}, tm.transitions)
	assert.Empty(t, tm.refetches)
	assert.Equal(t, 0, tm.store.CallCount(objectstoretest.MethodSubmitTransaction))
}

func TestPublishPost_RollbackWhenFinalityFails(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	tm.store.Hook = func(_ context.Context, method string, _ []string) error {
		if method == objectstoretest.MethodAwaitFinality {
			return errors.New("finality timeout")
		}
		return nil
	}

	before := []domain.Post{{ID: oid(11), CreatedMs: 2}, {ID: oid(12), CreatedMs: 1}}
	list := mutation.NewOptimistic(before)
	require.NoError(t, list.Apply(mutation.Prepend(domain.Post{ID: "provisional", Content: "hi"})))

	out := tm.mutator.PublishPost(t.Context(), me, "hi", mutation.WithPending(list), tm.refetch)
	assert.ErrorIs(t, out.Err, domain.ErrTransactionFailed)
	assert.NotEmpty(t, out.Digest)
	assert.Equal(t, before, list.Items())
	assert.Empty(t, tm.refetches)
}

func TestDeletePost_FailedOnChain(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	tm.store.OnSubmit = func(domain.SignedTransaction) (string, error) { return "digest-x", nil }
	tm.store.SetTxResult("digest-x", domain.TxResult{Success: false, Error: "MoveAbort(2)"})

	out := tm.mutator.DeletePost(t.Context(), me, oid(11))
	assert.ErrorIs(t, out.Err, domain.ErrTransactionFailed)
	assert.Contains(t, out.Message(), "MoveAbort(2)")
	assert.Equal(t, "digest-x", out.Digest)
}

func TestSubmit_RefusesIdenticalInFlightCall(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	entered := make(chan struct{})
	release := make(chan struct{})
	tm.signer.EXPECT().
		Sign(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.MoveCall) (*domain.SignedTransaction, error) {
			close(entered)
			<-release
			return signed, nil
		})

	first := make(chan mutation.Outcome, 1)
	go func() {
		first <- tm.mutator.Like(t.Context(), me, oid(11))
	}()
	<-entered

	second := tm.mutator.Like(t.Context(), me, oid(11))
	assert.ErrorIs(t, second.Err, domain.ErrAlreadySubmitting)
	assert.Equal(t, "Already submitting", second.Message())

	close(release)
	select {
	case out := <-first:
		assert.NoError(t, out.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("first submission did not complete")
	}
}

func TestFollow_TokenFromCreatedObjects(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	target := oid(2)
	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	tm.store.OnSubmit = func(domain.SignedTransaction) (string, error) { return "d-follow", nil }
	tm.store.SetTxResult("d-follow", domain.TxResult{
		Success: true,
		Created: []domain.CreatedObject{{ObjectID: oid(77), Type: testTag.Tag(domain.KindFollowToken)}},
	})

	out := tm.mutator.Follow(t.Context(), me, target)
	require.NoError(t, out.Err)
	assert.Equal(t, oid(77), out.ObjectID)
	assert.Equal(t, 0, tm.store.CallCount(objectstoretest.MethodGetOwnedObjects))
}

func TestFollow_TokenDiscoveredByPolling(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	target := oid(2)
	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	tm.store.OnSubmit = func(domain.SignedTransaction) (string, error) {
		tm.store.Give(me.Address, objectstoretest.FollowTokenObject(testTag, domain.FollowToken{
			ID:                oid(88),
			Follower:          me.Address,
			FollowedProfileID: target,
		}))
		return "d-follow", nil
	}

	out := tm.mutator.Follow(t.Context(), me, target)
	require.NoError(t, out.Err)
	assert.Equal(t, oid(88), out.ObjectID)
}

func TestLike_DiscoveryGivesUp(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)

	out := tm.mutator.Like(t.Context(), me, oid(11), tm.refetch)
	require.NoError(t, out.Err)
	assert.True(t, out.OK())
	assert.Empty(t, out.ObjectID)
	assert.Equal(t, 3, tm.store.CallCount(objectstoretest.MethodGetOwnedObjects))
	assert.Len(t, tm.refetches, 1)
}

func TestFollow_Validation(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	out := tm.mutator.Follow(t.Context(), me, me.ProfileID)
	assert.ErrorIs(t, out.Err, domain.ErrValidation)

	out = tm.mutator.Unfollow(t.Context(), me, "")
	assert.ErrorIs(t, out.Err, domain.ErrValidation)

	out = tm.mutator.Unlike(t.Context(), me, "token")
	assert.ErrorIs(t, out.Err, domain.ErrValidation)
	assert.Empty(t, tm.store.Calls())
}

func TestCreateProfile(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().
		Sign(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, call domain.MoveCall) (*domain.SignedTransaction, error) {
			assert.Equal(t, testTag.Target("create_profile_with_avatar"), call.Target)
			assert.Equal(t, domain.StringArg("alice"), call.Arguments[1])
			return signed, nil
		})
	tm.store.OnSubmit = func(domain.SignedTransaction) (string, error) { return "d-profile", nil }
	tm.store.SetTxResult("d-profile", domain.TxResult{
		Success: true,
		Created: []domain.CreatedObject{
			{ObjectID: oid(500), Type: "0x2::dynamic_field::Field<address, address>"},
			{ObjectID: oid(501), Type: testTag.Tag(domain.KindProfile)},
		},
	})

	out := tm.mutator.CreateProfile(t.Context(), mutation.Actor{Address: me.Address}, mutation.ProfileInput{
		Username:    " alice ",
		Description: "hello",
		AvatarURL:   "ipfs://cid",
	})
	require.NoError(t, out.Err)
	assert.Equal(t, oid(501), out.ObjectID)
	assert.Equal(t, []string{oid(500), oid(501)}, out.CreatedIDs)
}

func TestCreateProfile_Validation(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	out := tm.mutator.CreateProfile(t.Context(), me, mutation.ProfileInput{Username: "al", Description: "x"})
	var verr *domain.ValidationError
	require.ErrorAs(t, out.Err, &verr)
	assert.Equal(t, "username", verr.Field)

	out = tm.mutator.CreateProfile(t.Context(), me, mutation.ProfileInput{Username: "alice", Description: ""})
	require.ErrorAs(t, out.Err, &verr)
	assert.Equal(t, "description", verr.Field)
}

func TestAddComment_MissingRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := objectstoretest.New()
	m := mutation.New(mutation.Config{}, testTag, store, mocks.NewMockSigner(ctrl), adapter.NewCodec(),
		graph.New(graph.DefaultConfig(domain.RegistryIDs{}), store, decoder.New(testTag)))

	out := m.AddComment(t.Context(), me, oid(11), "hi")
	assert.ErrorIs(t, out.Err, domain.ErrRegistryUnavailable)
	assert.Empty(t, store.Calls())
}

func TestRefetchFailureIsReported(t *testing.T) {
	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)

	out := tm.mutator.DeletePost(t.Context(), me, oid(11), mutation.WithRefetch(func(context.Context, mutation.Outcome) error {
		return errors.New("feed unavailable")
	}))
	assert.True(t, out.OK())
	assert.EqualError(t, out.RefetchErr, "feed unavailable")
}

func TestRun_LegalTransitionsOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.SetLogger(zap.New(core)))

	tm := setupTestMutator(t)
	defer tearDownTestMutator(tm)

	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	tm.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(nil, domain.ErrSignatureDeclined)

	assert.True(t, tm.mutator.PublishPost(t.Context(), me, "hi", tm.refetch).OK())
	assert.False(t, tm.mutator.PublishPost(t.Context(), me, "again", tm.refetch).OK())
	assert.Zero(t, logs.FilterMessage("Illegal mutation state transition").Len())
}

func TestEditPost(t *testing.T) {
	tests := []struct {
		name          string
		txResult      *domain.TxResult
		finality      error
		wantState     mutation.State
		wantErr       error
		wantRefetches int
	}{
		{name: "confirmed", wantState: mutation.StateConfirmed, wantRefetches: 1},
		{name: "aborted on chain", txResult: &domain.TxResult{Success: false, Error: "MoveAbort(1)"}, wantState: mutation.StateFailed, wantErr: domain.ErrTransactionFailed},
		{name: "finality timeout", finality: errors.New("timeout"), wantState: mutation.StateFailed, wantErr: domain.ErrTransactionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMutator(t)
			defer tearDownTestMutator(tm)

			post := oid(11)
			tm.signer.EXPECT().
				Sign(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, call domain.MoveCall) (*domain.SignedTransaction, error) {
					assert.Equal(t, testTag.Target("edit_post_entry"), call.Target)
					assert.Equal(t, []domain.Argument{
						domain.ObjectArg(me.ProfileID),
						domain.ObjectArg(post),
						domain.StringArg("edited"),
					}, call.Arguments)
					return signed, nil
				})
			tm.store.OnSubmit = func(domain.SignedTransaction) (string, error) { return "d-edit", nil }
			if tt.txResult != nil {
				tm.store.SetTxResult("d-edit", *tt.txResult)
			}
			if tt.finality != nil {
				tm.store.Hook = func(_ context.Context, method string, _ []string) error {
					if method == objectstoretest.MethodAwaitFinality {
						return tt.finality
					}
					return nil
				}
			}

			before := []domain.Post{{ID: post, Content: "original"}}
			list := mutation.NewOptimistic(before)
			require.NoError(t, list.Apply(mutation.UpdateWhere(
				func(p domain.Post) bool { return p.ID == post },
				func(p domain.Post) domain.Post { p.Content = "edited"; return p },
			)))

			out := tm.mutator.EditPost(t.Context(), me, post, " edited ", mutation.WithPending(list), tm.refetch)
			assert.Equal(t, tt.wantState, out.State)
			assert.Equal(t, "d-edit", out.Digest)
			assert.Len(t, tm.refetches, tt.wantRefetches)
			assert.False(t, list.Pending())
			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
				assert.Equal(t, before, list.Items())
				return
			}
			require.NoError(t, out.Err)
			assert.Equal(t, "edited", list.Items()[0].Content)
		})
	}
}

func TestUnfollowAndUnlike(t *testing.T) {
	token := oid(77)
	tests := []struct {
		name          string
		target        string
		finality      error
		wantState     mutation.State
		wantRefetches int
		run           func(m *mutation.Mutator, ctx context.Context, opts ...mutation.Option) mutation.Outcome
	}{
		{
			name:   "unfollow confirmed",
			target: "unfollow", wantState: mutation.StateConfirmed, wantRefetches: 1,
			run: func(m *mutation.Mutator, ctx context.Context, opts ...mutation.Option) mutation.Outcome {
				return m.Unfollow(ctx, me, token, opts...)
			},
		},
		{
			name:   "unfollow finality fails",
			target: "unfollow", finality: errors.New("timeout"), wantState: mutation.StateFailed,
			run: func(m *mutation.Mutator, ctx context.Context, opts ...mutation.Option) mutation.Outcome {
				return m.Unfollow(ctx, me, token, opts...)
			},
		},
		{
			name:   "unlike confirmed",
			target: "unlike_post", wantState: mutation.StateConfirmed, wantRefetches: 1,
			run: func(m *mutation.Mutator, ctx context.Context, opts ...mutation.Option) mutation.Outcome {
				return m.Unlike(ctx, me, token, opts...)
			},
		},
		{
			name:   "unlike finality fails",
			target: "unlike_post", finality: errors.New("timeout"), wantState: mutation.StateFailed,
			run: func(m *mutation.Mutator, ctx context.Context, opts ...mutation.Option) mutation.Outcome {
				return m.Unlike(ctx, me, token, opts...)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMutator(t)
			defer tearDownTestMutator(tm)

			tm.signer.EXPECT().
				Sign(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, call domain.MoveCall) (*domain.SignedTransaction, error) {
					assert.Equal(t, testTag.Target(tt.target), call.Target)
					assert.Equal(t, domain.ObjectArg(token), call.Arguments[2])
					return signed, nil
				})
			if tt.finality != nil {
				tm.store.Hook = func(_ context.Context, method string, _ []string) error {
					if method == objectstoretest.MethodAwaitFinality {
						return tt.finality
					}
					return nil
				}
			}

			// the token disappears from the provisional relationship list
			tokens := mutation.NewOptimistic([]string{token, oid(78)})
			require.NoError(t, tokens.Apply(mutation.RemoveWhere(func(id string) bool { return id == token })))

			out := tt.run(tm.mutator, t.Context(), mutation.WithPending(tokens), tm.refetch)
			assert.Equal(t, tt.wantState, out.State)
			assert.Len(t, tm.refetches, tt.wantRefetches)
			if tt.wantState == mutation.StateFailed {
				assert.ErrorIs(t, out.Err, domain.ErrTransactionFailed)
				assert.Equal(t, []string{token, oid(78)}, tokens.Items())
				return
			}
			require.NoError(t, out.Err)
			assert.Equal(t, []string{oid(78)}, tokens.Items())
			assert.Equal(t, 0, tm.store.CallCount(objectstoretest.MethodGetOwnedObjects))
		})
	}
}

func TestRun_EncodeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	codec := mocks.NewMockCodec(ctrl)
	codec.EXPECT().Canonical(gomock.Any()).Return(nil, errors.New("unsupported value"))
	store := mocks.NewMockObjectStore(ctrl)
	sig := mocks.NewMockSigner(ctrl)
	registries := domain.RegistryIDs{Posts: oid(1003)}
	m := mutation.New(mutation.Config{Registries: registries}, testTag, store, sig, codec,
		graph.New(graph.DefaultConfig(registries), store, decoder.New(testTag)))

	list := mutation.NewOptimistic([]string{"a"})
	require.NoError(t, list.Apply(mutation.Prepend("tmp")))

	out := m.PublishPost(t.Context(), me, "hi", mutation.WithPending(list))
	assert.Equal(t, mutation.StateFailed, out.State)
	assert.ErrorContains(t, out.Err, "unsupported value")
	assert.Equal(t, []string{"a"}, list.Items())
}

func TestRun_SubmitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockObjectStore(ctrl)
	sig := mocks.NewMockSigner(ctrl)
	registries := domain.RegistryIDs{Likes: oid(1004)}
	m := mutation.New(mutation.Config{Registries: registries}, testTag, store, sig, adapter.NewCodec(),
		graph.New(graph.DefaultConfig(registries), store, decoder.New(testTag)))

	sig.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(signed, nil)
	store.EXPECT().SubmitTransaction(gomock.Any(), *signed).Return(nil, errors.New("connection reset"))

	refetched := false
	out := m.Like(t.Context(), me, oid(11), mutation.WithRefetch(func(context.Context, mutation.Outcome) error {
		refetched = true
		return nil
	}))
	assert.Equal(t, mutation.StateFailed, out.State)
	assert.ErrorContains(t, out.Err, "connection reset")
	assert.Empty(t, out.Digest)
	assert.False(t, refetched)
}
