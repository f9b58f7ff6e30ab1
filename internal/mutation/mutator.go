// Package mutation wraps every state-changing action in a
// submit → await finality → re-derive cycle with rollback of provisional local state.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/objectstore"
	"github.com/feral-file/ff-social/internal/signer"
)

// Action names a mutation
type Action string

const (
	ActionPublishPost   Action = "publish_post"
	ActionEditPost      Action = "edit_post"
	ActionDeletePost    Action = "delete_post"
	ActionAddComment    Action = "add_comment"
	ActionFollow        Action = "follow"
	ActionUnfollow      Action = "unfollow"
	ActionLike          Action = "like"
	ActionUnlike        Action = "unlike"
	ActionCreateProfile Action = "create_profile"
)

// Actor is the account performing a mutation and its profile, when it has one
type Actor struct {
	Address   string
	ProfileID string
}

// Outcome is the result of one mutation. Errors never escape as panics or
// bare returns; they are reported here.
type Outcome struct {
	OperationID string
	Action      Action
	// State is StateConfirmed or StateFailed
	State  State
	Digest string
	// ObjectID is the object the action created (profile, follow or like token) when it could be located
	ObjectID   string
	CreatedIDs []string
	Err        error
	// RefetchErr is the error of the re-derivation triggered after confirmation
	RefetchErr error
}

// OK reports whether the mutation reached successful finality
func (o Outcome) OK() bool {
	return o.State == StateConfirmed
}

// Message is a short, displayable description of the failure
func (o Outcome) Message() string {
	switch {
	case o.Err == nil:
		return ""
	case errors.Is(o.Err, domain.ErrSignatureDeclined):
		return "Signature declined"
	case errors.Is(o.Err, domain.ErrAlreadySubmitting):
		return "Already submitting"
	default:
		return o.Err.Error()
	}
}

// TransitionObserver is told about every state change of every mutation
type TransitionObserver func(action Action, operationID string, from, to State)

// RefetchFunc re-derives views after a confirmed mutation
type RefetchFunc func(ctx context.Context, outcome Outcome) error

// Option customizes a single mutation
type Option func(*runOptions)

type runOptions struct {
	pending []Pending
	refetch RefetchFunc
}

// WithPending attaches provisional local changes: they are committed on
// confirmation and rolled back on failure
func WithPending(p ...Pending) Option {
	return func(o *runOptions) {
		o.pending = append(o.pending, p...)
	}
}

// WithRefetch sets the re-derivation run after this mutation is confirmed
func WithRefetch(fn RefetchFunc) Option {
	return func(o *runOptions) {
		o.refetch = fn
	}
}

// Config holds the deployment and discovery settings of a Mutator
type Config struct {
	Registries domain.RegistryIDs
	Discovery  DiscoveryConfig
}

// Mutator submits social mutations
type Mutator struct {
	config     Config
	tags       domain.TypeTags
	builder    *Builder
	store      objectstore.ObjectStore
	signer     signer.Signer
	codec      adapter.Codec
	discoverer *Discoverer

	mu       sync.Mutex
	observer TransitionObserver
	inflight map[string]struct{}
}

// New creates a mutator
func New(
	cfg Config,
	tags domain.TypeTags,
	store objectstore.ObjectStore,
	sig signer.Signer,
	codec adapter.Codec,
	finder TokenFinder,
) *Mutator {
	return &Mutator{
		config:     cfg,
		tags:       tags,
		builder:    NewBuilder(tags, cfg.Registries),
		store:      store,
		signer:     sig,
		codec:      codec,
		discoverer: NewDiscoverer(cfg.Discovery, finder),
		inflight:   map[string]struct{}{},
	}
}

// OnTransition registers the state observer
func (m *Mutator) OnTransition(fn TransitionObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

func (m *Mutator) transitionObserver() TransitionObserver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observer
}

// Discoverer returns the token discoverer used after follow and like
func (m *Mutator) Discoverer() *Discoverer {
	return m.discoverer
}

// PublishPost publishes a new post from actor's profile
func (m *Mutator) PublishPost(ctx context.Context, actor Actor, content string, opts ...Option) Outcome {
	body, err := ValidateContent(content)
	if err == nil {
		err = m.require(actor, m.config.Registries.Posts, "posts")
	}
	if err != nil {
		return m.reject(ctx, ActionPublishPost, err, opts)
	}
	return m.run(ctx, ActionPublishPost, actor, m.builder.PublishPost(actor.ProfileID, body), opts, nil)
}

// EditPost replaces the content of a post
func (m *Mutator) EditPost(ctx context.Context, actor Actor, postID, content string, opts ...Option) Outcome {
	body, err := ValidateContent(content)
	if err == nil {
		err = m.require(actor, "", "")
	}
	if err == nil {
		err = RequireID("post_id", postID)
	}
	if err != nil {
		return m.reject(ctx, ActionEditPost, err, opts)
	}
	return m.run(ctx, ActionEditPost, actor, m.builder.EditPost(actor.ProfileID, postID, body), opts, nil)
}

// DeletePost deletes a post
func (m *Mutator) DeletePost(ctx context.Context, actor Actor, postID string, opts ...Option) Outcome {
	err := m.require(actor, m.config.Registries.Posts, "posts")
	if err == nil {
		err = RequireID("post_id", postID)
	}
	if err != nil {
		return m.reject(ctx, ActionDeletePost, err, opts)
	}
	return m.run(ctx, ActionDeletePost, actor, m.builder.DeletePost(actor.ProfileID, postID), opts, nil)
}

// AddComment comments on a post
func (m *Mutator) AddComment(ctx context.Context, actor Actor, postID, content string, opts ...Option) Outcome {
	body, err := ValidateContent(content)
	if err == nil {
		err = m.require(actor, m.config.Registries.Comments, "comments")
	}
	if err == nil {
		err = RequireID("post_id", postID)
	}
	if err != nil {
		return m.reject(ctx, ActionAddComment, err, opts)
	}
	return m.run(ctx, ActionAddComment, actor, m.builder.AddComment(actor.ProfileID, postID, body), opts, nil)
}

// Follow follows a profile and locates the resulting follow token
func (m *Mutator) Follow(ctx context.Context, actor Actor, targetProfileID string, opts ...Option) Outcome {
	err := m.require(actor, m.config.Registries.Followers, "followers")
	if err == nil {
		err = RequireID("target_profile_id", targetProfileID)
	}
	if err == nil && domain.SameID(actor.ProfileID, targetProfileID) {
		err = domain.NewValidationError("target_profile_id", "cannot follow yourself")
	}
	if err != nil {
		return m.reject(ctx, ActionFollow, err, opts)
	}
	return m.run(ctx, ActionFollow, actor, m.builder.Follow(actor.ProfileID, targetProfileID), opts,
		m.locateToken(domain.KindFollowToken, domain.RelationshipFollow, actor.Address, targetProfileID))
}

// Unfollow burns a follow token
func (m *Mutator) Unfollow(ctx context.Context, actor Actor, followTokenID string, opts ...Option) Outcome {
	err := m.require(actor, m.config.Registries.Followers, "followers")
	if err == nil {
		err = RequireID("follow_token_id", followTokenID)
	}
	if err != nil {
		return m.reject(ctx, ActionUnfollow, err, opts)
	}
	return m.run(ctx, ActionUnfollow, actor, m.builder.Unfollow(actor.ProfileID, followTokenID), opts, nil)
}

// Like likes a post and locates the resulting like token
func (m *Mutator) Like(ctx context.Context, actor Actor, postID string, opts ...Option) Outcome {
	err := m.require(actor, m.config.Registries.Likes, "likes")
	if err == nil {
		err = RequireID("post_id", postID)
	}
	if err != nil {
		return m.reject(ctx, ActionLike, err, opts)
	}
	return m.run(ctx, ActionLike, actor, m.builder.Like(actor.ProfileID, postID), opts,
		m.locateToken(domain.KindLikeToken, domain.RelationshipLike, actor.Address, postID))
}

// Unlike burns a like token
func (m *Mutator) Unlike(ctx context.Context, actor Actor, likeTokenID string, opts ...Option) Outcome {
	err := m.require(actor, m.config.Registries.Likes, "likes")
	if err == nil {
		err = RequireID("like_token_id", likeTokenID)
	}
	if err != nil {
		return m.reject(ctx, ActionUnlike, err, opts)
	}
	return m.run(ctx, ActionUnlike, actor, m.builder.Unlike(actor.ProfileID, likeTokenID), opts, nil)
}

// ProfileInput is the content of a new profile
type ProfileInput struct {
	Username    string
	Description string
	AvatarURL   string
}

// CreateProfile creates the actor's profile; the outcome carries the new profile id when found
func (m *Mutator) CreateProfile(ctx context.Context, actor Actor, in ProfileInput, opts ...Option) Outcome {
	username, err := ValidateUsername(in.Username)
	var description, avatar string
	if err == nil {
		description, err = ValidateDescription(in.Description)
	}
	if err == nil {
		avatar, err = ValidateAvatarURL(in.AvatarURL)
	}
	if err == nil {
		err = m.requireRegistry(m.config.Registries.Profiles, "profiles")
	}
	if err == nil && actor.Address == "" {
		err = domain.NewValidationError("address", "no connected account")
	}
	if err != nil {
		return m.reject(ctx, ActionCreateProfile, err, opts)
	}

	call := m.builder.CreateProfile(username, description, avatar)
	return m.run(ctx, ActionCreateProfile, actor, call, opts, func(ctx context.Context, res *domain.TxResult, out *Outcome) {
		out.ObjectID = m.createdOfKind(res, domain.KindProfile)
	})
}

func (m *Mutator) require(actor Actor, registryID, registry string) error {
	if actor.Address == "" {
		return domain.NewValidationError("address", "no connected account")
	}
	if err := RequireID("profile_id", actor.ProfileID); err != nil {
		return err
	}
	if registry == "" {
		return nil
	}
	return m.requireRegistry(registryID, registry)
}

func (m *Mutator) requireRegistry(id, name string) error {
	if !domain.IsIdentifierShaped(id) {
		return fmt.Errorf("%w: %s registry is not configured", domain.ErrRegistryUnavailable, name)
	}
	return nil
}

// locateToken finds the token created by a follow or like, first among the
// created objects and then by polling ownership scans
func (m *Mutator) locateToken(kind domain.TypeKind, rel domain.RelationshipKind, owner, target string) func(context.Context, *domain.TxResult, *Outcome) {
	return func(ctx context.Context, res *domain.TxResult, out *Outcome) {
		if id := m.createdOfKind(res, kind); id != "" {
			out.ObjectID = id
			return
		}
		id, found, err := m.discoverer.Discover(ctx, rel, owner, target)
		if err != nil {
			logger.WarnOp(ctx, "Failed to discover relationship token", zap.Error(err))
			return
		}
		if found {
			out.ObjectID = id
		}
	}
}

func (m *Mutator) createdOfKind(res *domain.TxResult, kind domain.TypeKind) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Created {
		if m.tags.Matches(c.Type, kind) {
			return c.ObjectID
		}
	}
	return ""
}

// acquire marks a canonical move call as in flight
func (m *Mutator) acquire(fingerprint string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[fingerprint]; busy {
		return false
	}
	m.inflight[fingerprint] = struct{}{}
	return true
}

func (m *Mutator) release(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, fingerprint)
}

// reject reports a local pre-flight failure; nothing reaches the network
func (m *Mutator) reject(ctx context.Context, action Action, err error, opts []Option) Outcome {
	o := collect(opts)
	rollback(o.pending)
	logger.WarnCtx(ctx, "Mutation rejected before submission",
		zap.String("action", string(action)),
		zap.Error(err),
	)
	return Outcome{Action: action, State: StateFailed, Err: err}
}

func (m *Mutator) run(
	ctx context.Context,
	action Action,
	actor Actor,
	call domain.MoveCall,
	opts []Option,
	after func(ctx context.Context, res *domain.TxResult, out *Outcome),
) Outcome {
	o := collect(opts)
	out := Outcome{OperationID: uuid.NewString(), Action: action}
	ctx = logger.WithOperation(ctx, logger.OperationInfo{
		OperationID: out.OperationID,
		Action:      string(action),
		Actor:       actor.Address,
	})

	fingerprint, err := m.codec.Canonical(call)
	if err != nil {
		rollback(o.pending)
		out.State, out.Err = StateFailed, fmt.Errorf("failed to encode transaction: %w", err)
		return out
	}
	if !m.acquire(string(fingerprint)) {
		rollback(o.pending)
		logger.WarnOp(ctx, "Identical transaction already in flight", zap.String("target", call.Target))
		out.State, out.Err = StateFailed, domain.ErrAlreadySubmitting
		return out
	}
	defer m.release(string(fingerprint))

	observer := m.transitionObserver()
	tracker := NewTracker(func(from, to State) {
		logger.FromOperation(ctx).Debug("Mutation state changed", zap.String("from", string(from)), zap.String("to", string(to)))
		if observer != nil {
			observer(action, out.OperationID, from, to)
		}
	})
	step := func(to State) {
		if err := tracker.Transition(to); err != nil {
			logger.WarnOp(ctx, "Illegal mutation state transition", zap.String("to", string(to)), zap.Error(err))
		}
	}
	step(StateSubmitting)

	res, err := m.submit(ctx, call)
	if err != nil {
		step(StateFailed)
		rollback(o.pending)
		step(StateIdle)

		if errors.Is(err, domain.ErrSignatureDeclined) {
			logger.WarnOp(ctx, "Signature declined", zap.String("target", call.Target))
		} else {
			logger.ErrorOp(ctx, err, zap.String("target", call.Target))
		}
		out.State, out.Err = StateFailed, err
		if res != nil {
			out.Digest = res.Digest
		}
		return out
	}

	out.Digest = res.Digest
	out.CreatedIDs = res.CreatedIDs()
	step(StateConfirmed)
	commit(o.pending)
	logger.InfoOp(ctx, "Transaction confirmed", zap.String("digest", res.Digest), zap.Int("created", len(out.CreatedIDs)))

	if after != nil {
		after(ctx, res, &out)
	}
	out.State = StateConfirmed

	step(StateRefetching)
	if o.refetch != nil {
		if err := o.refetch(ctx, out); err != nil {
			logger.WarnOp(ctx, "Re-derivation after confirmation failed", zap.Error(err))
			out.RefetchErr = err
		}
	}
	step(StateIdle)
	return out
}

// submit signs, submits and awaits finality. A returned TxResult with a
// non-nil error carries the digest of a transaction that failed on chain.
func (m *Mutator) submit(ctx context.Context, call domain.MoveCall) (*domain.TxResult, error) {
	signed, err := m.signer.Sign(ctx, call)
	if err != nil {
		return nil, err
	}

	logger.InfoOp(ctx, "Submitting transaction", zap.String("target", call.Target))
	sub, err := m.store.SubmitTransaction(ctx, *signed)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}

	res, err := m.store.AwaitFinality(ctx, sub.Digest)
	if err != nil {
		return &domain.TxResult{Digest: sub.Digest}, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "execution failed"
		}
		return res, fmt.Errorf("%w: %s", domain.ErrTransactionFailed, reason)
	}
	return res, nil
}

func collect(opts []Option) *runOptions {
	o := &runOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func rollback(pending []Pending) {
	for i := len(pending) - 1; i >= 0; i-- {
		pending[i].Rollback()
	}
}

func commit(pending []Pending) {
	for _, p := range pending {
		p.Commit()
	}
}
