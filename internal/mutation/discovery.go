package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// DiscoveryConfig bounds the polling for a just-created relationship token
type DiscoveryConfig struct {
	PollInterval time.Duration // Fixed delay between scans
	MaxAttempts  int           // Scans before giving up
}

// DefaultDiscoveryConfig polls every 2s, at most 20 times
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		PollInterval: 2 * time.Second,
		MaxAttempts:  20,
	}
}

// TokenFinder locates the relationship token an owner holds for a target
type TokenFinder interface {
	FindFollowToken(ctx context.Context, owner, profileID string) (string, bool, error)
	FindLikeToken(ctx context.Context, owner, postID string) (string, bool, error)
}

var errTokenNotVisible = errors.New("token not visible yet")

// Discoverer polls ownership scans until a freshly created token shows up
type Discoverer struct {
	config DiscoveryConfig
	finder TokenFinder
}

// NewDiscoverer creates a discoverer
func NewDiscoverer(cfg DiscoveryConfig, finder TokenFinder) *Discoverer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.PollInterval < 0 {
		cfg.PollInterval = 0
	}
	return &Discoverer{config: cfg, finder: finder}
}

// Discover scans for the token owner holds for target, at a fixed interval.
// Running out of attempts is not an error: it returns ("", false, nil) and the
// relationship should be treated as absent.
func (d *Discoverer) Discover(ctx context.Context, kind domain.RelationshipKind, owner, target string) (string, bool, error) {
	var find func(ctx context.Context, owner, target string) (string, bool, error)
	switch kind {
	case domain.RelationshipFollow:
		find = d.finder.FindFollowToken
	case domain.RelationshipLike:
		find = d.finder.FindLikeToken
	default:
		return "", false, fmt.Errorf("unknown relationship kind %q", kind)
	}
	if owner == "" || target == "" {
		return "", false, nil
	}

	var (
		tokenID  string
		attempts int
	)
	operation := func() error {
		attempts++
		id, ok, err := find(ctx, owner, target)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errTokenNotVisible
		}
		tokenID = id
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.config.PollInterval), uint64(d.config.MaxAttempts-1)),
		ctx,
	)
	err := backoff.Retry(operation, b)
	switch {
	case err == nil:
		logger.DebugCtx(ctx, "Discovered relationship token",
			zap.String("kind", string(kind)),
			zap.String("token", tokenID),
			zap.Int("attempts", attempts),
		)
		return tokenID, true, nil
	case errors.Is(err, errTokenNotVisible):
		logger.WarnCtx(ctx, "Relationship token not found, assuming absent",
			zap.String("kind", string(kind)),
			zap.String("owner", owner),
			zap.String("target", target),
			zap.Int("attempts", attempts),
		)
		return "", false, nil
	default:
		return "", false, err
	}
}
