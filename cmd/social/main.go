package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/config"
	"github.com/feral-file/ff-social/internal/decoder"
	"github.com/feral-file/ff-social/internal/graph"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/media"
	"github.com/feral-file/ff-social/internal/mutation"
	"github.com/feral-file/ff-social/internal/objectstore"
	"github.com/feral-file/ff-social/internal/signer"
)

type options struct {
	configFile string
	envPath    string
	address    string
	profileID  string
}

// app is the wired client shared by every command
type app struct {
	cfg     *config.ClientConfig
	clock   adapter.Clock
	store   objectstore.ObjectStore
	graph   *graph.Reconstructor
	mutator *mutation.Mutator
	pinner  media.Pinner
	fs      adapter.FileSystem
	opts    *options
}

func main() {
	opts := &options{}
	root := rootCmd(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	logger.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(opts *options) *cobra.Command {
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:           "social",
		Short:         "Social graph client for the Sui object store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "config/", "Path to environment files")
	cmd.PersistentFlags().StringVar(&opts.address, "address", "", "Account address acting or viewing")
	cmd.PersistentFlags().StringVar(&opts.profileID, "profile", "", "Profile id of the account (resolved from the registry when empty)")

	cmd.AddCommand(
		feedCmd(a),
		profileCmd(a),
		followingCmd(a),
		leaderboardCmd(a),
		postCmd(a),
		commentCmd(a),
		followCmd(a),
		unfollowCmd(a),
		likeCmd(a),
		unlikeCmd(a),
		avatarCmd(a),
		watchCmd(a),
		routeCmd(),
	)
	return cmd
}

// init loads configuration, the logger and every collaborator
func (a *app) init(ctx context.Context) error {
	cfg, err := config.LoadClientConfig(a.opts.configFile, a.opts.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	err = logger.Initialize(logger.Config{
		Debug:       cfg.Debug,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Network,
		Tags: map[string]string{
			"service": "social",
			"network": cfg.Network,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.clock = adapter.NewClock()
	codec := adapter.NewCodec()
	rpcClient := adapter.NewHTTPClient(cfg.RPC.Timeout)

	a.store = objectstore.NewSuiStore(objectstore.Config{
		URL:               cfg.RPC.URL,
		RequestsPerSecond: cfg.RPC.RequestsPerSecond,
		Burst:             cfg.RPC.Burst,
		FinalityTimeout:   cfg.RPC.FinalityTimeout,
	}, rpcClient, codec)

	tags := cfg.TypeTags()
	a.graph = graph.New(graph.Config{
		OwnedPageSize: cfg.Graph.OwnedPageSize,
		KeysPageSize:  cfg.Graph.KeysPageSize,
		BatchSize:     cfg.Graph.BatchSize,
		AuthorFanout:  cfg.Graph.AuthorFanout,
		CountFanout:   cfg.Graph.CountFanout,
		Registries:    cfg.RegistryIDs(),
	}, a.store, decoder.New(tags))

	sig := signer.NewRemoteSigner(signer.Config{
		URL:    cfg.Signer.URL,
		Sender: a.opts.address,
		Token:  cfg.Signer.Token,
	}, adapter.NewHTTPClient(cfg.Signer.Timeout), codec)

	a.mutator = mutation.New(mutation.Config{
		Registries: cfg.RegistryIDs(),
		Discovery: mutation.DiscoveryConfig{
			PollInterval: cfg.Discovery.PollInterval,
			MaxAttempts:  cfg.Discovery.MaxAttempts,
		},
	}, tags, a.store, sig, codec, a.graph)
	a.mutator.OnTransition(func(action mutation.Action, operationID string, from, to mutation.State) {
		logger.Debug("Mutation transition",
			zap.String("action", string(action)),
			zap.String("operation_id", operationID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	})

	a.pinner = media.NewPinataPinner(media.PinataConfig{
		URL: cfg.Media.PinataURL,
		JWT: cfg.Media.PinataJWT,
	}, adapter.NewHTTPClient(cfg.RPC.Timeout))
	a.fs = adapter.NewFileSystem()

	logger.InfoCtx(ctx, "Initialized social client",
		zap.String("network", cfg.Network),
		zap.String("rpc", cfg.RPC.URL),
		zap.String("package", cfg.PackageID),
	)
	return nil
}

// actor returns the acting account and its profile, resolving the profile when needed
func (a *app) actor(ctx context.Context, needProfile bool) (mutation.Actor, error) {
	actor := mutation.Actor{Address: a.opts.address, ProfileID: a.opts.profileID}
	if actor.Address == "" {
		return actor, fmt.Errorf("--address is required")
	}
	if actor.ProfileID != "" || !needProfile {
		return actor, nil
	}

	id, found, err := a.graph.ResolveProfileID(ctx, actor.Address)
	if err != nil {
		return actor, fmt.Errorf("failed to resolve profile: %w", err)
	}
	if !found {
		return actor, fmt.Errorf("no profile found for %s, create one with 'social profile create'", actor.Address)
	}
	actor.ProfileID = id
	return actor, nil
}
