package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-social/internal/domain"
)

const service = "social"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// RegistriesConfig holds the object ids of the registries of a deployment
type RegistriesConfig struct {
	Profiles  string `mapstructure:"profiles"`
	Followers string `mapstructure:"followers"`
	Posts     string `mapstructure:"posts"`
	Likes     string `mapstructure:"likes"`
	Comments  string `mapstructure:"comments"`
}

// RPCConfig holds fullnode RPC configuration
type RPCConfig struct {
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	FinalityTimeout   time.Duration `mapstructure:"finality_timeout"`
}

// GraphConfig holds page sizes and fan-out widths of graph reconstruction
type GraphConfig struct {
	OwnedPageSize int `mapstructure:"owned_page_size"`
	KeysPageSize  int `mapstructure:"keys_page_size"`
	BatchSize     int `mapstructure:"batch_size"`
	AuthorFanout  int `mapstructure:"author_fanout"`
	CountFanout   int `mapstructure:"count_fanout"`
}

// DiscoveryConfig holds relationship token polling configuration
type DiscoveryConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// SessionConfig holds view configuration
type SessionConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	PageSize        int           `mapstructure:"page_size"`
}

// SignerConfig holds the wallet bridge configuration
type SignerConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MediaConfig holds avatar pinning configuration
type MediaConfig struct {
	PinataURL   string `mapstructure:"pinata_url"`
	PinataJWT   string `mapstructure:"pinata_jwt"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
	IPFSGateway string `mapstructure:"ipfs_gateway"`
}

// ClientConfig holds configuration for the social client
type ClientConfig struct {
	BaseConfig `mapstructure:",squash"`
	// Network selects a preset: devnet, testnet or mainnet
	Network    string           `mapstructure:"network"`
	PackageID  string           `mapstructure:"package_id"`
	Registries RegistriesConfig `mapstructure:"registries"`
	RPC        RPCConfig        `mapstructure:"rpc"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Session    SessionConfig    `mapstructure:"session"`
	Signer     SignerConfig     `mapstructure:"signer"`
	Media      MediaConfig      `mapstructure:"media"`
}

// NetworkPreset is the deployment known for a network
type NetworkPreset struct {
	RPCURL     string
	PackageID  string
	Registries RegistriesConfig
}

// Presets are the built-in deployments. Only testnet has a published package.
var Presets = map[string]NetworkPreset{
	"devnet": {
		RPCURL: "https://fullnode.devnet.sui.io:443",
	},
	"testnet": {
		RPCURL:    "https://fullnode.testnet.sui.io:443",
		PackageID: "0x13d8c22ff506a703189ee587b0cd98e82774f532dd5052909245599a49cdd5c3",
		Registries: RegistriesConfig{
			Profiles:  "0xfeffdb1ca4d818a830458b0d573a0d37b0daecb014ac10e7927f3f0053accbef",
			Followers: "0x886ff17acb1855916ce6139da57034654b59db0b90d90bfdaf548fb78b3e780b",
			Posts:     "0x2b4c30ad6bf9f3891ad0a7c0d2acd0f9f95b8b52433dcbbf346cd034fdcfa604",
			Likes:     "0xd61fe270c98287e4ee2caf51a63982af2328d7e1d61a5b9326b0dc919f339959",
			Comments:  "0x7318ef96bd2061f4563916cbdbf9a6c157a1211b89c135cfa9ad1beab9f37860",
		},
	},
	"mainnet": {
		RPCURL: "https://fullnode.mainnet.sui.io:443",
	},
}

// LoadClientConfig loads configuration for the social client
func LoadClientConfig(configFile string, envPath string) (*ClientConfig, error) {
	v := configureViper(configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("network", "testnet")
	v.SetDefault("rpc.timeout", "30s")
	v.SetDefault("rpc.requests_per_second", 20)
	v.SetDefault("rpc.burst", 5)
	v.SetDefault("rpc.finality_timeout", "60s")
	v.SetDefault("graph.owned_page_size", 50)
	v.SetDefault("graph.keys_page_size", 200)
	v.SetDefault("graph.batch_size", 50)
	v.SetDefault("graph.author_fanout", 25)
	v.SetDefault("graph.count_fanout", 40)
	v.SetDefault("discovery.poll_interval", "2s")
	v.SetDefault("discovery.max_attempts", 20)
	v.SetDefault("session.refresh_interval", domain.RefreshInterval.String())
	v.SetDefault("session.page_size", domain.DisplayPageSize)
	v.SetDefault("signer.timeout", "5m")
	v.SetDefault("media.pinata_url", "https://api.pinata.cloud/pinning/pinFileToIPFS")
	v.SetDefault("media.max_file_size", domain.AvatarMaxBytes)
	v.SetDefault("media.ipfs_gateway", "https://ipfs.io")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyPreset()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyPreset fills every deployment field left empty from the network preset
func (c *ClientConfig) applyPreset() {
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	preset, ok := Presets[c.Network]
	if !ok {
		return
	}
	if c.RPC.URL == "" {
		c.RPC.URL = preset.RPCURL
	}
	if c.PackageID == "" {
		c.PackageID = preset.PackageID
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Registries.Profiles, preset.Registries.Profiles)
	fill(&c.Registries.Followers, preset.Registries.Followers)
	fill(&c.Registries.Posts, preset.Registries.Posts)
	fill(&c.Registries.Likes, preset.Registries.Likes)
	fill(&c.Registries.Comments, preset.Registries.Comments)
}

// Validate rejects unknown networks and non-positive sizes
func (c *ClientConfig) Validate() error {
	if _, ok := Presets[c.Network]; !ok {
		return fmt.Errorf("unknown network %q", c.Network)
	}
	if c.RPC.URL == "" {
		return errors.New("rpc.url is required")
	}

	positive := map[string]int{
		"graph.owned_page_size":  c.Graph.OwnedPageSize,
		"graph.keys_page_size":   c.Graph.KeysPageSize,
		"graph.batch_size":       c.Graph.BatchSize,
		"graph.author_fanout":    c.Graph.AuthorFanout,
		"graph.count_fanout":     c.Graph.CountFanout,
		"discovery.max_attempts": c.Discovery.MaxAttempts,
		"session.page_size":      c.Session.PageSize,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", key, value)
		}
	}
	if c.Graph.BatchSize > 50 {
		return fmt.Errorf("graph.batch_size must not exceed 50, got %d", c.Graph.BatchSize)
	}
	if c.Session.RefreshInterval <= 0 {
		return fmt.Errorf("session.refresh_interval must be positive, got %s", c.Session.RefreshInterval)
	}
	if c.Discovery.PollInterval < 0 {
		return fmt.Errorf("discovery.poll_interval must not be negative, got %s", c.Discovery.PollInterval)
	}
	if c.Media.MaxFileSize <= 0 || c.Media.MaxFileSize > domain.AvatarMaxBytes {
		return fmt.Errorf("media.max_file_size must be within 1..%d, got %d", domain.AvatarMaxBytes, c.Media.MaxFileSize)
	}
	return nil
}

// RegistryIDs returns the registry ids as the domain expects them
func (c *ClientConfig) RegistryIDs() domain.RegistryIDs {
	return domain.RegistryIDs{
		Profiles:  c.Registries.Profiles,
		Followers: c.Registries.Followers,
		Posts:     c.Registries.Posts,
		Likes:     c.Registries.Likes,
		Comments:  c.Registries.Comments,
	}
}

// TypeTags returns the type tags of the configured package
func (c *ClientConfig) TypeTags() domain.TypeTags {
	return domain.NewTypeTags(c.PackageID)
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_SOCIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"network",
		"package_id",
		// Registries
		"registries.profiles",
		"registries.followers",
		"registries.posts",
		"registries.likes",
		"registries.comments",
		// RPC
		"rpc.url",
		"rpc.timeout",
		"rpc.requests_per_second",
		"rpc.burst",
		"rpc.finality_timeout",
		// Graph
		"graph.owned_page_size",
		"graph.keys_page_size",
		"graph.batch_size",
		"graph.author_fanout",
		"graph.count_fanout",
		// Discovery
		"discovery.poll_interval",
		"discovery.max_attempts",
		// Session
		"session.refresh_interval",
		"session.page_size",
		// Signer
		"signer.url",
		"signer.token",
		"signer.timeout",
		// Media
		"media.pinata_url",
		"media.pinata_jwt",
		"media.max_file_size",
		"media.ipfs_gateway",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string) {
	// Always try shared base first, then local, then the per-service local file.
	envFiles := []string{".env", ".env.local", ".env." + service + ".local"}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
