// Package config assembles simplesocial services from configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/imagegen"
	"github.com/tendant/simple-social/pkg/simplesocial/notify"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
	repomongo "github.com/tendant/simple-social/pkg/simplesocial/repo/mongo"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// ServerConfig represents server configuration for the simple-social service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseType  string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "mongo"
	MongoURI      string `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DB_NAME" env-default:"simple_social"`

	// Token configuration
	TokenSecret     string `env:"SECRET_KEY" env-default:"dev-secret-change-me"`
	TokenTTLMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"60"`

	// Externally-keyed comment proxy; disabled when empty.
	ProxyAPIKey string `env:"MCP_API_KEY" env-default:""`

	SMTP  SMTPConfig
	Image ImageConfig
}

// SMTPConfig configures the notification mail transport
type SMTPConfig struct {
	Enabled  bool   `env:"SMTP_ENABLED" env-default:"false"`
	Host     string `env:"SMTP_HOST" env-default:""`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:""`
}

// ImageConfig configures the image enrichment fallback chain. Each tier is
// independently toggle-able.
type ImageConfig struct {
	ToolEnabled  bool   `env:"IMAGE_TOOL_ENABLED" env-default:"false"`
	ToolEndpoint string `env:"IMAGE_TOOL_ENDPOINT" env-default:"https://server.smithery.ai/@falahgs/flux-imagegen-mcp-server/mcp"`
	ToolAPIKey   string `env:"IMAGE_TOOL_API_KEY" env-default:""`

	RenderEnabled  bool   `env:"IMAGE_RENDER_ENABLED" env-default:"false"`
	RenderEndpoint string `env:"IMAGE_RENDER_ENDPOINT" env-default:"https://image.pollinations.ai/prompt"`

	FallbackEnabled bool     `env:"IMAGE_FALLBACK_ENABLED" env-default:"true"`
	FallbackBaseURL string   `env:"IMAGE_FALLBACK_BASE_URL" env-default:"http://localhost:8080/static/fallback"`
	FallbackImages  []string `env:"IMAGE_FALLBACK_IMAGES" env-default:"fallback-1.png,fallback-2.png,fallback-3.png"`
}

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv constructs a ServerConfig from process environment variables.
func LoadFromEnv() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		DatabaseType:    "memory",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "simple_social",
		TokenSecret:     "dev-secret-change-me",
		TokenTTLMinutes: 60,
		Image: ImageConfig{
			FallbackEnabled: true,
			FallbackBaseURL: "http://localhost:8080/static/fallback",
			FallbackImages:  []string{"fallback-1.png", "fallback-2.png", "fallback-3.png"},
		},
	}
}

// WithPort sets the listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithMongo selects the MongoDB backend.
func WithMongo(uri, database string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = "mongo"
		c.MongoURI = uri
		c.MongoDatabase = database
		return nil
	}
}

// WithTokenSecret sets the token signing secret.
func WithTokenSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.TokenSecret = secret
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "mongo" {
		return errors.New("database_type must be 'memory' or 'mongo'")
	}
	if c.DatabaseType == "mongo" && (c.MongoURI == "" || c.MongoDatabase == "") {
		return errors.New("mongodb uri and database name are required when using mongo")
	}

	if c.TokenSecret == "" {
		return errors.New("token secret is required")
	}

	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "") {
		return errors.New("smtp host and from address are required when smtp is enabled")
	}

	return nil
}

// TokenTTL returns the configured access-token lifetime.
func (c *ServerConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// BuildRepository creates the configured repository backend. For the mongo
// backend the connection is verified and indexes are ensured; the returned
// close function disconnects the client.
func (c *ServerConfig) BuildRepository(ctx context.Context) (simplesocial.Repository, func(context.Context) error, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func(context.Context) error { return nil }, nil
	case "mongo":
		db, closeFn, err := repomongo.Open(ctx, c.MongoURI, c.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		repo := repomongo.New(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = closeFn(ctx)
			return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		return repo, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildImageGenerator assembles the enabled image provider tiers in
// fallback order. Remote tiers share an SSRF-guarded HTTP client.
func (c *ServerConfig) BuildImageGenerator() simplesocial.ImageGenerator {
	var providers []imagegen.Provider

	var client *http.Client
	if c.Image.ToolEnabled || c.Image.RenderEnabled {
		client = newOutboundClient()
	}

	if c.Image.ToolEnabled {
		providers = append(providers, imagegen.NewToolProvider(c.Image.ToolEndpoint, c.Image.ToolAPIKey, client))
	}
	if c.Image.RenderEnabled {
		providers = append(providers, imagegen.NewRenderProvider(c.Image.RenderEndpoint, client))
	}
	if c.Image.FallbackEnabled {
		providers = append(providers, imagegen.NewLocalProvider(c.Image.FallbackBaseURL, c.Image.FallbackImages))
	}

	return imagegen.NewChain(providers...)
}

// BuildNotifier creates the notification dispatcher, or a no-op notifier
// when SMTP is disabled. The returned stop function drains the queue.
func (c *ServerConfig) BuildNotifier() (simplesocial.Notifier, func(), error) {
	if !c.SMTP.Enabled {
		return simplesocial.NoopNotifier{}, func() {}, nil
	}

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
	})
	if err != nil {
		return nil, nil, err
	}

	dispatcher := notify.NewDispatcher(mailer)
	dispatcher.Start()
	return dispatcher, dispatcher.Stop, nil
}

// newOutboundClient builds an HTTP client that refuses private, loopback,
// and link-local destinations, including after DNS resolution.
func newOutboundClient() *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(30 * time.Second).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(cfg).Client
}
