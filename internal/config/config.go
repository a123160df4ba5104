// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// configFile is filled by the --config flag before the other flags
// resolve their TOML sources.
var (
	configFile string
	tomlSrc    = altsrc.NewStringPtrSourcer(&configFile)
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Security SecurityConfig
	Session  SessionConfig
	Mail     MailConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	APIBase     string // prefix for all API routes, e.g. "/api"
	DocsDir     string // static API docs, served under APIBase+"/docs" when set
	MaxBodySize int    // in MB
	CORSOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	Driver        string // sqlite, mongo
	DSN           string
	MongoURI      string
	MongoDatabase string
}

type SecurityConfig struct {
	Secret          string // signs bearer tokens and salts security tokens
	BcryptCost      int
	HashConcurrency int // parallel bcrypt operations, 0 = GOMAXPROCS
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

type MailConfig struct { //nolint:govet // fieldalignment not critical
	Transport   string // smtp, ses, log
	From        string
	FromName    string
	LinkBaseURL string // prefix of activation and reset links
	Timeout     time.Duration
	SMTP        SMTPConfig
	SES         SESConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

type SESConfig struct {
	Region          string
	AccessKeyID     string // static credentials, default chain when empty
	SecretAccessKey string
	Endpoint        string // custom endpoint, e.g. a local SES mock
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			APIBase:     cmd.String("api-base"),
			DocsDir:     cmd.String("docs-dir"),
			MaxBodySize: int(cmd.Int("max-body-size")),
			CORSOrigins: cmd.StringSlice("cors-origins"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			Driver:        cmd.String("database-driver"),
			DSN:           cmd.String("database-dsn"),
			MongoURI:      cmd.String("mongo-uri"),
			MongoDatabase: cmd.String("mongo-database"),
		},
		Security: SecurityConfig{
			Secret:          cmd.String("secret"),
			BcryptCost:      int(cmd.Int("bcrypt-cost")),
			HashConcurrency: int(cmd.Int("hash-concurrency")),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Mail: MailConfig{
			Transport:   cmd.String("mail-transport"),
			From:        cmd.String("mail-from"),
			FromName:    cmd.String("mail-from-name"),
			LinkBaseURL: cmd.String("mail-link-base-url"),
			Timeout:     cmd.Duration("mail-timeout"),
			SMTP: SMTPConfig{
				Host:     cmd.String("smtp-host"),
				Port:     int(cmd.Int("smtp-port")),
				Username: cmd.String("smtp-username"),
				Password: cmd.String("smtp-password"),
				TLS:      cmd.Bool("smtp-tls"),
			},
			SES: SESConfig{
				Region:          cmd.String("ses-region"),
				AccessKeyID:     cmd.String("ses-access-key-id"),
				SecretAccessKey: cmd.String("ses-secret-access-key"),
				Endpoint:        cmd.String("ses-endpoint"),
			},
		},
	}

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	cfg.Server.BaseURL = strings.TrimSuffix(cfg.Server.BaseURL, "/")
	cfg.Server.APIBase = normalizeAPIBase(cfg.Server.APIBase)
	if cfg.Mail.LinkBaseURL == "" {
		cfg.Mail.LinkBaseURL = cfg.Server.BaseURL
	}
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	if c.Security.Secret == "" {
		return errors.New("security secret is required")
	}
	switch c.Database.Driver {
	case "sqlite":
	case "mongo":
		if c.Database.MongoURI == "" {
			return errors.New("mongo-uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Mail.Transport {
	case "log":
	case "smtp":
		if c.Mail.SMTP.Host == "" {
			return errors.New("smtp-host is required for the smtp transport")
		}
	case "ses":
		if c.Mail.SES.Region == "" {
			return errors.New("ses-region is required for the ses transport")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}
	if c.Mail.Transport != "log" && c.Mail.From == "" {
		return errors.New("mail-from is required")
	}
	return nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}

func normalizeAPIBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	scheme := "http"
	if port == 443 {
		scheme = "https"
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || scheme == "https" {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func sources(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(env), toml.TOML(key, tomlSrc))
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.toml",
			Usage:       "Path to configuration file",
			Destination: &configFile,
			Sources:     cli.EnvVars("CONFIG"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: sources("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL of the service",
			Sources: sources("BASE_URL", "server.base_url"),
		},
		&cli.StringFlag{
			Name:    "api-base",
			Value:   "/api",
			Usage:   "Path prefix of the API routes",
			Sources: sources("API_BASE", "server.api_base"),
		},
		&cli.StringFlag{
			Name:    "docs-dir",
			Usage:   "Directory with static API docs (disabled when empty)",
			Sources: sources("DOCS_DIR", "server.docs_dir"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: sources("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.StringSliceFlag{
			Name:    "cors-origins",
			Value:   []string{"*"},
			Usage:   "Allowed CORS origins",
			Sources: sources("CORS_ORIGINS", "server.cors_origins"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-driver",
			Value:   "sqlite",
			Usage:   "Account store (sqlite, mongo)",
			Sources: sources("DATABASE_DRIVER", "database.driver"),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/accounts.db",
			Usage:   "SQLite DSN",
			Sources: sources("DATABASE_DSN", "database.dsn"),
		},
		&cli.StringFlag{
			Name:    "mongo-uri",
			Usage:   "MongoDB connection URI",
			Sources: sources("MONGO_URI", "database.mongo_uri"),
		},
		&cli.StringFlag{
			Name:    "mongo-database",
			Value:   "accountd",
			Usage:   "MongoDB database name",
			Sources: sources("MONGO_DATABASE", "database.mongo_database"),
		},
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "Secret for bearer token signing",
			Sources: sources("SECRET", "security.secret"),
		},
		&cli.IntFlag{
			Name:    "bcrypt-cost",
			Value:   10,
			Usage:   "bcrypt cost factor",
			Sources: sources("BCRYPT_COST", "security.bcrypt_cost"),
		},
		&cli.IntFlag{
			Name:    "hash-concurrency",
			Usage:   "Maximum parallel password hash operations (0 = number of CPUs)",
			Sources: sources("HASH_CONCURRENCY", "security.hash_concurrency"),
		},
		// Session flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "_session",
			Usage:   "Session cookie name",
			Sources: sources("SESSION_COOKIE_NAME", "session.cookie_name"),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   86400, // matches the bearer token lifetime
			Usage:   "Session max age in seconds",
			Sources: sources("SESSION_MAX_AGE", "session.max_age"),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: sources("SESSION_HASH_KEY", "session.hash_key"),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: sources("SESSION_BLOCK_KEY", "session.block_key"),
		},
		// Mail flags
		&cli.StringFlag{
			Name:    "mail-transport",
			Value:   "log",
			Usage:   "Mail transport (smtp, ses, log)",
			Sources: sources("MAIL_TRANSPORT", "mail.transport"),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Usage:   "Sender address",
			Sources: sources("MAIL_FROM", "mail.from"),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Usage:   "Sender display name",
			Sources: sources("MAIL_FROM_NAME", "mail.from_name"),
		},
		&cli.StringFlag{
			Name:    "mail-link-base-url",
			Usage:   "Base URL of activation and reset links (defaults to base_url)",
			Sources: sources("MAIL_LINK_BASE_URL", "mail.link_base_url"),
		},
		&cli.DurationFlag{
			Name:    "mail-timeout",
			Value:   30 * time.Second,
			Usage:   "Timeout of a single mail delivery",
			Sources: sources("MAIL_TIMEOUT", "mail.timeout"),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: sources("SMTP_HOST", "mail.smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: sources("SMTP_PORT", "mail.smtp.port"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: sources("SMTP_USERNAME", "mail.smtp.username"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: sources("SMTP_PASSWORD", "mail.smtp.password"),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: sources("SMTP_TLS", "mail.smtp.tls"),
		},
		&cli.StringFlag{
			Name:    "ses-region",
			Usage:   "AWS region of SES",
			Sources: sources("SES_REGION", "mail.ses.region"),
		},
		&cli.StringFlag{
			Name:    "ses-access-key-id",
			Usage:   "AWS access key id (default credential chain when empty)",
			Sources: sources("SES_ACCESS_KEY_ID", "mail.ses.access_key_id"),
		},
		&cli.StringFlag{
			Name:    "ses-secret-access-key",
			Usage:   "AWS secret access key",
			Sources: sources("SES_SECRET_ACCESS_KEY", "mail.ses.secret_access_key"),
		},
		&cli.StringFlag{
			Name:    "ses-endpoint",
			Usage:   "Custom SES endpoint",
			Sources: sources("SES_ENDPOINT", "mail.ses.endpoint"),
		},
	}
}
