// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// DefaultSecretKey is the development fallback for the application secret.
// Production deployments must override it.
const DefaultSecretKey = "dev-secret-key-change-me"

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server      ServerConfig
	Log         LogConfig
	Database    DatabaseConfig
	Mail        MailConfig
	Security    SecurityConfig
	Session     SessionConfig
	Environment string // development, production
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// MailConfig holds the SMTP transport settings for outgoing mail.
type MailConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool // STARTTLS (implicit TLS on port 465)
	From     string
	FromName string
}

// SecurityConfig holds the signing material for confirmation tokens.
// Salt separates the confirmation-token use of the secret key from any
// other signing done with the same key.
type SecurityConfig struct {
	SecretKey string
	Salt      string
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Remember-me session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Mail: MailConfig{
			Host:     cmd.String("mail-host"),
			Port:     int(cmd.Int("mail-port")),
			Username: cmd.String("mail-username"),
			Password: cmd.String("mail-password"),
			TLS:      cmd.Bool("mail-tls"),
			From:     cmd.String("mail-from"),
			FromName: cmd.String("mail-from-name"),
		},
		Security: SecurityConfig{
			SecretKey: cmd.String("secret-key"),
			Salt:      cmd.String("security-salt"),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Environment: cmd.String("environment"),
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	return cfg
}

// IsProduction reports whether the application runs in production mode.
// It drives the Secure flag on cookies and the secret-key sanity check.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	// TLS termination happens in front of the app; the base URL is plain
	// HTTP unless configured explicitly.
	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL used in confirmation links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		// Mail transport
		&cli.StringFlag{
			Name:    "mail-host",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_SERVER"), toml.TOML("mail.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "mail-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_PORT"), toml.TOML("mail.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_USERNAME"), toml.TOML("mail.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_PASSWORD"), toml.TOML("mail.password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "mail-tls",
			Value:   true,
			Usage:   "Use TLS for SMTP (STARTTLS, implicit TLS on port 465)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_USE_TLS"), toml.TOML("mail.tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Usage:   "Sender address for outgoing mail (defaults to mail-username)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_DEFAULT_SENDER"), toml.TOML("mail.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Value:   "Digital Nomads",
			Usage:   "Sender display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		// Signing material
		&cli.StringFlag{
			Name:    "secret-key",
			Value:   DefaultSecretKey,
			Usage:   "Application secret key for token signing",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SECRET_KEY"), toml.TOML("security.secret_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "security-salt",
			Value:   "email-confirm-salt",
			Usage:   "Domain-separation salt for confirmation tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SECURITY_PASSWORD_SALT"), toml.TOML("security.salt", configFile)),
		},
		// Session cookies
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "_session",
			Usage:   "Session cookie name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_COOKIE_NAME"), toml.TOML("session.cookie_name", configFile)),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Remember-me session max age in seconds",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_MAX_AGE"), toml.TOML("session.max_age", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_HASH_KEY"), toml.TOML("session.hash_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_BLOCK_KEY"), toml.TOML("session.block_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "environment",
			Value:   "development",
			Usage:   "Environment name (development, production)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ENVIRONMENT"), toml.TOML("environment", configFile)),
		},
	}
}
