// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// LogLevel is the zap level name.
	LogLevel string

	// JWTSecret signs session tokens.
	JWTSecret string

	// TokenTTL is the lifetime of a session token, e.g. "24h".
	TokenTTL string

	// S3Bucket, S3Region, S3Endpoint and S3PathStyle configure blob storage.
	// Uploads are disabled when S3Bucket is empty.
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// AdminEmail and AdminPassword create the first admin account at
	// startup when no admin exists yet.
	AdminEmail    string
	AdminPassword string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.JWTSecret, "jwt-secret", "", "session token signing secret")
	flag.StringVar(&options.TokenTTL, "token-ttl", "24h", "session token lifetime")
	flag.StringVar(&options.S3Bucket, "s3-bucket", "", "bucket for uploaded files")
	flag.StringVar(&options.S3Region, "s3-region", "us-east-1", "bucket region")
	flag.StringVar(&options.S3Endpoint, "s3-endpoint", "", "custom S3 endpoint (MinIO)")
	flag.BoolVar(&options.S3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	flag.StringVar(&options.AdminEmail, "admin-email", "", "email of the admin created on first start")
	flag.StringVar(&options.AdminPassword, "admin-password", "", "password of the admin created on first start")
}

// Parse parses the command-line flags, the optional .env file, the config
// file and environment variables, in increasing order of precedence. It
// returns a pointer to the Options struct containing the parsed values.
func Parse() *Options {
	flag.Parse()

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("error while reading .env file: %v", err)
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := LoadFile(options.Config, options); err != nil {
		log.Fatal(err)
	}

	ApplyEnv(options)

	return options
}

// LoadFile decodes the JSON config file at path into o. A missing file is
// not an error.
func LoadFile(path string, o *Options) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides o with the environment variables that are set.
func ApplyEnv(o *Options) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&o.Port, "SERVER_ADDRESS")
	setString(&o.DatabaseDSN, "DATABASE_DSN")
	setString(&o.LogLevel, "LOG_LEVEL")
	setString(&o.JWTSecret, "JWT_SECRET")
	setString(&o.TokenTTL, "TOKEN_TTL")
	setString(&o.S3Bucket, "S3_BUCKET")
	setString(&o.S3Region, "S3_REGION")
	setString(&o.S3Endpoint, "S3_ENDPOINT")
	setString(&o.TLSCert, "TLS_CERT")
	setString(&o.TLSKey, "TLS_KEY")
	setString(&o.AdminEmail, "ADMIN_EMAIL")
	setString(&o.AdminPassword, "ADMIN_PASSWORD")
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		o.S3PathStyle = strings.EqualFold(v, "true")
	}
}

// TokenLifetime parses TokenTTL, falling back to 24h.
func (o *Options) TokenLifetime() time.Duration {
	d, err := time.ParseDuration(o.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// BootstrapAdmin reports whether a first admin account is configured.
func (o *Options) BootstrapAdmin() bool {
	return o.AdminEmail != "" && o.AdminPassword != ""
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
