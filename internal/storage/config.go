// Manages server configuration stored in server_config.json.

package storage

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ServerConfig stores all server-wide configuration.
// Loaded from server_config.json, created with defaults if missing.
type ServerConfig struct {
	// JWTSecret is the secret used to sign JWT tokens.
	// Auto-generated if empty on first load.
	JWTSecret []byte `json:"jwt_secret"`

	// NotionToken is the integration token used to talk to the Notion API.
	// Empty disables Notion-backed features until set.
	NotionToken string `json:"notion_token"`

	// WebPush holds VAPID keys for admin push notifications.
	// Auto-generated if empty on first load.
	WebPush WebPushConfig `json:"web_push"`

	// Quotas defines server-wide resource limits.
	Quotas ServerQuotas `json:"quotas"`

	// RateLimits defines rate limiting configuration.
	RateLimits RateLimits `json:"rate_limits"`
}

// WebPushConfig holds the VAPID key pair and contact for Web Push.
type WebPushConfig struct {
	// VAPIDPublicKey is shared with browsers when they subscribe.
	VAPIDPublicKey string `json:"vapid_public_key"`

	// VAPIDPrivateKey signs push messages. Never exposed over the API.
	VAPIDPrivateKey string `json:"vapid_private_key"`

	// Contact is the mailto: or https: subscriber URL required by VAPID.
	Contact string `json:"contact"`
}

// RateLimits defines rate limiting configuration (requests per minute).
type RateLimits struct {
	// AuthRatePerMin limits authentication attempts. 0 means unlimited.
	AuthRatePerMin int `json:"auth_rate_per_min"`

	// SubmitRatePerMin limits public form submissions per client IP.
	// 0 means unlimited.
	SubmitRatePerMin int `json:"submit_rate_per_min"`

	// ReadAuthRatePerMin limits authenticated read operations.
	// 0 means unlimited.
	ReadAuthRatePerMin int `json:"read_auth_rate_per_min"`

	// ReadUnauthRatePerMin limits unauthenticated read operations.
	// 0 means unlimited.
	ReadUnauthRatePerMin int `json:"read_unauth_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.AuthRatePerMin < 0 {
		return errors.New("auth_rate_per_min must be non-negative")
	}
	if r.SubmitRatePerMin < 0 {
		return errors.New("submit_rate_per_min must be non-negative")
	}
	if r.ReadAuthRatePerMin < 0 {
		return errors.New("read_auth_rate_per_min must be non-negative")
	}
	if r.ReadUnauthRatePerMin < 0 {
		return errors.New("read_unauth_rate_per_min must be non-negative")
	}
	return nil
}

// DefaultRateLimits returns the default rate limits.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		AuthRatePerMin:       5,    // 5 req/min for auth
		SubmitRatePerMin:     30,   // 30 req/min per IP for submissions
		ReadAuthRatePerMin:   3000, // 3k req/min for authenticated reads
		ReadUnauthRatePerMin: 600,  // 600 req/min for unauthenticated reads
	}
}

// ServerQuotas defines server-wide resource limits.
type ServerQuotas struct {
	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	MaxRequestBodyBytes int64 `json:"max_request_body_bytes"`

	// MaxSessionsPerUser limits active sessions per admin user.
	MaxSessionsPerUser int `json:"max_sessions_per_user"`

	// MaxForms limits total published forms on the server.
	MaxForms int `json:"max_forms"`

	// MaxFieldsPerForm limits the number of fields in a single form.
	MaxFieldsPerForm int `json:"max_fields_per_form"`

	// MaxRowsPerQuery caps the number of rows returned by list-mode forms.
	MaxRowsPerQuery int `json:"max_rows_per_query"`
}

// Validate checks that all quota values are non-negative.
func (q *ServerQuotas) Validate() error {
	if q.MaxRequestBodyBytes < 0 {
		return errors.New("max_request_body_bytes must be non-negative")
	}
	if q.MaxSessionsPerUser < 0 {
		return errors.New("max_sessions_per_user must be non-negative")
	}
	if q.MaxForms < 0 {
		return errors.New("max_forms must be non-negative")
	}
	if q.MaxFieldsPerForm < 0 {
		return errors.New("max_fields_per_form must be non-negative")
	}
	if q.MaxRowsPerQuery < 0 {
		return errors.New("max_rows_per_query must be non-negative")
	}
	return nil
}

// DefaultServerQuotas returns the default server-wide quotas.
func DefaultServerQuotas() ServerQuotas {
	return ServerQuotas{
		MaxRequestBodyBytes: 1 * 1024 * 1024, // 1 MiB
		MaxSessionsPerUser:  10,              // 10 sessions
		MaxForms:            1000,            // 1000 forms
		MaxFieldsPerForm:    100,             // 100 fields
		MaxRowsPerQuery:     500,             // 500 rows
	}
}

// Validate checks that the configuration is valid.
func (c *ServerConfig) Validate() error {
	if len(c.JWTSecret) == 0 {
		return errors.New("jwt_secret is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 bytes")
	}
	if err := c.Quotas.Validate(); err != nil {
		return fmt.Errorf("quotas: %w", err)
	}
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("rate_limits: %w", err)
	}
	return nil
}

// LoadServerConfig loads configuration from dataDir/server_config.json.
// Creates the file with defaults if it doesn't exist.
// Auto-generates JWTSecret and VAPID keys if empty.
func LoadServerConfig(dataDir string) (*ServerConfig, error) {
	path := filepath.Join(dataDir, "server_config.json")

	cfg := ServerConfig{Quotas: DefaultServerQuotas(), RateLimits: DefaultRateLimits()}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read server_config.json: %w", err)
		}
		// File doesn't exist, will create with defaults
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse server_config.json: %w", err)
		}
	}

	modified := false
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		modified = true
	}
	if cfg.WebPush.VAPIDPrivateKey == "" {
		private, public, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			return nil, fmt.Errorf("failed to generate VAPID keys: %w", err)
		}
		cfg.WebPush.VAPIDPrivateKey = private
		cfg.WebPush.VAPIDPublicKey = public
		modified = true
	}

	// Save if we created defaults or generated secrets
	if modified || errors.Is(err, os.ErrNotExist) {
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server_config.json: %w", err)
	}

	return &cfg, nil
}

// Save saves configuration to dataDir/server_config.json.
func (c *ServerConfig) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dataDir, "server_config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write server_config.json: %w", err)
	}
	return nil
}
