package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"listing-manager/utils"
)

// Config is the whole of config.yaml.
type Config struct {
	Server struct {
		Listen        string            `yaml:"listen"`
		Static        string            `yaml:"static"`
		StaticDefault string            `yaml:"static_default"`
		StaticAllowed []string          `yaml:"static_allowed"`
		LogDir        string            `yaml:"log_dir"`
		TemplateVars  map[string]string `yaml:"template_vars"`
	} `yaml:"server"`
	JWT struct {
		Secret            string `yaml:"secret"`
		ExpirationMinutes int    `yaml:"expiration_minutes"`
	} `yaml:"jwt"`
	Auth struct {
		UserBackend string `yaml:"user_backend"` // "file", "mysql", "postgres", "sqlite"
		UserFile    string `yaml:"user_file"`
		HashMacro   string `yaml:"hash_macro"`
		Salt        string `yaml:"salt"`
		DBDSN       string `yaml:"db_dsn"`
		UserRequest string `yaml:"user_request"` // ex: SELECT hash, salt, is_admin FROM users WHERE name = ? AND pass = ?
		DBHashMacro string `yaml:"db_hash_macro"`
		DBPassHash  bool   `yaml:"db_pass_hash"`
	} `yaml:"auth"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Policies    PolicyConfig      `yaml:"policies"`
	Listing     ListingDefaults   `yaml:"listing"`
	Bulk        BulkConfig        `yaml:"bulk"`
	Inventory   struct {
		CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
	} `yaml:"inventory"`
}

// MarketplaceConfig addresses the legacy XML trading endpoint.
type MarketplaceConfig struct {
	APIURL             string `yaml:"api_url"`
	AppID              string `yaml:"app_id"`
	DevID              string `yaml:"dev_id"`
	CertID             string `yaml:"cert_id"`
	CompatibilityLevel string `yaml:"compatibility_level"`
	SiteID             string `yaml:"site_id"`
	ItemURLPrefix      string `yaml:"item_url_prefix"`
	// 0 keeps the http.Client default (no timeout).
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// PolicyConfig holds the seller business policy identifiers injected into
// every add-item request.
type PolicyConfig struct {
	ShippingProfileID string `yaml:"shipping_profile_id"`
	ReturnProfileID   string `yaml:"return_profile_id"`
	PaymentProfileID  string `yaml:"payment_profile_id"`
}

type ListingDefaults struct {
	Country         string `yaml:"country"`
	Currency        string `yaml:"currency"`
	DispatchTimeMax int    `yaml:"dispatch_time_max"`
	ListingDuration string `yaml:"listing_duration"`
	ListingType     string `yaml:"listing_type"`
	Location        string `yaml:"location"`
	PostalCode      string `yaml:"postal_code"`
	Site            string `yaml:"site"`
}

type BulkConfig struct {
	ItemDelayMS   int    `yaml:"item_delay_ms"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	ErrorLogFile  string `yaml:"error_log_file"`
	DefaultFormat string `yaml:"default_format"`
}

// ItemDelay is the fixed pause between two submissions.
func (b BulkConfig) ItemDelay() time.Duration {
	return time.Duration(b.ItemDelayMS) * time.Millisecond
}

func (b BulkConfig) MaxUploadBytes() int64 {
	return int64(b.MaxUploadMB) << 20
}

func (m MarketplaceConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Environment variables overriding secrets; a .env file in the working
// directory is loaded first when present.
const (
	EnvAppID     = "LISTING_MANAGER_APP_ID"
	EnvDevID     = "LISTING_MANAGER_DEV_ID"
	EnvCertID    = "LISTING_MANAGER_CERT_ID"
	EnvJWTSecret = "LISTING_MANAGER_JWT_SECRET"
)

// LoadConfig reads file relative to the project root, applies defaults and
// environment overrides, then validates.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(utils.ResolvePath(file))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse is LoadConfig without the file read.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Marketplace.AppID, EnvAppID)
	override(&c.Marketplace.DevID, EnvDevID)
	override(&c.Marketplace.CertID, EnvCertID)
	override(&c.JWT.Secret, EnvJWTSecret)
}

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":3000"
	}
	if c.Server.LogDir == "" {
		c.Server.LogDir = "./logs"
	}
	if c.JWT.ExpirationMinutes == 0 {
		c.JWT.ExpirationMinutes = 24 * 60
	}
	if c.Auth.UserBackend == "" {
		c.Auth.UserBackend = "file"
	}
	if c.Auth.UserFile == "" {
		c.Auth.UserFile = "users.yaml"
	}
	if c.Marketplace.APIURL == "" {
		c.Marketplace.APIURL = "https://api.ebay.com/ws/api.dll"
	}
	if c.Marketplace.CompatibilityLevel == "" {
		c.Marketplace.CompatibilityLevel = "1113"
	}
	if c.Marketplace.SiteID == "" {
		c.Marketplace.SiteID = "0"
	}
	if c.Marketplace.ItemURLPrefix == "" {
		c.Marketplace.ItemURLPrefix = "https://www.ebay.com/itm/"
	}
	if c.Listing.Country == "" {
		c.Listing.Country = "US"
	}
	if c.Listing.Currency == "" {
		c.Listing.Currency = "USD"
	}
	if c.Listing.DispatchTimeMax == 0 {
		c.Listing.DispatchTimeMax = 3
	}
	if c.Listing.ListingDuration == "" {
		c.Listing.ListingDuration = "GTC"
	}
	if c.Listing.ListingType == "" {
		c.Listing.ListingType = "FixedPriceItem"
	}
	if c.Listing.Location == "" {
		c.Listing.Location = "United States"
	}
	if c.Bulk.ItemDelayMS == 0 {
		c.Bulk.ItemDelayMS = 200
	}
	if c.Bulk.MaxUploadMB == 0 {
		c.Bulk.MaxUploadMB = 10
	}
	if c.Bulk.ErrorLogFile == "" {
		c.Bulk.ErrorLogFile = "bulk_upload_errors.log"
	}
	if c.Bulk.DefaultFormat == "" {
		c.Bulk.DefaultFormat = "standard"
	}
	if c.Inventory.CacheTTLMinutes == 0 {
		c.Inventory.CacheTTLMinutes = 60
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.JWT.Secret == "" {
		errs = multierror.Append(errs, errors.New("jwt.secret is required"))
	}
	switch c.Auth.UserBackend {
	case "file":
		if c.Auth.HashMacro == "" {
			errs = multierror.Append(errs, errors.New("auth.hash_macro is required with the file backend"))
		}
	case "mysql", "postgres", "sqlite3", "sqlite":
		if c.Auth.DBDSN == "" || c.Auth.UserRequest == "" {
			errs = multierror.Append(errs, fmt.Errorf("auth.db_dsn and auth.user_request are required with the %s backend", c.Auth.UserBackend))
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("auth.user_backend %q is not supported", c.Auth.UserBackend))
	}
	if c.Policies.ShippingProfileID == "" || c.Policies.ReturnProfileID == "" || c.Policies.PaymentProfileID == "" {
		errs = multierror.Append(errs, errors.New("policies: shipping, return and payment profile ids are required"))
	}
	if c.Bulk.ItemDelayMS < 0 {
		errs = multierror.Append(errs, errors.New("bulk.item_delay_ms must not be negative"))
	}
	if c.Marketplace.TimeoutSeconds < 0 {
		errs = multierror.Append(errs, errors.New("marketplace.timeout_seconds must not be negative"))
	}
	return errs.ErrorOrNil()
}

// SQLDriver maps the configured backend onto a database/sql driver name.
func (c *Config) SQLDriver() string {
	switch c.Auth.UserBackend {
	case "sqlite":
		return "sqlite3"
	default:
		return c.Auth.UserBackend
	}
}
