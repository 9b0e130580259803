// Package settings holds the storage-provider configuration and its
// file-backed persistence.
//
// The configuration is a flat record of opaque strings. It is created with
// defaults on first run, edited field-by-field through the settings surface
// (every edit persists the whole record), and loaded once at startup.
// No validation happens at load or save time — empty required fields are
// only caught by the upload precondition check.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/markdrop/internal/errs"
)

// Config holds the S3-compatible storage settings.
// All fields are opaque strings; yaml tags double as the field names
// accepted by the settings surface.
type Config struct {
	// BucketName is the target bucket.
	BucketName string `yaml:"bucketName"`

	// AccessKeyID is the access key ID (MinIO / S3 style).
	AccessKeyID string `yaml:"accessKeyId"`

	// SecretAccessKey is the secret access key.
	SecretAccessKey string `yaml:"secretAccessKey"`

	// Endpoint is the storage server, e.g. "https://s3.example.com" or
	// "localhost:9000". A missing scheme means TLS.
	Endpoint string `yaml:"endpoint"`

	// Region is used by region-aware backends. Defaults to "auto".
	Region string `yaml:"region"`

	// PublicURL is the externally reachable base under which uploaded
	// objects are served, e.g. "https://pub.example.com/".
	PublicURL string `yaml:"publicUrl"`

	// Directory is an optional key prefix inside the bucket.
	Directory string `yaml:"directory"`
}

// Default returns the first-run configuration.
func Default() Config {
	return Config{Region: "auto"}
}

// CheckUploadReady reports whether the configuration is complete enough to
// attempt an upload. It returns a config_missing error naming the first
// empty required field; PublicURL, Region, and Directory are not required.
func (c Config) CheckUploadReady() error {
	switch {
	case c.BucketName == "":
		return errs.New(errs.ErrKindConfigMissing, "bucket name is not set")
	case c.AccessKeyID == "":
		return errs.New(errs.ErrKindConfigMissing, "access key ID is not set")
	case c.SecretAccessKey == "":
		return errs.New(errs.ErrKindConfigMissing, "secret access key is not set")
	case c.Endpoint == "":
		return errs.New(errs.ErrKindConfigMissing, "endpoint is not set")
	}
	return nil
}

// FieldNames lists the yaml names of all settable fields, in display order.
func FieldNames() []string {
	return []string{
		"bucketName", "accessKeyId", "secretAccessKey",
		"endpoint", "region", "publicUrl", "directory",
	}
}

// SetField sets one field by its yaml name. Values are stored verbatim.
func (c *Config) SetField(name, value string) error {
	switch name {
	case "bucketName":
		c.BucketName = value
	case "accessKeyId":
		c.AccessKeyID = value
	case "secretAccessKey":
		c.SecretAccessKey = value
	case "endpoint":
		c.Endpoint = value
	case "region":
		c.Region = value
	case "publicUrl":
		c.PublicURL = value
	case "directory":
		c.Directory = value
	default:
		return errs.New(errs.ErrKindInvalidInput, "unknown settings field "+name)
	}
	return nil
}

// Store is the process-wide configuration handle: one live Config shared by
// the upload pipeline and the settings surface, persisted to a YAML file.
// It is safe for concurrent use.
type Store struct {
	path string

	mu  sync.Mutex
	cur Config
}

// NewStore creates a Store persisting to path and loads the current
// configuration (defaults merged with whatever is already on disk).
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the persisted configuration merged over defaults: fields
// present in the file win, absent fields keep their default values.
// A missing file is not an error; it yields the defaults.
func (s *Store) Load() error {
	cfg := Default()

	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first run
	case err != nil:
		return errs.Wrap(errs.ErrKindInvalidInput, "read settings file", err)
	default:
		// Unmarshal into the defaults so absent fields fall through.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "parse settings file", err)
		}
	}

	s.mu.Lock()
	s.cur = cfg
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the in-memory configuration.
func (s *Store) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Save replaces the in-memory configuration wholesale and persists it.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "encode settings", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "write settings file", err)
	}
	s.cur = cfg
	return nil
}

// Update applies fn to a copy of the current configuration and saves the
// result. This is the field-edit path of the settings surface.
func (s *Store) Update(fn func(*Config) error) error {
	cfg := s.Current()
	if err := fn(&cfg); err != nil {
		return err
	}
	return s.Save(cfg)
}
