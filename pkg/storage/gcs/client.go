package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

const (
	pingTimeout    = 5 * time.Second
	maxV4Expiry    = 7 * 24 * time.Hour
	defaultExpires = 15 * time.Minute
)

// ErrNotConfigured is returned when the bucket or signing identity is missing.
var ErrNotConfigured = errors.New("gcs signer not configured")

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client signs read URLs for objects in a single media bucket.
type Client struct {
	storage    *storage.Client
	bucket     string
	accessID   string
	privateKey []byte
	expiry     time.Duration
	now        func() time.Time
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// NewClient builds a storage client and, when service account credentials are
// present, a local V4 signer. Without a private key signing falls back to the
// IAM signBlob API through the storage client.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, ErrNotConfigured
	}

	rawCreds, err := loadCredentials(gcp)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	c := &Client{bucket: cfg.BucketName, expiry: cfg.DownloadURLExpiry, now: time.Now}
	if rawCreds != "" {
		sa, err := ParseServiceAccount(rawCreds)
		if err != nil {
			return nil, err
		}
		c.accessID = sa.ClientEmail
		c.privateKey = []byte(sa.PrivateKey)
		opts = append(opts, option.WithCredentialsJSON([]byte(NormalizeCredentials(rawCreds))))
	}

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	c.storage = sc

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", c.bucket), "gcs client initialized")
	}
	return c, nil
}

// NewSigner builds an offline signer that never talks to GCS.
func NewSigner(bucket, accessID string, privateKeyPEM []byte, expiry time.Duration) *Client {
	return &Client{
		bucket:     bucket,
		accessID:   accessID,
		privateKey: privateKeyPEM,
		expiry:     expiry,
		now:        time.Now,
	}
}

// Bucket returns the configured media bucket.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Expiry returns the validity window applied to signed URLs.
func (c *Client) Expiry() time.Duration {
	if c == nil || c.expiry <= 0 {
		return defaultExpires
	}
	if c.expiry > maxV4Expiry {
		return maxV4Expiry
	}
	return c.expiry
}

// Configured reports whether the client can sign URLs at all.
func (c *Client) Configured() bool {
	if c == nil || c.bucket == "" {
		return false
	}
	return len(c.privateKey) > 0 || c.storage != nil
}

// SignedURL returns a V4 signed GET URL for object.
func (c *Client) SignedURL(ctx context.Context, object string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: c.now().Add(c.Expiry()),
	}

	if len(c.privateKey) > 0 {
		opts.GoogleAccessID = c.accessID
		opts.PrivateKey = c.privateKey
		url, err := storage.SignedURL(c.bucket, object, opts)
		if err != nil {
			return "", fmt.Errorf("signing %s: %w", object, err)
		}
		return url, nil
	}

	url, err := c.storage.Bucket(c.bucket).SignedURL(object, opts)
	if err != nil {
		return "", fmt.Errorf("signing %s via iam: %w", object, err)
	}
	return url, nil
}

// Ping verifies the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.bucket == "" {
		return ErrNotConfigured
	}
	if c.storage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.storage.Bucket(c.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs bucket check failed: %w", err)
	}
	return nil
}

// Close releases the storage client.
func (c *Client) Close() error {
	if c == nil || c.storage == nil {
		return nil
	}
	return c.storage.Close()
}

// NormalizeCredentials unwraps service account JSON that was stored as a
// JSON string literal, which happens when the secret is double encoded.
func NormalizeCredentials(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return inner
		}
	}
	return trimmed
}

// ParseServiceAccount extracts the signing identity from credentials JSON.
func ParseServiceAccount(raw string) (serviceAccount, error) {
	var sa serviceAccount
	if err := json.Unmarshal([]byte(NormalizeCredentials(raw)), &sa); err != nil {
		return serviceAccount{}, fmt.Errorf("parsing gcs credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return serviceAccount{}, fmt.Errorf("gcs credentials missing client_email or private_key: %w", ErrNotConfigured)
	}
	return sa, nil
}

func loadCredentials(gcp config.GCPConfig) (string, error) {
	if strings.TrimSpace(gcp.CredentialsJSON) != "" {
		return gcp.CredentialsJSON, nil
	}
	if gcp.ApplicationCredentials != "" {
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return "", fmt.Errorf("reading credentials file: %w", err)
		}
		return string(raw), nil
	}
	return "", nil
}
