package client

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/pkg/config"
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// AccountsClient verifies bearer tokens against the accounts service JWKS.
// Keys are cached and refreshed on an interval; an unknown kid triggers an
// immediate refresh to pick up rotated keys.
type AccountsClient struct {
	jwksURL    string
	refresh    time.Duration
	httpClient *http.Client
	logger     *zap.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewAccountsClient constructs the client. No network call happens until the
// first token verification.
func NewAccountsClient(cfg config.AccountsConfig, logger *zap.Logger) *AccountsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	refresh := cfg.JWKSRefresh
	if refresh <= 0 {
		refresh = time.Hour
	}
	return &AccountsClient{
		jwksURL:    strings.TrimSuffix(cfg.APIURL, "/") + cfg.JWKSPath,
		refresh:    refresh,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// Keyfunc resolves the signing key for a token. Only RS256 is accepted.
func (c *AccountsClient) Keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
	}
	kid, _ := token.Header["kid"].(string)

	if key := c.lookupKey(kid); key != nil {
		return key, nil
	}
	if err := c.refreshKeys(); err != nil {
		return nil, fmt.Errorf("refresh jwks: %w", err)
	}
	if key := c.lookupKey(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("no signing key for kid %q", kid)
}

func (c *AccountsClient) lookupKey(kid string) *rsa.PublicKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Since(c.fetchedAt) > c.refresh {
		return nil
	}
	if kid == "" && len(c.keys) == 1 {
		for _, key := range c.keys {
			return key
		}
	}
	return c.keys[kid]
}

func (c *AccountsClient) refreshKeys() error {
	resp, err := c.httpClient.Get(c.jwksURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var document jwks
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(document.Keys))
	for _, entry := range document.Keys {
		if entry.Kty != "RSA" {
			continue
		}
		key, err := parseRSAKey(entry)
		if err != nil {
			c.logger.Sugar().Warnw("skipping unparsable jwk", "kid", entry.Kid, "error", err)
			continue
		}
		keys[entry.Kid] = key
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwks contains no usable RSA keys")
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	c.logger.Sugar().Infow("jwks refreshed", "keys", len(keys))
	return nil
}

func parseRSAKey(entry jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(entry.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(entry.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
