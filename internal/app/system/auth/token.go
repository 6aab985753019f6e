package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/hkdf"
)

const tokenName = "projecthub-token"

// TokenIssuer mints and verifies opaque bearer tokens. A token is the
// user's id signed and encrypted with securecookie; the timestamp embedded
// by securecookie enforces the ttl.
type TokenIssuer struct {
	codec *securecookie.SecureCookie
}

// NewTokenIssuer derives independent hash and block keys from key. key must
// be at least 32 bytes.
func NewTokenIssuer(key string, ttl time.Duration) (*TokenIssuer, error) {
	if len(key) < 32 {
		return nil, errors.New("token key must be at least 32 characters")
	}
	hashKey, blockKey, err := deriveKeys(key)
	if err != nil {
		return nil, err
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(ttl.Seconds()))
	// Tokens travel in headers, not cookies; lift the cookie length cap.
	codec.MaxLength(0)
	return &TokenIssuer{codec: codec}, nil
}

// ErrNoIssuer is returned by Issue on a nil issuer.
var ErrNoIssuer = errors.New("bearer tokens are not configured")

// Issue returns a token for userID.
func (ti *TokenIssuer) Issue(userID primitive.ObjectID) (string, error) {
	if ti == nil {
		return "", ErrNoIssuer
	}
	if userID.IsZero() {
		return "", errors.New("cannot issue token for anonymous identity")
	}
	return ti.codec.Encode(tokenName, userID.Hex())
}

// Resolve returns the user id carried by token. It never errors: a missing,
// tampered, expired or malformed token yields (Anonymous, false).
func (ti *TokenIssuer) Resolve(token string) (primitive.ObjectID, bool) {
	if ti == nil || token == "" {
		return ident.Anonymous, false
	}
	var hex string
	if err := ti.codec.Decode(tokenName, token, &hex); err != nil {
		return ident.Anonymous, false
	}
	id, err := ident.Parse(hex)
	if err != nil {
		return ident.Anonymous, false
	}
	return id, true
}

// deriveKeys expands secret into a 64-byte HMAC-SHA256 key and a 32-byte
// AES-256 key using HKDF with distinct info labels.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	hashKey = make([]byte, 64)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("projecthub token hmac")), hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive token hash key: %w", err)
	}
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("projecthub token aes")), blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive token block key: %w", err)
	}
	return hashKey, blockKey, nil
}
