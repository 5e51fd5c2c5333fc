// Package sid decodes and encodes Amino session tokens and login secrets.
//
// A SID is the unpadded base64url encoding of
//
//	prefix (1 byte) || JSON payload || HMAC-SHA1 signature (20 bytes)
//
// The signature is kept but never verified locally; the server is the only
// authority on whether a token is valid.
package sid

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/luciancaetano/aminokit"
)

const (
	// Prefix is the first byte of tokens produced by Encode.
	Prefix byte = 0x02

	signatureSize = sha1.Size
	minTokenSize  = 1 + signatureSize

	// DefaultMaxAge is the age after which a SID is treated as stale.
	DefaultMaxAge = 12 * time.Hour
	// DefaultSecretMaxAge is the age after which a login secret is treated as stale.
	DefaultSecretMaxAge = 14 * 24 * time.Hour
)

// payload mirrors the server's field order. Encode relies on the declaration
// order here.
type payload struct {
	One        *int   `json:"1"`
	Version    int    `json:"0"`
	Three      int    `json:"3"`
	UserID     string `json:"2"`
	IssuedAt   int64  `json:"5"`
	IP         string `json:"4"`
	ClientType int    `json:"6"`
}

// Decode parses a SID. Padding is optional.
func Decode(token string) (*aminokit.SID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aminokit.ErrInvalidSID, err)
	}
	if len(raw) < minTokenSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", aminokit.ErrInvalidSID, len(raw), minTokenSize)
	}

	body := raw[1 : len(raw)-signatureSize]

	s := &aminokit.SID{
		Original:  token,
		Prefix:    raw[0],
		Signature: append([]byte(nil), raw[len(raw)-signatureSize:]...),
	}
	if err := json.Unmarshal(body, &s.Data); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", aminokit.ErrInvalidSID, err)
	}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", aminokit.ErrInvalidSID, err)
	}
	if s.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", aminokit.ErrInvalidSID)
	}
	return s, nil
}

// Encode builds a SID for userID signed with key.
func Encode(key []byte, userID, ip string, issuedAt int64, clientType int) (string, error) {
	body, err := json.Marshal(payload{
		Version:    2,
		UserID:     userID,
		IssuedAt:   issuedAt,
		IP:         ip,
		ClientType: clientType,
	})
	if err != nil {
		return "", fmt.Errorf("encode sid payload: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte(Prefix)
	buf.Write(body)

	mac := hmac.New(sha1.New, key)
	mac.Write(buf.Bytes())
	buf.Write(mac.Sum(nil))

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// IsExpired reports whether more than maxAge has elapsed between the token's
// issue time and now.
func IsExpired(token string, maxAge time.Duration, now time.Time) (bool, error) {
	s, err := Decode(token)
	if err != nil {
		return false, err
	}
	return s.Expired(maxAge, now), nil
}

// UserID returns the account id embedded in token.
func UserID(token string) (string, error) {
	s, err := Decode(token)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}
