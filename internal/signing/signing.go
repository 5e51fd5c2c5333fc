// Package signing implements the request signature and device id schemes of
// the Amino API.
package signing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/luciancaetano/aminokit"
)

const (
	// Prefix is the version byte prepended to signatures and device ids.
	Prefix byte = 0x42

	seedSize = 20
	macSize  = sha1.Size

	// DeviceIDLength is the length of a device id in hex characters.
	DeviceIDLength = 2 * (1 + seedSize + macSize)
)

var (
	// SignatureKey signs request bodies and handshake strings.
	SignatureKey = mustHex("F8E7A61AC3F725941E3AC7CAE2D688BE97F30B93")
	// DeviceKey signs device id payloads.
	DeviceKey = mustHex("02B258C63559D8804321C5D5065AF320358D366F")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Sign returns the NDC-MSG-SIG value for data: base64(Prefix || HMAC-SHA1(data)).
func Sign(data []byte) string {
	mac := hmac.New(sha1.New, SignatureKey)
	mac.Write(data)

	out := make([]byte, 0, 1+macSize)
	out = append(out, Prefix)
	out = mac.Sum(out)
	return base64.StdEncoding.EncodeToString(out)
}

// SignString is Sign for string payloads.
func SignString(data string) string {
	return Sign([]byte(data))
}

// DeviceIDFromSeed derives the device id for a fixed 20-byte seed.
func DeviceIDFromSeed(seed [seedSize]byte) string {
	mac := hmac.New(sha1.New, DeviceKey)
	mac.Write([]byte{Prefix})
	mac.Write(seed[:])

	raw := make([]byte, 0, 1+seedSize+macSize)
	raw = append(raw, Prefix)
	raw = append(raw, seed[:]...)
	raw = mac.Sum(raw)
	return strings.ToUpper(hex.EncodeToString(raw))
}

// NewDeviceID derives a device id from a random seed.
func NewDeviceID() (string, error) {
	var seed [seedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", fmt.Errorf("read device seed: %w", err)
	}
	return DeviceIDFromSeed(seed), nil
}

// UpdateDeviceID re-derives a device id from the seed embedded in id, so ids
// signed with an older key are re-signed with DeviceKey.
func UpdateDeviceID(id string) (string, error) {
	seed, err := seedOf(id)
	if err != nil {
		return "", err
	}
	return DeviceIDFromSeed(seed), nil
}

// ValidDeviceID reports whether id has the expected format and a tag matching
// DeviceKey.
func ValidDeviceID(id string) bool {
	seed, err := seedOf(id)
	if err != nil {
		return false
	}
	return strings.EqualFold(id, DeviceIDFromSeed(seed))
}

func seedOf(id string) ([seedSize]byte, error) {
	var seed [seedSize]byte
	if len(id) != DeviceIDLength {
		return seed, fmt.Errorf("%w: length %d, want %d", aminokit.ErrInvalidDeviceID, len(id), DeviceIDLength)
	}
	raw, err := hex.DecodeString(id)
	if err != nil {
		return seed, fmt.Errorf("%w: %v", aminokit.ErrInvalidDeviceID, err)
	}
	if raw[0] != Prefix {
		return seed, fmt.Errorf("%w: prefix %02x", aminokit.ErrInvalidDeviceID, raw[0])
	}
	copy(seed[:], raw[1:1+seedSize])
	return seed, nil
}
