package sid

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/aminokit"
)

const (
	fixtureUserID    = "5a1f0c3e-7b2d-4e8a-9c61-0d2f4b6a8e10"
	fixtureIP        = "203.0.113.7"
	fixtureIssuedAt  = int64(1700000000)
	fixtureToken     = "AnsiMSI6bnVsbCwiMCI6MiwiMyI6MCwiMiI6IjVhMWYwYzNlLTdiMmQtNGU4YS05YzYxLTBkMmY0YjZhOGUxMCIsIjUiOjE3MDAwMDAwMDAsIjQiOiIyMDMuMC4xMTMuNyIsIjYiOjEwMH2Ls3DhP8MJdsCFBvRBFe4sUz8Gbg"
	fixtureSignature = "8bb370e13fc30976c08506f44115ee2c533f066e"
)

var fixtureKey = bytes.Repeat([]byte{0xAB}, 20)

func TestDecodeFixture(t *testing.T) {
	t.Parallel()

	s, err := Decode(fixtureToken)
	require.NoError(t, err)

	require.Equal(t, fixtureToken, s.Original)
	require.Equal(t, Prefix, s.Prefix)
	require.Equal(t, 2, s.Version)
	require.Equal(t, fixtureUserID, s.UserID)
	require.Equal(t, fixtureIP, s.IP)
	require.Equal(t, fixtureIssuedAt, s.IssuedAt)
	require.Equal(t, aminokit.ClientType, s.ClientType)
	require.Equal(t, fixtureSignature, hex.EncodeToString(s.Signature))

	require.Contains(t, s.Data, "1")
	require.Nil(t, s.Data["1"])
	require.Equal(t, fixtureUserID, s.Data["2"])
}

func TestDecodeAcceptsPadding(t *testing.T) {
	t.Parallel()

	padded := fixtureToken + strings.Repeat("=", (4-len(fixtureToken)%4)%4)
	s, err := Decode(padded)
	require.NoError(t, err)
	require.Equal(t, fixtureUserID, s.UserID)
}

func TestEncodeFixture(t *testing.T) {
	t.Parallel()

	token, err := Encode(fixtureKey, fixtureUserID, fixtureIP, fixtureIssuedAt, aminokit.ClientType)
	require.NoError(t, err)
	require.Equal(t, fixtureToken, token)
	require.NotContains(t, token, "=")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userID   string
		ip       string
		issuedAt int64
	}{
		{name: "ipv4", userID: "0b6d7c2e-1111-2222-3333-444455556666", ip: "10.0.0.1", issuedAt: 1},
		{name: "ipv6", userID: "u-2", ip: "2001:db8::1", issuedAt: 1712345678},
		{name: "unicode uid", userID: "usuário", ip: "127.0.0.1", issuedAt: 1800000000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := Encode(fixtureKey, tt.userID, tt.ip, tt.issuedAt, aminokit.ClientType)
			require.NoError(t, err)

			s, err := Decode(token)
			require.NoError(t, err)
			require.Equal(t, tt.userID, s.UserID)
			require.Equal(t, tt.ip, s.IP)
			require.Equal(t, tt.issuedAt, s.IssuedAt)

			uid, err := UserID(token)
			require.NoError(t, err)
			require.Equal(t, tt.userID, uid)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "!!!not-a-sid!!!"},
		{name: "too short", token: "AAEC"},
		{name: "payload not json", token: mustToken(t, []byte("not json"))},
		{name: "no user id", token: mustToken(t, []byte(`{"0":2}`))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(tt.token)
			require.Error(t, err)
			require.True(t, errors.Is(err, aminokit.ErrInvalidSID), "got %v", err)
		})
	}
}

func mustToken(t *testing.T, body []byte) string {
	t.Helper()

	raw := append([]byte{Prefix}, body...)
	raw = append(raw, make([]byte, 20)...)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func TestIsExpiredBoundaries(t *testing.T) {
	t.Parallel()

	issued := time.Unix(fixtureIssuedAt, 0)
	threshold := DefaultMaxAge

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "fresh", now: issued, want: false},
		{name: "one second before threshold", now: issued.Add(threshold - time.Second), want: false},
		{name: "at threshold", now: issued.Add(threshold), want: false},
		{name: "one second past threshold", now: issued.Add(threshold + time.Second), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := IsExpired(fixtureToken, threshold, tt.now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsExpiredCustomThreshold(t *testing.T) {
	t.Parallel()

	now := time.Unix(fixtureIssuedAt, 0).Add(2 * time.Hour)

	expired, err := IsExpired(fixtureToken, time.Hour, now)
	require.NoError(t, err)
	require.True(t, expired)

	expired, err = IsExpired(fixtureToken, 3*time.Hour, now)
	require.NoError(t, err)
	require.False(t, expired)
}

func TestIsExpiredInvalidToken(t *testing.T) {
	t.Parallel()

	_, err := IsExpired("garbage", DefaultMaxAge, time.Now())
	require.ErrorIs(t, err, aminokit.ErrInvalidSID)
}
