package sid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/aminokit"
)

const fixtureSecret = "32 5a1f0c3e-7b2d-4e8a-9c61-0d2f4b6a8e10 203.0.113.7 cafebabe 0 1 1700000000 extra"

func TestDecodeSecret(t *testing.T) {
	t.Parallel()

	s, err := DecodeSecret(fixtureSecret)
	require.NoError(t, err)
	require.Equal(t, 32, s.Version)
	require.Equal(t, 1, s.Flags)
	require.Equal(t, int64(1700000000), s.IssuedAt)
	require.Len(t, s.Fields, 8)
	require.Equal(t, "203.0.113.7", s.Fields[2])
}

func TestDecodeSecretInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
	}{
		{name: "empty", secret: ""},
		{name: "password secret", secret: "0 hunter2"},
		{name: "non numeric version", secret: "x a b c d 1 1700000000"},
		{name: "non numeric issue time", secret: "32 a b c d 1 yesterday"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeSecret(tt.secret)
			require.ErrorIs(t, err, aminokit.ErrInvalidSecret)
		})
	}
}

func TestSecretExpired(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "fresh", now: issued.Add(time.Hour), want: false},
		{name: "at threshold", now: issued.Add(DefaultSecretMaxAge), want: false},
		{name: "past threshold", now: issued.Add(DefaultSecretMaxAge + time.Second), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SecretExpired(fixtureSecret, DefaultSecretMaxAge, tt.now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
