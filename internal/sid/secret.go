package sid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luciancaetano/aminokit"
)

const secretFields = 7

// Secret is a decoded login secret.
//
// Secrets are whitespace separated records; only the numeric fields are
// interpreted.
type Secret struct {
	Version  int
	Fields   []string
	Flags    int
	IssuedAt int64
}

// DecodeSecret parses a login secret.
func DecodeSecret(secret string) (*Secret, error) {
	fields := strings.Fields(secret)
	if len(fields) < secretFields {
		return nil, fmt.Errorf("%w: %d fields, want at least %d", aminokit.ErrInvalidSecret, len(fields), secretFields)
	}

	version, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", aminokit.ErrInvalidSecret, err)
	}
	flags, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, fmt.Errorf("%w: field 5: %v", aminokit.ErrInvalidSecret, err)
	}
	issuedAt, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: issue time: %v", aminokit.ErrInvalidSecret, err)
	}

	return &Secret{
		Version:  version,
		Fields:   fields,
		Flags:    flags,
		IssuedAt: issuedAt,
	}, nil
}

// Expired reports whether more than maxAge has passed since the secret was issued.
func (s *Secret) Expired(maxAge time.Duration, now time.Time) bool {
	return now.Unix()-s.IssuedAt > int64(maxAge/time.Second)
}

// SecretExpired decodes secret and reports whether it is older than maxAge.
func SecretExpired(secret string, maxAge time.Duration, now time.Time) (bool, error) {
	s, err := DecodeSecret(secret)
	if err != nil {
		return false, err
	}
	return s.Expired(maxAge, now), nil
}
