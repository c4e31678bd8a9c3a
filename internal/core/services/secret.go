package services

import (
	"crypto/rand"
	"math/big"
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	secretKeyLength = 6
	usernameLength  = 15
)

// NumericCode returns n uniformly random decimal digits. Leading zeros are kept.
func NumericCode(n int) (string, error) {
	return randomString(digits, n)
}

// AlphanumericCode returns n characters drawn uniformly, with replacement, from
// [A-Za-z0-9].
func AlphanumericCode(n int) (string, error) {
	return randomString(alphanumeric, n)
}

func randomString(charset string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	limit := big.NewInt(int64(len(charset)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}
