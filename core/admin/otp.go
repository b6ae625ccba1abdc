package admin

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	salt    = []byte("results.core.admin.otp")
	NowFunc = time.Now // mockable

	// errors
	errInvalidOTP = errors.New("invalid otp")
	errOTPExpired = errors.New("otp expired")
)

// makeOTP generates a random numeric one-time password of the given length.
func makeOTP(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// setOTP stores a keyed hash of code, never the code itself.
func (a *Admin) setOTP(secretKey []byte, code string, ttl time.Duration) {
	a.OTPExpiresAt = NowFunc().UTC().Add(ttl).Truncate(time.Second)
	a.OTPHash = signOTP(secretKey, a.Username, code, a.OTPExpiresAt)
}

func (a *Admin) clearOTP() {
	a.OTPHash = nil
	a.OTPExpiresAt = time.Time{}
}

// verifyOTP checks that code is the pending one-time password and that it has not expired.
func (a *Admin) verifyOTP(secretKey []byte, code string) error {
	if len(a.OTPHash) == 0 || code == "" {
		return errInvalidOTP
	}
	if !NowFunc().Before(a.OTPExpiresAt) {
		return errOTPExpired
	}
	if subtle.ConstantTimeCompare(signOTP(secretKey, a.Username, code, a.OTPExpiresAt), a.OTPHash) == 0 {
		return errInvalidOTP
	}
	return nil
}

func signOTP(secretKey []byte, username, code string, expiresAt time.Time) []byte {
	key := sha256.Sum256(append(append([]byte{}, salt...), secretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(username))
	h.Write([]byte{0})
	h.Write([]byte(code))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(expiresAt.Unix(), 10)))
	return h.Sum(nil)
}
