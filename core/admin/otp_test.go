package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_makeOTP(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := makeOTP(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		assert.Regexp(t, `^\d+$`, code)
	}
}

func TestAdmin_verifyOTP(t *testing.T) {
	key := []byte("secret")
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	adm := Admin{Username: "admin"}
	assert.Equal(t, errInvalidOTP, adm.verifyOTP(key, "123456"), "no pending otp")

	adm.setOTP(key, "123456", 5*time.Minute)
	assert.NotContains(t, string(adm.OTPHash), "123456")
	assert.Equal(t, now.Add(5*time.Minute), adm.OTPExpiresAt)

	assert.Equal(t, errInvalidOTP, adm.verifyOTP(key, ""))
	assert.Equal(t, errInvalidOTP, adm.verifyOTP(key, "654321"))
	assert.Equal(t, errInvalidOTP, adm.verifyOTP([]byte("other"), "123456"), "signed with another key")
	assert.NoError(t, adm.verifyOTP(key, "123456"))

	other := Admin{Username: "other", OTPHash: adm.OTPHash, OTPExpiresAt: adm.OTPExpiresAt}
	assert.Equal(t, errInvalidOTP, other.verifyOTP(key, "123456"), "bound to the username")

	NowFunc = func() time.Time { return now.Add(5 * time.Minute) }
	assert.Equal(t, errOTPExpired, adm.verifyOTP(key, "123456"))

	adm.clearOTP()
	assert.Empty(t, adm.OTPHash)
	assert.True(t, adm.OTPExpiresAt.IsZero())
}

func TestAdmin_SecurityAnswer(t *testing.T) {
	var adm Admin
	assert.Equal(t, errNoSecurityQuestion, adm.CheckSecurityAnswer("anything"))

	require.NoError(t, adm.SetSecurityAnswer("First pet?", "  Rex "))
	assert.True(t, adm.HasSecurityQuestion())
	assert.NoError(t, adm.CheckSecurityAnswer("rex"))
	assert.NoError(t, adm.CheckSecurityAnswer("REX"))
	assert.Error(t, adm.CheckSecurityAnswer("max"))
}
