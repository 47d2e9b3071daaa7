package signature

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"id":123,"total_price":"99.99"}`)
	secret := "shpss_test_secret"

	for _, mode := range []Mode{ModeBase64, ModeHex} {
		sig := Sign(body, secret, mode)
		assert.True(t, Verify(body, sig, secret, mode))
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	body := []byte(`{"id":123}`)
	secret := "secret"
	sig := Sign(body, secret, ModeBase64)

	tests := []struct {
		name   string
		body   []byte
		sig    string
		secret string
	}{
		{
			name:   "mutated body",
			body:   []byte(`{"id":124}`),
			sig:    sig,
			secret: secret,
		},
		{
			name:   "mutated signature",
			body:   body,
			sig:    Sign([]byte("other"), secret, ModeBase64),
			secret: secret,
		},
		{
			name:   "wrong secret",
			body:   body,
			sig:    sig,
			secret: "not-the-secret",
		},
		{
			name:   "empty signature",
			body:   body,
			sig:    "",
			secret: secret,
		},
		{
			name:   "garbage signature encoding",
			body:   body,
			sig:    "%%%not-base64%%%",
			secret: secret,
		},
		{
			name:   "empty secret",
			body:   body,
			sig:    sig,
			secret: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify(tt.body, tt.sig, tt.secret, ModeBase64))
		})
	}
}

func TestVerifyModeMismatch(t *testing.T) {
	body := []byte("payload")
	secret := "secret"

	// A hex digest must not verify under base64 mode and vice versa.
	hexSig := Sign(body, secret, ModeHex)
	assert.False(t, Verify(body, hexSig, secret, ModeBase64))

	b64Sig := Sign(body, secret, ModeBase64)
	assert.False(t, Verify(body, b64Sig, secret, ModeHex))
}

func TestVerifyCallback(t *testing.T) {
	secret := "client_secret"

	query := url.Values{}
	query.Set("code", "auth_code_value")
	query.Set("shop", "example.myshopify.com")
	query.Set("timestamp", "1700000000")

	message := CanonicalQuery(query, "hmac")
	query.Set("hmac", Sign([]byte(message), secret, ModeHex))

	assert.True(t, VerifyCallback(query, "hmac", secret))

	// Tampering with any signed parameter invalidates the digest.
	query.Set("shop", "attacker.myshopify.com")
	assert.False(t, VerifyCallback(query, "hmac", secret))
}

func TestCanonicalQuerySortsAndExcludesDigest(t *testing.T) {
	query := url.Values{}
	query.Set("zeta", "1")
	query.Set("alpha", "2")
	query.Set("hmac", "should-be-excluded")

	assert.Equal(t, "alpha=2&zeta=1", CanonicalQuery(query, "hmac"))
}

func TestVerifyCallbackMissingDigest(t *testing.T) {
	query := url.Values{}
	query.Set("code", "abc")

	assert.False(t, VerifyCallback(query, "hmac", "secret"))
}
