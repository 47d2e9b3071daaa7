package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Mode selects how the expected digest is encoded on the wire. The
// storefront platform uses two conventions: webhook deliveries carry a
// base64 digest of the raw body, OAuth callbacks carry a hex digest of
// the sorted query string.
type Mode int

const (
	ModeBase64 Mode = iota
	ModeHex
)

// Verify reports whether signatureHeader is a valid HMAC-SHA256 of body
// keyed by secret. A missing or malformed header is a plain false, never
// an error: a bad signature is permanently bad and the caller answers
// with an authentication failure.
func Verify(body []byte, signatureHeader, secret string, mode Mode) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || secret == "" {
		return false
	}

	var expected []byte
	var err error
	switch mode {
	case ModeHex:
		expected, err = hex.DecodeString(strings.ToLower(sig))
	default:
		expected, err = base64.StdEncoding.DecodeString(sig)
	}
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign computes the HMAC-SHA256 of body keyed by secret, encoded per mode.
// Exported for tests and for callers that need to produce signatures.
func Sign(body []byte, secret string, mode Mode) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sum := mac.Sum(nil)

	if mode == ModeHex {
		return hex.EncodeToString(sum)
	}
	return base64.StdEncoding.EncodeToString(sum)
}

// VerifyCallback checks the authenticity digest of an OAuth redirect
// callback. The digest is computed over every query parameter except the
// digest itself, sorted by key and joined as key=value pairs with "&",
// hex encoded.
func VerifyCallback(query url.Values, digestParam, secret string) bool {
	digest := query.Get(digestParam)
	if digest == "" {
		return false
	}

	return Verify([]byte(CanonicalQuery(query, digestParam)), digest, secret, ModeHex)
}

// CanonicalQuery builds the sorted key=value&... message the platform
// signs, excluding the digest parameter.
func CanonicalQuery(query url.Values, digestParam string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == digestParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range query[k] {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(pairs, "&")
}
