package deposits

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignatureValid(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := signPayload(payload, testSecret, now)

	assert.NoError(t, VerifySignature(payload, header, testSecret, now))
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := signPayload(payload, testSecret, now)

	err := VerifySignature([]byte(`{"id":"evt_forged"}`), header, testSecret, now)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := signPayload(payload, "whsec_other", now)

	err := VerifySignature(payload, header, testSecret, now)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifySignatureExpiredTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := signPayload(payload, testSecret, now.Add(-10*time.Minute))

	err := VerifySignature(payload, header, testSecret, now)
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestVerifySignatureMissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", testSecret, time.Now())
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	for _, header := range []string{
		"t=123",
		"v1=deadbeef",
		"t=notanumber,v1=deadbeef",
		"garbage",
	} {
		err := VerifySignature([]byte(`{}`), header, testSecret, time.Now())
		assert.Error(t, err, "header %q", header)
	}
}

func TestVerifySignatureAcceptsSecondaryV1(t *testing.T) {
	// During secret rotation the provider sends multiple v1 entries; any
	// valid one passes.
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)

	ts := fmt.Sprintf("%d", now.Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	header := fmt.Sprintf("t=%s,v1=00ff00ff,v1=%s", ts, validSig)
	assert.NoError(t, VerifySignature(payload, header, testSecret, now))
}
