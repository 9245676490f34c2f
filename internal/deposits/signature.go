package deposits

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how old a signed timestamp may be before the
// delivery is treated as a replay.
const signatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature   = errors.New("missing signature header")
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrSignatureExpired   = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch  = errors.New("signature verification failed")
)

// VerifySignature checks the provider's signature header against the raw
// request body. The header carries a unix timestamp and one or more v1
// signatures; each v1 value is HMAC-SHA256 over "<timestamp>.<body>" keyed
// with the shared webhook secret. An unverified payload must never reach the
// state machine.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return ErrMalformedSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrMalformedSignature
	}

	signedAt := time.Unix(ts, 0)
	if now.Sub(signedAt) > signatureTolerance || signedAt.Sub(now) > signatureTolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrSignatureMismatch
}
