package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac>" over the raw body.
const SignatureHeader = "Gateway-Signature"

const signatureTolerance = 5 * time.Minute

const EventCheckoutCompleted = "checkout.session.completed"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			ClientReferenceID string `json:"client_reference_id"`
			PaymentIntent     string `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the signature against the shared secret and
// parses the payload. The signed message is "<timestamp>.<payload>".
func ConstructEvent(payload []byte, header, secret string) (Event, error) {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return Event{}, err
	}

	if time.Since(time.Unix(timestamp, 0)) > signatureTolerance {
		return Event{}, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := Sign(payload, timestamp, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return Event{}, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	return event, nil
}

// Sign computes the hex HMAC-SHA256 the gateway attaches to webhook
// deliveries. Exported for tests and local event simulation.
func Sign(payload []byte, timestamp int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signature = value
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}
	return timestamp, signature, nil
}
