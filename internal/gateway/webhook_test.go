package gateway_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/kirillov6/marketplace-service/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "whsec_test"

func header(payload []byte, ts int64) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, gateway.Sign(payload, ts, secret))
}

func TestConstructEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"ref","payment_intent":"pi_1"}}}`)

	t.Run("valid signature", func(t *testing.T) {
		event, err := gateway.ConstructEvent(payload, header(payload, time.Now().Unix()), secret)
		require.NoError(t, err)
		assert.Equal(t, gateway.EventCheckoutCompleted, event.Type)
		assert.Equal(t, "ref", event.Data.Object.ClientReferenceID)
		assert.Equal(t, "pi_1", event.Data.Object.PaymentIntent)
	})

	t.Run("tampered payload", func(t *testing.T) {
		h := header(payload, time.Now().Unix())
		tampered := append([]byte(nil), payload...)
		tampered[len(tampered)-2] = 'x'

		_, err := gateway.ConstructEvent(tampered, h, secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		ts := time.Now().Unix()
		h := fmt.Sprintf("t=%d,v1=%s", ts, gateway.Sign(payload, ts, "other"))

		_, err := gateway.ConstructEvent(payload, h, secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		ts := time.Now().Add(-10 * time.Minute).Unix()
		_, err := gateway.ConstructEvent(payload, header(payload, ts), secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		_, err := gateway.ConstructEvent(payload, "v1=abc", secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)

		_, err = gateway.ConstructEvent(payload, "", secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)

		_, err = gateway.ConstructEvent(payload, "t=nope,v1=abc", secret)
		require.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})
}
