package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	t.Run("Envelope: encode and decode round trip", func(t *testing.T) {
		codec := JSONCodec{}
		env, err := NewEnvelope(TypePlayerLeave, PlayerLeave{ID: "p1"})
		require.NoError(t, err)

		data, err := codec.Encode(env)
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)
		require.Equal(t, TypePlayerLeave, decoded.Type)

		var msg PlayerLeave
		require.NoError(t, decoded.Decode(&msg))
		require.Equal(t, "p1", msg.ID)
	})

	t.Run("Envelope: missing type is rejected", func(t *testing.T) {
		codec := JSONCodec{}
		_, err := codec.Decode([]byte(`{"payload":{}}`))
		require.ErrorIs(t, err, ErrUnknownMessageType)
	})

	t.Run("Envelope: malformed frame is an error", func(t *testing.T) {
		codec := JSONCodec{}
		_, err := codec.Decode([]byte(`{not json`))
		require.Error(t, err)
	})

	t.Run("Envelope: empty payload decodes to zero value", func(t *testing.T) {
		env := Envelope{Type: TypeClientReady}
		var msg ClientReady
		require.NoError(t, env.Decode(&msg))
	})
}
