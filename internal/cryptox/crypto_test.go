package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("device-secret"), []byte("install-1"))
	k2 := DeriveKey([]byte("device-secret"), []byte("install-1"))
	k3 := DeriveKey([]byte("device-secret"), []byte("install-2"))

	require.Len(t, k1, KeySize)
	assert.True(t, bytes.Equal(k1, k2), "same inputs must give the same key")
	assert.False(t, bytes.Equal(k1, k3), "different salt must give a different key")
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("s"), []byte("salt"))

	ct, nonce, err := Seal(key, []byte("access-token"), []byte("access_token"))
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "access-token")

	pt, err := Open(key, ct, nonce, []byte("access_token"))
	require.NoError(t, err)
	assert.Equal(t, "access-token", string(pt))
}

func TestOpen_WrongAdditionalDataFails(t *testing.T) {
	key := DeriveKey([]byte("s"), []byte("salt"))

	ct, nonce, err := Seal(key, []byte("refresh"), []byte("refresh_token"))
	require.NoError(t, err)

	_, err = Open(key, ct, nonce, []byte("access_token"))
	require.Error(t, err, "value moved to another slot must not decrypt")
}

func TestOpen_WrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("s"), []byte("salt"))
	other := DeriveKey([]byte("x"), []byte("salt"))

	ct, nonce, err := Seal(key, []byte("data"), nil)
	require.NoError(t, err)

	_, err = Open(other, ct, nonce, nil)
	require.Error(t, err)
}

func TestSeal_InvalidKey(t *testing.T) {
	_, _, err := Seal([]byte("short"), []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = Open([]byte("short"), nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestSealJSON_RoundTrip(t *testing.T) {
	type payload struct {
		User string `json:"user"`
		N    int    `json:"n"`
	}
	key := DeriveKey([]byte("s"), []byte("salt"))

	ct, nonce, err := SealJSON(key, payload{User: "alice", N: 7}, nil)
	require.NoError(t, err)

	var got payload
	require.NoError(t, OpenJSON(key, ct, nonce, nil, &got))
	assert.Equal(t, payload{User: "alice", N: 7}, got)
}
