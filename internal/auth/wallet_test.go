package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signPersonalMessage produces the serialized signature a Sui wallet would
// return for a personal-message signing request.
func signPersonalMessage(t *testing.T, priv ed25519.PrivateKey, message string) string {
	t.Helper()
	digest := personalMessageDigest([]byte(message))
	sig := ed25519.Sign(priv, digest)

	raw := make([]byte, 0, ed25519SigLen)
	raw = append(raw, ed25519Flag)
	raw = append(raw, sig...)
	raw = append(raw, priv.Public().(ed25519.PublicKey)...)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestVerifyWalletLogin(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := DeriveAddress(pub)
	message := "Sign in to SUIscan AI\nAddress: " + address
	signature := signPersonalMessage(t, priv, message)

	assert.NoError(t, VerifyWalletLogin(address, message, signature))
}

func TestVerifyWalletLoginRejectsForeignAddress(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	// The signature is valid but the key does not control the claimed address.
	claimed := DeriveAddress(otherPub)
	message := "Sign in to SUIscan AI\nAddress: " + claimed
	signature := signPersonalMessage(t, priv, message)

	err = VerifyWalletLogin(claimed, message, signature)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWalletLoginRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := DeriveAddress(pub)
	signature := signPersonalMessage(t, priv, "Sign in to SUIscan AI\nAddress: "+address)

	err = VerifyWalletLogin(address, "Transfer everything\nAddress: "+address, signature)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWalletLoginRequiresAddressInMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := DeriveAddress(pub)
	signature := signPersonalMessage(t, priv, "Sign in to SUIscan AI")

	err = VerifyWalletLogin(address, "Sign in to SUIscan AI", signature)
	assert.ErrorIs(t, err, ErrAddressNotInMessage)
}

func TestVerifyWalletLoginRejectsUnknownScheme(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := DeriveAddress(pub)
	message := "Sign in to SUIscan AI\nAddress: " + address

	raw, err := base64.StdEncoding.DecodeString(signPersonalMessage(t, priv, message))
	require.NoError(t, err)
	raw[0] = 0x01 // secp256k1 flag

	err = VerifyWalletLogin(address, message, base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestVerifyWalletLoginRejectsMalformedSignature(t *testing.T) {
	address := "0xabc"
	message := "hello 0xabc"
	assert.ErrorIs(t, VerifyWalletLogin(address, message, "!!not-base64!!"), ErrBadSignature)
	assert.ErrorIs(t, VerifyWalletLogin(address, message, base64.StdEncoding.EncodeToString([]byte("short"))), ErrBadSignature)
}

func TestDeriveAddressFormat(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address := DeriveAddress(pub)
	assert.Len(t, address, 66)
	assert.Equal(t, "0x", address[:2])
	// Deterministic.
	assert.Equal(t, address, DeriveAddress(pub))
}
