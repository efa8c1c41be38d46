package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Sui serialized-signature layout for the ed25519 scheme:
// flag byte (0x00) || 64-byte signature || 32-byte public key.
const (
	ed25519Flag   = 0x00
	ed25519SigLen = 1 + 64 + ed25519.PublicKeySize
	sigOffset     = 1
	pubkeyOffset  = 1 + 64
)

var (
	ErrAddressNotInMessage = errors.New("signed message does not reference the claimed address")
	ErrBadSignature        = errors.New("signature verification failed")
	ErrUnsupportedScheme   = errors.New("unsupported signature scheme")
)

// Intent prefix for personal messages (scope=PersonalMessage, version 0, app 0).
var personalMessageIntent = []byte{3, 0, 0}

// VerifyWalletLogin checks a wallet-login attempt: the signed message must
// textually contain the claimed address, the signature's embedded public key
// must derive that address, and the ed25519 signature must verify over the
// personal-message digest.
func VerifyWalletLogin(address, message, signatureB64 string) error {
	if !strings.Contains(message, address) {
		return ErrAddressNotInMessage
	}

	raw, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return ErrBadSignature
	}
	if len(raw) != ed25519SigLen {
		return ErrBadSignature
	}
	if raw[0] != ed25519Flag {
		return ErrUnsupportedScheme
	}

	sig := raw[sigOffset:pubkeyOffset]
	pubkey := ed25519.PublicKey(raw[pubkeyOffset:])

	if DeriveAddress(pubkey) != strings.ToLower(address) {
		return ErrBadSignature
	}

	digest := personalMessageDigest([]byte(message))
	if !ed25519.Verify(pubkey, digest, sig) {
		return ErrBadSignature
	}
	return nil
}

// DeriveAddress computes the Sui address controlled by an ed25519 public key:
// blake2b-256 over the scheme flag followed by the key bytes.
func DeriveAddress(pubkey ed25519.PublicKey) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{ed25519Flag})
	h.Write(pubkey)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// personalMessageDigest hashes the intent-wrapped, length-prefixed message the
// wallet actually signed.
func personalMessageDigest(message []byte) []byte {
	payload := make([]byte, 0, len(personalMessageIntent)+10+len(message))
	payload = append(payload, personalMessageIntent...)
	payload = append(payload, uleb128(uint64(len(message)))...)
	payload = append(payload, message...)

	sum := blake2b.Sum256(payload)
	return sum[:]
}

// uleb128 encodes n the way BCS length-prefixes byte vectors.
func uleb128(n uint64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			return out
		}
	}
}
