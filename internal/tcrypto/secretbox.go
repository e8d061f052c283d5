package tcrypto

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// NonceSize is the width of a secretbox nonce: 24 bytes, wire-framed
// little-endian. The underlying secretbox type is big-endian internally;
// we reverse bytes at the boundary here, not anywhere else.
const NonceSize = 24

// KeySize is the width of a secretbox key.
const KeySize = 32

// ErrDecryptionFailed is returned when a secretbox open fails its MAC
// check: either tampering or a key mismatch. Treated as fatal to the
// transfer.
var ErrDecryptionFailed = errors.New("tcrypto: decryption failed")

// Nonce is a 24-byte little-endian counter, nudged (incremented) once
// per record. It is never reused for the same key.
type Nonce [NonceSize]byte

// Nudge increments the nonce as a little-endian integer: add 1 to byte 0,
// carrying into subsequent bytes. The 24-byte space is never expected to
// wrap for any real transfer.
func (n *Nonce) Nudge() {
	for i := range n {
		n[i]++
		if n[i] != 0 {
			return
		}
	}
}

// beNonce converts our little-endian wire nonce into the big-endian array
// layout golang.org/x/crypto/nacl/secretbox expects, reversing byte order.
func beNonce(n Nonce) [NonceSize]byte {
	var be [NonceSize]byte
	for i := 0; i < NonceSize; i++ {
		be[i] = n[NonceSize-1-i]
	}
	return be
}

// Encrypt seals plaintext under key at nonce, and returns
// nonce_le || secretbox(key, nonce, plaintext) — the exact framing of a
// Transit record body.
func Encrypt(key [KeySize]byte, nonce Nonce, plaintext []byte) []byte {
	be := beNonce(nonce)
	out := make([]byte, 0, NonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &be, &key)
}

// Decrypt splits framed into its leading 24-byte little-endian nonce and
// the secretbox ciphertext, and opens it. It fails with
// ErrDecryptionFailed on MAC mismatch or a too-short input.
func Decrypt(key [KeySize]byte, framed []byte) ([]byte, error) {
	if len(framed) < NonceSize {
		return nil, ErrDecryptionFailed
	}
	var nonce Nonce
	copy(nonce[:], framed[:NonceSize])
	be := beNonce(nonce)

	plaintext, ok := secretbox.Open(nil, framed[NonceSize:], &be, &key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
