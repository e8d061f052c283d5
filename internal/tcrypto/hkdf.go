// Package tcrypto implements the Transit handshake's subkey derivation and
// the authenticated, nonce-framed encryption used on the elected TCP
// endpoint. It derives a whole tree of subkeys with HKDF from one shared
// transit key, and uses NaCl secretbox so the wire format matches the
// reference Transit implementation byte for byte.
package tcrypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey runs HKDF-SHA256 (RFC 5869) over ikm with the given salt and
// info, and returns exactly n bytes of output key material.
func DeriveKey(salt, ikm, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subkey names, matching the reference implementation's HKDF info strings
// exactly.
const (
	infoSenderHandshake   = "transit_sender"
	infoReceiverHandshake = "transit_receiver"
	infoSenderRecord      = "transit_record_sender_key"
	infoReceiverRecord    = "transit_record_receiver_key"
	infoRelayHandshake    = "transit_relay"
)

// Subkeys holds every key derived from a transit_key for one transfer.
type Subkeys struct {
	SenderHandshakeKey   [32]byte
	ReceiverHandshakeKey [32]byte
	SenderRecordKey      [32]byte
	ReceiverRecordKey    [32]byte
	RelayHandshakeKey    [32]byte
}

// DeriveSubkeys derives the full subkey tree from a 32-byte transit key
// (itself HKDF-derived by the Wormhole layer from the PAKE session key;
// that derivation is out of scope for this module).
func DeriveSubkeys(transitKey [32]byte) (Subkeys, error) {
	var sk Subkeys
	var err error

	fill := func(dst *[32]byte, info string) {
		if err != nil {
			return
		}
		var key []byte
		key, err = DeriveKey(nil, transitKey[:], []byte(info), 32)
		if err != nil {
			return
		}
		copy(dst[:], key)
	}

	fill(&sk.SenderHandshakeKey, infoSenderHandshake)
	fill(&sk.ReceiverHandshakeKey, infoReceiverHandshake)
	fill(&sk.SenderRecordKey, infoSenderRecord)
	fill(&sk.ReceiverRecordKey, infoReceiverRecord)
	fill(&sk.RelayHandshakeKey, infoRelayHandshake)

	if err != nil {
		return Subkeys{}, err
	}
	return sk, nil
}
