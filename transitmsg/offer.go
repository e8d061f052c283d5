package transitmsg

import (
	"encoding/json"
	"fmt"
)

// Offer is the Wormhole-layer offer shape Transit encodes: exactly one
// of File, Directory, or Message is set.
type Offer struct {
	File      *FileOffer
	Directory *DirectoryOffer
	Message   *string
}

// FileOffer describes a single-file transfer.
type FileOffer struct {
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
}

// DirectoryOffer describes a zipped-directory transfer.
type DirectoryOffer struct {
	Mode     string `json:"mode"` // always "zipfile/deflated"
	Dirname  string `json:"dirname"`
	Zipsize  int64  `json:"zipsize"`
	Numbytes int64  `json:"numbytes"`
	Numfiles int    `json:"numfiles"`
}

type offerWire struct {
	File      *FileOffer      `json:"file,omitempty"`
	Directory *DirectoryOffer `json:"directory,omitempty"`
	Message   *string         `json:"message,omitempty"`
}

// EncodeOffer marshals an Offer to its wire JSON form.
func EncodeOffer(o Offer) ([]byte, error) {
	switch {
	case o.File != nil:
		return json.Marshal(offerWire{File: o.File})
	case o.Directory != nil:
		return json.Marshal(offerWire{Directory: o.Directory})
	case o.Message != nil:
		return json.Marshal(offerWire{Message: o.Message})
	default:
		return nil, fmt.Errorf("transitmsg: empty Offer")
	}
}

// DecodeOffer unmarshals the wire JSON form of an Offer.
func DecodeOffer(data []byte) (Offer, error) {
	var w offerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Offer{}, fmt.Errorf("transitmsg: %w: %v", ErrSchema, err)
	}
	switch {
	case w.File != nil:
		return Offer{File: w.File}, nil
	case w.Directory != nil:
		return Offer{Directory: w.Directory}, nil
	case w.Message != nil:
		return Offer{Message: w.Message}, nil
	default:
		return Offer{}, fmt.Errorf("transitmsg: offer has no recognized key: %w", ErrSchema)
	}
}

// Ack is the final encrypted record's payload: {"ack":"ok","sha256":hex}.
type Ack struct {
	Ack    string `json:"ack"`
	SHA256 string `json:"sha256"`
}

// EncodeAck marshals an Ack to its wire JSON form.
func EncodeAck(a Ack) ([]byte, error) {
	return json.Marshal(a)
}

// DecodeAck unmarshals the wire JSON form of an Ack.
func DecodeAck(data []byte) (Ack, error) {
	var a Ack
	if err := json.Unmarshal(data, &a); err != nil {
		return Ack{}, fmt.Errorf("transitmsg: %w: %v", ErrSchema, err)
	}
	if a.Ack == "" || a.SHA256 == "" {
		return Ack{}, fmt.Errorf("transitmsg: ack missing required field: %w", ErrSchema)
	}
	return a, nil
}
