// Package transitmsg implements JSON encode/decode of the Transit
// negotiation messages in the exact schema the reference implementation
// uses. Struct JSON tagging here follows the hand-written wire-message
// idiom rather than any schema/codegen library.
package transitmsg

import (
	"encoding/json"
	"fmt"
)

// Ability is a transport capability a peer claims.
type Ability string

const (
	AbilityDirectTCPv1 Ability = "direct-tcp-v1"
	AbilityRelayV1     Ability = "relay-v1"
)

// abilityWire is the wire shape of a single ability entry:
// {"type":"direct-tcp-v1"}.
type abilityWire struct {
	Type Ability `json:"type"`
}

// Hint is a concrete (host, port, priority, ability) tuple a peer
// advertises.
type Hint struct {
	Type     Ability `json:"type"`
	Priority float64 `json:"priority"`
	Hostname string  `json:"hostname"`
	Port     uint16  `json:"port"`
}

// ConnectionHint is either a single Direct hint, or a Relay offering one
// of several entry points. It
// wire-encodes as an untagged union: a Direct hint serializes as a plain
// Hint object, a Relay hint as {"type":"relay-v1","hints":[...]}.
type ConnectionHint struct {
	// Direct is set when this is a Direct(Hint) variant.
	Direct *Hint
	// Relay is set when this is a Relay(type, hints) variant.
	Relay *RelayHint
}

// RelayHint is the Relay(type, hints) variant's payload.
type RelayHint struct {
	Type  Ability `json:"type"`
	Hints []Hint  `json:"hints"`
}

// relayWire detects the relay shape on decode: only a Relay hint carries
// a "hints" array.
type relayWire struct {
	Type  Ability `json:"type"`
	Hints []Hint  `json:"hints,omitempty"`
}

// IsDirect reports whether this is the Direct variant.
func (c ConnectionHint) IsDirect() bool { return c.Direct != nil }

// MarshalJSON implements the untagged union encoding.
func (c ConnectionHint) MarshalJSON() ([]byte, error) {
	switch {
	case c.Direct != nil:
		return json.Marshal(*c.Direct)
	case c.Relay != nil:
		return json.Marshal(relayWire{Type: c.Relay.Type, Hints: c.Relay.Hints})
	default:
		return nil, fmt.Errorf("transitmsg: empty ConnectionHint")
	}
}

// UnmarshalJSON implements the untagged union decoding: presence of a
// "hints" array marks the Relay variant; its absence marks Direct.
func (c *ConnectionHint) UnmarshalJSON(data []byte) error {
	var probe relayWire
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("transitmsg: %w", ErrSchema)
	}
	if probe.Hints != nil {
		c.Relay = &RelayHint{Type: probe.Type, Hints: probe.Hints}
		c.Direct = nil
		return nil
	}
	// Re-decode as a plain Hint: relayWire's Hint fields are a subset
	// and would drop priority/hostname/port.
	var h Hint
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("transitmsg: %w", ErrSchema)
	}
	c.Direct = &h
	c.Relay = nil
	return nil
}

// Less orders ConnectionHints for deduplicated set storage: all Direct
// hints compare equal to each other and less than any Relay; two Relays
// compare by their hint lists.
func (c ConnectionHint) Less(other ConnectionHint) bool {
	if c.IsDirect() != other.IsDirect() {
		return c.IsDirect()
	}
	if c.IsDirect() {
		return false
	}
	return fmt.Sprint(c.Relay.Hints) < fmt.Sprint(other.Relay.Hints)
}

// transitPayload is the payload of a "transit" message.
type transitPayload struct {
	AbilitiesV1 []abilityWire    `json:"abilities-v1"`
	HintsV1     []ConnectionHint `json:"hints-v1"`
}

// answerPayload is the payload of an "answer" message.
type answerPayload struct {
	FileAck    string `json:"file_ack,omitempty"`
	MessageAck string `json:"message_ack,omitempty"`
}

// Message is the tagged TransitMsg variant, wire-encoded as a single-key
// object.
type Message struct {
	// Exactly one of these is set.
	Transit *TransitPayload
	Answer  *AnswerPayload
	Error   *string
}

// TransitPayload is the decoded form of a "transit" message's body.
type TransitPayload struct {
	Abilities []Ability
	Hints     []ConnectionHint
}

// AnswerPayload is the decoded form of an "answer" message's body.
// Exactly one of FileAck/MessageAck is non-empty.
type AnswerPayload struct {
	FileAck    string
	MessageAck string
}

// wireEnvelope is the on-the-wire single-key object shape.
type wireEnvelope struct {
	Transit *transitPayload `json:"transit,omitempty"`
	Answer  *answerPayload  `json:"answer,omitempty"`
	Error   *string         `json:"error,omitempty"`
}

// Encode marshals a Message to its wire JSON form.
func Encode(m Message) ([]byte, error) {
	var env wireEnvelope
	switch {
	case m.Transit != nil:
		abilities := make([]abilityWire, len(m.Transit.Abilities))
		for i, a := range m.Transit.Abilities {
			abilities[i] = abilityWire{Type: a}
		}
		env.Transit = &transitPayload{AbilitiesV1: abilities, HintsV1: m.Transit.Hints}
	case m.Answer != nil:
		env.Answer = &answerPayload{FileAck: m.Answer.FileAck, MessageAck: m.Answer.MessageAck}
	case m.Error != nil:
		env.Error = m.Error
	default:
		return nil, fmt.Errorf("transitmsg: empty Message")
	}
	return json.Marshal(env)
}

// Decode unmarshals the wire JSON form into a Message. Unknown object
// keys are ignored (the default behavior of encoding/json); a message
// lacking exactly one recognized top-level key is a SchemaError.
func Decode(data []byte) (Message, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("transitmsg: %w: %v", ErrSchema, err)
	}

	keys := 0
	for _, set := range []bool{env.Transit != nil, env.Answer != nil, env.Error != nil} {
		if set {
			keys++
		}
	}
	if keys > 1 {
		return Message{}, fmt.Errorf("transitmsg: more than one recognized key: %w", ErrSchema)
	}

	switch {
	case env.Transit != nil:
		abilities := make([]Ability, len(env.Transit.AbilitiesV1))
		for i, a := range env.Transit.AbilitiesV1 {
			abilities[i] = a.Type
		}
		return Message{Transit: &TransitPayload{Abilities: abilities, Hints: env.Transit.HintsV1}}, nil
	case env.Answer != nil:
		if (env.Answer.FileAck == "") == (env.Answer.MessageAck == "") {
			return Message{}, fmt.Errorf("transitmsg: answer needs exactly one of file_ack/message_ack: %w", ErrSchema)
		}
		return Message{Answer: &AnswerPayload{FileAck: env.Answer.FileAck, MessageAck: env.Answer.MessageAck}}, nil
	case env.Error != nil:
		return Message{Error: env.Error}, nil
	default:
		return Message{}, fmt.Errorf("transitmsg: no recognized key: %w", ErrSchema)
	}
}
