package coap

// Message is the minimal in-memory CoAP message shape the OSCORE core
// needs from the transport collaborator (§6): header fields the core
// copies through unexamined, plus the option sequence and payload it does
// examine. Full header wire encoding (version/type/TKL byte packing),
// payload fragmentation, and the resource dispatcher are out of scope
// (§1) - owned by the surrounding CoAP packet library.
type Message struct {
	Version   uint8
	Type      uint8
	Token     []byte
	MessageID uint16
	Code      uint8
	Options   Options
	Payload   []byte
}

// Clone returns a deep copy of msg so pipeline stages can build a new
// message without aliasing the caller's slices.
func (msg *Message) Clone() *Message {
	out := &Message{
		Version:   msg.Version,
		Type:      msg.Type,
		MessageID: msg.MessageID,
		Code:      msg.Code,
	}
	out.Token = append([]byte(nil), msg.Token...)
	out.Payload = append([]byte(nil), msg.Payload...)
	out.Options = append(Options(nil), msg.Options...)
	return out
}

// Option returns the first option matching number and whether it was found.
func (msg *Message) Option(number uint16) (Option, bool) {
	for _, o := range msg.Options {
		if o.Number == number {
			return o, true
		}
	}
	return Option{}, false
}
