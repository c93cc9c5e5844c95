package wire

import (
	"bytes"
	"errors"
	"strconv"
)

// Payload building errors.
var (
	// ErrPayloadOverflow is returned when appending a member would exceed
	// the builder's size ceiling. The member is not appended.
	ErrPayloadOverflow = errors.New("payload size ceiling exceeded")
)

// DefaultPayloadLimit is the default size ceiling for a state-sync payload
// in bytes.
const DefaultPayloadLimit = 1024

// PayloadBuilder assembles a flat JSON object for a batched state sync.
// Members are appended in call order; the surrounding braces appear only
// when at least one member was appended. The zero value is not usable;
// create builders with NewPayloadBuilder.
//
// PayloadBuilder is not safe for concurrent use. The property engine owns
// one builder and reuses it across cycles via Reset.
type PayloadBuilder struct {
	buf     bytes.Buffer
	limit   int
	members int
}

// NewPayloadBuilder returns a builder with the given size ceiling in bytes.
// A non-positive limit falls back to DefaultPayloadLimit.
func NewPayloadBuilder(limit int) *PayloadBuilder {
	if limit <= 0 {
		limit = DefaultPayloadLimit
	}
	return &PayloadBuilder{limit: limit}
}

// Append adds one member to the payload. It returns ErrPayloadOverflow,
// leaving the payload unchanged, when the member would push the finished
// payload past the size ceiling.
func (b *PayloadBuilder) Append(key string, v Value) error {
	member := strconv.Quote(key) + ":" + v.Render()

	// Account for the member, a separating comma, and the closing braces.
	projected := b.buf.Len() + len(member) + 2
	if b.members > 0 {
		projected++
	}
	if projected > b.limit {
		return ErrPayloadOverflow
	}

	if b.members > 0 {
		b.buf.WriteByte(',')
	}
	b.buf.WriteString(member)
	b.members++
	return nil
}

// Members returns the number of appended members.
func (b *PayloadBuilder) Members() int {
	return b.members
}

// Bytes returns the finished payload, or nil when no member was appended.
func (b *PayloadBuilder) Bytes() []byte {
	if b.members == 0 {
		return nil
	}
	out := make([]byte, 0, b.buf.Len()+2)
	out = append(out, '{')
	out = append(out, b.buf.Bytes()...)
	out = append(out, '}')
	return out
}

// Reset discards all appended members, keeping the size ceiling.
func (b *PayloadBuilder) Reset() {
	b.buf.Reset()
	b.members = 0
}
