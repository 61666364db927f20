package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Kind is the entity class an id names. It becomes the id prefix, so the
// origin of an id is readable in logs and event payloads.
type Kind string

const (
	KindGame         Kind = "game"
	KindSnapshot     Kind = "snap"
	KindSubscription Kind = "sub"
	KindCommand      Kind = "cmd"
)

// RandSource interface for dependency injection of randomness. Matches the
// rand/v2 method set so a randutil.New rand can be plugged in directly.
type RandSource interface {
	IntN(n int) int
}

// Generator produces prefixed UUIDv7 ids with injectable randomness and clock.
type Generator struct {
	randSource RandSource
	clock      quartz.Clock
}

// NewGenerator creates a generator. A nil randSource falls back to
// crypto/rand; a nil clock falls back to the real clock.
func NewGenerator(randSource RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{randSource: randSource, clock: clock}
}

// New creates an id of the given kind using crypto/rand and the real clock.
func New(kind Kind) string {
	return NewGenerator(nil, nil).Generate(kind)
}

// Generate creates an id of the form "<kind>_<26 char base32 UUIDv7>".
// UUIDv7 keeps ids of one kind sortable by creation time.
func (g *Generator) Generate(kind Kind) string {
	uuid := g.generateUUIDv7()
	return string(kind) + "_" + encodeBase32(uuid)
}

func (g *Generator) generateUUIDv7() [16]byte {
	var uuid [16]byte

	// 48-bit millisecond timestamp, 4-bit version (7), 2-bit variant (10),
	// remainder random.
	now := g.clock.Now().UnixMilli()

	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.randSource.IntN(256))
		}
	} else {
		if _, err := rand.Read(uuid[6:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return uuid
}

// encodeBase32 encodes a 128-bit UUID as a 26-character base32 string
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	// Encode 5 bits per character, reading across byte boundaries.
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8

		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}

		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks that an id carries the expected kind prefix and a
// well-formed 26-character base32 payload.
func Validate(id string, kind Kind) error {
	prefix := string(kind) + "_"
	if !strings.HasPrefix(id, prefix) {
		return fmt.Errorf("id %q does not have prefix %q", id, prefix)
	}

	payload := id[len(prefix):]
	if len(payload) != 26 {
		return fmt.Errorf("id payload must be exactly 26 characters, got %d", len(payload))
	}

	// First character above '7' would encode more than 128 bits.
	if payload[0] > '7' {
		return fmt.Errorf("id payload first character must be 0-7, got %c", payload[0])
	}

	for i, char := range payload {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
