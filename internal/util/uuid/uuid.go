// Package uuid generates time-ordered UUIDv7 identifiers (RFC 9562).
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

const UUIDSize = 16

// UUID represents a 128-bit universally unique identifier.
type UUID struct {
	bytes [UUIDSize]byte
}

// NewV7 generates a new UUIDv7: a 48-bit millisecond timestamp followed by
// random data, with version and variant bits set per RFC 9562.
func NewV7() (UUID, error) {
	var uuid UUID

	now := time.Now().UnixMilli()

	uuid.bytes[0] = byte(now >> 40)
	uuid.bytes[1] = byte(now >> 32)
	uuid.bytes[2] = byte(now >> 24)
	uuid.bytes[3] = byte(now >> 16)
	uuid.bytes[4] = byte(now >> 8)
	uuid.bytes[5] = byte(now)

	if _, err := rand.Read(uuid.bytes[6:]); err != nil {
		return UUID{}, fmt.Errorf("read random: %w", err)
	}

	uuid.bytes[6] = (uuid.bytes[6] & 0x0F) | 0x70 // Version 7
	uuid.bytes[8] = (uuid.bytes[8] & 0x3F) | 0x80 // Variant RFC 4122

	return uuid, nil
}

// String returns the canonical hyphenated representation (8-4-4-4-12).
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(u.bytes[0:4]),
		binary.BigEndian.Uint16(u.bytes[4:6]),
		binary.BigEndian.Uint16(u.bytes[6:8]),
		binary.BigEndian.Uint16(u.bytes[8:10]),
		u.bytes[10:16])
}

// Bytes returns the raw bytes of the UUID.
func (u UUID) Bytes() []byte {
	return u.bytes[:]
}
