// Package uuidv7 issues RFC 9562 time-ordered UUIDs, used for lock and
// payroll record IDs so primary key order follows creation order.
package uuidv7

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/google/uuid"
)

// NewString returns a fresh UUIDv7 in canonical string form.
func NewString() (string, error) {
	return newStringAt(time.Now())
}

func newStringAt(t time.Time) (string, error) {
	var b [16]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return "", err
	}

	// 48-bit big-endian Unix milliseconds, then version and variant bits.
	ms := uint64(t.UnixMilli())
	for i := 0; i < 6; i++ {
		b[i] = byte(ms >> (40 - 8*i))
	}
	b[6] = (b[6] & 0x0f) | 0x70
	b[8] = (b[8] & 0x3f) | 0x80

	u, err := uuid.FromBytes(b[:])
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
