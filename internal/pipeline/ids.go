package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are 26-character Crockford Base32 strings: a 48-bit millisecond
// timestamp followed by a per-millisecond sequence and random bits, so IDs
// sort by submission time.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ids struct {
	mu  sync.Mutex
	ts  uint64
	seq uint16
}

// NewJobID returns a fresh, time-ordered job ID.
func NewJobID() string {
	ids.mu.Lock()
	ts := uint64(time.Now().UnixMilli())
	if ts == ids.ts {
		ids.seq++
	} else {
		ids.ts, ids.seq = ts, 0
	}
	seq := ids.seq
	ids.mu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	binary.BigEndian.PutUint16(b[6:8], seq)
	rand.Read(b[8:])
	return encodeID(b)
}

// encodeID writes the 128 bits of b as 26 base32 digits, most significant
// first. The leading digit carries the top 3 bits.
func encodeID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// ValidJobID reports whether s has the shape of an ID from NewJobID.
func ValidJobID(s string) bool {
	if len(s) != 26 || s[0] > '7' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z') || c == 'I' || c == 'L' || c == 'O' || c == 'U' {
			return false
		}
	}
	return true
}
