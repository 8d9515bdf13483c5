package chainlog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ZeroHash is the 32 zero bytes used as prev_link_hash at genesis.
var ZeroHash = [32]byte{}

// Entry is one line of the chain log: an event's canonical payload plus the
// hash link tying it to its predecessor. Sequence is total and gapless
// within a chain; Checksum is the hex-encoded link_hash; PrevChecksum is
// empty only for the genesis entry (sequence 0).
type Entry struct {
	Sequence     uint64
	EventID      string
	Timestamp    time.Time
	EventData    json.RawMessage
	Checksum     string
	PrevChecksum string
}

// wireEntry is the fixed on-disk field set and ordering described by the
// chain log file format: sequence, event_id, timestamp, event_data,
// checksum, prev_checksum.
type wireEntry struct {
	Sequence     uint64          `json:"sequence"`
	EventID      string          `json:"event_id"`
	Timestamp    time.Time       `json:"timestamp"`
	EventData    json.RawMessage `json:"event_data"`
	Checksum     string          `json:"checksum"`
	PrevChecksum string          `json:"prev_checksum,omitempty"`
}

// encodeLine renders e as a single newline-terminated line.
func encodeLine(e Entry) ([]byte, error) {
	w := wireEntry{
		Sequence:     e.Sequence,
		EventID:      e.EventID,
		Timestamp:    e.Timestamp,
		EventData:    e.EventData,
		Checksum:     e.Checksum,
		PrevChecksum: e.PrevChecksum,
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("chainlog: encode entry %d: %w", e.Sequence, err)
	}
	return append(b, '\n'), nil
}

// decodeLine parses a single chain log line. It returns an error for
// malformed JSON; callers distinguish "trailing incomplete write" (ignored
// at recovery) from "corruption in the middle of the file" (an integrity
// finding) by position, not by error type.
func decodeLine(line []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(line, &w); err != nil {
		return Entry{}, fmt.Errorf("chainlog: decode entry: %w", err)
	}
	return Entry{
		Sequence:     w.Sequence,
		EventID:      w.EventID,
		Timestamp:    w.Timestamp,
		EventData:    w.EventData,
		Checksum:     w.Checksum,
		PrevChecksum: w.PrevChecksum,
	}, nil
}

// payloadHash returns SHA256(canonical_payload_bytes).
func payloadHash(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}

// linkHash computes SHA256( LE64(sequence) || payload_hash || prev_link_hash ).
// The encoding is fixed: 8-byte little-endian sequence, the raw 32-byte
// payload hash, and the raw 32-byte predecessor link hash (all zero at
// genesis).
func linkHash(sequence uint64, payload [32]byte, prev [32]byte) [32]byte {
	var buf [8 + 32 + 32]byte
	binary.LittleEndian.PutUint64(buf[0:8], sequence)
	copy(buf[8:40], payload[:])
	copy(buf[40:72], prev[:])
	return sha256.Sum256(buf[:])
}

// RecomputeChecksum recomputes an entry's link_hash from its own fields
// (payload, sequence, and claimed prev_checksum) so callers can compare it
// against the stored Checksum without access to the writer's in-memory
// state. It does not validate that PrevChecksum actually belongs to the
// preceding entry; that is a chain-continuity check, not a per-entry one.
func RecomputeChecksum(e Entry) string {
	prev, err := hashFromHex(e.PrevChecksum)
	if err != nil {
		return ""
	}
	ph := payloadHash(e.EventData)
	lh := linkHash(e.Sequence, ph, prev)
	return fmtHash(lh)
}

func hashFromHex(s string) ([32]byte, error) {
	var h [32]byte
	if s == "" {
		return h, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("chainlog: decode hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("chainlog: hash %q has wrong length %d", s, len(b))
	}
	copy(h[:], b)
	return h, nil
}
