package history

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// delimiter terminates every record stored in the ring.
const delimiter byte = 0x00

// Ring packs a stream of delimiter-terminated records into a fixed byte
// array, evicting the oldest records as new ones overwrite them.
//
// The live region runs from start+1 to end inclusive (wrapping). Both
// cursors always sit on a delimiter, and start == end only when the ring
// holds no records. Ring is not safe for concurrent use; see Log.
type Ring struct {
	buf   []byte
	start int // delimiter preceding the oldest record
	end   int // delimiter terminating the newest record
}

// NewRing allocates a zero-filled ring of the given capacity in bytes.
func NewRing(capacity int) (*Ring, error) {
	if capacity < 2 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{buf: make([]byte, capacity)}, nil
}

// Cap returns the ring capacity in bytes.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// MaxRecordLen returns the longest record Append accepts.
func (r *Ring) MaxRecordLen() int {
	return len(r.buf) - 2
}

// Used returns the number of bytes occupied by live records and their
// delimiters.
func (r *Ring) Used() int {
	return (r.end - r.start + len(r.buf)) % len(r.buf)
}

// Empty reports whether the ring holds no records.
func (r *Ring) Empty() bool {
	return r.start == r.end
}

// Append writes record followed by a delimiter and returns how many old
// records were evicted to make room. The ring is left untouched when the
// record can never fit or contains the delimiter byte.
func (r *Ring) Append(record []byte) (int, error) {
	if err := r.check(len(record), bytes.IndexByte(record, delimiter) >= 0); err != nil {
		return 0, err
	}

	evicted := 0
	for _, b := range record {
		evicted += r.put(b)
	}
	evicted += r.put(delimiter)
	return evicted, nil
}

// AppendString is Append for a string without an intermediate copy.
func (r *Ring) AppendString(s string) (int, error) {
	if err := r.check(len(s), strings.IndexByte(s, delimiter) >= 0); err != nil {
		return 0, err
	}

	evicted := 0
	for i := 0; i < len(s); i++ {
		evicted += r.put(s[i])
	}
	evicted += r.put(delimiter)
	return evicted, nil
}

func (r *Ring) check(size int, hasDelimiter bool) error {
	if size+1 >= len(r.buf) {
		return &ContractError{Size: size, Capacity: len(r.buf), Err: ErrRecordTooLarge}
	}
	if hasDelimiter {
		return &ContractError{Size: size, Capacity: len(r.buf), Err: ErrEmbeddedDelimiter}
	}
	return nil
}

// put writes one byte after end. It returns 1 when the write landed on
// start and the oldest record had to be dropped.
func (r *Ring) put(b byte) int {
	r.end = r.next(r.end)
	r.buf[r.end] = b
	if r.end != r.start {
		return 0
	}
	r.fastForward()
	return 1
}

// fastForward moves start onto the delimiter that terminates the oldest
// record. It always steps at least once, so a delimiter written exactly
// onto start still evicts the oldest record instead of emptying the ring.
// Reaching end means the ring held no delimiter at all; start then stops
// there rather than looping.
func (r *Ring) fastForward() {
	for {
		r.start = r.next(r.start)
		if r.start == r.end {
			r.buf[r.start] = delimiter
			return
		}
		if r.buf[r.start] == delimiter {
			return
		}
	}
}

func (r *Ring) next(i int) int {
	i++
	if i == len(r.buf) {
		return 0
	}
	return i
}

// Each calls fn for every live record, oldest first, until fn returns
// false. The slice passed to fn is a fresh copy owned by the caller.
func (r *Ring) Each(fn func(i int, record []byte) bool) {
	cursor := r.start
	for i := 0; cursor != r.end; i++ {
		first := r.next(cursor)
		length := 0
		for cursor = first; cursor != r.end && r.buf[cursor] != delimiter; cursor = r.next(cursor) {
			length++
		}
		if !fn(i, r.copyOut(first, length)) {
			return
		}
	}
}

func (r *Ring) copyOut(from, length int) []byte {
	out := make([]byte, length)
	n := copy(out, r.buf[from:min(from+length, len(r.buf))])
	copy(out[n:], r.buf[:length-n])
	return out
}

// Replay returns the live records oldest to newest. A record that is not
// valid UTF-8 fails the whole replay with a *DecodeError.
func (r *Ring) Replay() ([]string, error) {
	var (
		records []string
		err     error
	)
	r.Each(func(i int, record []byte) bool {
		if !utf8.Valid(record) {
			err = &DecodeError{Index: i, Record: record}
			return false
		}
		records = append(records, string(record))
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of live records.
func (r *Ring) Count() int {
	count := 0
	for cursor := r.start; cursor != r.end; {
		cursor = r.next(cursor)
		if r.buf[cursor] == delimiter {
			count++
		}
	}
	return count
}
