package history

import (
	"errors"
	"fmt"
)

// Sentinel errors for ring operations.
var (
	ErrInvalidCapacity   = errors.New("history: capacity must be at least 2 bytes")
	ErrRecordTooLarge    = errors.New("history: record does not fit in ring")
	ErrEmbeddedDelimiter = errors.New("history: record contains delimiter byte")
	ErrInvalidText       = errors.New("history: record is not valid UTF-8")
)

// ContractError is returned when Append is called with a record the ring
// can never hold. It signals a caller bug or a capacity misconfiguration,
// not a runtime condition to retry.
type ContractError struct {
	Size     int // record length without delimiter
	Capacity int
	Err      error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%v: size=%d capacity=%d", e.Err, e.Size, e.Capacity)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// DecodeError reports a stored record that is not valid text.
type DecodeError struct {
	Index  int // position in replay order
	Record []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: index=%d len=%d", ErrInvalidText, e.Index, len(e.Record))
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidText
}
