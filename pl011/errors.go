// pl011/errors.go

package pl011

import "errors"

// ErrNoData is returned by ReadByte when the receive FIFO is empty. It is a
// poll result, not a line error.
var ErrNoData = errors.New("pl011: no data")

var (
	ErrInvalidDataBits = errors.New("pl011: invalid data bits")
	ErrInvalidStopBits = errors.New("pl011: invalid stop bits")
)

// ErrorKind identifies a receive error reported by the hardware.
type ErrorKind uint8

const (
	// KindBreak: the line was held low for longer than a full character.
	KindBreak ErrorKind = iota + 1
	// KindFraming: the character had no valid stop bit.
	KindFraming
	// KindOverrun: a character arrived while the receive FIFO was full and
	// was lost.
	KindOverrun
	// KindParity: the parity bit did not match the configured parity.
	KindParity
)

func (k ErrorKind) String() string {
	switch k {
	case KindBreak:
		return "break"
	case KindFraming:
		return "framing"
	case KindOverrun:
		return "overrun"
	case KindParity:
		return "parity"
	}
	return "unknown"
}

// Category is the coarse classification of a receive error for generic
// stream consumers.
type Category uint8

const (
	// CategoryOther is a transient hardware condition.
	CategoryOther Category = iota
	// CategoryInvalidData means the received character is not trustworthy.
	CategoryInvalidData
)

func (c Category) String() string {
	if c == CategoryInvalidData {
		return "invalid data"
	}
	return "other"
}

// Error is a receive error. Reads return one of the Err* values below, so
// callers compare with errors.Is or switch on Kind.
type Error struct {
	Kind ErrorKind
}

func (e *Error) Error() string { return "pl011: " + e.Kind.String() + " error" }

// Category maps break and overrun to CategoryOther and framing and parity to
// CategoryInvalidData.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindFraming, KindParity:
		return CategoryInvalidData
	}
	return CategoryOther
}

var (
	ErrBreak   = &Error{Kind: KindBreak}
	ErrFraming = &Error{Kind: KindFraming}
	ErrOverrun = &Error{Kind: KindOverrun}
	ErrParity  = &Error{Kind: KindParity}
)

// decodeError returns the error for the first bit set in e, checked in the
// order framing, parity, break, overrun, or nil.
func decodeError(e DataError) error {
	switch {
	case e.Has(DataFraming):
		return ErrFraming
	case e.Has(DataParity):
		return ErrParity
	case e.Has(DataBreak):
		return ErrBreak
	case e.Has(DataOverrun):
		return ErrOverrun
	}
	return nil
}
