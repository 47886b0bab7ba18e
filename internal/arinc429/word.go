// Package arinc429 implements the labeled data words exchanged between the flight
// control computers: a payload plus a 2-bit Sign/Status Matrix (SSM) validity tag.
//
// This package has NO external dependencies and never inspects memory layout;
// transport encoding is explicit (see Pack and Unpack).
package arinc429

// SSM is the Sign/Status Matrix validity tag carried by every word.
type SSM uint8

const (
	FailureWarning  SSM = 0b00
	NoComputedData  SSM = 0b01
	FunctionalTest  SSM = 0b10
	NormalOperation SSM = 0b11
)

func (s SSM) String() string {
	switch s {
	case FailureWarning:
		return "FW"
	case NoComputedData:
		return "NCD"
	case FunctionalTest:
		return "FT"
	case NormalOperation:
		return "NO"
	default:
		return "INVALID"
	}
}

// Payload lists the value types a word may carry.
type Payload interface {
	float32 | float64 | uint32
}

// Word is a labeled data word. The zero value is a FailureWarning word with a
// zero payload, which is also the safe output of an unhealthy computer.
type Word[T Payload] struct {
	value T
	ssm   SSM
}

// Number is the numeric (BNR) word used on every bus.
type Number = Word[float32]

// NewWord returns a word carrying v with the given tag.
func NewWord[T Payload](v T, ssm SSM) Word[T] {
	return Word[T]{value: v, ssm: ssm}
}

// SetValue replaces both the payload and the tag.
func (w *Word[T]) SetValue(v T, ssm SSM) {
	w.value = v
	w.ssm = ssm
}

// SetSSM replaces the tag and keeps the payload.
func (w *Word[T]) SetSSM(ssm SSM) {
	w.ssm = ssm
}

// Value returns the raw payload regardless of the tag.
// Callers that have not checked the tag should use ValueOr.
func (w Word[T]) Value() T {
	return w.value
}

// ValueOr returns the payload when the word is NormalOperation or FunctionalTest,
// and def otherwise.
func (w Word[T]) ValueOr(def T) T {
	if w.IsNormalOrTest() {
		return w.value
	}
	return def
}

// SSM returns the validity tag.
func (w Word[T]) SSM() SSM {
	return w.ssm
}

func (w Word[T]) IsFailureWarning() bool {
	return w.ssm == FailureWarning
}

func (w Word[T]) IsNoComputedData() bool {
	return w.ssm == NoComputedData
}

func (w Word[T]) IsNormalOperation() bool {
	return w.ssm == NormalOperation
}

// IsNormalOrTest reports whether the payload may be trusted.
func (w Word[T]) IsNormalOrTest() bool {
	return w.ssm == NormalOperation || w.ssm == FunctionalTest
}
