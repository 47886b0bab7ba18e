package arinc429

// DiscreteWidth is the number of addressable bits in a discrete word.
const DiscreteWidth = 32

// Discrete is a bit-packed word. Bits are numbered from 1; bit 0 does not exist.
//
// Bit accessors do not range-check: callers must pass 1 <= n <= DiscreteWidth.
type Discrete struct {
	Word[uint32]
}

// NewDiscrete returns an all-zero discrete word with the given tag.
func NewDiscrete(ssm SSM) Discrete {
	return Discrete{Word: NewWord[uint32](0, ssm)}
}

// BitAt returns bit n of the payload regardless of the tag.
func (d Discrete) BitAt(n int) bool {
	return d.value&(1<<(n-1)) != 0
}

// BitAtOr returns bit n when the word may be trusted, and def otherwise.
func (d Discrete) BitAtOr(n int, def bool) bool {
	if !d.IsNormalOrTest() {
		return def
	}
	return d.BitAt(n)
}

// SetBit sets or clears bit n, leaving every other bit untouched.
func (d *Discrete) SetBit(n int, b bool) {
	mask := uint32(1) << (n - 1)
	if b {
		d.value |= mask
	} else {
		d.value &^= mask
	}
}
