//go:build !linux

package gpio

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns ErrUnsupported on non-Linux platforms.
func NewRealReader(chipName string, lines []Line) (*RealReader, error) {
	return nil, ErrUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() ([]bool, error) {
	return nil, ErrUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
