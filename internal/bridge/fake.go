package bridge

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by FakeHost when used before Connect.
var ErrNotConnected = errors.New("host not connected")

// FakeHost is a test double that replays scripted input batches and records
// every output written to it.
type FakeHost struct {
	// Batches holds the events returned by successive Read calls. Once exhausted,
	// Read returns no events.
	Batches [][]InputEvent
	index   int

	// Written contains every output passed to Write.
	Written []Output

	Connected bool
	Closed    bool

	// ConnectError, ReadError and WriteError, if set, are returned by the matching call.
	ConnectError error
	ReadError    error
	WriteError   error
}

func NewFakeHost(batches ...[]InputEvent) *FakeHost {
	return &FakeHost{Batches: batches}
}

func (f *FakeHost) Connect(ctx context.Context) error {
	if f.ConnectError != nil {
		return f.ConnectError
	}
	f.Connected = true
	return nil
}

func (f *FakeHost) Read(ctx context.Context) ([]InputEvent, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}
	if !f.Connected {
		return nil, ErrNotConnected
	}
	if f.index >= len(f.Batches) {
		return nil, nil
	}
	b := f.Batches[f.index]
	f.index++
	return b, nil
}

func (f *FakeHost) Write(ctx context.Context, out Output) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if !f.Connected {
		return ErrNotConnected
	}
	f.Written = append(f.Written, out)
	return nil
}

func (f *FakeHost) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}
