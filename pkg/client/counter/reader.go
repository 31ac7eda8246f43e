// Package counter measures the size of HTTP bodies.
package counter

import (
	"errors"
	"io"
)

// ReadCloser wraps an io.ReadCloser (response body) and counts the bytes read from it.
type ReadCloser struct {
	wrapped io.ReadCloser
	onClose OnClose
	bytes   int64
	readErr error
}

// OnClose callback receives the number of read bytes and the read error, or the close error if reading succeeded.
type OnClose func(bytes int64, err error)

// NewReadCloser wraps the reader, the onClose callback is optional.
func NewReadCloser(wrapped io.ReadCloser, onClose OnClose) *ReadCloser {
	return &ReadCloser{wrapped: wrapped, onClose: onClose}
}

// Bytes returns the number of bytes read so far.
func (r *ReadCloser) Bytes() int64 {
	return r.bytes
}

// Err returns the last read error, io.EOF is not considered an error.
func (r *ReadCloser) Err() error {
	if errors.Is(r.readErr, io.EOF) {
		return nil
	}
	return r.readErr
}

func (r *ReadCloser) Read(p []byte) (int, error) {
	n, err := r.wrapped.Read(p)
	r.bytes += int64(n)
	if err != nil {
		r.readErr = err
	}
	return n, err
}

func (r *ReadCloser) Close() error {
	closeErr := r.wrapped.Close()
	if r.onClose != nil {
		err := r.Err()
		if err == nil {
			err = closeErr
		}
		r.onClose(r.bytes, err)
	}
	return closeErr
}
