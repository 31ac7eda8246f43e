// Package decode unwraps HTTP bodies compressed by the Content-Encoding.
package decode

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// Decode returns a reader of the decoded body. Unknown encodings are returned as they are.
// Closing the returned reader closes the body.
func Decode(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("cannot decode gzip: %w", err)
		}
		return readCloser{Reader: r, closers: []io.Closer{r, body}}, nil
	case "deflate":
		r := flate.NewReader(body)
		return readCloser{Reader: r, closers: []io.Closer{r, body}}, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return body, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
