package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// stdinSource reads barcodes as plain lines. Fallback for running without
// a physical scanner, and what the tests use.
type stdinSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

func NewStdinSource(r io.Reader) BarcodeSource {
	src := &stdinSource{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}

func (s *stdinSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line != "" {
			return line, nil
		}
	}
}

func (s *stdinSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
