// Package ndjson splits a chunked byte stream into newline-delimited lines.
//
// The Decoder is a pure transform: it performs no I/O and keeps only the
// trailing partial line between calls. Lines may be arbitrarily long.
package ndjson

import (
	"bytes"
	"errors"
	"io"
	"iter"
)

// DefaultReadSize is the buffer size used by Lines when none is given.
const DefaultReadSize = 32 * 1024

// Decoder turns byte chunks, in arrival order, into complete lines.
// The zero value is ready to use.
type Decoder struct {
	buf []byte
}

// Write consumes one chunk and returns the lines it completed, without the
// line terminator. A "\r\n" terminator is handled even when the two bytes
// arrive in different chunks.
func (d *Decoder) Write(chunk []byte) []string {
	var lines []string

	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			d.buf = append(d.buf, chunk...)
			break
		}

		var line []byte
		if len(d.buf) > 0 {
			d.buf = append(d.buf, chunk[:i]...)
			line = d.buf
		} else {
			line = chunk[:i]
		}
		lines = append(lines, string(trimCR(line)))
		d.buf = d.buf[:0]
		chunk = chunk[i+1:]
	}

	return lines
}

// Flush returns the buffered partial line at end of stream. The second
// result is false when nothing non-empty was pending. The line may be
// truncated data and callers must be ready for it to fail parsing.
func (d *Decoder) Flush() (string, bool) {
	line := trimCR(d.buf)
	d.buf = nil
	if len(line) == 0 {
		return "", false
	}
	return string(line), true
}

// Pending reports the number of buffered bytes not yet returned as a line.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// Lines reads r until EOF and yields each line. A read error other than
// io.EOF is yielded once as the final element.
func Lines(r io.Reader, size int) iter.Seq2[string, error] {
	if size <= 0 {
		size = DefaultReadSize
	}

	return func(yield func(string, error) bool) {
		var dec Decoder
		buf := make([]byte, size)

		for {
			n, err := r.Read(buf)
			if n > 0 {
				for _, line := range dec.Write(buf[:n]) {
					if !yield(line, nil) {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
					return
				}
				if line, ok := dec.Flush(); ok {
					yield(line, nil)
				}
				return
			}
		}
	}
}
