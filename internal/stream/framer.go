package stream

import "bytes"

// Framer reassembles complete lines from arbitrarily chunked input. The
// planner's HTTP transport splits the byte stream without regard for line
// boundaries, so a JSON payload may arrive across several reads; Feed buffers
// the trailing fragment until its terminator shows up. The emitted line
// sequence is identical regardless of how the input was chunked.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and returns all newly completed
// lines. Line terminators ("\n" or "\r\n") are stripped.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := f.buf[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, string(line))
		f.buf = f.buf[i+1:]
	}

	// Reclaim the consumed prefix so the buffer does not grow unbounded
	// across a long stream.
	if len(f.buf) == 0 {
		f.buf = nil
	} else if len(lines) > 0 {
		f.buf = append([]byte(nil), f.buf...)
	}
	return lines
}

// Flush returns the unterminated remainder at stream end and clears the
// buffer. A stream that ends without a final newline still carries a real
// line; callers must treat the returned text as emittable, not drop it.
// The second return is false when no remainder was buffered.
func (f *Framer) Flush() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}
	line := f.buf
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	f.buf = nil
	return string(line), true
}
