// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereader

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
)

const readBufferSize = 4096

// LineReader wraps an io.Reader and hands every complete line it reads to a callback,
// with the trailing line ending removed. It also remembers the last complete line.
// It is safe for concurrent use.
type LineReader struct {
	reader         io.Reader
	onLine         func(string)
	onTruncate     func(limit int)
	maxLine        int
	discarding     bool // the current line has hit maxLine
	truncated      int
	lastLine       string
	lines          int
	partialBuilder strings.Builder // Buffer for incomplete lines
	mu             sync.RWMutex
}

// Option configures a LineReader.
type Option func(lr *LineReader)

// WithMaxLineLength caps a line at n bytes. Bytes beyond the cap are dropped up
// to the next line ending. Zero or less means no cap.
func WithMaxLineLength(n int) Option {
	return func(lr *LineReader) {
		lr.maxLine = n
	}
}

// WithTruncateHandler registers f, called once for every line that was cut short.
func WithTruncateHandler(f func(limit int)) Option {
	return func(lr *LineReader) {
		lr.onTruncate = f
	}
}

// New creates a new LineReader over r. onLine is called synchronously from Read,
// in stream order, once per line. A nil onLine only tracks the last line.
func New(r io.Reader, onLine func(string), opts ...Option) *LineReader {
	if onLine == nil {
		onLine = func(string) {}
	}

	lr := &LineReader{
		reader:     r,
		onLine:     onLine,
		onTruncate: func(int) {},
	}

	for _, opt := range opts {
		opt(lr)
	}

	return lr
}

// Read implements io.Reader. Callbacks for any lines completed by this read run
// before Read returns.
func (lr *LineReader) Read(p []byte) (n int, err error) {
	n, err = lr.reader.Read(p)
	if n > 0 {
		lines, truncated := lr.processNewData(p[:n])
		for i := 0; i < truncated; i++ {
			lr.onTruncate(lr.maxLine)
		}

		for _, line := range lines {
			lr.onLine(line)
		}
	}

	return n, err //nolint:wrapcheck
}

// Drain reads the underlying reader until EOF, then flushes any unterminated final line.
// A clean EOF is not reported as an error.
func (lr *LineReader) Drain() error {
	buf := make([]byte, readBufferSize)

	for {
		_, err := lr.Read(buf)
		if err == nil {
			continue
		}

		lr.Flush()

		if errors.Is(err, io.EOF) {
			return nil
		}

		return err
	}
}

// Flush emits the buffered partial line, if there is one, as a complete line.
func (lr *LineReader) Flush() {
	lr.mu.Lock()
	line := lr.partialBuilder.String()
	lr.partialBuilder.Reset()
	lr.discarding = false

	if line != "" {
		line = trimLineEnding(line)
		lr.lastLine = line
		lr.lines++
	}
	lr.mu.Unlock()

	if line != "" {
		lr.onLine(line)
	}
}

// processNewData splits buffered data into complete lines and keeps the remainder.
// Only data is searched for line endings, the buffered partial line never is.
// It also returns how many lines were cut at the length cap.
func (lr *LineReader) processNewData(data []byte) ([]string, int) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	var (
		complete  []string
		truncated int
	)

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		if lr.appendPartial(data[:i]) {
			truncated++
		}

		complete = append(complete, trimLineEnding(lr.partialBuilder.String()))
		lr.partialBuilder.Reset()
		lr.discarding = false

		data = data[i+1:]
	}

	if lr.appendPartial(data) {
		truncated++
	}

	if len(complete) > 0 {
		lr.lastLine = complete[len(complete)-1]
		lr.lines += len(complete)
	}

	lr.truncated += truncated

	return complete, truncated
}

// appendPartial adds b to the partial line, honouring the length cap. It reports
// whether this call is the one that cut the line short.
// Must be called with the write lock held.
func (lr *LineReader) appendPartial(b []byte) bool {
	if lr.discarding {
		return false
	}

	if lr.maxLine <= 0 || lr.partialBuilder.Len()+len(b) <= lr.maxLine {
		lr.partialBuilder.Write(b)
		return false
	}

	lr.partialBuilder.Write(b[:lr.maxLine-lr.partialBuilder.Len()])
	lr.discarding = true

	return true
}

// LastLine returns the last complete line that was read.
func (lr *LineReader) LastLine() string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	return lr.lastLine
}

// Lines returns the number of complete lines read so far.
func (lr *LineReader) Lines() int {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	return lr.lines
}

// Truncated returns the number of lines cut at the length cap so far.
func (lr *LineReader) Truncated() int {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	return lr.truncated
}

// PartialLine returns data read after the last line ending.
func (lr *LineReader) PartialLine() string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	return lr.partialBuilder.String()
}

func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// Trim removes trailing carriage returns and line feeds from command output.
func Trim(s string) string {
	return trimLineEnding(s)
}
