// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereader

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, r io.Reader) ([]string, *LineReader) {
	t.Helper()

	var got []string

	lr := New(r, func(line string) {
		got = append(got, line)
	})
	require.NoError(t, lr.Drain())

	return got, lr
}

func TestLineReader_Lines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		last     string
	}{
		{
			name:     "single line with newline",
			input:    "hello world\n",
			expected: []string{"hello world"},
			last:     "hello world",
		},
		{
			name:     "single line without newline is flushed at EOF",
			input:    "hello world",
			expected: []string{"hello world"},
			last:     "hello world",
		},
		{
			name:     "crlf endings",
			input:    "one\r\ntwo\r\n",
			expected: []string{"one", "two"},
			last:     "two",
		},
		{
			name:     "blank lines are lines",
			input:    "a\n\nb\n",
			expected: []string{"a", "", "b"},
			last:     "b",
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
			last:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, lr := collect(t, strings.NewReader(tt.input))
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.last, lr.LastLine())
			assert.Equal(t, len(tt.expected), lr.Lines())
			assert.Empty(t, lr.PartialLine())
		})
	}
}

func TestLineReader_SplitAcrossReads(t *testing.T) {
	// OneByteReader forces every line to be assembled from many reads.
	got, _ := collect(t, iotest.OneByteReader(strings.NewReader("12:00\n87%\n")))
	assert.Equal(t, []string{"12:00", "87%"}, got)
}

func TestLineReader_PartialLine(t *testing.T) {
	lr := New(strings.NewReader("done\npart"), nil)

	buf := make([]byte, 64)
	_, err := lr.Read(buf)
	require.NoError(t, err)

	assert.Equal(t, "done", lr.LastLine())
	assert.Equal(t, "part", lr.PartialLine())
}

func TestLineReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("tail"), iotest.ErrReader(boom))

	var got []string

	lr := New(r, func(line string) { got = append(got, line) })
	err := lr.Drain()

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"tail"}, got)
}

func TestLineReader_MaxLineLength(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		max       int
		expected  []string
		truncated int
	}{
		{
			name:     "lines within the cap are untouched",
			input:    "abcd\nef\n",
			max:      4,
			expected: []string{"abcd", "ef"},
		},
		{
			name:      "long line is cut and the rest dropped up to the line ending",
			input:     "abcdefgh\nok\n",
			max:       4,
			expected:  []string{"abcd", "ok"},
			truncated: 1,
		},
		{
			name:      "unterminated long line is cut when flushed",
			input:     "abcdefgh",
			max:       3,
			expected:  []string{"abc"},
			truncated: 1,
		},
		{
			name:     "no cap",
			input:    "abcdefgh\n",
			max:      0,
			expected: []string{"abcdefgh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got   []string
				calls int
			)

			lr := New(iotest.OneByteReader(strings.NewReader(tt.input)),
				func(line string) { got = append(got, line) },
				WithMaxLineLength(tt.max),
				WithTruncateHandler(func(limit int) {
					assert.Equal(t, tt.max, limit)
					calls++
				}),
			)
			require.NoError(t, lr.Drain())

			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.truncated, lr.Truncated())
			assert.Equal(t, tt.truncated, calls)
		})
	}
}

// repeatReader yields b forever.
type repeatReader byte

func (r repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}

	return len(p), nil
}

func TestLineReader_LongUnterminatedStream(t *testing.T) {
	const (
		size   = 64 << 20
		maxLen = 1 << 20
	)

	var got []string

	lr := New(io.LimitReader(repeatReader('x'), size),
		func(line string) { got = append(got, line) },
		WithMaxLineLength(maxLen),
	)

	done := make(chan error, 1)

	go func() {
		done <- lr.Drain()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("draining an unterminated stream took too long")
	}

	require.Len(t, got, 1)
	assert.Len(t, got[0], maxLen)
	assert.Equal(t, 1, lr.Truncated())
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "87%", Trim("87%\n"))
	assert.Equal(t, "87%", Trim("87%\r\n\n"))
	assert.Equal(t, " padded ", Trim(" padded \n"))
	assert.Equal(t, "", Trim("\n"))
}
