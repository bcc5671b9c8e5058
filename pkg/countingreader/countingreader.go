/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package countingreader provides an io.Reader/io.Writer wrapper that tracks
// how many bytes have passed through it, used by the file-backed Stream
// implementations to report tell() without seeking.
package countingreader

import (
	"io"
	"sync/atomic"
)

// Reader counts the bytes read through it and, if constructed with
// NewLimited, refuses to deliver more than maxBytes.
type Reader struct {
	r         io.Reader
	bytesRead int64
	maxBytes  int64 // -1 means unlimited
}

// New wraps r with no read limit.
func New(r io.Reader) *Reader {
	return &Reader{r: r, maxBytes: -1}
}

// NewLimited wraps r, truncating reads so that no more than maxBytes total
// are ever delivered.
func NewLimited(r io.Reader, maxBytes int64) *Reader {
	return &Reader{r: r, maxBytes: maxBytes}
}

func (c *Reader) Read(p []byte) (int, error) {
	if c.maxBytes >= 0 {
		remaining := c.maxBytes - atomic.LoadInt64(&c.bytesRead)
		if remaining <= 0 {
			return 0, io.EOF
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}
	n, err := c.r.Read(p)
	atomic.AddInt64(&c.bytesRead, int64(n))
	return n, err
}

// N reports the total number of bytes delivered so far.
func (c *Reader) N() int64 {
	return atomic.LoadInt64(&c.bytesRead)
}

// Writer counts the bytes written through it.
type Writer struct {
	w            io.Writer
	bytesWritten int64
}

// NewWriter wraps w, counting every byte passed through Write.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (c *Writer) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	atomic.AddInt64(&c.bytesWritten, int64(n))
	return n, err
}

// N reports the total number of bytes written so far.
func (c *Writer) N() int64 {
	return atomic.LoadInt64(&c.bytesWritten)
}
