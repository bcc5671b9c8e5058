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

package warcio

import (
	"bufio"
	"compress/gzip"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
)

// GzipMemberStream wraps an underlying Stream so that each
// BeginMember/EndMember pair forms its own independently-decodable gzip member, the standard WARC.gz
// container layout. Grounded on the teacher's unmarshaler.go gzip-magic-byte
// detection (read side) and warcfile.go's compress option (write side); uses
// the stdlib gzip reader to match the teacher's read-side choice, and
// klauspost/compress/gzip for the writer to get adjustable compression
// levels, the same asymmetry CorentinB-warc's compression.go exercises.
type GzipMemberStream struct {
	under Stream

	br  *bufio.Reader // read-ahead over under, shared by every member
	gzr *gzip.Reader  // current member's decompressor, nil between members

	gzw   *kgzip.Writer
	level int
}

// NewGzipMemberReader prepares under for member-by-member decompression. The
// first member is opened lazily on the first Read.
func NewGzipMemberReader(under Stream) *GzipMemberStream {
	return &GzipMemberStream{under: under}
}

// NewGzipMemberWriter prepares under for member-by-member compression at the
// given klauspost/compress/gzip level (gzip.DefaultCompression if 0).
func NewGzipMemberWriter(under Stream, level int) *GzipMemberStream {
	if level == 0 {
		level = kgzip.DefaultCompression
	}
	return &GzipMemberStream{under: under, level: level}
}

func (s *GzipMemberStream) Read(p []byte) (int, error) {
	if s.gzr == nil {
		if s.br == nil {
			s.br = bufio.NewReader(s.under)
		}
		gzr, err := gzip.NewReader(s.br)
		if err != nil {
			return 0, err
		}
		gzr.Multistream(false)
		s.gzr = gzr
	}
	n, err := s.gzr.Read(p)
	if err == io.EOF {
		// End of this member only: the next Read opens the following one,
		// and gzip.NewReader reports io.EOF once no member is left.
		s.gzr = nil
		if n == 0 {
			return s.Read(p)
		}
		err = nil
	}
	return n, err
}

func (s *GzipMemberStream) Write(p []byte) (int, error) {
	if s.gzw == nil {
		return 0, errInvalidSink
	}
	return s.gzw.Write(p)
}

// BeginMember opens a fresh gzip member for writing, returning the
// underlying stream's offset at the member's start.
func (s *GzipMemberStream) BeginMember() (int64, error) {
	gzw, err := kgzip.NewWriterLevel(s.under, s.level)
	if err != nil {
		return 0, err
	}
	s.gzw = gzw
	return s.under.Tell(), nil
}

// EndMember flushes and closes the current gzip member, returning the
// underlying stream's offset after the member's trailer.
func (s *GzipMemberStream) EndMember() (int64, error) {
	if s.gzw == nil {
		return s.under.Tell(), nil
	}
	err := s.gzw.Close()
	s.gzw = nil
	return s.under.Tell(), err
}

func (s *GzipMemberStream) Tell() int64 {
	return s.under.Tell()
}

func (s *GzipMemberStream) Close() error {
	if s.gzw != nil {
		_ = s.gzw.Close()
	}
	if s.gzr != nil {
		_ = s.gzr.Close()
	}
	return s.under.Close()
}
