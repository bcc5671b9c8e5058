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
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdMemberStream frames each record as its own independent zstd frame, an
// alternative to GzipMemberStream offering better ratio/speed tradeoffs.
// Grounded on CorentinB-warc's compression.go, which offers a pluggable
// compression backend for WARC output; not part of the teacher's own stack,
// but wired here since klauspost/compress already entered the dependency
// graph through the gzip writer and ships a zstd package for free.
type ZstdMemberStream struct {
	under Stream

	dec *zstd.Decoder
	enc *zstd.Encoder
}

// NewZstdMemberReader prepares under for member-by-member decompression.
func NewZstdMemberReader(under Stream) (*ZstdMemberStream, error) {
	dec, err := zstd.NewReader(under)
	if err != nil {
		return nil, err
	}
	return &ZstdMemberStream{under: under, dec: dec}, nil
}

// NewZstdMemberWriter prepares under for member-by-member compression.
func NewZstdMemberWriter(under Stream) (*ZstdMemberStream, error) {
	enc, err := zstd.NewWriter(under)
	if err != nil {
		return nil, err
	}
	return &ZstdMemberStream{under: under, enc: enc}, nil
}

func (s *ZstdMemberStream) Read(p []byte) (int, error) {
	if s.dec == nil {
		return 0, io.EOF
	}
	return s.dec.Read(p)
}

func (s *ZstdMemberStream) Write(p []byte) (int, error) {
	if s.enc == nil {
		return 0, errInvalidSink
	}
	return s.enc.Write(p)
}

// BeginMember resets the encoder so the next Write starts a fresh frame,
// returning the underlying stream's offset at the frame's start.
func (s *ZstdMemberStream) BeginMember() (int64, error) {
	if s.enc == nil {
		return 0, errInvalidSink
	}
	s.enc.Reset(s.under)
	return s.under.Tell(), nil
}

// EndMember flushes the current frame, returning the underlying stream's
// offset after the frame trailer.
func (s *ZstdMemberStream) EndMember() (int64, error) {
	if s.enc == nil {
		return s.under.Tell(), nil
	}
	if err := s.enc.Close(); err != nil {
		return 0, err
	}
	return s.under.Tell(), nil
}

func (s *ZstdMemberStream) Tell() int64 {
	return s.under.Tell()
}

func (s *ZstdMemberStream) Close() error {
	if s.enc != nil {
		_ = s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	return s.under.Close()
}
