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
	"time"

	"github.com/google/uuid"
	"github.com/nlnwa/whatwg-url/url"

	"github.com/nlevold/warcio/internal/diskbuffer"
)

// errorPolicy describes how strictly malformed input is treated.
type errorPolicy int8

const (
	// ErrIgnore silently tolerates the problem.
	ErrIgnore errorPolicy = 0
	// ErrWarn tolerates the problem but records it in the record's Validation.
	ErrWarn errorPolicy = 1
	// ErrFail records the problem and, for a problem in a WARC header block,
	// escalates it to a MalformedRecordError returned by the iterator.
	ErrFail errorPolicy = 2
)

type options struct {
	strict                 bool
	errSyntax              errorPolicy
	errSpec                errorPolicy
	errUnknownRecordType   errorPolicy
	parseHTTP              bool
	recordTypeFilter       RecordType
	recordIDFunc           func() (string, error)
	defaultDigestAlgorithm string
	defaultDigestEncoding  digestEncoding
	clock                  func() time.Time
	bufferOptions          []diskbuffer.Option
	urlParserOptions       []url.ParserOption
}

var defaultRecordIDFunc = func() (string, error) {
	return "<urn:uuid:" + uuid.New().String() + ">", nil
}

func defaultOptions() options {
	return options{
		strict:                 false,
		errSyntax:              ErrWarn,
		errSpec:                ErrWarn,
		errUnknownRecordType:   ErrWarn,
		parseHTTP:              true,
		recordTypeFilter:       AnyType,
		recordIDFunc:           defaultRecordIDFunc,
		defaultDigestAlgorithm: "sha1",
		defaultDigestEncoding:  Base32,
		clock:                  func() time.Time { return time.Now().UTC() },
	}
}

// Option configures an ArchiveIterator, a WarcRecord builder, or a
// RecordWriter. The same option type is shared across all three, mirroring
// the teacher's single WarcRecordOption interface; unused fields for a given
// consumer are simply ignored.
type Option interface {
	apply(*options)
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) { fo.f(o) }

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{f: f}
}

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithStrict puts both the iterator and the header-field validator into
// fail-fast mode: a missing or malformed Content-Length yields a
// MalformedRecordError instead of being read as 0, and syntax or spec
// violations in a WARC header block yield a MalformedRecordError instead of
// only being recorded in Validation.
//
// defaults to false (lenient), matching the archival-forensics use case
// where real-world WARC files are imperfect and resync is preferable to
// aborting a multi-gigabyte read.
func WithStrict(strict bool) Option {
	return newFuncOption(func(o *options) {
		o.strict = strict
		if strict {
			o.errSyntax, o.errSpec, o.errUnknownRecordType = ErrFail, ErrFail, ErrFail
		}
	})
}

// WithParseHTTP sets whether the iterator invokes ParseHTTP on HTTP-bearing
// records automatically.
//
// defaults to true
func WithParseHTTP(parseHTTP bool) Option {
	return newFuncOption(func(o *options) {
		o.parseHTTP = parseHTTP
	})
}

// WithRecordTypeFilter restricts iteration to records whose type intersects
// the given bitset; others are skipped without being yielded.
//
// defaults to AnyType
func WithRecordTypeFilter(filter RecordType) Option {
	return newFuncOption(func(o *options) {
		o.recordTypeFilter = filter
	})
}

// WithRecordIDFunc overrides how InitHeaders generates a WARC-Record-ID when
// none is supplied. The function must return a URI encapsulated in '<' '>'.
//
// defaults to a freshly generated UUID URN
func WithRecordIDFunc(f func() (string, error)) Option {
	return newFuncOption(func(o *options) {
		o.recordIDFunc = f
	})
}

// WithDefaultDigestAlgorithm sets which hash Write computes for the
// WARC-Block-Digest/WARC-Payload-Digest values when it materializes a
// record. Valid values: "sha1", "md5", "sha256".
//
// defaults to "sha1"
func WithDefaultDigestAlgorithm(alg string) Option {
	return newFuncOption(func(o *options) {
		o.defaultDigestAlgorithm = alg
	})
}

// WithClock overrides the source of the current time used by InitHeaders for
// WARC-Date, keeping writers testable.
//
// defaults to time.Now().UTC
func WithClock(clock func() time.Time) Option {
	return newFuncOption(func(o *options) {
		o.clock = clock
	})
}

// WithBufferMaxMemBytes sets how much memory a digest/write materialization
// buffer may use before spilling to a temp file.
//
// defaults to 1 MiB
func WithBufferMaxMemBytes(size int64) Option {
	return newFuncOption(func(o *options) {
		o.bufferOptions = append(o.bufferOptions, diskbuffer.WithMaxMemBytes(size))
	})
}

// WithBufferTmpDir sets the directory used for buffer overflow files.
func WithBufferTmpDir(dir string) Option {
	return newFuncOption(func(o *options) {
		o.bufferOptions = append(o.bufferOptions, diskbuffer.WithTmpDir(dir))
	})
}

// WithURLParserOptions stores options for the whatwg-url parser. The
// validator for WARC-Target-URI and the other URI-valued fields parses with
// the parser's defaults and does not apply these options.
func WithURLParserOptions(opts ...url.ParserOption) Option {
	return newFuncOption(func(o *options) {
		o.urlParserOptions = append(o.urlParserOptions, opts...)
	})
}
