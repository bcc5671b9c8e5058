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
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ArchiveIterator drives record-by-record extraction from a Stream, never
// materializing more than one record's header block in memory at a time.
// Grounded on the teacher's Unmarshal loop (unmarshaler.go) for the
// magic-byte/version-line resync logic and WarcFileReader.Next
// (warcfile.go) for the prior-record-discard-on-advance bookkeeping.
type ArchiveIterator struct {
	stream Stream
	cs     CompressingStream // non-nil if stream implements it
	owner  *bufferedReader
	opts   *options
	log    *logrus.Entry

	current *WarcRecord
}

// NewArchiveIterator constructs an iterator over stream. If stream also
// implements CompressingStream, stream_pos is reported at member
// granularity rather than per-byte.
func NewArchiveIterator(stream Stream, opts ...Option) *ArchiveIterator {
	cs, _ := stream.(CompressingStream)
	return &ArchiveIterator{
		stream: stream,
		cs:     cs,
		owner:  newBufferedReader(stream),
		opts:   newOptions(opts...),
		log:    logrus.WithField("component", "warcio.iterator"),
	}
}

// Close releases the underlying stream.
func (it *ArchiveIterator) Close() error {
	return it.owner.Close()
}

// Next advances to the next record, applying the type filter internally:
// records that do not match are skipped without being returned, and the
// loop continues until a matching record is found or the stream ends (io.EOF).
func (it *ArchiveIterator) Next(ctx context.Context) (*WarcRecord, error) {
	for {
		rec, skipped, err := it.next(ctx)
		if err != nil {
			return nil, err
		}
		if !skipped {
			return rec, nil
		}
	}
}

func (it *ArchiveIterator) next(ctx context.Context) (rec *WarcRecord, skipped bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// Step 1: reclaim the previous record's unread payload.
	if it.current != nil {
		if _, cerr := it.owner.Consume(-1); cerr != nil && !errors.Is(cerr, io.EOF) {
			return nil, false, cerr
		}
		it.owner.ResetLimit()
		it.owner.nextGeneration()
		it.current = nil
	}

	// Step 2+3: consume blank lines preceding the version line, recording
	// the start offset as Tell() immediately before the line that turns out
	// to be non-blank (the version line itself), so that startPos reflects
	// its real byte offset rather than the offset before the blank-line
	// run. On a block-compressed stream the member-granularity offset is
	// fixed for the whole record, so it's captured once up front instead.
	var startPos int64
	if it.cs != nil {
		startPos = it.cs.Tell()
	}

	var line string
	for {
		if it.cs == nil {
			startPos = it.owner.Tell()
		}
		raw, rerr := it.owner.ReadBytes(lf)
		if rerr != nil {
			if errors.Is(rerr, io.EOF) && strings.TrimRight(string(raw), sphtcrlf) == "" {
				return nil, false, io.EOF
			}
			if !errors.Is(rerr, io.EOF) {
				return nil, false, rerr
			}
		}
		trimmed := strings.TrimRight(string(raw), sphtcrlf)
		if trimmed != "" {
			line = trimmed
			break
		}
		if rerr != nil { // EOF with nothing but blank lines consumed
			return nil, false, io.EOF
		}
	}

	// Step 4: validate the version line.
	version, ok := warcVersionStringToVersion[strings.TrimPrefix(line, "WARC/")]
	if !ok || !strings.HasPrefix(line, "WARC/") {
		// Not a WARC version line at this position: defensive termination.
		return nil, false, io.EOF
	}

	record := newWarcRecord(version, it.opts)
	record.WarcHeaders.StatusLine = line
	record.streamPos = startPos

	// Step 5: parse the WARC header block.
	parser := &headerBlockParser{errSyntax: it.opts.errSyntax}
	pos := &position{}
	if err := parser.parse(it.owner, record.WarcHeaders, false, &record.validation, pos); err != nil {
		return nil, false, newMalformedRecordError(err.Error(), startPos)
	}

	// Step 6: extract Content-Length, WARC-Type, and HTTP-ness.
	contentLength, err := strconv.ParseInt(strings.TrimSpace(record.WarcHeaders.Get(ContentLength)), 10, 64)
	if err != nil || contentLength < 0 {
		if it.opts.strict {
			return nil, false, newMalformedRecordError("missing or invalid Content-Length", startPos)
		}
		it.log.WithError(err).Warn("malformed Content-Length, treating as 0")
		contentLength = 0
	}
	record.recordType = stringToRecordType(record.WarcHeaders.Get(WarcType))
	record.contentLength = contentLength
	ct := record.WarcHeaders.Get(ContentType)
	record.isHTTP = strings.HasPrefix(strings.ToLower(ct), "application/http")

	if it.opts.errSpec != ErrIgnore {
		validateHeader(record.WarcHeaders, record.recordType, version, &record.validation)
	}
	if (it.opts.errSyntax == ErrFail || it.opts.errSpec == ErrFail) && !record.validation.Valid() {
		return nil, false, newMalformedRecordError(record.validation.String(), startPos)
	}

	// Step 7: apply the type filter.
	if record.recordType&it.opts.recordTypeFilter == 0 {
		it.owner.SetLimit(contentLength)
		if _, err := it.owner.Consume(-1); err != nil && !errors.Is(err, io.EOF) {
			return nil, false, err
		}
		it.owner.ResetLimit()
		it.owner.nextGeneration()
		return nil, true, nil
	}

	// Step 8: bind the record's payload reader.
	it.owner.SetLimit(contentLength)
	record.reader = it.owner.handle()
	it.current = record

	// Step 9: optionally parse embedded HTTP headers.
	if it.opts.parseHTTP && record.isHTTP {
		if err := record.ParseHTTP(); err != nil {
			it.log.WithError(err).Warn("failed to parse embedded HTTP headers")
		}
	}

	return record, false, nil
}
