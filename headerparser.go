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
	"bytes"
	"compress/flate"
	"compress/gzip"
	"errors"
	"io"
	"mime"
)

var errEndOfHeaders = errors.New("warcio: end of header block")

// lineSource is the minimal line-reading contract the header-block parser
// needs. Both *bufio.Reader and *bufferedReader satisfy it, so the parser
// runs identically over the WARC header block (read through the iterator's
// bufferedReader, so its bytes count toward Tell()) and over an embedded
// HTTP header block (read through a throwaway *bufio.Reader in ParseHTTP).
type lineSource interface {
	ReadBytes(delim byte) ([]byte, error)
	Peek(n int) ([]byte, error)
}

// headerBlockParser fills a HeaderMap from lines read off a BufferedReader,
// stopping at the first blank line (or EOF). It is stateless beyond the
// error policy carried in errSyntax.
type headerBlockParser struct {
	errSyntax errorPolicy
}

// parse consumes lines from r into hm until the blank-line terminator or EOF.
// If hasStatusLine is set, the first non-continuation line is captured as
// hm.StatusLine rather than parsed as a "name: value" pair. Non-fatal syntax
// problems (missing colon, missing CR, missing terminator) are recorded in
// validation per the configured error policy rather than aborting the parse,
// reflecting real-world WARC files being imperfect.
func (p *headerBlockParser) parse(r lineSource, hm *HeaderMap, hasStatusLine bool, validation *Validation, pos *position) error {
	for {
		line, nc, err := p.readLine(r, pos.incrLineNumber())
		if isFatalReadErr(err) {
			return err
		}

		if err == errEndOfHeaders {
			if len(line) == 0 {
				return nil
			}
			// Missing terminating newline on the final line: parse what we
			// have and stop, recording the omission.
			p.recordIssue(validation, NewSyntaxError("missing trailing newline", pos))
			p.consumeLine(hm, line, &hasStatusLine, validation, pos)
			return nil
		}
		if err != nil {
			p.recordIssue(validation, err)
		}
		if len(line) == 0 {
			// Blank line: end of header block.
			return nil
		}

		// Fold any continuation lines (leading SP/HT) into line.
		for nc == sp || nc == ht {
			var cont []byte
			cont, nc, err = p.readLine(r, pos.incrLineNumber())
			if isFatalReadErr(err) {
				return err
			}
			if err == errEndOfHeaders {
				line = append(line, ' ')
				line = append(line, bytes.TrimLeft(cont, sphtcrlf)...)
				p.consumeLine(hm, line, &hasStatusLine, validation, pos)
				return nil
			}
			if err != nil {
				p.recordIssue(validation, err)
			}
			line = append(line, ' ')
			line = append(line, bytes.TrimLeft(cont, sphtcrlf)...)
		}

		p.consumeLine(hm, line, &hasStatusLine, validation, pos)

		if nc == cr || nc == lf {
			// The next line is empty: consume and stop.
			marker, _, mErr := p.readLine(r, pos.incrLineNumber())
			if isFatalReadErr(mErr) {
				return mErr
			}
			if mErr != nil && mErr != errEndOfHeaders {
				p.recordIssue(validation, mErr)
			}
			if len(marker) != 0 {
				p.recordIssue(validation, NewSyntaxError("missing end-of-header-block marker", pos))
			}
			return nil
		}
	}
}

// consumeLine dispatches a fully-folded header-block line: status line,
// header field, or best-effort continuation if no colon is present.
func (p *headerBlockParser) consumeLine(hm *HeaderMap, line []byte, hasStatusLine *bool, validation *Validation, pos *position) {
	if line[0] == sp || line[0] == ht {
		hm.AddContinuation(string(bytes.TrimLeft(line, sphtcrlf)))
		return
	}
	if *hasStatusLine {
		hm.StatusLine = string(bytes.Trim(line, sphtcrlf))
		*hasStatusLine = false
		return
	}
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		// No colon: best-effort preservation of a malformed header as a
		// continuation of the previous one.
		p.recordIssue(validation, NewSyntaxError("missing ':' in header line", pos))
		hm.AddContinuation(string(bytes.Trim(line, sphtcrlf)))
		return
	}
	name := string(bytes.Trim(line[:idx], sphtcrlf))
	value := string(bytes.Trim(line[idx+1:], sphtcrlf))

	// RFC 2047 "encoded-word" decoding, matching the lenient real-world
	// handling of mail-style header continuations some WARC writers emit.
	if decoded, err := (&mime.WordDecoder{}).DecodeHeader(value); err == nil {
		value = decoded
	}
	hm.Add(name, value)
}

func (p *headerBlockParser) recordIssue(validation *Validation, err error) {
	if validation == nil {
		return
	}
	switch p.errSyntax {
	case ErrIgnore:
	case ErrWarn:
		validation.addError(err)
	case ErrFail:
		validation.addError(err)
	}
}

// readLine reads the next '\n'-terminated line, trims its terminator and any
// leading or trailing whitespace, and peeks the following byte so the caller can detect
// a continuation line without consuming it. A bare '\n' (no preceding '\r')
// is tolerated, not treated as a syntax error requiring abort.
func (p *headerBlockParser) readLine(r lineSource, pos *position) (line []byte, nextChar byte, err error) {
	line, err = r.ReadBytes('\n')
	if isFatalReadErr(err) {
		return bytes.Trim(line, sphtcrlf), 0, err
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errEndOfHeaders
		}
		return bytes.Trim(line, sphtcrlf), 0, err
	}

	line = bytes.Trim(line, sphtcrlf)
	n, e := r.Peek(1)
	if e != nil || len(n) == 0 {
		return line, 0, nil
	}
	return line, n[0], nil
}

func isFatalReadErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gzip.ErrChecksum) || errors.Is(err, gzip.ErrHeader) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var cie flate.CorruptInputError
	return errors.As(err, &cie)
}
