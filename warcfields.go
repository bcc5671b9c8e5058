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
	"fmt"
	"io"
	"sort"
	"strings"
)

// NameValue is a single header field as it appeared on the wire: the name is
// kept verbatim (not case-folded) so re-serialization is byte-faithful.
type NameValue struct {
	Name  string
	Value string
}

// HeaderMap is an ordered, case-insensitive multimap of header fields, used
// both for the WARC header block and, after ParseHTTP, for the embedded HTTP
// header block. Iteration order always equals insertion order.
type HeaderMap struct {
	// StatusLine is the first line of the header block: "WARC/1.1" for WARC
	// headers, "HTTP/1.1 200 OK" for HTTP headers. Empty if none was captured.
	StatusLine string

	fields  []*NameValue
	decoded map[string][]string // cache of the read-through view; nil when stale
}

// Get returns the first value associated with name, case-insensitively, or
// "" if the field is absent.
func (h *HeaderMap) Get(name string) string {
	for _, nv := range h.fields {
		if strings.EqualFold(nv.Name, name) {
			return nv.Value
		}
	}
	return ""
}

// GetAll returns every value associated with name, in insertion order.
func (h *HeaderMap) GetAll(name string) []string {
	var result []string
	for _, nv := range h.fields {
		if strings.EqualFold(nv.Name, name) {
			result = append(result, nv.Value)
		}
	}
	return result
}

// Has reports whether name occurs at least once.
func (h *HeaderMap) Has(name string) bool {
	for _, nv := range h.fields {
		if strings.EqualFold(nv.Name, name) {
			return true
		}
	}
	return false
}

// Add always appends a new (name, value) pair, even if name already exists.
func (h *HeaderMap) Add(name, value string) {
	h.fields = append(h.fields, &NameValue{Name: name, Value: value})
	h.decoded = nil
}

// AddContinuation folds a continuation line into the previous field's value,
// per the header-block parser's continuation rule. If there is no previous
// field, a synthetic pair with an empty name is created, matching the lenient
// best-effort handling real-world WARC files require.
func (h *HeaderMap) AddContinuation(trimmed string) {
	if len(h.fields) == 0 {
		h.fields = append(h.fields, &NameValue{Name: "", Value: trimmed})
	} else {
		last := h.fields[len(h.fields)-1]
		last.Value = last.Value + " " + trimmed
	}
	h.decoded = nil
}

// Set replaces the first occurrence of name with value and removes any
// subsequent duplicates; if name is absent, it is appended.
func (h *HeaderMap) Set(name, value string) {
	isSet := false
	result := h.fields[:0]
	for _, nv := range h.fields {
		if strings.EqualFold(nv.Name, name) {
			if isSet {
				continue
			}
			nv.Value = value
			isSet = true
		}
		result = append(result, nv)
	}
	h.fields = result
	if !isSet {
		h.fields = append(h.fields, &NameValue{Name: name, Value: value})
	}
	h.decoded = nil
}

// Delete removes every occurrence of name.
func (h *HeaderMap) Delete(name string) {
	var result []*NameValue
	for _, nv := range h.fields {
		if !strings.EqualFold(nv.Name, name) {
			result = append(result, nv)
		}
	}
	h.fields = result
	h.decoded = nil
}

// All returns the ordered list of fields. Callers must not mutate it.
func (h *HeaderMap) All() []*NameValue {
	return h.fields
}

// Len returns the number of fields, including duplicates.
func (h *HeaderMap) Len() int {
	return len(h.fields)
}

// Sort orders fields by name, stably, for byte-for-byte-deterministic output
// where that is wanted (not used by the writer, which preserves insertion
// order per the framing rules).
func (h *HeaderMap) Sort() {
	sort.SliceStable(h.fields, func(i, j int) bool {
		return h.fields[i].Name < h.fields[j].Name
	})
}

// Decoded returns a read-through map[name][]values view, decoded under the
// given charset decoder (nil means "no decoding", i.e. treat bytes as the
// Go string they already are). The view is cached and invalidated on any
// mutating call above.
func (h *HeaderMap) Decoded(decode func(string) string) map[string][]string {
	if h.decoded != nil {
		return h.decoded
	}
	m := make(map[string][]string, len(h.fields))
	for _, nv := range h.fields {
		v := nv.Value
		if decode != nil {
			v = decode(v)
		}
		m[nv.Name] = append(m[nv.Name], v)
	}
	h.decoded = m
	return m
}

// Write serializes the fields (not the status line) in insertion order as
// "Name: Value\r\n" pairs.
func (h *HeaderMap) Write(w io.Writer) (bytesWritten int64, err error) {
	var n int
	for _, field := range h.fields {
		n, err = fmt.Fprintf(w, "%s: %s\r\n", field.Name, field.Value)
		bytesWritten += int64(n)
		if err != nil {
			return
		}
	}
	return
}

func (h *HeaderMap) String() string {
	sb := &strings.Builder{}
	if h.StatusLine != "" {
		sb.WriteString(h.StatusLine)
		sb.WriteString("\r\n")
	}
	_, _ = h.Write(sb)
	return sb.String()
}
