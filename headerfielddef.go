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
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nlnwa/whatwg-url/url"
)

// Well-known WARC header field names.
const (
	WarcType                  = "WARC-Type"
	WarcRecordID              = "WARC-Record-ID"
	WarcDate                  = "WARC-Date"
	ContentLength             = "Content-Length"
	ContentType               = "Content-Type"
	WarcConcurrentTo          = "WARC-Concurrent-To"
	WarcBlockDigest           = "WARC-Block-Digest"
	WarcPayloadDigest         = "WARC-Payload-Digest"
	WarcIPAddress             = "WARC-IP-Address"
	WarcRefersTo              = "WARC-Refers-To"
	WarcTargetURI             = "WARC-Target-URI"
	WarcTruncated             = "WARC-Truncated"
	WarcWarcinfoID            = "WARC-Warcinfo-ID"
	WarcFilename              = "WARC-Filename"
	WarcProfile               = "WARC-Profile"
	WarcIdentifiedPayloadType = "WARC-Identified-Payload-Type"
	WarcSegmentNumber         = "WARC-Segment-Number"
	WarcSegmentOriginID       = "WARC-Segment-Origin-ID"
	WarcSegmentTotalLength    = "WARC-Segment-Total-Length"
)

// fieldValidator checks a single field value for well-formedness, returning
// a non-nil error describing the violation.
type fieldValidator func(value string) error

type fieldDef struct {
	name         string
	legalRecords RecordType // bitset of record types this field may occur on; AnyType if unrestricted
	legalFrom    *WarcVersion
	validate     fieldValidator
}

var fieldDefs = map[string]*fieldDef{
	WarcType:                  {WarcType, AnyType, V1_0, pWarcType},
	WarcRecordID:              {WarcRecordID, AnyType, V1_0, pWarcID},
	WarcDate:                  {WarcDate, AnyType, V1_0, pTime},
	ContentLength:             {ContentLength, AnyType, V1_0, pLong},
	ContentType:               {ContentType, AnyType, V1_0, pString},
	WarcConcurrentTo:          {WarcConcurrentTo, Response | Resource | Request | Metadata | Revisit | Conversion | Continuation, V1_0, pWarcID},
	WarcBlockDigest:           {WarcBlockDigest, AnyType, V1_0, pDigest},
	WarcPayloadDigest:         {WarcPayloadDigest, Response | Resource | Request | Conversion | Revisit, V1_0, pDigest},
	WarcIPAddress:             {WarcIPAddress, Response | Resource | Request | Metadata | Revisit, V1_0, pIP},
	WarcRefersTo:              {WarcRefersTo, Metadata | Revisit | Conversion, V1_0, pWarcID},
	WarcTargetURI:             {WarcTargetURI, Response | Resource | Request | Metadata | Revisit | Conversion, V1_0, pURI},
	WarcTruncated:             {WarcTruncated, AnyType, V1_0, pTruncReason},
	WarcWarcinfoID:            {WarcWarcinfoID, AnyType, V1_0, pWarcID},
	WarcFilename:              {WarcFilename, Warcinfo, V1_0, pString},
	WarcProfile:               {WarcProfile, Revisit, V1_0, pURI},
	WarcIdentifiedPayloadType: {WarcIdentifiedPayloadType, Response | Resource | Request | Conversion, V1_0, pString},
	WarcSegmentNumber:         {WarcSegmentNumber, AnyType, V1_0, pInt},
	WarcSegmentOriginID:       {WarcSegmentOriginID, Continuation, V1_0, pWarcID},
	WarcSegmentTotalLength:    {WarcSegmentTotalLength, Continuation, V1_0, pLong},
}

// checkLegal reports whether a field occurring on a record of type rt,
// written under version v, is legal per its definition.
func checkLegal(def *fieldDef, rt RecordType, v *WarcVersion) error {
	if def.legalRecords != AnyType && def.legalRecords&rt == 0 {
		return newHeaderFieldErrorf(def.name, "not legal on record type %s", rt)
	}
	if v != nil && def.legalFrom != nil && v.id < def.legalFrom.id {
		return newHeaderFieldErrorf(def.name, "requires %s or later", def.legalFrom)
	}
	return nil
}

// validateHeader runs every known field's validator over the values present
// in hm, appending problems to validation rather than aborting. Unknown
// field names are not validated (the format allows caller-defined headers).
func validateHeader(hm *HeaderMap, rt RecordType, v *WarcVersion, validation *Validation) {
	for _, nv := range hm.All() {
		def, ok := fieldDefs[strings.ToLower(nv.Name)]
		if !ok {
			def = fieldDefsByLowerName[strings.ToLower(nv.Name)]
		}
		if def == nil {
			continue
		}
		if err := checkLegal(def, rt, v); err != nil {
			validation.addError(err)
			continue
		}
		if def.validate != nil {
			if err := def.validate(nv.Value); err != nil {
				validation.addError(newHeaderFieldError(def.name, err.Error()))
			}
		}
	}
}

// fieldDefsByLowerName mirrors fieldDefs keyed by lower-cased field name,
// since header field names are matched case-insensitively on the wire but
// fieldDefs is keyed by canonical spelling for readability above.
var fieldDefsByLowerName = func() map[string]*fieldDef {
	m := make(map[string]*fieldDef, len(fieldDefs))
	for _, def := range fieldDefs {
		m[strings.ToLower(def.name)] = def
	}
	return m
}()

func pString(string) error { return nil }

func pInt(value string) error {
	_, err := strconv.Atoi(value)
	return err
}

func pLong(value string) error {
	_, err := strconv.ParseInt(value, 10, 64)
	return err
}

func pURI(value string) error {
	v := strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
	_, err := url.Parse(v)
	return err
}

func pIP(value string) error {
	if net.ParseIP(value) == nil {
		return newHeaderFieldError(WarcIPAddress, "not a valid IP address")
	}
	return nil
}

func pTime(value string) error {
	_, err := time.Parse(time.RFC3339, value)
	return err
}

// pWarcType never rejects a value: unrecognized WARC-Type tokens are legal
// on the wire and simply map to Unknown (see stringToRecordType).
func pWarcType(value string) error {
	return nil
}

func pWarcID(value string) error {
	if !strings.HasPrefix(value, "<") || !strings.HasSuffix(value, ">") {
		return newHeaderFieldError("", "WARC-ID value must be enclosed in '<' '>'")
	}
	return nil
}

func pDigest(value string) error {
	idx := strings.IndexByte(value, ':')
	if idx < 0 {
		return newHeaderFieldError("", "digest value must be of form alg:digest")
	}
	return nil
}

var truncReasons = map[string]bool{
	"length": true, "time": true, "disconnect": true, "unspecified": true,
}

// pTruncReason never rejects a value: unregistered reasons are tolerated,
// matching the format's allowance for extension tokens. truncReasons is
// retained for callers that want to check registered-ness explicitly.
func pTruncReason(value string) error {
	return nil
}
