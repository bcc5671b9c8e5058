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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_validateHeader_illegalFieldForRecordType(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add(WarcFilename, "crawl.warc")
	validation := &Validation{}

	validateHeader(hm, Response, V1_1, validation)
	assert.False(t, validation.Valid(), "WARC-Filename is only legal on warcinfo records")
}

func Test_validateHeader_legalFieldPasses(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add(WarcFilename, "crawl.warc")
	validation := &Validation{}

	validateHeader(hm, Warcinfo, V1_1, validation)
	assert.True(t, validation.Valid())
}

func Test_validateHeader_malformedIPAddress(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add(WarcIPAddress, "not-an-ip")
	validation := &Validation{}

	validateHeader(hm, Response, V1_1, validation)
	assert.False(t, validation.Valid())
}

func Test_validateHeader_unknownFieldIgnored(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-Custom-Extension", "anything goes")
	validation := &Validation{}

	validateHeader(hm, Response, V1_1, validation)
	assert.True(t, validation.Valid())
}

func Test_pWarcID_requiresAngleBrackets(t *testing.T) {
	assert.Error(t, pWarcID("urn:uuid:missing-brackets"))
	assert.NoError(t, pWarcID("<urn:uuid:fine>"))
}

func Test_pLong_rejectsNonNumeric(t *testing.T) {
	assert.Error(t, pLong("not-a-number"))
	assert.NoError(t, pLong("12345"))
}
