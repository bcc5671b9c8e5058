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
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_newOptions_defaults(t *testing.T) {
	o := newOptions()
	assert.False(t, o.strict)
	assert.Equal(t, ErrWarn, o.errSyntax)
	assert.Equal(t, AnyType, o.recordTypeFilter)
	assert.Equal(t, "sha1", o.defaultDigestAlgorithm)
	assert.True(t, o.parseHTTP)
}

func Test_WithStrict_escalatesErrorPolicies(t *testing.T) {
	o := newOptions(WithStrict(true))
	assert.True(t, o.strict)
	assert.Equal(t, ErrFail, o.errSyntax)
	assert.Equal(t, ErrFail, o.errSpec)
	assert.Equal(t, ErrFail, o.errUnknownRecordType)
}

func Test_WithRecordTypeFilter(t *testing.T) {
	o := newOptions(WithRecordTypeFilter(Response | Request))
	assert.Equal(t, Response|Request, o.recordTypeFilter)
}

func Test_WithClock(t *testing.T) {
	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	o := newOptions(WithClock(func() time.Time { return fixed }))
	assert.Equal(t, fixed, o.clock())
}

func Test_WithRecordIDFunc(t *testing.T) {
	o := newOptions(WithRecordIDFunc(func() (string, error) { return "<urn:uuid:fixed>", nil }))
	id, err := o.recordIDFunc()
	assert.NoError(t, err)
	assert.Equal(t, "<urn:uuid:fixed>", id)
}

func Test_WithDefaultDigestAlgorithm(t *testing.T) {
	o := newOptions(WithDefaultDigestAlgorithm("sha256"))
	assert.Equal(t, "sha256", o.defaultDigestAlgorithm)
}
