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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HeaderMap_caseInsensitiveGet(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("Content-Type", "text/plain")

	assert.Equal(t, "text/plain", hm.Get("content-type"))
	assert.Equal(t, "text/plain", hm.Get("CONTENT-TYPE"))
	assert.True(t, hm.Has("Content-Type"))
	assert.False(t, hm.Has("X-Missing"))
}

func Test_HeaderMap_Add_preservesDuplicates(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-Multi", "a")
	hm.Add("X-Multi", "b")

	assert.Equal(t, []string{"a", "b"}, hm.GetAll("X-Multi"))
	assert.Equal(t, "a", hm.Get("X-Multi"))
	assert.Equal(t, 2, hm.Len())
}

func Test_HeaderMap_Set_replacesFirstDropsRest(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-Multi", "a")
	hm.Add("X-Multi", "b")
	hm.Set("X-Multi", "c")

	assert.Equal(t, []string{"c"}, hm.GetAll("X-Multi"))
}

func Test_HeaderMap_Set_appendsWhenAbsent(t *testing.T) {
	hm := &HeaderMap{}
	hm.Set("X-New", "v")
	assert.Equal(t, "v", hm.Get("X-New"))
}

func Test_HeaderMap_Delete(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-A", "1")
	hm.Add("X-B", "2")
	hm.Delete("X-A")

	assert.False(t, hm.Has("X-A"))
	assert.True(t, hm.Has("X-B"))
}

func Test_HeaderMap_AddContinuation_foldsIntoPrevious(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-Long", "first")
	hm.AddContinuation("second")

	assert.Equal(t, "first second", hm.Get("X-Long"))
}

func Test_HeaderMap_AddContinuation_withNoPriorField(t *testing.T) {
	hm := &HeaderMap{}
	hm.AddContinuation("orphan")

	assert.Equal(t, "orphan", hm.Get(""))
}

func Test_HeaderMap_Write_and_String(t *testing.T) {
	hm := &HeaderMap{StatusLine: "WARC/1.1"}
	hm.Add("WARC-Type", "warcinfo")
	hm.Add("Content-Length", "5")

	var sb strings.Builder
	n, err := hm.Write(&sb)
	require.NoError(t, err)
	assert.EqualValues(t, n, sb.Len())
	assert.Equal(t, "WARC-Type: warcinfo\r\nContent-Length: 5\r\n", sb.String())

	assert.Equal(t, "WARC/1.1\r\nWARC-Type: warcinfo\r\nContent-Length: 5\r\n", hm.String())
}

func Test_HeaderMap_Sort(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("WARC-Type", "warcinfo")
	hm.Add("Content-Length", "5")
	hm.Sort()

	names := make([]string, 0, 2)
	for _, nv := range hm.All() {
		names = append(names, nv.Name)
	}
	assert.Equal(t, []string{"Content-Length", "WARC-Type"}, names)
}

func Test_HeaderMap_Decoded_cachesUntilMutated(t *testing.T) {
	hm := &HeaderMap{}
	hm.Add("X-A", "1")

	d1 := hm.Decoded(nil)
	d2 := hm.Decoded(nil)
	assert.Equal(t, d1, d2)

	hm.Add("X-B", "2")
	d3 := hm.Decoded(nil)
	assert.Len(t, d3, 2)
}
