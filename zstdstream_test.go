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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ZstdMemberStream_roundTripsOneFramePerRecord(t *testing.T) {
	mem := NewMemStreamWriter()
	zw, err := NewZstdMemberWriter(mem)
	require.NoError(t, err)

	for _, body := range []string{"hello", "world"} {
		r := newTestRecord(body)
		require.NoError(t, r.InitHeaders(int64(len(body)), Resource, ""))
		r.SetBytesContent([]byte(body))
		_, err := r.Write(zw, false, 0)
		require.NoError(t, err)
	}
	// Each record's own EndMember already flushed its frame; Close beyond
	// that is best-effort cleanup, not load-bearing for what was written.
	_ = zw.Close()

	zr, err := NewZstdMemberReader(NewMemStream(mem.Bytes()))
	require.NoError(t, err)
	it := NewArchiveIterator(zr)
	defer it.Close()

	var bodies []string
	for {
		rec, err := it.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(rec.Reader())
		require.NoError(t, err)
		bodies = append(bodies, string(b))
	}

	assert.Equal(t, []string{"hello", "world"}, bodies)
}
