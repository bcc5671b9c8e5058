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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRecord(t *testing.T, w *WarcFileWriter, body string) {
	t.Helper()
	r := newWarcRecord(V1_1, newOptions())
	require.NoError(t, r.InitHeaders(int64(len(body)), Resource, ""))
	r.SetBytesContent([]byte(body))
	_, err := w.WriteRecord(r, false)
	require.NoError(t, err)
}

func Test_WarcFileWriter_finalizesWithoutOpenSuffix(t *testing.T) {
	dir := t.TempDir()
	w := NewWarcFileWriter(WarcFileWriterOptions{Dir: dir, Prefix: "test"})

	writeTestRecord(t, w, "hello")
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), ".open")

	path := filepath.Join(dir, entries[0].Name())
	rd, err := OpenWarcFile(path)
	require.NoError(t, err)
	defer rd.Close()

	rec, err := rd.Next(context.Background())
	require.NoError(t, err)
	body, err := io.ReadAll(rec.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func Test_WarcFileWriter_rotatesAtMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	w := NewWarcFileWriter(WarcFileWriterOptions{Dir: dir, Prefix: "test", MaxFileSize: 1})

	writeTestRecord(t, w, "first")
	writeTestRecord(t, w, "second")
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "each record should have forced a rotation to a new file")
}

func Test_OpenWarcFile_detectsGzipByExtension(t *testing.T) {
	dir := t.TempDir()
	w := NewWarcFileWriter(WarcFileWriterOptions{Dir: dir, Prefix: "test", Compress: true})

	writeTestRecord(t, w, "compressed body")
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".gz", filepath.Ext(entries[0].Name()))

	rd, err := OpenWarcFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	defer rd.Close()

	rec, err := rd.Next(context.Background())
	require.NoError(t, err)
	body, err := io.ReadAll(rec.Reader())
	require.NoError(t, err)
	assert.Equal(t, "compressed body", string(body))
}
