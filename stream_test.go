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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemStream_readWriteTracksPosition(t *testing.T) {
	w := NewMemStreamWriter()
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, w.Tell())

	r := NewMemStream(w.Bytes())
	buf := make([]byte, 5)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
	assert.EqualValues(t, 5, r.Tell())
}

func Test_FileStream_createWriteReadTell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.warc")

	w, err := CreateFileStream(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	assert.EqualValues(t, len("payload"), w.Tell())
	require.NoError(t, w.Close())

	r, err := OpenFileStream(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	assert.Equal(t, path, r.Name())
}

func Test_CreateFileStream_refusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.warc")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := CreateFileStream(path)
	assert.Error(t, err)
}

func Test_FileStream_writeOnReadOnlyStreamFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.warc")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	r, err := OpenFileStream(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("y"))
	assert.ErrorIs(t, err, errInvalidSink)
}
