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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_bufferedReader_ReadRespectsLimit(t *testing.T) {
	b := newBufferedReader(strings.NewReader("hello world"))
	b.SetLimit(5)

	buf := make([]byte, 100)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	_, err = b.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	b.ResetLimit()
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, " world", string(buf[:n]))
}

func Test_bufferedReader_ReadLine_cutOffByLimitIsRedeliveredAfterReset(t *testing.T) {
	b := newBufferedReader(strings.NewReader("abcdefgh\nmore\n"))
	b.SetLimit(5)

	line, err := b.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(line))

	// The limit cut the line short; the remainder ("fgh\n") must be held
	// back and redelivered rather than silently dropped once the limit
	// lifts, since bufio.Reader.UnreadByte cannot push back more than one
	// byte at a time.
	b.ResetLimit()
	line, err = b.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "fgh\n", string(line))

	line, err = b.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "more\n", string(line))
}

func Test_bufferedReader_ConsumeDiscardsBytes(t *testing.T) {
	b := newBufferedReader(strings.NewReader("0123456789"))
	n, err := b.Consume(4)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	rest, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))
}

func Test_bufferedReader_Tell(t *testing.T) {
	b := newBufferedReader(strings.NewReader("0123456789"))
	buf := make([]byte, 3)
	_, err := b.Read(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 3, b.Tell())
}

func Test_recordReader_staleAfterGenerationAdvances(t *testing.T) {
	b := newBufferedReader(strings.NewReader("0123456789"))
	handle := b.handle()

	buf := make([]byte, 3)
	_, err := handle.Read(buf)
	require.NoError(t, err)

	b.nextGeneration()
	_, err = handle.Read(buf)
	assert.ErrorIs(t, err, errStaleRecord)

	_, err = handle.ReadLine()
	assert.ErrorIs(t, err, errStaleRecord)
}
