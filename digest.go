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
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// digestEncoding selects how a hash sum is rendered in a WARC-Block-Digest /
// WARC-Payload-Digest header value.
type digestEncoding int8

const (
	Base16 digestEncoding = iota
	Base32
	Base64
)

// newHash constructs the hash.Hash for a digest algorithm token as found in
// a "alg:digest" header value. Supported per §6: sha1, md5, sha256. sha512 is
// accepted as a superset convenience, grounded on the teacher's digest.go
// algorithm table.
func newHash(alg string) (hash.Hash, error) {
	switch strings.ToLower(alg) {
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("warcio: unsupported digest algorithm %q", alg)
	}
}

// detectEncoding guesses how a digest string is encoded from its characters
// and its length versus the hash's raw byte size. '+' and '/' occur only in
// base64. For each supported algorithm the hex, base64 and padded base32
// lengths differ, except that MD5's hex and padded base32 forms are both 32
// characters long; there the string is taken as hex only if it decodes as hex.
func detectEncoding(alg string, encoded string) digestEncoding {
	if strings.ContainsAny(encoded, "+/") {
		return Base64
	}
	h, err := newHash(alg)
	if err != nil {
		return Base32
	}
	rawLen := h.Size()
	switch len(encoded) {
	case hex.EncodedLen(rawLen):
		if _, err := hex.DecodeString(encoded); err == nil {
			return Base16
		}
	case base64.StdEncoding.EncodedLen(rawLen):
		return Base64
	}
	return Base32
}

func decodeDigest(alg, encoded string) ([]byte, error) {
	switch detectEncoding(alg, encoded) {
	case Base16:
		return hex.DecodeString(encoded)
	case Base64:
		return base64.StdEncoding.DecodeString(encoded)
	default:
		return base32.StdEncoding.DecodeString(strings.ToUpper(encoded))
	}
}

func encodeDigest(enc digestEncoding, sum []byte) string {
	switch enc {
	case Base16:
		return hex.EncodeToString(sum)
	case Base64:
		return base64.StdEncoding.EncodeToString(sum)
	default:
		return base32.StdEncoding.EncodeToString(sum)
	}
}

// digest pairs a hash.Hash with the algorithm token used to name it in a
// WARC-Block-Digest/WARC-Payload-Digest value.
type digest struct {
	alg string
	h   hash.Hash
}

func newDigest(alg string) (*digest, error) {
	h, err := newHash(alg)
	if err != nil {
		return nil, err
	}
	return &digest{alg: alg, h: h}, nil
}

// newDigestFromField parses a "alg:encoded-digest" header value, returning
// the algorithm, the decoded raw bytes to compare against, and the encoding
// so a freshly-computed sum can be rendered the same way.
func newDigestFromField(value string) (alg string, want []byte, enc digestEncoding, err error) {
	idx := strings.IndexByte(value, ':')
	if idx < 0 {
		return "", nil, 0, fmt.Errorf("warcio: malformed digest field %q", value)
	}
	alg = value[:idx]
	encoded := value[idx+1:]
	enc = detectEncoding(alg, encoded)
	want, err = decodeDigest(alg, encoded)
	return
}

// field renders alg:encoded(sum) as it belongs in a digest header value.
func (d *digest) field(enc digestEncoding) string {
	return d.alg + ":" + encodeDigest(enc, d.h.Sum(nil))
}

// digestTeeReader wraps an io.Reader, feeding every byte read through one or
// more hashes while also copying it into buf, so the payload can be
// re-delivered to the caller after verification completes. Grounded on the
// teacher's digestFilterReader / revisitblock.go tee pattern (§4.3, §9
// "Digest tee").
type digestTeeReader struct {
	src     io.Reader
	buf     io.Writer
	digests []*digest
}

func newDigestTeeReader(src io.Reader, buf io.Writer, digests ...*digest) *digestTeeReader {
	return &digestTeeReader{src: src, buf: buf, digests: digests}
}

func (t *digestTeeReader) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		if _, werr := t.buf.Write(p[:n]); werr != nil {
			return n, werr
		}
		for _, d := range t.digests {
			d.h.Write(p[:n])
		}
	}
	return n, err
}
