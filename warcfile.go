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
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/tsdb/fileutil"
	"github.com/sirupsen/logrus"

	"github.com/nlevold/warcio/internal"
	"github.com/nlevold/warcio/internal/timestamp"
)

// WarcFileReader is the high-level, whole-file counterpart of
// ArchiveIterator: it opens name, wraps it in gzip decompression if the name
// ends in ".gz" (as ".warc.gz" does), and exposes the same Next(ctx) loop.
// The file's content is not sniffed for gzip magic bytes. Grounded on the teacher's
// warcfile.go WarcFileReader.
type WarcFileReader struct {
	file *FileStream
	it   *ArchiveIterator
}

// OpenWarcFile opens name for reading, auto-detecting gzip framing from the
// file extension.
func OpenWarcFile(name string, opts ...Option) (*WarcFileReader, error) {
	f, err := OpenFileStream(name)
	if err != nil {
		return nil, err
	}

	var stream Stream = f
	if isGzipName(name) {
		stream = NewGzipMemberReader(f)
	}

	return &WarcFileReader{file: f, it: NewArchiveIterator(stream, opts...)}, nil
}

func isGzipName(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".gz"
}

// Next returns the next matching record, or io.EOF at the end of the file.
func (r *WarcFileReader) Next(ctx context.Context) (*WarcRecord, error) {
	return r.it.Next(ctx)
}

// Close releases the underlying file.
func (r *WarcFileReader) Close() error {
	return r.it.Close()
}

// WarcFileWriterOptions configures file rotation for a WarcFileWriter.
// Grounded on the teacher's singleWarcFileWriter options (WithMaxFileSize,
// compress, naming pattern).
type WarcFileWriterOptions struct {
	// Dir is the directory new files are created in.
	Dir string
	// Prefix names the crawl/collection, used in the filename pattern.
	Prefix string
	// MaxFileSize rotates to a new file once the current one reaches this
	// size; 0 means never rotate.
	MaxFileSize int64
	// Compress wraps each record in its own gzip member (the WARC.gz
	// convention) when true.
	Compress bool
}

// WarcFileWriter writes records to a sequence of rotated WARC files,
// finalizing each one with an atomic rename off an ".open" suffix so a
// reader never observes a partially-written file. Grounded on the teacher's
// singleWarcFileWriter / warcfile.go close().
type WarcFileWriter struct {
	opts WarcFileWriterOptions
	wopt *options

	current     *FileStream
	currentCS   CompressingStream
	currentName string
	serial      int
	log         *logrus.Entry
}

// NewWarcFileWriter constructs a writer; the first file is created lazily on
// the first WriteRecord call.
func NewWarcFileWriter(fileOpts WarcFileWriterOptions, opts ...Option) *WarcFileWriter {
	return &WarcFileWriter{
		opts: fileOpts,
		wopt: newOptions(opts...),
		log:  logrus.WithField("component", "warcio.warcfile"),
	}
}

// WriteRecord writes rec to the current file, rotating first if the current
// file has already reached the configured MaxFileSize.
func (w *WarcFileWriter) WriteRecord(rec *WarcRecord, checksumData bool) (int64, error) {
	if w.current == nil {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	} else if w.opts.MaxFileSize > 0 && w.current.Tell() >= w.opts.MaxFileSize {
		if err := w.finalizeCurrent(); err != nil {
			return 0, err
		}
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	var out io.Writer = w.current
	if w.currentCS != nil {
		out = w.currentCS
	}
	return rec.Write(out, checksumData, 16384)
}

func (w *WarcFileWriter) rotate() error {
	w.serial++
	name := internal.Sprintt("%{prefix}s-%{ts}s-%{serial}05d-%{host}s.warc%{ext}s", map[string]interface{}{
		"prefix": w.opts.Prefix,
		"ts":     timestamp.UTCNow14(),
		"serial": w.serial,
		"host":   internal.GetHostNameOrIP(),
		"ext":    extFor(w.opts.Compress),
	})
	path := filepath.Join(w.opts.Dir, name)

	f, err := CreateFileStream(path + ".open")
	if err != nil {
		return fmt.Errorf("warcio: create %s: %w", path, err)
	}
	w.current = f
	w.currentName = path
	if w.opts.Compress {
		w.currentCS = NewGzipMemberWriter(f, 0)
	} else {
		w.currentCS = nil
	}
	return nil
}

func extFor(compress bool) string {
	if compress {
		return ".gz"
	}
	return ""
}

// finalizeCurrent closes the current file and atomically strips its
// ".open" suffix via prometheus/tsdb's fileutil.Rename, matching the
// teacher's close() behavior of never leaving a half-written filename
// visible to a concurrent reader.
func (w *WarcFileWriter) finalizeCurrent() error {
	if w.current == nil {
		return nil
	}
	if err := w.current.Close(); err != nil {
		return err
	}
	if err := fileutil.Rename(w.current.Name(), w.currentName); err != nil {
		return fmt.Errorf("warcio: finalize %s: %w", w.currentName, err)
	}
	w.log.WithField("file", w.currentName).Info("finalized WARC file")
	w.current = nil
	w.currentCS = nil
	return nil
}

// Close finalizes the current file, if any.
func (w *WarcFileWriter) Close() error {
	return w.finalizeCurrent()
}
