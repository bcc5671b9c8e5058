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

// Package warcio implements a streaming reader and writer for the Web ARChive
// (WARC) file format, versions 1.0 and 1.1 (ISO 28500).
//
// A WarcFileReader drives an ArchiveIterator across a possibly gzip-member-compressed
// stream, yielding one WarcRecord at a time without materializing the whole
// record in memory. A WarcRecord exposes its WARC header fields, an optional
// parsed HTTP header block, and a reader limited to the remaining payload.
// A WarcFileWriter serializes records back out, either by passthrough of an
// already-framed record or by re-materializing the block to recompute
// Content-Length and digests.
package warcio
