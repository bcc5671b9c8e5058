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

// Package timestamp formats and parses the compact numeric timestamp used
// to name rotated WARC files (the %{ts}s token in WarcFileWriter's rotation
// pattern), distinct from the WARC-Date header's RFC3339 format.
package timestamp

import "time"

// compactLayout is the filename-safe timestamp format: yyyyMMddHHmmss, UTC.
const compactLayout = "20060102150405"

// To14 reparses an RFC3339 timestamp into the compact filename format.
func To14(s string) (string, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return t.Format(compactLayout), nil
}

// From14ToTime parses a compact filename timestamp back into a time.Time.
func From14ToTime(s string) (time.Time, error) {
	return time.Parse(compactLayout, s)
}

// UTCNow14 is the current time in the compact filename format, used by
// WarcFileWriter.rotate to name each newly created file.
func UTCNow14() string {
	return time.Now().UTC().Format(compactLayout)
}
