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

package timestamp_test

import (
	"testing"
	"time"

	"github.com/nlevold/warcio/internal/timestamp"
)

type testData struct {
	time        time.Time
	iso8601Date string
	compact14   string
	invalidDate string
}

func newTestData() testData {
	return testData{
		time:        time.Date(2020, 1, 5, 10, 44, 25, 0, time.UTC),
		iso8601Date: "2020-01-05T10:44:25Z",
		compact14:   "20200105104425",
		invalidDate: "ThisIsNotADate20200303",
	}
}

func TestTo14SucceedsOnValidString(t *testing.T) {
	data := newTestData()

	output, err := timestamp.To14(data.iso8601Date)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if output != data.compact14 {
		t.Errorf("To14() = %s, want %s", output, data.compact14)
	}
}

func TestTo14ErrorOnInvalidString(t *testing.T) {
	data := newTestData()

	if _, err := timestamp.To14(data.invalidDate); err == nil {
		t.Errorf("expected an error parsing %q", data.invalidDate)
	}
}

func TestFrom14ToTimeSucceedsOnValidString(t *testing.T) {
	data := newTestData()

	ts, err := timestamp.From14ToTime(data.compact14)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !ts.Equal(data.time) {
		t.Errorf("From14ToTime() = %s, want %s", ts, data.time)
	}
}

func TestUTCNow14IsCloseToNowAndRoundTrips(t *testing.T) {
	got := timestamp.UTCNow14()

	parsed, err := timestamp.From14ToTime(got)
	if err != nil {
		t.Fatalf("UTCNow14() produced an unparseable timestamp %q: %s", got, err)
	}
	if d := time.Since(parsed); d < 0 || d > time.Minute {
		t.Errorf("UTCNow14() = %s, not close to now (delta %s)", got, d)
	}
}
