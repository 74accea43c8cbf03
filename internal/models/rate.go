// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package models

import (
	"math"

	"github.com/goccy/go-json"
)

// Rate is a ratio that may legitimately be +Inf (completions recorded against
// zero views). JSON has no representation for +Inf, so Rate marshals it as
// null and restores +Inf on load. Persisted snapshots therefore round-trip
// the sentinel exactly.
type Rate float64

// RateInf is the sentinel rate for a nonzero numerator over a zero denominator.
var RateInf = Rate(math.Inf(1))

// Ratio computes num/den with the zero-denominator sentinel: den == 0 yields
// +Inf when num > 0 and 0 otherwise.
func Ratio(num, den float64) Rate {
	if den == 0 {
		if num > 0 {
			return RateInf
		}
		return 0
	}
	return Rate(num / den)
}

// IsInf reports whether the rate is the +Inf sentinel.
func (r Rate) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

// MarshalJSON encodes +Inf as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON decodes null back to +Inf.
func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RateInf
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Rate(f)
	return nil
}
