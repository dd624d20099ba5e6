// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package triage

import (
	"safechild/internal/database/repositories"
)

// DefaultBlacklistThreshold is the report count at which a location gets
// flagged for operator attention.
const DefaultBlacklistThreshold = 3

// Blacklist flags locations whose cumulative report count meets or exceeds a
// threshold. The set is recomputed fresh on every call; there is no caching
// or incremental maintenance. Acceptable at helpline volumes, revisit before
// any high-traffic deployment.
type Blacklist struct {
	repo      repositories.ReportRepository
	threshold int
}

// NewBlacklist creates a classifier with the given default threshold.
// Thresholds below 1 fall back to DefaultBlacklistThreshold.
func NewBlacklist(repo repositories.ReportRepository, threshold int) *Blacklist {
	if threshold < 1 {
		threshold = DefaultBlacklistThreshold
	}
	return &Blacklist{
		repo:      repo,
		threshold: threshold,
	}
}

// Locations returns the blacklisted location set at the configured threshold.
func (b *Blacklist) Locations() map[string]struct{} {
	return b.LocationsAt(b.threshold)
}

// LocationsAt returns the set of location strings with report count >=
// threshold. Matching is on the exact location string; empty locations are
// never flagged.
func (b *Blacklist) LocationsAt(threshold int) map[string]struct{} {
	counts := b.repo.CountByLocation()

	flagged := make(map[string]struct{})
	for location, count := range counts {
		if location == "" {
			continue
		}
		if count >= int64(threshold) {
			flagged[location] = struct{}{}
		}
	}
	return flagged
}

// Threshold returns the configured default threshold.
func (b *Blacklist) Threshold() int {
	return b.threshold
}
