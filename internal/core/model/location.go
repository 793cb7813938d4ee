// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import "strings"

// LocationSeparator separates the segments of a location path,
// e.g. "Orange, California, United States".
const LocationSeparator = ", "

// LocationKind tags the shape of a parsed location path.
type LocationKind int

const (
	// LocationUnqualified is any path that is not 2 or 3 segments long. It never
	// matches a region, so resolution stays at the country level.
	LocationUnqualified LocationKind = iota
	// LocationSubdivision is "Region, Country" and selects a first-level subdivision.
	LocationSubdivision
	// LocationLeaf is "Region, Subregion1, Country" and selects a region by its
	// name and parent subdivision.
	LocationLeaf
)

// Location is a location path parsed by segment count.
//
// Segment names cannot contain the separator: there is no escaping, so a name
// such as "Korea, South" shifts the segment count and the path is interpreted
// positionally as written.
type Location struct {
	Kind       LocationKind
	Region     string // First segment for Subdivision and Leaf.
	Subregion1 string // Middle segment, Leaf only.
	Country    string // Last segment for Subdivision and Leaf.
}

// ParseLocation splits a path on LocationSeparator and tags it by segment count.
func ParseLocation(path string) Location {
	parts := strings.Split(path, LocationSeparator)
	switch len(parts) {
	case 3:
		return LeafLocation(parts[0], parts[1], parts[2])
	case 2:
		return SubdivisionLocation(parts[0], parts[1])
	default:
		return Location{Kind: LocationUnqualified}
	}
}

// LeafLocation builds a three-segment location.
func LeafLocation(region, subregion1, country string) Location {
	return Location{Kind: LocationLeaf, Region: region, Subregion1: subregion1, Country: country}
}

// SubdivisionLocation builds a two-segment location.
func SubdivisionLocation(region, country string) Location {
	return Location{Kind: LocationSubdivision, Region: region, Country: country}
}

// Matches reports whether region r of country c is the one this location names.
// Comparisons are exact and case-sensitive.
func (l Location) Matches(c *Country, r *Region) bool {
	switch l.Kind {
	case LocationLeaf:
		return l.Country == c.Name && l.Subregion1 == r.Subregion1 && l.Region == r.Name
	case LocationSubdivision:
		return l.Country == c.Name && l.Region == r.Name && !r.IsLeaf()
	default:
		return false
	}
}
