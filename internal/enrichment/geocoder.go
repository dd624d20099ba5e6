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
package enrichment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"safechild/internal/geo"

	"github.com/pterm/pterm"
)

// FallbackPoint is returned whenever geocoding cannot resolve a location:
// missing key, unreachable service, non-200 response, or an empty result set.
// Report submission must never fail because geocoding is unavailable, so
// callers get these coordinates instead of an error and cannot tell a real
// result from the fallback.
var FallbackPoint = geo.Point{Lat: 12.9141, Lon: 74.8560}

const defaultMapsBaseURL = "https://atlas.microsoft.com"

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Geocode(location string) geo.Point
}

// PlaceCandidate is one address suggestion from a place search.
type PlaceCandidate struct {
	Address  string    `json:"address"`
	Position geo.Point `json:"position"`
}

// AzureMapsGeocoder resolves location text through the Azure Maps address
// search API, with a small in-process cache so repeated submissions from the
// same town do not burn quota.
type AzureMapsGeocoder struct {
	key     string
	baseURL string
	client  *http.Client
	logger  *pterm.Logger

	cache   map[string]geo.Point
	cacheMu sync.RWMutex
}

// NewAzureMapsGeocoder creates a geocoder. An empty key is allowed; every
// lookup then degrades to the fallback coordinate.
func NewAzureMapsGeocoder(key string, logger *pterm.Logger) *AzureMapsGeocoder {
	if key == "" {
		logger.Warn("Azure Maps key not configured - geocoding will use the fallback coordinate")
	}
	return &AzureMapsGeocoder{
		key:     key,
		baseURL: defaultMapsBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		cache:   make(map[string]geo.Point),
	}
}

type mapsSearchResponse struct {
	Results []struct {
		Address struct {
			FreeformAddress    string `json:"freeformAddress"`
			Municipality       string `json:"municipality"`
			CountrySubdivision string `json:"countrySubdivision"`
		} `json:"address"`
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

// Geocode resolves location text to coordinates, falling back to
// FallbackPoint on any failure.
func (g *AzureMapsGeocoder) Geocode(location string) geo.Point {
	if g.key == "" {
		g.logger.Debug("Geocoding skipped - no Azure Maps key", g.logger.Args("location", location))
		return FallbackPoint
	}

	g.cacheMu.RLock()
	cached, ok := g.cache[location]
	g.cacheMu.RUnlock()
	if ok {
		return cached
	}

	resp, err := g.search(location, 1)
	if err != nil {
		g.logger.Error("Geocoding failed, using fallback coordinate",
			g.logger.Args("location", location, "error", err))
		return FallbackPoint
	}
	if len(resp.Results) == 0 {
		g.logger.Warn("Geocoding returned no results, using fallback coordinate",
			g.logger.Args("location", location))
		return FallbackPoint
	}

	point := geo.Point{Lat: resp.Results[0].Position.Lat, Lon: resp.Results[0].Position.Lon}

	g.cacheMu.Lock()
	g.cache[location] = point
	g.cacheMu.Unlock()

	return point
}

// SearchPlaces returns up to limit address candidates for an operator query.
// Unlike Geocode this surfaces failures, since the dashboard shows them as a
// search error rather than silently pinning the fallback coordinate.
func (g *AzureMapsGeocoder) SearchPlaces(query string, limit int) ([]PlaceCandidate, error) {
	if g.key == "" {
		return nil, fmt.Errorf("Azure Maps key not configured")
	}
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	resp, err := g.search(query, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]PlaceCandidate, 0, len(resp.Results))
	for _, result := range resp.Results {
		label := result.Address.FreeformAddress
		if result.Address.Municipality != "" {
			label += ", " + result.Address.Municipality
		}
		if result.Address.CountrySubdivision != "" {
			label += ", " + result.Address.CountrySubdivision
		}
		candidates = append(candidates, PlaceCandidate{
			Address:  label,
			Position: geo.Point{Lat: result.Position.Lat, Lon: result.Position.Lon},
		})
	}
	return candidates, nil
}

func (g *AzureMapsGeocoder) search(query string, limit int) (*mapsSearchResponse, error) {
	params := url.Values{}
	params.Set("api-version", "1.0")
	params.Set("subscription-key", g.key)
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := g.baseURL + "/search/address/json?" + params.Encode()
	resp, err := g.client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Azure Maps API error: status %d", resp.StatusCode)
	}

	var parsed mapsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode Azure Maps response: %w", err)
	}
	return &parsed, nil
}
