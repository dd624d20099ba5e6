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
	"net"

	"safechild/internal/geo"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

// IPLocator resolves a reporter's client IP to an approximate coordinate,
// used as a hint when a submission arrives with no location text at all.
// Works without any database present; lookups then simply report no match.
type IPLocator struct {
	cityDB  *geoip2.Reader
	logger  *pterm.Logger
	enabled bool
}

// NewIPLocator creates an IP locator backed by a MaxMind City database.
func NewIPLocator(cityDBPath string, logger *pterm.Logger) *IPLocator {
	locator := &IPLocator{
		logger:  logger,
		enabled: false,
	}

	if cityDBPath != "" {
		cityDB, err := geoip2.Open(cityDBPath)
		if err != nil {
			logger.Warn("GeoIP City database not available",
				logger.Args("path", cityDBPath, "error", err))
		} else {
			locator.cityDB = cityDB
			locator.enabled = true
			logger.Info("Loaded GeoIP City database", logger.Args("path", cityDBPath))
		}
	}

	if !locator.enabled {
		logger.Debug("GeoIP location hints disabled - no database available")
	}

	return locator
}

// Locate returns the approximate coordinate for an IP address, or false if
// the locator is disabled, the IP is unparseable, or the database has no fix.
func (l *IPLocator) Locate(ipStr string) (geo.Point, bool) {
	if !l.enabled || ipStr == "" {
		return geo.Point{}, false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return geo.Point{}, false
	}

	record, err := l.cityDB.City(ip)
	if err != nil {
		l.logger.Debug("GeoIP lookup failed", l.logger.Args("ip", ipStr, "error", err))
		return geo.Point{}, false
	}
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return geo.Point{}, false
	}

	return geo.Point{Lat: record.Location.Latitude, Lon: record.Location.Longitude}, true
}

// Close releases the underlying database handle.
func (l *IPLocator) Close() {
	if l.cityDB != nil {
		l.cityDB.Close()
	}
}
