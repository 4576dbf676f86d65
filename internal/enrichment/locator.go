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
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

const defaultCacheSize = 10000

// Location is what the GeoIP databases know about one client host.
type Location struct {
	Country     string  `json:"country,omitempty"`
	CountryName string  `json:"country_name,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	ASN         int     `json:"asn,omitempty"`
	ASNOrg      string  `json:"asn_org,omitempty"`
}

// Empty reports whether no database had an answer.
func (l *Location) Empty() bool {
	return l.Country == "" && l.City == "" && l.ASN == 0
}

type Config struct {
	CityDB    string
	CountryDB string
	ASNDB     string
	CacheSize int
}

// HostLocator resolves log hosts to locations using the City, Country and
// ASN databases, whichever are available.
type HostLocator struct {
	cityDB    *geoip2.Reader
	countryDB *geoip2.Reader
	asnDB     *geoip2.Reader
	logger    *pterm.Logger

	cacheMu   sync.RWMutex
	cache     map[string]*Location
	cacheSize int
}

// NewHostLocator opens the configured databases. A database that cannot be
// opened is skipped with a warning; with none open every lookup misses.
func NewHostLocator(cfg Config, logger *pterm.Logger) *HostLocator {
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	l := &HostLocator{
		logger:    logger,
		cache:     make(map[string]*Location),
		cacheSize: cacheSize,
	}

	l.cityDB = l.open("City", cfg.CityDB)
	l.countryDB = l.open("Country", cfg.CountryDB)
	l.asnDB = l.open("ASN", cfg.ASNDB)

	if !l.Enabled() {
		logger.Debug("GeoIP lookups disabled - no databases configured")
	}
	return l
}

func (l *HostLocator) open(kind, path string) *geoip2.Reader {
	if path == "" {
		return nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		l.logger.Warn("GeoIP database not available",
			l.logger.Args("kind", kind, "path", path, "error", err))
		return nil
	}
	l.logger.Info("Loaded GeoIP database", l.logger.Args("kind", kind, "path", path))
	return reader
}

// Enabled reports whether at least one database is open.
func (l *HostLocator) Enabled() bool {
	return l.cityDB != nil || l.countryDB != nil || l.asnDB != nil
}

// Lookup returns the location of host. The result is false when lookups are
// disabled, host is not an IP address, or no database knows it.
func (l *HostLocator) Lookup(host string) (*Location, bool) {
	if !l.Enabled() {
		return nil, false
	}

	ip := net.ParseIP(host)
	if ip == nil {
		l.logger.Trace("Host is not an IP address, skipping GeoIP", l.logger.Args("host", host))
		return nil, false
	}

	l.cacheMu.RLock()
	cached, hit := l.cache[host]
	l.cacheMu.RUnlock()

	if !hit {
		cached = l.lookup(host, ip)
		l.store(host, cached)
	}

	if cached.Empty() {
		return nil, false
	}
	return cached, true
}

func (l *HostLocator) lookup(host string, ip net.IP) *Location {
	loc := &Location{}

	cityFound := false
	if l.cityDB != nil {
		if record, err := l.cityDB.City(ip); err == nil {
			loc.Country = record.Country.IsoCode
			loc.CountryName = record.Country.Names["en"]
			loc.City = record.City.Names["en"]
			loc.Latitude = record.Location.Latitude
			loc.Longitude = record.Location.Longitude
			cityFound = loc.Country != ""
		} else {
			l.logger.Debug("GeoIP City lookup failed", l.logger.Args("host", host, "error", err))
		}
	}

	if !cityFound && l.countryDB != nil {
		if record, err := l.countryDB.Country(ip); err == nil {
			loc.Country = record.Country.IsoCode
			loc.CountryName = record.Country.Names["en"]
		} else {
			l.logger.Debug("GeoIP Country lookup failed", l.logger.Args("host", host, "error", err))
		}
	}

	if l.asnDB != nil {
		if record, err := l.asnDB.ASN(ip); err == nil {
			loc.ASN = int(record.AutonomousSystemNumber)
			loc.ASNOrg = record.AutonomousSystemOrganization
		} else {
			l.logger.Debug("GeoIP ASN lookup failed", l.logger.Args("host", host, "error", err))
		}
	}

	l.logger.Trace("GeoIP lookup", l.logger.Args("host", host, "country", loc.Country, "asn", loc.ASN))
	return loc
}

// store caches a lookup, evicting about a tenth of the entries when full.
func (l *HostLocator) store(host string, loc *Location) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	if len(l.cache) >= l.cacheSize {
		evict := l.cacheSize / 10
		if evict < 1 {
			evict = 1
		}
		for key := range l.cache {
			if evict == 0 {
				break
			}
			delete(l.cache, key)
			evict--
		}
		l.logger.Debug("GeoIP cache eviction performed",
			l.logger.Args("cache_size", len(l.cache), "max_size", l.cacheSize))
	}

	l.cache[host] = loc
}

// CacheSize returns the number of cached lookups.
func (l *HostLocator) CacheSize() int {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	return len(l.cache)
}

// Close releases the open databases.
func (l *HostLocator) Close() error {
	for _, reader := range []*geoip2.Reader{l.cityDB, l.countryDB, l.asnDB} {
		if reader != nil {
			reader.Close()
		}
	}
	return nil
}
