package util

import (
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipMu    sync.RWMutex
	geoipDB    *geoip2.Reader
	geoipCache = cache.New(24*time.Hour, time.Hour)
)

type geoLocation struct {
	city    string
	country string
}

// InitGeoIP opens a GeoIP2/GeoLite2 City database. An empty path leaves
// lookups disabled.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipMu.Lock()
	defer geoipMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
	}
	geoipDB = r
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geoipMu.Lock()
	defer geoipMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// GetIPLocation returns the English city and country names for ip, or empty
// strings when the address is private, unparsable or unknown.
func GetIPLocation(ip string) (string, string) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return "", ""
	}

	if v, ok := geoipCache.Get(ip); ok {
		if loc, ok := v.(geoLocation); ok {
			return loc.city, loc.country
		}
	}

	geoipMu.RLock()
	reader := geoipDB
	geoipMu.RUnlock()
	if reader == nil {
		return "", ""
	}

	rec, err := reader.City(parsed)
	if err != nil {
		return "", ""
	}

	loc := geoLocation{city: rec.City.Names["en"], country: rec.Country.Names["en"]}
	if loc.country == "" {
		loc.country = rec.Country.IsoCode
	}
	geoipCache.Set(ip, loc, cache.DefaultExpiration)
	return loc.city, loc.country
}
