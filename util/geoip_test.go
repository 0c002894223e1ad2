package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitGeoIP(t *testing.T) {
	assert.NoError(t, InitGeoIP(""), "empty path disables lookups")
	assert.Error(t, InitGeoIP(filepath.Join(t.TempDir(), "missing.mmdb")))
	CloseGeoIP()
}

func TestGetIPLocationSkipsNonPublic(t *testing.T) {
	for _, ip := range []string{"", "garbage", "127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "172.16.4.4", "fe80::1", "0.0.0.0"} {
		city, country := GetIPLocation(ip)
		assert.Empty(t, city, ip)
		assert.Empty(t, country, ip)
	}
}

func TestGetIPLocationWithoutDatabase(t *testing.T) {
	CloseGeoIP()
	city, country := GetIPLocation("8.8.8.8")
	assert.Empty(t, city)
	assert.Empty(t, country)
}
