// Package ipgeo resolves client IPs to countries for the submission log.
//
// Lookups go through a MaxMind MMDB country database. Addresses that never
// reach the public internet get the synthetic codes "local" and "tailscale"
// instead of an empty country, so entries recorded during development or
// over a tailnet remain distinguishable from failed lookups.
package ipgeo

import (
	"net/netip"

	"github.com/oschwald/maxminddb-golang/v2"
)

// tailscaleCGNAT is the CGNAT range Tailscale assigns to tailnet nodes.
var tailscaleCGNAT = netip.MustParsePrefix("100.64.0.0/10")

// Checker answers country lookups against an open MMDB database.
type Checker struct {
	db *maxminddb.Reader
}

// Open loads the MMDB country database at path.
func Open(path string) (*Checker, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Checker{db: db}, nil
}

func (c *Checker) Close() error {
	return c.db.Close()
}

// CountryCode resolves ip to an ISO 3166-1 alpha-2 code. Loopback, private,
// link-local, and unspecified addresses map to "local"; Tailscale CGNAT
// addresses map to "tailscale". Unparseable addresses and failed lookups
// return "".
func (c *Checker) CountryCode(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	switch {
	case addr.IsLoopback(), addr.IsPrivate(), addr.IsUnspecified(), addr.IsLinkLocalUnicast():
		return "local"
	case tailscaleCGNAT.Contains(addr):
		return "tailscale"
	}
	var rec struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
	}
	if err := c.db.Lookup(addr).Decode(&rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}
