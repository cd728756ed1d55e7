package ipgeo

import (
	"net/netip"
	"testing"
)

func TestTailscaleCGNAT(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"100.64.0.1", true},
		{"100.127.255.254", true},
		{"100.63.255.255", false},
		{"100.128.0.0", false},
	}
	for _, tt := range tests {
		addr := netip.MustParseAddr(tt.ip)
		if got := tailscaleCGNAT.Contains(addr); got != tt.want {
			t.Errorf("tailscaleCGNAT.Contains(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestCountryCodeLocal(t *testing.T) {
	// Local and Tailscale IPs never reach the MMDB reader, so a Checker with a
	// nil reader is enough to test the classification logic.
	c := &Checker{}
	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "local"},
		{"::1", "local"},
		{"10.0.0.1", "local"},
		{"192.168.1.1", "local"},
		{"172.16.0.1", "local"},
		{"0.0.0.0", "local"},
		{"::", "local"},
		{"169.254.1.1", "local"},
		{"fe80::1", "local"},
		{"100.64.0.1", "tailscale"},
		{"100.100.100.100", "tailscale"},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := c.CountryCode(tt.ip); got != tt.want {
			t.Errorf("CountryCode(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/geo.mmdb"); err == nil {
		t.Error("Open should fail for a missing file")
	}
}
