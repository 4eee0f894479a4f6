package services

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmarek/blockpress-backend/config"
)

// geoLookupTimeout is the hard ceiling for one geolocation lookup. The
// lookup service is treated as unreliable; anything slower than this loses
// to an unknown country.
const geoLookupTimeout = 3 * time.Second

const defaultGeoBaseURL = "https://api.country.is"

// countryForIPResponse represents the response from the country-for-ip
// lookup service.
type countryForIPResponse struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
}

// GeoClient resolves an IP address to a two-letter country code,
// best-effort.
type GeoClient struct {
	baseURL string
	client  *http.Client
}

// NewGeoClient builds a client from configuration. GEO_LOOKUP_URL overrides
// the lookup endpoint, which tests point at a local stub.
func NewGeoClient(cfg map[string]string) *GeoClient {
	return &GeoClient{
		baseURL: config.GetString(cfg, "GEO_LOOKUP_URL", defaultGeoBaseURL),
		client:  &http.Client{Timeout: geoLookupTimeout},
	}
}

// CountryForIP returns the uppercase ISO country code for ip, or "" when
// the country cannot be determined. Loopback and private-range addresses
// are skipped immediately without a network round trip; any lookup failure
// (timeout, malformed response, non-2-letter code) yields "", never an
// error, so the analytics path stays quiet.
func (g *GeoClient) CountryForIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return ""
	}

	resp, err := g.client.Get(fmt.Sprintf("%s/%s", strings.TrimSuffix(g.baseURL, "/"), parsed.String()))
	if err != nil {
		log.Debug().Err(err).Str("ip", parsed.String()).Msg("Geolocation lookup failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("ip", parsed.String()).Msg("Geolocation lookup returned non-200 status")
		return ""
	}

	var body countryForIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Debug().Err(err).Msg("Geolocation response malformed")
		return ""
	}

	country := strings.ToUpper(strings.TrimSpace(body.Country))
	if len(country) != 2 {
		return ""
	}
	return country
}
