// Package enrichment looks up coordinates through the Google Geocoding API and
// property characteristics through the ATTOM property detail API.
package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultGoogleGeocodeURL is the Google Geocoding JSON endpoint.
	DefaultGoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

	// DefaultAttomURL is the ATTOM property detail endpoint.
	DefaultAttomURL = "https://api.gateway.attomdata.com/propertyapi/v1.0.0/property/detail"
)

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	// Geocode returns the first match for address. Failures are reported
	// as *GeocodeError.
	Geocode(ctx context.Context, address string) (*LatLng, error)
}

// PropertyLookup fetches property characteristics for a street address.
type PropertyLookup interface {
	// LookupProperty returns the first property matching addr. Failures,
	// including "no match", are reported as *LookupError.
	LookupProperty(ctx context.Context, addr Address) (*PropertyDetails, error)
}

// LatLng is a geocoded coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is a postal address split the way the lookups need it.
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

// Locality returns "City, ST 12345", the ATTOM address2 parameter.
func (a Address) Locality() string {
	loc := strings.TrimSpace(a.City)
	if a.State != "" {
		if loc != "" {
			loc += ", "
		}
		loc += strings.TrimSpace(a.State)
	}
	if a.Zip != "" {
		loc = strings.TrimSpace(loc + " " + strings.TrimSpace(a.Zip))
	}
	return loc
}

// OneLine formats the address for geocoding.
func (a Address) OneLine() string {
	street := strings.TrimSpace(a.Street)
	loc := a.Locality()
	switch {
	case street == "":
		return loc
	case loc == "":
		return street
	default:
		return fmt.Sprintf("%s, %s", street, loc)
	}
}

// Option configures a lookup client.
type Option func(*client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLimiter sets the rate limiter directly.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *client) {
		c.limiter = l
	}
}

type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

func newClient(apiKey, baseURL string, opts []Option) client {
	c := client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
