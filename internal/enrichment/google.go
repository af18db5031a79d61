package enrichment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type googleGeocoder struct {
	client
}

// NewGoogleGeocoder creates a Geocoder backed by the Google Geocoding API.
// An empty apiKey yields a geocoder that fails every call with
// StatusNotConfigured.
func NewGoogleGeocoder(apiKey string, opts ...Option) Geocoder {
	return &googleGeocoder{client: newClient(apiKey, DefaultGoogleGeocodeURL, opts)}
}

func (g *googleGeocoder) Geocode(ctx context.Context, address string) (*LatLng, error) {
	if g.apiKey == "" {
		return nil, &GeocodeError{Status: StatusNotConfigured}
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &GeocodeError{Status: "INVALID_REQUEST", Err: eris.New("geocode: empty address")}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, requestFailed(eris.Wrap(err, "geocode: google rate limit"))
	}

	params := url.Values{
		"address": {address},
		"key":     {g.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, requestFailed(eris.Wrap(err, "geocode: google build request"))
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, requestFailed(eris.Wrap(err, "geocode: google request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, requestFailed(eris.Errorf("geocode: google returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestFailed(eris.Wrap(err, "geocode: google read body"))
	}

	var out googleGeocodeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, requestFailed(eris.Wrap(err, "geocode: google parse response"))
	}

	if out.Status != "OK" || len(out.Results) == 0 {
		status := out.Status
		if status == "" || status == "OK" {
			status = "ZERO_RESULTS"
		}
		gerr := &GeocodeError{Status: status}
		if out.ErrorMessage != "" {
			gerr.Err = eris.New(out.ErrorMessage)
		}
		return nil, gerr
	}

	loc := out.Results[0].Geometry.Location
	return &LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func requestFailed(err error) *GeocodeError {
	return &GeocodeError{Status: StatusRequestFailed, Err: err}
}
