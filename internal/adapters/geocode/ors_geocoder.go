package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/obs"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type geocodeResponse struct {
	Features []struct {
		Properties struct {
			Label string `json:"label"`
			Name  string `json:"name"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements ports.Geocoder using the OpenRouteService
// (Pelias) /geocode/search endpoint, scoped to a single country.
type ORSGeocoder struct {
	client  *httpclient.Client
	baseURL string
	country string
}

func NewORSGeocoder(baseURL, apiKey, country string, timeout time.Duration) (*ORSGeocoder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geocoder url is empty")
	}
	if len(country) != 2 {
		return nil, fmt.Errorf("geocoder country must be a 2-letter code, got %q", country)
	}

	return &ORSGeocoder{
		client:  httpclient.New(timeout, httpclient.WithAPIKey(apiKey)),
		baseURL: baseURL,
		country: strings.ToUpper(country),
	}, nil
}

// Normalize collapses whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CacheKey is the cache identity of a query: whitespace collapsed, case folded.
// Every SuggestionCache backend sees keys in this form.
func CacheKey(s string) string {
	return strings.ToLower(Normalize(s))
}

// Search resolves free text into at most domain.MaxSuggestions suggestions.
// The service returns [lon, lat] pairs; they are reversed here.
func (g *ORSGeocoder) Search(ctx context.Context, query string) (_ []domain.Suggestion, err error) {
	defer obs.Time(ctx, "geocode.Search")(&err)

	norm := Normalize(query)
	if norm == "" {
		return nil, errors.New("search: query must be non-empty")
	}

	endpoint := g.baseURL + "/geocode/search"
	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", g.country)
		q.Set("size", strconv.Itoa(domain.MaxSuggestions))
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	out := make([]domain.Suggestion, 0, min(len(decoded.Features), domain.MaxSuggestions))
	for _, f := range decoded.Features {
		if len(out) == domain.MaxSuggestions {
			break
		}

		c, err := domain.FromLonLat(f.Geometry.Coordinates)
		if err != nil {
			logrus.WithFields(logrus.Fields{"query": norm, "err": err}).Warn("skipping malformed geocode feature")
			continue
		}

		name := f.Properties.Label
		if name == "" {
			name = f.Properties.Name
		}
		if name == "" {
			name = c.String()
		}

		out = append(out, domain.Suggestion{Name: name, Coordinates: c})
	}

	return out, nil
}
