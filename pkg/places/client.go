// Package places provides a Google Maps Web Service client covering the three
// operations the discovery engine needs: geocoding, nearby search, and place
// details.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/Moirius/La-Station-Prospection/internal/resilience"
)

// Client defines the Maps API operations used by discovery.
type Client interface {
	// Geocode resolves a free-form location to coordinates. A nil result
	// means the location did not match anything; that is not an error.
	Geocode(ctx context.Context, location string) (*LatLng, error)

	// NearbySearch runs one page of a nearby search.
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)

	// PlaceDetails fetches extended fields for a single place.
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbySearchRequest holds the parameters for one search page.
type NearbySearchRequest struct {
	Lat       float64
	Lng       float64
	Radius    int
	Category  string // place type, e.g. "restaurant"
	Keyword   string
	PageToken string
}

// NearbySearchResponse is one page of search results.
type NearbySearchResponse struct {
	Results       []Place
	NextPageToken string
}

// Place is a single nearby search result.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

// PlaceDetails holds the extended fields requested during enrichment.
type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Phone            string   `json:"formatted_phone_number"`
	Website          string   `json:"website"`
	URL              string   `json:"url"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	OpeningHours     struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []Review `json:"reviews"`
	Photos  []Photo  `json:"photos"`
}

// Review is a single place review.
type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
}

// Photo is a photo reference attached to a place.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.hc = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	key     string
	hc      *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Maps client with the given API key and options.
func NewClient(key string, opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://maps.googleapis.com/maps/api",
		key:     key,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 5),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Geocode(ctx context.Context, location string) (*LatLng, error) {
	params := url.Values{}
	params.Set("address", location)

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/geocode/json", params, "geocode", &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusZeroResults || len(resp.Results) == 0 {
		return nil, nil
	}
	if resp.Status != statusOK {
		return nil, eris.Errorf("places: geocode status %s", resp.Status)
	}

	loc := resp.Results[0].Geometry.Location
	return &loc, nil
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("location", formatLatLng(req.Lat, req.Lng))
		params.Set("radius", strconv.Itoa(req.Radius))
		if req.Category != "" {
			params.Set("type", req.Category)
		}
		if req.Keyword != "" {
			params.Set("keyword", req.Keyword)
		}
	}

	var resp struct {
		Status        string  `json:"status"`
		Results       []Place `json:"results"`
		NextPageToken string  `json:"next_page_token"`
	}
	if err := c.getJSON(ctx, "/place/nearbysearch/json", params, "nearby search", &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusZeroResults {
		return &NearbySearchResponse{}, nil
	}
	if resp.Status != statusOK {
		return nil, eris.Errorf("places: nearby search status %s", resp.Status)
	}

	return &NearbySearchResponse{Results: resp.Results, NextPageToken: resp.NextPageToken}, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,formatted_phone_number,website,url,price_level,types,opening_hours,reviews,photos")

	var resp struct {
		Status string        `json:"status"`
		Result *PlaceDetails `json:"result"`
	}
	if err := c.getJSON(ctx, "/place/details/json", params, "place details", &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusZeroResults || resp.Status == statusNotFound {
		return nil, nil
	}
	if resp.Status != statusOK {
		return nil, eris.Errorf("places: place details status %s", resp.Status)
	}

	return resp.Result, nil
}

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	statusNotFound    = "NOT_FOUND"
	statusOverLimit   = "OVER_QUERY_LIMIT"
)

// getJSON issues a rate-limited, retried GET and decodes the JSON body into
// out. API-level OVER_QUERY_LIMIT responses count as transient.
func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, op string, out any) error {
	params.Set("key", c.key)
	fullURL := c.baseURL + path + "?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "places: %s rate wait", op)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "places: build %s request", op)
		}

		httpResp, err := c.hc.Do(httpReq)
		if err != nil {
			return nil, eris.Wrapf(err, "places: %s request", op)
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "places: read %s response", op)
		}
		if httpResp.StatusCode != http.StatusOK {
			err := eris.Errorf("places: %s returned HTTP %d", op, httpResp.StatusCode)
			if resilience.IsTransientHTTPStatus(httpResp.StatusCode) {
				return nil, resilience.NewTransientError(err, httpResp.StatusCode)
			}
			return nil, err
		}

		var probe struct {
			Status string `json:"status"`
		}
		if jsonErr := json.Unmarshal(data, &probe); jsonErr == nil && probe.Status == statusOverLimit {
			return nil, resilience.NewTransientError(
				eris.Errorf("places: %s over query limit", op), http.StatusTooManyRequests)
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "places: decode %s response", op)
	}
	return nil
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
