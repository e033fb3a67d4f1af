package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/common/cache"
	"github.com/huynhanx03/tripwise-api/pkg/fetcher"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

const (
	geocodePath = "/v1/geocode/search"
	placesPath  = "/v2/places"

	defaultPlacesLimit = 20
)

// Config holds geo client configuration.
type Config struct {
	BaseURL string
	APIKey  string

	Fetcher *fetcher.Fetcher

	GeocodeCache cache.Cache[Coordinate]
	PlacesCache  cache.Cache[[]Place]
	GeocodeTTL   time.Duration
	PlacesTTL    time.Duration

	// PlacesLimit caps how many entries one places query requests upstream.
	PlacesLimit int

	Logger *zap.Logger
}

// Client fronts the geocoding/places provider. Successful lookups are cached
// with per-endpoint TTLs, and concurrent misses for the same key are
// collapsed into a single upstream call.
type Client struct {
	cfg    Config
	flight singleflight.Group
	log    *zap.Logger
}

// New creates a geo client.
func New(cfg Config) *Client {
	if cfg.PlacesLimit <= 0 {
		cfg.PlacesLimit = defaultPlacesLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{cfg: cfg, log: cfg.Logger}
}

// Geocode resolves free-form text to a coordinate. A query the provider
// cannot match yields CodeNotFound, which is distinct from every
// transport-level failure.
func (c *Client) Geocode(ctx context.Context, text string) (Coordinate, error) {
	text = normalizeQuery(text)
	if text == "" {
		return Coordinate{}, apperr.New(apperr.CodeParamInvalid,
			"geocode query must not be empty", http.StatusBadRequest, nil)
	}
	if c.cfg.APIKey == "" {
		return Coordinate{}, apperr.NewError("geo", apperr.CodeConfigMissing,
			apperr.MsgConfigMissing, http.StatusInternalServerError, nil)
	}

	key := geocodeKey(text)
	if hit, ok := c.cfg.GeocodeCache.Get(key); ok {
		return hit, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		// A concurrent flight may have filled the cache while this caller
		// waited on the group lock.
		if hit, ok := c.cfg.GeocodeCache.Get(key); ok {
			return hit, nil
		}

		coord, err := c.geocodeUpstream(ctx, text)
		if err != nil {
			return Coordinate{}, err
		}

		c.cfg.GeocodeCache.Set(key, coord, c.cfg.GeocodeTTL)
		return coord, nil
	})
	if err != nil {
		return Coordinate{}, err
	}
	return v.(Coordinate), nil
}

// SearchPlaces looks up places around a point. Entries without a usable name
// or coordinates are dropped; upstream ordering is preserved.
func (c *Client) SearchPlaces(ctx context.Context, q PlacesQuery) ([]Place, error) {
	if c.cfg.APIKey == "" {
		return nil, apperr.NewError("geo", apperr.CodeConfigMissing,
			apperr.MsgConfigMissing, http.StatusInternalServerError, nil)
	}

	categories := normalizeCategories(q.Categories)
	key := placesKey(q, categories)

	if hit, ok := c.cfg.PlacesCache.Get(key); ok {
		return hit, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if hit, ok := c.cfg.PlacesCache.Get(key); ok {
			return hit, nil
		}

		places, err := c.placesUpstream(ctx, q, categories)
		if err != nil {
			return nil, err
		}

		c.cfg.PlacesCache.Set(key, places, c.cfg.PlacesTTL)
		return places, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Place), nil
}

func (c *Client) geocodeUpstream(ctx context.Context, text string) (Coordinate, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("limit", "1")
	params.Set("apiKey", c.cfg.APIKey)

	fc, err := c.call(ctx, geocodePath, params)
	if err != nil {
		return Coordinate{}, err
	}

	for _, f := range fc.Features {
		p := f.Properties
		if p.Lat == nil || p.Lon == nil {
			continue
		}
		return Coordinate{
			Lat:              *p.Lat,
			Lon:              *p.Lon,
			FormattedAddress: p.Formatted,
		}, nil
	}

	return Coordinate{}, apperr.New(apperr.CodeNotFound,
		"no matching location", http.StatusNotFound, nil)
}

func (c *Client) placesUpstream(ctx context.Context, q PlacesQuery, categories []string) ([]Place, error) {
	params := url.Values{}
	params.Set("categories", strings.Join(categories, ","))
	params.Set("filter", fmt.Sprintf("circle:%s,%s,%d",
		utils.FormatCoord(q.Lon, coordDecimals),
		utils.FormatCoord(q.Lat, coordDecimals),
		q.RadiusMeters,
	))
	params.Set("limit", fmt.Sprintf("%d", c.cfg.PlacesLimit))
	params.Set("apiKey", c.cfg.APIKey)

	fc, err := c.call(ctx, placesPath, params)
	if err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		if p.Name == "" || p.Lat == nil || p.Lon == nil {
			continue
		}
		places = append(places, Place{
			ID:               p.PlaceID,
			Name:             p.Name,
			FormattedAddress: p.Formatted,
			Categories:       p.Categories,
			Lat:              *p.Lat,
			Lon:              *p.Lon,
		})
	}

	return places, nil
}

// call performs one provider request and decodes the feature collection.
// Non-success statuses become UpstreamRejected; the fetcher has already
// classified timeouts and transport failures.
func (c *Client) call(ctx context.Context, path string, params url.Values) (*featureCollection, error) {
	res, err := c.cfg.Fetcher.Do(ctx, &fetcher.Request{
		Method: http.MethodGet,
		URL:    c.cfg.BaseURL + path + "?" + params.Encode(),
	})
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		c.log.Warn("geo provider rejected request",
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
		)
		return nil, apperr.New(apperr.CodeUpstreamRejected,
			fmt.Sprintf("geo provider returned status %d", res.StatusCode),
			http.StatusBadGateway, nil)
	}

	var fc featureCollection
	if err := json.Unmarshal(res.Body, &fc); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeUpstreamRejected,
			"geo provider response unparseable", http.StatusBadGateway)
	}

	return &fc, nil
}
