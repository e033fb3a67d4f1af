package api

import (
	"context"
	"strings"

	"github.com/huynhanx03/tripwise-api/pkg/geo"
)

const defaultPlacesRadius = 5000 // Meters

// geocodeAction resolves location text through the cached geo client.
func geocodeAction(g GeoService) func(context.Context, *GeocodeRequest) (geo.Coordinate, error) {
	return func(ctx context.Context, req *GeocodeRequest) (geo.Coordinate, error) {
		return g.Geocode(ctx, req.Text)
	}
}

// placesAction looks up places around a point through the cached geo client.
func placesAction(g GeoService) func(context.Context, *PlacesRequest) (PlacesResponse, error) {
	return func(ctx context.Context, req *PlacesRequest) (PlacesResponse, error) {
		radius := req.Radius
		if radius == 0 {
			radius = defaultPlacesRadius
		}

		places, err := g.SearchPlaces(ctx, geo.PlacesQuery{
			Lat:          *req.Lat,
			Lon:          *req.Lon,
			RadiusMeters: radius,
			Categories:   strings.Split(req.Categories, ","),
		})
		if err != nil {
			return PlacesResponse{}, err
		}

		return PlacesResponse{Places: places}, nil
	}
}
