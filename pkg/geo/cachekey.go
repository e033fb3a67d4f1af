package geo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

// coordDecimals is the rounding precision for cache keys. Three decimals is
// roughly 110m, close enough that queries for the same spot collapse to one
// entry without merging distinct neighborhoods.
const coordDecimals = 3

// geocodeKey builds the cache key for a geocode query. The text is already
// normalized by normalizeQuery.
func geocodeKey(text string) string {
	return "geocode:" + text
}

// placesKey builds a deterministic cache key from a normalized places query:
// rounded coordinates, radius, and the sorted category set. Equivalent
// queries must produce identical keys.
func placesKey(q PlacesQuery, categories []string) string {
	var b strings.Builder
	b.WriteString("places:")
	b.WriteString(utils.FormatCoord(q.Lat, coordDecimals))
	b.WriteByte(',')
	b.WriteString(utils.FormatCoord(q.Lon, coordDecimals))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(q.RadiusMeters))
	b.WriteByte(':')
	b.WriteString(strings.Join(categories, "+"))
	return b.String()
}

// normalizeQuery canonicalizes free-form geocode text: trimmed, lowercased,
// inner whitespace collapsed.
func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// normalizeCategories lowercases, trims, dedupes, and sorts the category
// list so that equivalent sets compare and hash identically.
func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
