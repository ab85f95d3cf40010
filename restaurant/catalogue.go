package restaurant

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrMissingNameColumn is returned when the catalogue header has no name column.
var ErrMissingNameColumn = errors.New("catalogue has no restaurant name column")

var columnAliases = map[string]string{
	"restaurantname": "name",
	"name":           "name",
	"pricerange":     "pricerange",
	"area":           "area",
	"food":           "food",
	"cuisine":        "food",
	"phone":          "phone",
	"addr":           "address",
	"address":        "address",
	"postcode":       "postcode",
	"food_quality":   "quality",
	"quality":        "quality",
	"crowdedness":    "crowdedness",
	"length_of_stay": "length_of_stay",
}

// LoadFile reads a CSV catalogue from path.
func LoadFile(path string) ([]Restaurant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV reads a catalogue whose first row is a header. Columns are matched
// by name; the qualitative columns are optional. Values used for matching
// (area, price range, food and the qualitative ones) are lower-cased.
func LoadCSV(r io.Reader) ([]Restaurant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			index[name] = i
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	var restaurants []Restaurant
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalogue line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		restaurants = append(restaurants, Restaurant{
			Name:         get("name"),
			Area:         strings.ToLower(get("area")),
			Cuisine:      strings.ToLower(get("food")),
			PriceRange:   strings.ToLower(get("pricerange")),
			Phone:        get("phone"),
			Address:      get("address"),
			Postcode:     get("postcode"),
			Quality:      strings.ToLower(get("quality")),
			Crowdedness:  strings.ToLower(get("crowdedness")),
			LengthOfStay: strings.ToLower(get("length_of_stay")),
		})
	}
	return restaurants, nil
}

// Distinct returns the non-empty values of one field across the catalogue,
// longest first and then alphabetically.
func Distinct(catalogue []Restaurant, field func(Restaurant) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, r := range catalogue {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
	return values
}
