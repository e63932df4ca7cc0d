// Package location maps human-readable region names to coordinates for the
// weather lookup. The table covers Indian states and union territories; any
// unrecognised or absent selection silently resolves to the default city.
package location

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholder is the sentinel the selection UI sends when no region is chosen.
const Placeholder = "Select State"

// Default fallback when no region is selected or the name is unknown.
const (
	DefaultLatitude  = 17.6868
	DefaultLongitude = 83.2185
	DefaultName      = "Visakhapatnam, Andhra Pradesh"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Approximate state centers, keyed by lowercase name.
var regionCoordinates = map[string]Coordinate{
	"andaman and nicobar islands":              {11.7401, 92.6586},
	"andhra pradesh":                           {15.9129, 79.7400},
	"arunachal pradesh":                        {28.2180, 94.7278},
	"assam":                                    {26.2006, 92.9376},
	"bihar":                                    {25.0961, 85.3131},
	"chandigarh":                               {30.7333, 76.7794},
	"chhattisgarh":                             {21.2787, 81.8661},
	"dadra and nagar haveli and daman and diu": {20.1809, 73.0169},
	"delhi":                                    {28.7041, 77.1025},
	"goa":                                      {15.2993, 74.1240},
	"gujarat":                                  {22.2587, 71.1924},
	"haryana":                                  {29.0588, 76.0856},
	"himachal pradesh":                         {31.1048, 77.1734},
	"jammu and kashmir":                        {33.7782, 76.5762},
	"jharkhand":                                {23.6102, 85.2799},
	"karnataka":                                {15.3173, 75.7139},
	"kerala":                                   {10.8505, 76.2711},
	"ladakh":                                   {34.1526, 77.5770},
	"lakshadweep":                              {10.5667, 72.6417},
	"madhya pradesh":                           {22.9734, 78.6569},
	"maharashtra":                              {19.7515, 75.7139},
	"manipur":                                  {24.6637, 93.9063},
	"meghalaya":                                {25.4670, 91.3662},
	"mizoram":                                  {23.1645, 92.9376},
	"nagaland":                                 {26.1584, 94.5624},
	"odisha":                                   {20.9517, 85.0985},
	"puducherry":                               {11.9416, 79.8083},
	"punjab":                                   {31.1471, 75.3412},
	"rajasthan":                                {27.0238, 74.2179},
	"sikkim":                                   {27.5330, 88.5122},
	"tamil nadu":                               {11.1271, 78.6569},
	"telangana":                                {18.1124, 79.0193},
	"tripura":                                  {23.9408, 91.9882},
	"uttar pradesh":                            {26.8467, 80.9462},
	"uttarakhand":                              {30.0668, 79.0193},
	"west bengal":                              {22.9868, 87.8550},
}

// Display names are computed once here; a cases.Caser carries internal
// state and must not be shared between goroutines.
var regionNames = func() map[string]string {
	caser := cases.Title(language.English)
	names := make(map[string]string, len(regionCoordinates))
	for name := range regionCoordinates {
		names[name] = caser.String(name)
	}
	return names
}()

// Resolve maps a region selection to a coordinate and a display name.
// An empty selection, the placeholder (any case) and unknown names all
// resolve to the default coordinate; an unknown region is not an error.
func Resolve(region string) (Coordinate, string) {
	if region == "" || strings.EqualFold(region, Placeholder) {
		return Coordinate{DefaultLatitude, DefaultLongitude}, DefaultName
	}
	key := strings.ToLower(region)
	coord, ok := regionCoordinates[key]
	if !ok {
		return Coordinate{DefaultLatitude, DefaultLongitude}, DefaultName
	}
	return coord, regionNames[key] + ", India"
}

// Regions returns the selectable region names for the landing page: the
// placeholder first, then every known region title-cased and sorted.
func Regions() []string {
	names := make([]string, 0, len(regionNames))
	for _, name := range regionNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{Placeholder}, names...)
}
