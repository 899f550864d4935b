package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/states.json data/cities.json
var refFS embed.FS

// State is one federative unit of the reference data.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog is the immutable state/city reference, loaded once at startup.
// All lookups are read-only after Load, so it is safe for concurrent use.
type Catalog struct {
	states []State
	cities map[string][]string
}

// Load reads the embedded reference files and returns a catalog with states
// and city lists sorted alphabetically, case-insensitively.
func Load() (*Catalog, error) {
	rawStates, err := refFS.ReadFile("data/states.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read states reference: %w", err)
	}
	var states []State
	if err := json.Unmarshal(rawStates, &states); err != nil {
		return nil, fmt.Errorf("failed to parse states reference: %w", err)
	}

	rawCities, err := refFS.ReadFile("data/cities.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read cities reference: %w", err)
	}
	var cities map[string][]string
	if err := json.Unmarshal(rawCities, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse cities reference: %w", err)
	}

	sort.Slice(states, func(i, j int) bool {
		return strings.ToLower(states[i].Name) < strings.ToLower(states[j].Name)
	})
	for code, list := range cities {
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i]) < strings.ToLower(list[j])
		})
		cities[code] = list
	}

	return &Catalog{states: states, cities: cities}, nil
}

// States returns the ordered state list.
func (c *Catalog) States() []State {
	out := make([]State, len(c.states))
	copy(out, c.states)
	return out
}

// Cities returns the ordered city names for a state code. Unknown codes
// yield an empty list.
func (c *Catalog) Cities(stateCode string) []string {
	list := c.cities[strings.ToUpper(strings.TrimSpace(stateCode))]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// HasState reports whether the code is a known state.
func (c *Catalog) HasState(stateCode string) bool {
	_, ok := c.cities[strings.ToUpper(strings.TrimSpace(stateCode))]
	return ok
}

// HasCity reports whether the city belongs to the state, case-insensitively.
func (c *Catalog) HasCity(stateCode, cityName string) bool {
	cityName = strings.TrimSpace(cityName)
	for _, city := range c.cities[strings.ToUpper(strings.TrimSpace(stateCode))] {
		if strings.EqualFold(city, cityName) {
			return true
		}
	}
	return false
}
