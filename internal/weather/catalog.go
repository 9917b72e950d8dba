package weather

import "fmt"

// VariableGroup is a named set of archive variables fetched in one request.
type VariableGroup struct {
	ID        string   `json:"id"`
	Variables []string `json:"variables"`
}

// Catalog is an immutable, ordered registry of variable groups.
// Build it once at startup and share the pointer.
type Catalog struct {
	groups []VariableGroup
	index  map[string]int
}

// NewCatalog validates groups and returns a catalog that iterates them in
// the given order.
func NewCatalog(groups ...VariableGroup) (*Catalog, error) {
	c := &Catalog{
		groups: make([]VariableGroup, 0, len(groups)),
		index:  make(map[string]int, len(groups)),
	}
	for _, g := range groups {
		if g.ID == "" {
			return nil, fmt.Errorf("variable group with empty id")
		}
		if _, dup := c.index[g.ID]; dup {
			return nil, fmt.Errorf("duplicate variable group %q", g.ID)
		}
		seen := make(map[string]struct{}, len(g.Variables))
		for _, v := range g.Variables {
			if _, dup := seen[v]; dup {
				return nil, fmt.Errorf("group %q lists variable %q twice", g.ID, v)
			}
			seen[v] = struct{}{}
		}
		vars := make([]string, len(g.Variables))
		copy(vars, g.Variables)
		c.index[g.ID] = len(c.groups)
		c.groups = append(c.groups, VariableGroup{ID: g.ID, Variables: vars})
	}
	return c, nil
}

// DefaultCatalog returns the archive variable groups known to work together.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		VariableGroup{
			ID: "basic_weather",
			Variables: []string{
				"temperature_2m",
				"apparent_temperature",
				"relative_humidity_2m",
				"dewpoint_2m",
				"precipitation",
				"rain",
				"snowfall",
				"wind_speed_10m",
				"wind_direction_10m",
				"pressure_msl",
				"surface_pressure",
				"cloud_cover",
				"cloud_cover_low",
				"cloud_cover_mid",
				"cloud_cover_high",
			},
		},
		VariableGroup{
			ID: "solar_radiation",
			Variables: []string{
				"shortwave_radiation",
				"direct_radiation",
				"diffuse_radiation",
			},
		},
		VariableGroup{
			ID: "soil",
			Variables: []string{
				"soil_temperature_0cm",
				"soil_temperature_6cm",
				"soil_moisture_0_1cm",
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Groups returns group identifiers in catalog order.
func (c *Catalog) Groups() []string {
	ids := make([]string, len(c.groups))
	for i, g := range c.groups {
		ids[i] = g.ID
	}
	return ids
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Variables returns a copy of the variables of group id.
func (c *Catalog) Variables(id string) ([]string, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, id)
	}
	vars := make([]string, len(c.groups[i].Variables))
	copy(vars, c.groups[i].Variables)
	return vars, nil
}

// All returns copies of every group in catalog order.
func (c *Catalog) All() []VariableGroup {
	out := make([]VariableGroup, len(c.groups))
	for i, g := range c.groups {
		vars := make([]string, len(g.Variables))
		copy(vars, g.Variables)
		out[i] = VariableGroup{ID: g.ID, Variables: vars}
	}
	return out
}
