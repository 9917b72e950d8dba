package weather

// PlanRequests builds one FetchRequest per enabled group. Requests follow
// catalog order so that merge tie-breaks are stable across runs. Unknown
// identifiers in enabled are ignored: the mapping is a sparse override set.
func PlanRequests(catalog *Catalog, loc Location, rng DateRange, enabled map[string]bool) ([]FetchRequest, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	var reqs []FetchRequest
	for _, g := range catalog.groups {
		if !enabled[g.ID] {
			continue
		}
		vars := make([]string, len(g.Variables))
		copy(vars, g.Variables)
		reqs = append(reqs, FetchRequest{
			Location:  loc,
			Range:     rng,
			Group:     g.ID,
			Variables: vars,
		})
	}
	return reqs, nil
}
