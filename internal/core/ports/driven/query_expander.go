package driven

// QueryExpander returns domain terms found in a query, appended to the
// retrieval query to sharpen matching. Implementations are swappable per
// deployment; the default is a fixed vocabulary lookup.
type QueryExpander interface {
	Expand(query string) []string
}
