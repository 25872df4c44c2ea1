package enrich

// Result is the outcome of one enrichment step. A degraded result still
// carries a usable Value (the default for that step).
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func degrade[T any](def T, err error) Result[T] {
	return Result[T]{Value: def, Degraded: true, Err: err}
}
