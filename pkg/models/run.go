package models

// Center is a geographic search origin.
type Center struct {
	Lat float64
	Lon float64
}

// RunContext carries the per-run ingestion parameters and the seen-id set.
// It is constructed once per run and owned by the orchestrator; there are
// no process-wide singletons behind it.
type RunContext struct {
	Center       Center
	RadiusMeters int
	Categories   []string // fixed priority order
	TargetCount  int

	seen map[string]struct{}
}

// NewRunContext builds a RunContext with an empty seen set.
func NewRunContext(center Center, radiusMeters int, categories []string, targetCount int) *RunContext {
	return &RunContext{
		Center:       center,
		RadiusMeters: radiusMeters,
		Categories:   categories,
		TargetCount:  targetCount,
		seen:         make(map[string]struct{}),
	}
}

// Seen reports whether the place id was already processed this run.
func (rc *RunContext) Seen(placeID string) bool {
	_, ok := rc.seen[placeID]
	return ok
}

// MarkSeen records a place id for the rest of the run. The seen set is an
// in-memory optimization only; cross-run idempotency is enforced by the
// store's unique constraint.
func (rc *RunContext) MarkSeen(placeID string) {
	rc.seen[placeID] = struct{}{}
}

// SeenCount returns the number of distinct place ids encountered.
func (rc *RunContext) SeenCount() int {
	return len(rc.seen)
}
