package client

import "context"

// ViewsAPI is the counter slice of the backend.
type ViewsAPI interface {
	FetchViews(ctx context.Context) (int64, error)
	IncrementViews(ctx context.Context, visitorID string) (int64, error)
	SetViews(ctx context.Context, value int64) (int64, error)
}

// ViewCounter drives the view count from the viewer side: the first call
// in a session increments, later calls only read. Counting is
// at-least-once and the dedup is deliberately session-scoped and
// best-effort.
type ViewCounter struct {
	api   ViewsAPI
	local *LocalData
}

// NewViewCounter builds a counter client.
func NewViewCounter(api ViewsAPI, local *LocalData) *ViewCounter {
	return &ViewCounter{api: api, local: local}
}

// EnsureCounted counts this session's view if it has not been counted yet
// and returns the current total.
func (v *ViewCounter) EnsureCounted(ctx context.Context) (int64, error) {
	if v.local.SessionCounted() {
		return v.api.FetchViews(ctx)
	}

	total, err := v.api.IncrementViews(ctx, v.local.VisitorID())
	if err != nil {
		return 0, err
	}
	v.local.MarkSessionCounted()
	return total, nil
}

// Override sets the counter to an absolute value.
func (v *ViewCounter) Override(ctx context.Context, value int64) (int64, error) {
	return v.api.SetViews(ctx, value)
}

// ResetCount zeroes the counter and clears the session marker so the next
// page load counts again.
func (v *ViewCounter) ResetCount(ctx context.Context) error {
	if _, err := v.api.SetViews(ctx, 0); err != nil {
		return err
	}
	v.local.ClearSessionCounted()
	return nil
}
