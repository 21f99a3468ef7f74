package flights

import "time"

// TimeProvider supplies the current time to components that schedule
// flights or resolve date windows. Inject a fixed provider in tests to
// make generated departures deterministic.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns today's date as YYYY-MM-DD.
	Today() string
}

// DefaultTimeProvider is the standard TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Today returns today's date as YYYY-MM-DD.
func (p *DefaultTimeProvider) Today() string {
	return p.Now().Format("2006-01-02")
}

// FixedTimeProvider is a TimeProvider that returns a fixed time.
// Useful for testing time-dependent functionality.
type FixedTimeProvider struct {
	fixedTime time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider with the given time.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: t}
}

// SetTime updates the fixed time returned by Now().
func (p *FixedTimeProvider) SetTime(t time.Time) {
	p.fixedTime = t
}

// Now returns the fixed time.
func (p *FixedTimeProvider) Now() time.Time {
	return p.fixedTime
}

// Today returns the fixed date as YYYY-MM-DD.
func (p *FixedTimeProvider) Today() string {
	return p.fixedTime.Format("2006-01-02")
}

// Compile-time checks.
var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*FixedTimeProvider)(nil)
)
