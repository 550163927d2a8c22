package text

import (
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

// Route defaults.
const (
	RouteName = "TextCleaning"
	TagKey    = "example"
	TagValue  = "text-cleaning"
)

// Route is the built text-cleaning trail plus the stats handler, so
// callers can inspect its state across runs.
type Route struct {
	Trail *trail.Trail
	Stats *Stats
}

// NewRoute builds the text-cleaning trail:
// strip_text, normalize_unicode, normalize_spaces, lowercase, stats.
// Options are applied after the route defaults and may override them.
func NewRoute(opts ...trail.Option) (*Route, error) {
	stats := &Stats{}

	steps := make([]trail.Step, 0, 5)
	for _, body := range []struct {
		name string
		fn   any
	}{
		{StepStrip, Strip},
		{StepNormalizeUnicode, NormalizeUnicode},
		{StepNormalizeSpaces, NormalizeSpaces},
	} {
		step, err := trail.Wrap(body.fn, trail.WithName(body.name))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	lower, err := trail.NewStateful(NewLowercase(language.Und))
	if err != nil {
		return nil, err
	}
	counter, err := trail.NewStateful(stats)
	if err != nil {
		return nil, err
	}
	steps = append(steps, lower, counter)

	defaults := []trail.Option{
		trail.WithTrailName(RouteName),
		trail.WithTag(TagKey, TagValue),
	}
	t, err := trail.From(steps, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Route{Trail: t, Stats: stats}, nil
}
