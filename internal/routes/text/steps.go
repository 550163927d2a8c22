package text

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

// Step names.
const (
	StepStrip            = "strip_text"
	StepNormalizeUnicode = "normalize_unicode"
	StepNormalizeSpaces  = "normalize_spaces"
	StepLowercase        = "lowercase"
	StepStats            = "stats"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Strip trims leading and trailing whitespace.
func Strip(fp *Footprint) *Footprint {
	fp.Text = strings.TrimSpace(fp.Text)
	return fp
}

// NormalizeUnicode converts the text to NFC so composed and decomposed
// forms of the same character compare equal.
func NormalizeUnicode(fp *Footprint) *Footprint {
	fp.Text = norm.NFC.String(fp.Text)
	return fp
}

// NormalizeSpaces collapses every run of whitespace into a single space.
func NormalizeSpaces(fp *Footprint) *Footprint {
	fp.Text = whitespaceRun.ReplaceAllString(fp.Text, " ")
	return fp
}

// Lowercase applies language-aware lower casing.
type Lowercase struct {
	tag language.Tag
}

// NewLowercase creates the lowercase step body for a language.
// language.Und gives the root casing rules.
func NewLowercase(tag language.Tag) *Lowercase {
	return &Lowercase{tag: tag}
}

// Name implements the optional step naming method.
func (l *Lowercase) Name() string { return StepLowercase }

// Handle implements trail.Handler.
func (l *Lowercase) Handle(fp trail.Footprint) (trail.Footprint, error) {
	tf, err := footprintOf(fp)
	if err != nil {
		return fp, err
	}
	// Casers keep state between calls; one per invocation.
	tf.Text = cases.Lower(l.tag).String(tf.Text)
	return tf, nil
}

// Stats counts characters and words. It remembers how many footprints it
// has measured.
type Stats struct {
	runs int
}

// Name implements the optional step naming method.
func (s *Stats) Name() string { return StepStats }

// Runs returns how many times the step has been invoked.
func (s *Stats) Runs() int { return s.runs }

// Handle implements trail.Handler.
func (s *Stats) Handle(fp trail.Footprint) (trail.Footprint, error) {
	tf, err := footprintOf(fp)
	if err != nil {
		return fp, err
	}
	s.runs++
	tf.CharCount = utf8.RuneCountInString(tf.Text)
	tf.WordCount = len(strings.Fields(tf.Text))
	tf.IsEmpty = tf.CharCount == 0
	return tf, nil
}

func footprintOf(fp trail.Footprint) (*Footprint, error) {
	tf, ok := fp.(*Footprint)
	if !ok || tf == nil {
		return nil, &UnexpectedFootprintError{Got: fp}
	}
	return tf, nil
}

// UnexpectedFootprintError is returned when a text step receives a
// footprint of another route.
type UnexpectedFootprintError struct {
	Got trail.Footprint
}

func (e *UnexpectedFootprintError) Error() string {
	return fmt.Sprintf("text step needs *text.Footprint, got %T", e.Got)
}
