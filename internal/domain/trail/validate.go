package trail

import "fmt"

// Violation codes reported by Validate.
const (
	ViolationNilStep       = "NIL_STEP"
	ViolationEmptyName     = "EMPTY_NAME"
	ViolationDuplicateName = "DUPLICATE_NAME"
	ViolationIndexDrift    = "INDEX_DRIFT"
	ViolationBadShape      = "BAD_SHAPE"
)

// Violation is one structural problem found by Validate.
type Violation struct {
	Code    string `json:"code" yaml:"code"`
	Index   int    `json:"index" yaml:"index"`
	Step    string `json:"step,omitempty" yaml:"step,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// String returns a single-line rendering.
func (v Violation) String() string {
	if v.Step != "" {
		return fmt.Sprintf("[%s] #%d %q: %s", v.Code, v.Index, v.Step, v.Message)
	}
	return fmt.Sprintf("[%s] #%d: %s", v.Code, v.Index, v.Message)
}

// Validate checks the structure of the trail without invoking any step.
// It reports every problem found; an empty result means the trail is valid.
// An empty trail is valid.
func (t *Trail) Validate() []Violation {
	violations := make([]Violation, 0)
	firstSeen := make(map[string]int, len(t.steps))

	for i, s := range t.steps {
		if isNil(s) {
			violations = append(violations, Violation{
				Code:    ViolationNilStep,
				Index:   i,
				Message: "step is nil",
			})
			continue
		}

		name := s.Name()
		if checkName(name) != nil {
			violations = append(violations, Violation{
				Code:    ViolationEmptyName,
				Index:   i,
				Message: "step name is empty",
			})
		} else if first, dup := firstSeen[name]; dup {
			violations = append(violations, Violation{
				Code:    ViolationDuplicateName,
				Index:   i,
				Step:    name,
				Message: fmt.Sprintf("name already used by step #%d", first),
			})
		} else {
			firstSeen[name] = i
		}

		if pos, ok := t.index[name]; !ok || pos != i {
			violations = append(violations, Violation{
				Code:    ViolationIndexDrift,
				Index:   i,
				Step:    name,
				Message: "name index does not point at this position",
			})
		}

		if checker, ok := s.(ShapeChecker); ok {
			if err := checker.CheckShape(); err != nil {
				violations = append(violations, Violation{
					Code:    ViolationBadShape,
					Index:   i,
					Step:    name,
					Message: err.Error(),
				})
			}
		}
	}

	if len(t.index) != len(firstSeen) {
		violations = append(violations, Violation{
			Code:    ViolationIndexDrift,
			Index:   -1,
			Message: fmt.Sprintf("name index holds %d entries for %d unique steps", len(t.index), len(firstSeen)),
		})
	}

	return violations
}
