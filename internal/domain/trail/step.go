package trail

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// Step is a named processing unit with the contract footprint -> footprint.
// The Trail depends only on this capability, never on a concrete variant.
type Step interface {
	// Name returns the unique name of the step within a trail.
	Name() string

	// Invoke processes the footprint and returns the footprint for the
	// next step: the same mutated instance or a new one.
	Invoke(fp Footprint) (Footprint, error)
}

// ShapeChecker is implemented by steps that can verify their own body
// without invoking it. Validate reports any error it returns.
type ShapeChecker interface {
	CheckShape() error
}

// Func is the body of a functional step.
type Func func(Footprint) (Footprint, error)

// Handler is the body of a stateful step. Any state it holds persists
// across invocations of the same instance.
type Handler interface {
	Handle(fp Footprint) (Footprint, error)
}

// StepOption configures step construction.
type StepOption func(*stepOptions)

type stepOptions struct {
	name string
}

// WithName overrides the derived step name.
func WithName(name string) StepOption {
	return func(o *stepOptions) {
		o.name = name
	}
}

func applyStepOptions(opts []StepOption) stepOptions {
	var o stepOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFunc creates a functional step. Without WithName the name is the
// function's declared identifier; anonymous functions need WithName.
func NewFunc(fn Func, opts ...StepOption) (Step, error) {
	if fn == nil {
		return nil, newInvalidStepError(applyStepOptions(opts).name, "function body is nil")
	}
	return newFuncStep(fn, fn, opts)
}

func newFuncStep(fn Func, origin any, opts []StepOption) (Step, error) {
	o := applyStepOptions(opts)
	name := o.name
	if name == "" {
		name = funcName(origin)
		if name == "" {
			return nil, newInvalidStepError("", "cannot derive a name from an anonymous function")
		}
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &funcStep{name: name, fn: fn}, nil
}

// NewStateful creates a step around a callable object. The name comes
// from WithName, then from a Name() method on the handler, then from the
// handler's type name.
func NewStateful(h Handler, opts ...StepOption) (Step, error) {
	o := applyStepOptions(opts)
	if isNil(h) {
		return nil, newInvalidStepError(o.name, "handler is nil")
	}
	name := o.name
	if name == "" {
		if named, ok := h.(interface{ Name() string }); ok {
			name = named.Name()
		} else {
			name = typeName(h)
		}
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &statefulStep{name: name, handler: h}, nil
}

// Wrap turns a raw body into a Step. It accepts a Step, a Func, a
// func(Footprint) Footprint, a Handler, or any func(T) T or
// func(T) (T, error) where T implements Footprint.
func Wrap(body any, opts ...StepOption) (Step, error) {
	o := applyStepOptions(opts)
	if isNil(body) {
		return nil, newInvalidStepError(o.name, "step body is nil")
	}

	switch b := body.(type) {
	case Step:
		if o.name == "" || o.name == b.Name() {
			if err := checkName(b.Name()); err != nil {
				return nil, err
			}
			return b, nil
		}
		if err := checkName(o.name); err != nil {
			return nil, err
		}
		return &renamedStep{Step: b, name: o.name}, nil
	case Func:
		return newFuncStep(b, b, opts)
	case func(Footprint) (Footprint, error):
		return newFuncStep(b, b, opts)
	case func(Footprint) Footprint:
		return newFuncStep(func(fp Footprint) (Footprint, error) {
			return b(fp), nil
		}, b, opts)
	case Handler:
		return NewStateful(b, opts...)
	}

	return newReflectStep(body, opts)
}

// Must panics if err is non-nil. Use it for steps known at compile time.
func Must(step Step, err error) Step {
	if err != nil {
		panic("invalid step: " + err.Error())
	}
	return step
}

type funcStep struct {
	name string
	fn   Func
}

func (s *funcStep) Name() string { return s.name }

func (s *funcStep) Invoke(fp Footprint) (Footprint, error) {
	return s.fn(fp)
}

func (s *funcStep) CheckShape() error {
	if s.fn == nil {
		return errors.New("function body is nil")
	}
	return nil
}

type statefulStep struct {
	name    string
	handler Handler
}

func (s *statefulStep) Name() string { return s.name }

func (s *statefulStep) Invoke(fp Footprint) (Footprint, error) {
	return s.handler.Handle(fp)
}

func (s *statefulStep) CheckShape() error {
	if isNil(s.handler) {
		return errors.New("handler is nil")
	}
	return nil
}

type renamedStep struct {
	Step
	name string
}

func (s *renamedStep) Name() string { return s.name }

func (s *renamedStep) CheckShape() error {
	if c, ok := s.Step.(ShapeChecker); ok {
		return c.CheckShape()
	}
	return nil
}

var (
	footprintType = reflect.TypeOf((*Footprint)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// reflectStep adapts typed functions such as func(*MyFootprint) *MyFootprint.
type reflectStep struct {
	name string
	fn   reflect.Value
}

func newReflectStep(body any, opts []StepOption) (Step, error) {
	o := applyStepOptions(opts)
	v := reflect.ValueOf(body)
	if err := checkFuncShape(v.Type()); err != nil {
		return nil, newInvalidStepError(o.name, err.Error())
	}

	name := o.name
	if name == "" {
		name = funcName(body)
		if name == "" {
			return nil, newInvalidStepError("", "cannot derive a name from an anonymous function")
		}
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &reflectStep{name: name, fn: v}, nil
}

func (s *reflectStep) Name() string { return s.name }

func (s *reflectStep) Invoke(fp Footprint) (Footprint, error) {
	in := s.fn.Type().In(0)
	var arg reflect.Value
	if isNil(fp) {
		arg = reflect.Zero(in)
	} else {
		arg = reflect.ValueOf(fp)
		if !arg.Type().AssignableTo(in) {
			return fp, fmt.Errorf("step expects %s, got %T", in, fp)
		}
	}

	out := s.fn.Call([]reflect.Value{arg})

	var err error
	if len(out) == 2 && !out[1].IsNil() {
		err = out[1].Interface().(error)
	}
	next, _ := out[0].Interface().(Footprint)
	return next, err
}

func (s *reflectStep) CheckShape() error {
	if !s.fn.IsValid() || s.fn.IsNil() {
		return errors.New("function body is nil")
	}
	return checkFuncShape(s.fn.Type())
}

func checkFuncShape(t reflect.Type) error {
	if t.Kind() != reflect.Func {
		return fmt.Errorf("step body of type %s is not callable", t)
	}
	if t.IsVariadic() || t.NumIn() != 1 {
		return fmt.Errorf("step body must take exactly one argument, %s takes %d", t, t.NumIn())
	}
	if !t.In(0).Implements(footprintType) {
		return fmt.Errorf("step argument %s does not implement Footprint", t.In(0))
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("second result of %s must be error", t)
		}
	default:
		return fmt.Errorf("step body must return one footprint (and optionally an error), %s returns %d values", t, t.NumOut())
	}
	if !t.Out(0).Implements(footprintType) {
		return fmt.Errorf("step result %s does not implement Footprint", t.Out(0))
	}
	return nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newInvalidStepError(name, "step name is empty")
	}
	return nil
}

var anonymousFunc = regexp.MustCompile(`^(func)?\d+$`)

// funcName returns the declared identifier of a function value, or ""
// for anonymous functions.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	full := stripTypeArgs(rf.Name())
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	name := full
	if i := strings.LastIndex(full, "."); i >= 0 {
		name = full[i+1:]
	}
	if anonymousFunc.MatchString(name) {
		return ""
	}
	return name
}

// stripTypeArgs drops the "[...]" the runtime prints for instantiated
// generic functions and methods of generic types.
func stripTypeArgs(name string) string {
	for {
		open := strings.Index(name, "[")
		if open < 0 {
			return name
		}
		end := strings.Index(name[open:], "]")
		if end < 0 {
			return name[:open]
		}
		name = name[:open] + name[open+end+1:]
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return stripTypeArgs(t.Name())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
