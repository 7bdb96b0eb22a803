package network

import "fmt"

// SpecError reports a problem found while building a Network from a
// declarative description: an unresolved endpoint, a bad curve, a
// type mismatch at a bus, or any other violation caught before the
// network is usable. Construction that fails with a SpecError returns
// no Network.
type SpecError struct {
	Descriptor int // index of the first violating descriptor, -1 if not descriptor-specific
	Name       string
	Err        error
}

func (e *SpecError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("network: spec error at descriptor %d (%s): %v", e.Descriptor, e.Name, e.Err)
	}
	return fmt.Sprintf("network: spec error at descriptor %d: %v", e.Descriptor, e.Err)
}

func (e *SpecError) Unwrap() error { return e.Err }

func specErr(idx int, name string, format string, args ...any) *SpecError {
	return &SpecError{Descriptor: idx, Name: name, Err: fmt.Errorf(format, args...)}
}

// PreconditionError reports a rejected mutation or start attempt: a
// missing callback binding, an out-of-range charge/temperature, or a
// reclose attempted while a breaker is still cooling down. The caller's
// state is left unchanged.
type PreconditionError struct {
	Component string
	Err       error
}

func (e *PreconditionError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("network: precondition failed for %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("network: precondition failed: %v", e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondErr(component string, format string, args ...any) *PreconditionError {
	return &PreconditionError{Component: component, Err: fmt.Errorf(format, args...)}
}

// ProgrammingError reports a runtime saturation that indicates a
// malformed network: curve extrapolation outside (0,1), or a paint/
// integrate traversal that exceeded the configured depth limit. These
// are fatal to the tick and to the solver; see solver.Driver.Err.
type ProgrammingError struct {
	Component string
	Tick      uint64
	Err       error
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("network: programming error at tick %d in %s: %v", e.Tick, e.Component, e.Err)
}

func (e *ProgrammingError) Unwrap() error { return e.Err }

func progErr(component string, tick uint64, format string, args ...any) *ProgrammingError {
	return &ProgrammingError{Component: component, Tick: tick, Err: fmt.Errorf(format, args...)}
}
