package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // node factories
	PhaseNormalize Phase = "normalize" // alias and shadow normalization
	PhasePercolate Phase = "percolate" // assignment percolation
	PhaseSpill     Phase = "spill"     // stack spilling
	PhaseReduce    Phase = "reduce"    // per-node reduction
	PhaseAsync     Phase = "async"     // coroutine lowering
	PhaseCompile   Phase = "compile"   // native tree compilation
	PhaseExecute   Phase = "execute"   // running compiled trees
	PhaseConfig    Phase = "config"    // tool configuration
)

// Kind categorizes the error
type Kind string

const (
	KindArity                Kind = "arity"
	KindTypeMismatch         Kind = "type_mismatch"
	KindDuplicateDeclaration Kind = "duplicate_declaration"
	KindNonVoidLabel         Kind = "non_void_label"
	KindPatternNotFound      Kind = "pattern_not_found"
	KindUnresolvedGoto       Kind = "unresolved_goto"
	KindUnsupported          Kind = "unsupported"
	KindInvalidInput         Kind = "invalid_input"
	KindNotFound             Kind = "not_found"
	KindRuntimeFault         Kind = "runtime_fault"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Node   string
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Node != "" || e.Type != "" {
		b.WriteString(": ")
		if e.Node != "" && e.Type != "" {
			b.WriteString(e.Node)
			b.WriteString(" of type ")
			b.WriteString(e.Type)
		} else if e.Node != "" {
			b.WriteString(e.Node)
		} else {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
	}

	if e.Detail != "" {
		if e.Node != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the node path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Node sets the name of the offending construct
func (b *Builder) Node(name string) *Builder {
	b.err.Node = name
	return b
}

// Type sets the offending type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, node string, want, got fmt.Stringer) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Node:   node,
		Type:   typeName(got),
		Detail: fmt.Sprintf("expected %s", typeName(want)),
	}
}

// Arity creates an argument count error
func Arity(phase Phase, node string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Node:   node,
		Detail: fmt.Sprintf("expected %d operand(s), got %d", want, got),
		Value:  got,
	}
}

// DuplicateDeclaration creates an error for a variable declared twice in one scope
func DuplicateDeclaration(phase Phase, node, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateDeclaration,
		Node:   node,
		Detail: fmt.Sprintf("variable %q declared more than once in the same scope", name),
	}
}

// NonVoidLabel creates an error for a typed label used where a void one is required
func NonVoidLabel(phase Phase, node, label string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNonVoidLabel,
		Node:   node,
		Detail: fmt.Sprintf("label %q must be void", label),
	}
}

// PatternNotFound creates an error for a type lacking a required method pattern
func PatternNotFound(phase Phase, node string, t fmt.Stringer, pattern string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPatternNotFound,
		Node:   node,
		Type:   typeName(t),
		Detail: fmt.Sprintf("no %s pattern", pattern),
	}
}

// UnresolvedGoto creates the fatal reduction error for goto case/default
// that no enclosing switch can satisfy
func UnresolvedGoto(node string) *Error {
	return &Error{
		Phase:  PhaseReduce,
		Kind:   KindUnresolvedGoto,
		Node:   node,
		Detail: "no matching case in the enclosing switch",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// RuntimeFault creates an execution fault raised by the native evaluator
func RuntimeFault(node, detail string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindRuntimeFault,
		Node:   node,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

func typeName(t fmt.Stringer) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
