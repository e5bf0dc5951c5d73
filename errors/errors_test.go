package errors

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseConstruct,
				Kind:   KindTypeMismatch,
				Path:   []string{"Block", "Assign"},
				Node:   "Assign",
				Type:   "string",
				Detail: "expected int",
			},
			contains: []string{"[construct]", "type_mismatch", "Block.Assign", "Assign of type string", "expected int"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseReduce,
				Kind:  KindUnresolvedGoto,
			},
			contains: []string{"[reduce]", "unresolved_goto"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseExecute,
				Kind:   KindRuntimeFault,
				Detail: "division by zero",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[execute]", "runtime_fault", "division by zero", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseCompile,
		Kind:  KindUnsupported,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseReduce,
		Kind:  KindUnresolvedGoto,
		Node:  "goto case 2",
	}

	if !err.Is(&Error{Phase: PhaseReduce, Kind: KindUnresolvedGoto}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseAsync, Kind: KindUnresolvedGoto}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseReduce, Kind: KindUnsupported}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseReduce, Kind: KindUnresolvedGoto}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseConstruct, KindTypeMismatch).
		Path("Lambda", "Block").
		Node("Binary Add").
		Type("string").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "int", "string").
		Build()

	if err.Phase != PhaseConstruct {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConstruct)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "Lambda" || err.Path[1] != "Block" {
		t.Errorf("Path = %v, want [Lambda Block]", err.Path)
	}
	if err.Node != "Binary Add" {
		t.Errorf("Node = %v, want 'Binary Add'", err.Node)
	}
	if err.Type != "string" {
		t.Errorf("Type = %v, want 'string'", err.Type)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected int, got string" {
		t.Errorf("Detail = %v, want 'expected int, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	intType := reflect.TypeFor[int]()
	strType := reflect.TypeFor[string]()

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseConstruct, "Assign", intType, strType)
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Type != "string" || !strings.Contains(err.Detail, "int") {
			t.Errorf("Type=%v Detail=%v", err.Type, err.Detail)
		}
	})

	t.Run("TypeMismatch nil type", func(t *testing.T) {
		err := TypeMismatch(PhaseConstruct, "Assign", intType, nil)
		if err.Type != "<nil>" {
			t.Errorf("Type = %v, want <nil>", err.Type)
		}
	})

	t.Run("Arity", func(t *testing.T) {
		err := Arity(PhaseConstruct, "Call f", 2, 3)
		if err.Kind != KindArity {
			t.Errorf("Kind = %v, want %v", err.Kind, KindArity)
		}
		if err.Value != 3 {
			t.Errorf("Value = %v, want 3", err.Value)
		}
	})

	t.Run("DuplicateDeclaration", func(t *testing.T) {
		err := DuplicateDeclaration(PhaseConstruct, "Block", "x")
		if err.Kind != KindDuplicateDeclaration {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicateDeclaration)
		}
		if !strings.Contains(err.Detail, `"x"`) {
			t.Errorf("Detail = %v, should name the variable", err.Detail)
		}
	})

	t.Run("NonVoidLabel", func(t *testing.T) {
		err := NonVoidLabel(PhaseConstruct, "While", "continue")
		if err.Kind != KindNonVoidLabel {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNonVoidLabel)
		}
	})

	t.Run("PatternNotFound", func(t *testing.T) {
		err := PatternNotFound(PhaseConstruct, "ForEach", intType, "enumerator")
		if err.Kind != KindPatternNotFound || err.Type != "int" {
			t.Errorf("Kind=%v Type=%v", err.Kind, err.Type)
		}
	})

	t.Run("UnresolvedGoto", func(t *testing.T) {
		err := UnresolvedGoto("goto case 7")
		if err.Phase != PhaseReduce || err.Kind != KindUnresolvedGoto {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), "goto case 7") {
			t.Errorf("message %q should name the construct", err.Error())
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseAsync, "await in finally")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseConstruct, "field", "Name")
		if err.Kind != KindNotFound || !strings.Contains(err.Detail, `"Name"`) {
			t.Errorf("Kind=%v Detail=%v", err.Kind, err.Detail)
		}
	})

	t.Run("RuntimeFault", func(t *testing.T) {
		err := RuntimeFault("Binary Divide", "division by zero")
		if err.Phase != PhaseExecute || err.Kind != KindRuntimeFault {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(PhaseConfig, KindInvalidInput, cause, "read config")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause in the chain")
		}
	})
}
