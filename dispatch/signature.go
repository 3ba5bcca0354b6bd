package dispatch

import (
	"strings"

	"github.com/chazu/defgeneric/types"
)

// Wildcard is the signature token that matches any argument.
const Wildcard = "*"

// NullarySignature is the signature text of a method taking no arguments.
const NullarySignature = "()"

// WildcardScore is the specificity contributed by a wildcard parameter.
// It is larger than any class chain index.
const WildcardScore = 1 << 30

// mismatch is the scorer result for an argument that does not fit.
const mismatch = -1

// scorer rates one classified argument against one parameter constraint.
type scorer func(arg types.Info) int

// Guard reports whether a method applies to classified arguments and, if
// so, how specifically each parameter matched.
type Guard func(args []types.Info) (Specificity, bool)

// Signature is a compiled method signature.
type Signature struct {
	Text   string   // raw text as given to DefineMethod
	Params []string // one type constraint per parameter
	Guard  Guard
}

// Arity returns the number of parameters.
func (s *Signature) Arity() int {
	return len(s.Params)
}

func (s *Signature) String() string {
	return s.Text
}

// CompileSignature parses a comma-separated list of type names into a
// Signature with its Guard.
func CompileSignature(text string) (*Signature, error) {
	params, err := parseParams(text)
	if err != nil {
		return nil, err
	}
	scorers := make([]scorer, len(params))
	for i, p := range params {
		scorers[i] = compileParam(p)
	}
	return &Signature{
		Text:   text,
		Params: params,
		Guard:  newGuard(scorers),
	}, nil
}

func parseParams(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &MalformedSignatureError{Signature: text, Reason: "empty signature"}
	}
	if trimmed == NullarySignature {
		return []string{}, nil
	}
	parts := strings.Split(trimmed, ",")
	params := make([]string, len(parts))
	for i, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			return nil, &MalformedSignatureError{Signature: text, Reason: "empty parameter type"}
		}
		if p != Wildcard && !isTypeName(p) {
			return nil, &MalformedSignatureError{Signature: text, Reason: "invalid type name " + p}
		}
		params[i] = p
	}
	return params, nil
}

// isTypeName accepts identifiers, optionally namespaced with "::".
func isTypeName(s string) bool {
	for _, seg := range strings.Split(s, "::") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case i > 0 && r >= '0' && r <= '9':
			default:
				return false
			}
		}
	}
	return true
}

func compileParam(p string) scorer {
	switch p {
	case Wildcard:
		return func(types.Info) int { return WildcardScore }
	case string(types.CategoryObject):
		return func(arg types.Info) int {
			if arg.Category != types.CategoryObject {
				return mismatch
			}
			return arg.Chain.Index(types.RootName)
		}
	}
	if types.IsCategory(p) {
		want := types.Category(p)
		return func(arg types.Info) int {
			if arg.Category == want {
				return 0
			}
			return mismatch
		}
	}
	return func(arg types.Info) int {
		return arg.Chain.Index(p)
	}
}

func newGuard(scorers []scorer) Guard {
	return func(args []types.Info) (Specificity, bool) {
		if len(args) != len(scorers) {
			return nil, false
		}
		spec := make(Specificity, len(scorers))
		for i, score := range scorers {
			s := score(args[i])
			if s == mismatch {
				return nil, false
			}
			spec[i] = s
		}
		return spec, true
	}
}
