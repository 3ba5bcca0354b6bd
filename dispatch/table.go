package dispatch

import (
	"slices"

	"github.com/chazu/defgeneric/types"
)

// Method is the implementation of one method of a generic function.
// ctx gives access to the next method; args are the call arguments.
type Method func(ctx *Context, args ...any) (any, error)

// Overload is one method attached to a generic function.
type Overload struct {
	Signature *Signature
	Impl      Method
	Role      Role
}

// Candidate is an applicable overload with its score for one call.
type Candidate struct {
	Overload    *Overload
	Specificity Specificity
}

// OverloadTable holds the methods of one role, keyed by raw signature text
// and kept in definition order.
//
// The table is not safe for concurrent mutation; GenericFunction guards it.
type OverloadTable struct {
	role      Role
	overloads []*Overload
	index     map[string]int // signature text -> position in overloads
}

// NewOverloadTable creates an empty table for a role.
func NewOverloadTable(role Role) *OverloadTable {
	return &OverloadTable{
		role:  role,
		index: make(map[string]int),
	}
}

// Role returns the role this table serves.
func (t *OverloadTable) Role() Role {
	return t.role
}

// Upsert adds a method or replaces the one with identical signature text.
// A replaced method keeps its position.
func (t *OverloadTable) Upsert(text string, impl Method) (*Overload, error) {
	if pos, ok := t.index[text]; ok {
		ov := &Overload{Signature: t.overloads[pos].Signature, Impl: impl, Role: t.role}
		t.overloads[pos] = ov
		return ov, nil
	}
	sig, err := CompileSignature(text)
	if err != nil {
		return nil, err
	}
	ov := &Overload{Signature: sig, Impl: impl, Role: t.role}
	t.index[text] = len(t.overloads)
	t.overloads = append(t.overloads, ov)
	return ov, nil
}

// Remove deletes the method with this signature text. It returns false if
// there was none.
func (t *OverloadTable) Remove(text string) bool {
	pos, ok := t.index[text]
	if !ok {
		return false
	}
	t.overloads = slices.Delete(t.overloads, pos, pos+1)
	delete(t.index, text)
	for i := pos; i < len(t.overloads); i++ {
		t.index[t.overloads[i].Signature.Text] = i
	}
	return true
}

// Lookup returns the method with this signature text, or nil.
func (t *OverloadTable) Lookup(text string) *Overload {
	if pos, ok := t.index[text]; ok {
		return t.overloads[pos]
	}
	return nil
}

// Len returns the number of methods in the table.
func (t *OverloadTable) Len() int {
	return len(t.overloads)
}

// Signatures returns the signature texts in definition order.
func (t *OverloadTable) Signatures() []string {
	result := make([]string, len(t.overloads))
	for i, ov := range t.overloads {
		result[i] = ov.Signature.Text
	}
	return result
}

// Candidates returns the methods applicable to args, most specific first.
// Ties keep definition order.
func (t *OverloadTable) Candidates(args []types.Info) []Candidate {
	return t.candidates(args, 1)
}

// ReversedCandidates returns the applicable methods least specific first.
// Ties still keep definition order.
func (t *OverloadTable) ReversedCandidates(args []types.Info) []Candidate {
	return t.candidates(args, -1)
}

func (t *OverloadTable) candidates(args []types.Info, factor int) []Candidate {
	var result []Candidate
	for _, ov := range t.overloads {
		if spec, ok := ov.Signature.Guard(args); ok {
			result = append(result, Candidate{Overload: ov, Specificity: spec})
		}
	}
	slices.SortStableFunc(result, func(a, b Candidate) int {
		return factor * CompareSpecificity(a.Specificity, b.Specificity)
	})
	return result
}
