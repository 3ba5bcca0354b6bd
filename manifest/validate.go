package manifest

import (
	"fmt"
	"text/template"

	"github.com/chazu/defgeneric/dispatch"
	"github.com/chazu/defgeneric/types"
)

// reservedClassNames lists names a manifest class cannot take: the
// built-in classes and the primitive categories.
var reservedClassNames = map[string]bool{
	types.RootName:        true,
	types.ArrayClass.Name: true,
	types.MapClass.Name:   true,
	dispatch.Wildcard:     true,
}

// IsReservedClassName reports whether name is a built-in class or a
// primitive category and so cannot be declared.
func IsReservedClassName(name string) bool {
	return reservedClassNames[name] || types.IsCategory(name)
}

// checkClassName accepts the same names a signature parameter does.
func checkClassName(name string) error {
	if name == "" {
		return fmt.Errorf("class with empty name")
	}
	if IsReservedClassName(name) {
		return fmt.Errorf("class %s: name is reserved", name)
	}
	sig, err := dispatch.CompileSignature(name)
	if err != nil || sig.Arity() != 1 || sig.Params[0] != name {
		return fmt.Errorf("class %q: not a valid type name", name)
	}
	return nil
}

// Validate checks the manifest for errors that would prevent Build.
func (m *Manifest) Validate() error {
	if _, err := m.classOrder(); err != nil {
		return err
	}

	generics := make(map[string]bool, len(m.Generics))
	for _, g := range m.Generics {
		if g.Name == "" {
			return fmt.Errorf("generic with empty name")
		}
		if generics[g.Name] {
			return fmt.Errorf("generic %s declared twice", g.Name)
		}
		generics[g.Name] = true

		for i, md := range g.Methods {
			if err := md.validate(); err != nil {
				return fmt.Errorf("generic %s, method %d: %w", g.Name, i+1, err)
			}
		}
	}

	for i, c := range m.Calls {
		if !generics[c.Generic] {
			return fmt.Errorf("call %d: unknown generic %q", i+1, c.Generic)
		}
		for j, a := range c.Args {
			if err := a.validate(m); err != nil {
				return fmt.Errorf("call %d (%s), argument %d: %w", i+1, c.Generic, j, err)
			}
		}
	}
	return nil
}

func (md MethodDecl) validate() error {
	if _, err := dispatch.CompileSignature(md.Signature); err != nil {
		return err
	}
	role, err := dispatch.ParseRole(md.Role)
	if err != nil {
		return err
	}
	if md.Returns != "" && !role.Chains() {
		return fmt.Errorf("%s method %q cannot set returns", role, md.Signature)
	}
	for _, text := range []string{md.Returns, md.Log} {
		if _, err := parseBody(text); err != nil {
			return err
		}
	}
	return nil
}

func (a ArgDecl) validate(m *Manifest) error {
	n := 0
	if a.Class != "" {
		n++
	}
	if a.Number != nil {
		n++
	}
	if a.String != nil {
		n++
	}
	if a.Bool != nil {
		n++
	}
	if a.Array != nil {
		n++
	}
	if a.Null {
		n++
	}
	if a.Undefined {
		n++
	}
	switch {
	case n == 0:
		return fmt.Errorf("no value given")
	case n > 1:
		return fmt.Errorf("more than one value given")
	case a.Slots != nil && a.Class == "":
		return fmt.Errorf("slots given without a class")
	case a.Class != "" && !m.hasClass(a.Class):
		return fmt.Errorf("unknown class %s", a.Class)
	}
	return nil
}

func (m *Manifest) hasClass(name string) bool {
	if name == types.RootName || name == types.ArrayClass.Name || name == types.MapClass.Name {
		return true
	}
	for _, c := range m.Classes {
		if c.Name == name {
			return true
		}
	}
	return false
}

// classOrder returns the class declarations with every parent before its
// children, so they can be defined in one pass.
func (m *Manifest) classOrder() ([]ClassDecl, error) {
	byName := make(map[string]ClassDecl, len(m.Classes))
	for _, c := range m.Classes {
		if err := checkClassName(c.Name); err != nil {
			return nil, err
		}
		if _, ok := byName[c.Name]; ok {
			return nil, fmt.Errorf("class %s declared twice", c.Name)
		}
		byName[c.Name] = c
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(byName))
	order := make([]ClassDecl, 0, len(byName))

	var visit func(c ClassDecl) error
	visit = func(c ClassDecl) error {
		switch state[c.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("class %s inherits from itself", c.Name)
		}
		state[c.Name] = visiting
		if c.Parent != "" {
			parent, ok := byName[c.Parent]
			switch {
			case ok:
				if err := visit(parent); err != nil {
					return err
				}
			case !m.hasClass(c.Parent):
				return fmt.Errorf("class %s: unknown parent %s", c.Name, c.Parent)
			}
		}
		state[c.Name] = done
		order = append(order, c)
		return nil
	}

	// Declaration order drives the walk so the result is deterministic.
	for _, c := range m.Classes {
		if err := visit(c); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// parseBody parses a method body template. Function bindings are replaced
// per call; these placeholders let Parse resolve the names.
func parseBody(text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	t, err := template.New("body").Funcs(placeholderFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("bad template %q: %w", text, err)
	}
	return t, nil
}
