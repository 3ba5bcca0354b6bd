package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoApplicableMethod = errors.New("no applicable method")
	ErrNoNextMethod       = errors.New("no next method")
	ErrUnknownRole        = errors.New("unknown method role")
	ErrMalformedSignature = errors.New("malformed signature")
)

// NoApplicableMethodError is returned when neither around nor primary
// methods apply to the arguments of a call.
type NoApplicableMethodError struct {
	Name     string
	ArgTypes []string
}

func (e *NoApplicableMethodError) Error() string {
	return fmt.Sprintf("no applicable method for %s with argument types %s", e.Name, strings.Join(e.ArgTypes, ","))
}

func (e *NoApplicableMethodError) Unwrap() error { return ErrNoApplicableMethod }

// NoNextMethodError is returned by CallNextMethod when there is nothing
// left to continue to, when called from a before or after method, or when
// the call it belongs to has already returned.
type NoNextMethodError struct {
	Name string
	Role Role
}

func (e *NoNextMethodError) Error() string {
	if e.Name == "" {
		return "no next method found outside of a dispatch"
	}
	return fmt.Sprintf("no next method found for %s in %s", e.Name, e.Role)
}

func (e *NoNextMethodError) Unwrap() error { return ErrNoNextMethod }

// UnknownRoleError is returned for a role outside primary, before, after
// and around.
type UnknownRoleError struct {
	Role string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown method role %q", e.Role)
}

func (e *UnknownRoleError) Unwrap() error { return ErrUnknownRole }

// MalformedSignatureError is returned when a signature cannot be compiled.
type MalformedSignatureError struct {
	Signature string
	Reason    string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature %q: %s", e.Signature, e.Reason)
}

func (e *MalformedSignatureError) Unwrap() error { return ErrMalformedSignature }
