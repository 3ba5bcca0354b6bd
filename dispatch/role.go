package dispatch

// Role selects how a method takes part in method combination.
type Role string

const (
	Primary Role = "primary"
	Before  Role = "before"
	After   Role = "after"
	Around  Role = "around"
)

// Roles lists the valid roles in table order.
var Roles = []Role{Around, Before, Primary, After}

// roleIndex maps a role to its table slot. The empty role means Primary.
func roleIndex(r Role) (int, error) {
	switch r {
	case Around:
		return 0, nil
	case Before:
		return 1, nil
	case Primary, "":
		return 2, nil
	case After:
		return 3, nil
	}
	return -1, &UnknownRoleError{Role: string(r)}
}

// ParseRole converts a role name to a Role. The empty string is Primary.
func ParseRole(s string) (Role, error) {
	if _, err := roleIndex(Role(s)); err != nil {
		return "", err
	}
	if s == "" {
		return Primary, nil
	}
	return Role(s), nil
}

// Chains reports whether methods of this role may call the next method.
func (r Role) Chains() bool {
	return r == Primary || r == Around || r == ""
}

func (r Role) String() string {
	if r == "" {
		return string(Primary)
	}
	return string(r)
}
