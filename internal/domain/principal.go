package domain

import "fmt"

// PrincipalType classifies a credential. PrincipalUnknown is a query-only kind
// that matches every credential; no credential carries it.
type PrincipalType int

const (
	PrincipalNone PrincipalType = iota
	PrincipalUser
	PrincipalService
	PrincipalUnknown
)

func (pt PrincipalType) String() string {
	switch pt {
	case PrincipalNone:
		return "none"
	case PrincipalUser:
		return "user"
	case PrincipalService:
		return "service"
	default:
		return "unknown"
	}
}

// ParsePrincipalType converts a principal type literal ("none", "user",
// "service", "unknown") into a PrincipalType.
func ParsePrincipalType(s string) (PrincipalType, error) {
	switch s {
	case "none":
		return PrincipalNone, nil
	case "user":
		return PrincipalUser, nil
	case "service":
		return PrincipalService, nil
	case "unknown":
		return PrincipalUnknown, nil
	default:
		return 0, fmt.Errorf("unknown principal type %q", s)
	}
}

func (pt PrincipalType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

func (pt *PrincipalType) UnmarshalText(b []byte) error {
	parsed, err := ParsePrincipalType(string(b))
	if err != nil {
		return err
	}
	*pt = parsed
	return nil
}

// Credential is the identity asserted by a caller. Only the field that belongs
// to Type is set: UserEntityRef for users, Subject for services. The zero value
// is an unauthenticated (none) credential.
type Credential struct {
	Type          PrincipalType `json:"type"`
	UserEntityRef string        `json:"userEntityRef,omitempty"`
	Subject       string        `json:"subject,omitempty"`
}

// NoneCredential returns a credential for an unauthenticated caller.
func NoneCredential() Credential {
	return Credential{Type: PrincipalNone}
}

// UserCredential returns a credential for the given user entity reference.
func UserCredential(entityRef string) Credential {
	return Credential{Type: PrincipalUser, UserEntityRef: entityRef}
}

// ServiceCredential returns a credential for the given service subject.
func ServiceCredential(subject string) Credential {
	return Credential{Type: PrincipalService, Subject: subject}
}

// Is reports whether the credential is of the given kind. PrincipalUnknown
// matches any credential.
func (c Credential) Is(kind PrincipalType) bool {
	return kind == PrincipalUnknown || c.Type == kind
}

// Identity returns the entity ref or subject carried by the credential, or ""
// for none.
func (c Credential) Identity() string {
	switch c.Type {
	case PrincipalUser:
		return c.UserEntityRef
	case PrincipalService:
		return c.Subject
	default:
		return ""
	}
}
