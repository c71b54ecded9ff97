package mockauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"mockauth/internal/domain"
)

// Default identities used when a token omits them.
const (
	DefaultUserEntityRef  = "user:default/mock"
	DefaultServiceSubject = "external:test-service"
)

// Bare tokens carry no payload and resolve to the default identities.
const (
	MockUserToken        = "mock-user-token"
	MockServiceToken     = "mock-service-token"
	MockLimitedUserToken = "mock-limited-user-token"
)

// Tokens that are always rejected, for negative test cases.
const (
	MockInvalidUserToken        = "mock-invalid-user-token"
	MockInvalidServiceToken     = "mock-invalid-service-token"
	MockInvalidLimitedUserToken = "mock-invalid-limited-user-token"
)

// Prefixes of tokens with a JSON payload.
const (
	MockUserTokenPrefix        = MockUserToken + ":"
	MockServiceTokenPrefix     = MockServiceToken + ":"
	MockLimitedUserTokenPrefix = MockLimitedUserToken + ":"
)

const endOfInputMessage = "unexpected end of JSON input"

type userPayload struct {
	EntityRef *string `json:"entityRef,omitempty"`
}

type servicePayload struct {
	Subject        *string `json:"subject,omitempty"`
	TargetPluginID *string `json:"targetPluginId,omitempty"`
}

// ServiceTokenParams describes a service token. Empty fields are omitted.
type ServiceTokenParams struct {
	Subject        string
	TargetPluginID string
}

// UserToken returns the canonical mock token for a user. An empty ref or the
// default ref yields the bare MockUserToken.
func UserToken(entityRef string) string {
	return encodeUser(MockUserToken, entityRef)
}

// LimitedUserToken returns the canonical mock limited-access token for a user.
func LimitedUserToken(entityRef string) string {
	return encodeUser(MockLimitedUserToken, entityRef)
}

// ServiceToken returns the canonical mock token for a service. With no subject
// (or the default one) and no target the bare MockServiceToken is returned.
func ServiceToken(p ServiceTokenParams) string {
	return encodeService(p)
}

// encodeUser and encodeService omit fields equal to the package defaults, never
// an instance's configured defaults: an omitted field is resolved by the
// receiving Service.
func encodeUser(bare, entityRef string) string {
	if entityRef == "" || entityRef == DefaultUserEntityRef {
		return bare
	}
	return bare + ":" + mustMarshal(userPayload{EntityRef: &entityRef})
}

func encodeService(p ServiceTokenParams) string {
	var payload servicePayload
	if p.Subject != "" && p.Subject != DefaultServiceSubject {
		payload.Subject = &p.Subject
	}
	if p.TargetPluginID != "" {
		payload.TargetPluginID = &p.TargetPluginID
	}
	if payload.Subject == nil && payload.TargetPluginID == nil {
		return MockServiceToken
	}
	return MockServiceTokenPrefix + mustMarshal(payload)
}

// mustMarshal encodes payloads made only of string pointers, which cannot fail.
func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic("mockauth: encoding token payload: " + err.Error())
	}
	return string(b)
}

func decodeUserPayload(kind, raw string) (*string, error) {
	var p userPayload
	if err := decodePayload(kind, raw, &p); err != nil {
		return nil, err
	}
	if p.EntityRef != nil && *p.EntityRef == "" {
		return nil, &domain.ParseError{
			TokenKind: kind,
			Reason:    domain.ParseInvalidField,
			Err:       errors.New("entityRef must not be empty"),
		}
	}
	return p.EntityRef, nil
}

func decodeServicePayload(raw string) (servicePayload, error) {
	var p servicePayload
	if err := decodePayload("service", raw, &p); err != nil {
		return servicePayload{}, err
	}
	if p.Subject != nil && *p.Subject == "" {
		return servicePayload{}, &domain.ParseError{
			TokenKind: "service",
			Reason:    domain.ParseInvalidField,
			Err:       errors.New("subject must not be empty"),
		}
	}
	return p, nil
}

// decodePayload unmarshals a JSON object payload into v and classifies any
// failure as a domain.ParseError.
func decodePayload(kind, raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return &domain.ParseError{TokenKind: kind, Reason: parseReason(err), Err: err}
	}
	if trimmed := bytes.TrimSpace([]byte(raw)); len(trimmed) == 0 || trimmed[0] != '{' {
		return &domain.ParseError{
			TokenKind: kind,
			Reason:    domain.ParseInvalidField,
			Err:       errors.New("payload must be a JSON object"),
		}
	}
	return nil
}

func parseReason(err error) domain.ParseReason {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		if strings.Contains(syntaxErr.Error(), endOfInputMessage) {
			return domain.ParseEndOfInput
		}
		return domain.ParseUnexpectedToken
	}
	return domain.ParseInvalidField
}
