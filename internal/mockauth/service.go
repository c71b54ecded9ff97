// Package mockauth is an in-memory stand-in for a backend auth service. It
// accepts and mints mock tokens (see the Mock*Token constants) instead of
// signed credentials, so that tests can assert identities deterministically.
package mockauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mockauth/internal/domain"
)

const defaultLimitedTokenTTL = time.Hour

// Defaults are the identities substituted for fields a token leaves out.
type Defaults struct {
	UserEntityRef  string
	ServiceSubject string
}

// StandardDefaults returns DefaultUserEntityRef and DefaultServiceSubject.
func StandardDefaults() Defaults {
	return Defaults{
		UserEntityRef:  DefaultUserEntityRef,
		ServiceSubject: DefaultServiceSubject,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults overrides the default identities. Empty fields keep the
// standard defaults.
func WithDefaults(d Defaults) Option {
	return func(s *Service) {
		if d.UserEntityRef != "" {
			s.defaults.UserEntityRef = d.UserEntityRef
		}
		if d.ServiceSubject != "" {
			s.defaults.ServiceSubject = d.ServiceSubject
		}
	}
}

// WithClock sets the time source used for limited token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimitedTokenTTL sets how long limited user tokens are reported valid.
func WithLimitedTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.limitedTokenTTL = ttl
		}
	}
}

// Service is a mock auth service for a single plugin. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	pluginID        string
	defaults        Defaults
	now             func() time.Time
	limitedTokenTTL time.Duration
}

// New returns a Service representing the plugin pluginID.
func New(pluginID string, opts ...Option) *Service {
	s := &Service{
		pluginID:        pluginID,
		defaults:        StandardDefaults(),
		now:             time.Now,
		limitedTokenTTL: defaultLimitedTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PluginID returns the plugin this service represents.
func (s *Service) PluginID() string { return s.pluginID }

// Defaults returns the identities substituted for omitted token fields.
func (s *Service) Defaults() Defaults { return s.defaults }

// Authenticate resolves a mock token into a credential. Limited user tokens
// are rejected; use AuthenticateLimited to accept them.
func (s *Service) Authenticate(_ context.Context, token string) (domain.Credential, error) {
	return s.authenticate(token, false)
}

// AuthenticateLimited is Authenticate that also accepts limited user tokens.
func (s *Service) AuthenticateLimited(_ context.Context, token string) (domain.Credential, error) {
	return s.authenticate(token, true)
}

func (s *Service) authenticate(token string, allowLimited bool) (domain.Credential, error) {
	switch token {
	case "":
		return domain.Credential{}, fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	case MockUserToken:
		return domain.UserCredential(s.defaults.UserEntityRef), nil
	case MockServiceToken:
		return domain.ServiceCredential(s.defaults.ServiceSubject), nil
	case MockLimitedUserToken:
		if !allowLimited {
			return domain.Credential{}, errLimitedNotAllowed
		}
		return domain.UserCredential(s.defaults.UserEntityRef), nil
	case MockInvalidUserToken:
		return domain.Credential{}, fmt.Errorf("%w: user token is invalid", domain.ErrInvalidToken)
	case MockInvalidServiceToken:
		return domain.Credential{}, fmt.Errorf("%w: service token is invalid", domain.ErrInvalidToken)
	case MockInvalidLimitedUserToken:
		return domain.Credential{}, fmt.Errorf("%w: limited user token is invalid", domain.ErrInvalidToken)
	}

	if raw, ok := strings.CutPrefix(token, MockUserTokenPrefix); ok {
		return s.decodeUser("user", raw)
	}
	if raw, ok := strings.CutPrefix(token, MockLimitedUserTokenPrefix); ok {
		if !allowLimited {
			return domain.Credential{}, errLimitedNotAllowed
		}
		return s.decodeUser("limited user", raw)
	}
	if raw, ok := strings.CutPrefix(token, MockServiceTokenPrefix); ok {
		return s.decodeService(raw)
	}
	return domain.Credential{}, domain.ErrInvalidToken
}

var errLimitedNotAllowed = fmt.Errorf("%w: limited user tokens are not allowed", domain.ErrInvalidToken)

func (s *Service) decodeUser(kind, raw string) (domain.Credential, error) {
	ref, err := decodeUserPayload(kind, raw)
	if err != nil {
		return domain.Credential{}, err
	}
	if ref == nil {
		return domain.UserCredential(s.defaults.UserEntityRef), nil
	}
	return domain.UserCredential(*ref), nil
}

func (s *Service) decodeService(raw string) (domain.Credential, error) {
	p, err := decodeServicePayload(raw)
	if err != nil {
		return domain.Credential{}, err
	}
	if p.TargetPluginID != nil && *p.TargetPluginID != s.pluginID {
		return domain.Credential{}, &domain.TargetMismatchError{Expected: s.pluginID, Got: *p.TargetPluginID}
	}
	subject := s.defaults.ServiceSubject
	if p.Subject != nil {
		subject = *p.Subject
	}
	return domain.ServiceCredential(subject), nil
}

// GetOwnServiceCredentials returns the credential this plugin uses when it
// calls other plugins as itself.
func (s *Service) GetOwnServiceCredentials(_ context.Context) domain.Credential {
	return domain.ServiceCredential("plugin:" + s.pluginID)
}

// IsPrincipal reports whether cred is of the given kind. PrincipalUnknown
// matches every credential.
func (s *Service) IsPrincipal(cred domain.Credential, kind domain.PrincipalType) bool {
	return cred.Is(kind)
}

// PluginRequestTokenOptions selects the identity and audience of a delegated token.
type PluginRequestTokenOptions struct {
	OnBehalfOf     domain.Credential
	TargetPluginID string
}

// PluginRequestToken is a token to present to another plugin.
type PluginRequestToken struct {
	Token string `json:"token"`
}

// GetPluginRequestToken mints a token that re-asserts opts.OnBehalfOf towards
// opts.TargetPluginID. User tokens carry no target; service tokens are only
// accepted by a Service whose plugin id equals the target.
func (s *Service) GetPluginRequestToken(_ context.Context, opts PluginRequestTokenOptions) (PluginRequestToken, error) {
	cred := opts.OnBehalfOf
	switch cred.Type {
	case domain.PrincipalUser:
		if cred.UserEntityRef == "" {
			return PluginRequestToken{}, fmt.Errorf("%w: user credential has no entity ref", domain.ErrInvalidCredential)
		}
		return PluginRequestToken{Token: encodeUser(MockUserToken, cred.UserEntityRef)}, nil
	case domain.PrincipalService:
		if cred.Subject == "" {
			return PluginRequestToken{}, fmt.Errorf("%w: service credential has no subject", domain.ErrInvalidCredential)
		}
		return PluginRequestToken{
			Token: encodeService(ServiceTokenParams{
				Subject:        cred.Subject,
				TargetPluginID: opts.TargetPluginID,
			}),
		}, nil
	default:
		return PluginRequestToken{}, fmt.Errorf("%w: refusing to issue service token for credential type '%s'",
			domain.ErrUnsupportedPrincipal, cred.Type)
	}
}

// LimitedToken is a user token restricted to limited-access endpoints.
type LimitedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GetLimitedUserToken mints a limited-access token for a user credential.
func (s *Service) GetLimitedUserToken(_ context.Context, cred domain.Credential) (LimitedToken, error) {
	if cred.Type != domain.PrincipalUser {
		return LimitedToken{}, fmt.Errorf("%w: refusing to issue limited user token for credential type '%s'",
			domain.ErrUnsupportedPrincipal, cred.Type)
	}
	if cred.UserEntityRef == "" {
		return LimitedToken{}, fmt.Errorf("%w: user credential has no entity ref", domain.ErrInvalidCredential)
	}
	return LimitedToken{
		Token:     encodeUser(MockLimitedUserToken, cred.UserEntityRef),
		ExpiresAt: s.now().Add(s.limitedTokenTTL),
	}, nil
}

// PublicKeySet is a JWKS document.
type PublicKeySet struct {
	Keys []map[string]any `json:"keys"`
}

// ListPublicServiceKeys returns an empty key set; mock tokens are unsigned.
func (s *Service) ListPublicServiceKeys(_ context.Context) PublicKeySet {
	return PublicKeySet{Keys: []map[string]any{}}
}
