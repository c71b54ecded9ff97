package mockauth_test

import (
	"testing"

	"mockauth/internal/mockauth"
)

func TestTokenEncoding(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user bare", mockauth.UserToken(""), "mock-user-token"},
		{"user default collapses", mockauth.UserToken("user:default/mock"), "mock-user-token"},
		{"user ref", mockauth.UserToken("user:default/other"), `mock-user-token:{"entityRef":"user:default/other"}`},
		{"limited bare", mockauth.LimitedUserToken(""), "mock-limited-user-token"},
		{"limited ref", mockauth.LimitedUserToken("user:default/jane"), `mock-limited-user-token:{"entityRef":"user:default/jane"}`},
		{"service bare", mockauth.ServiceToken(mockauth.ServiceTokenParams{}), "mock-service-token"},
		{
			"service default subject collapses",
			mockauth.ServiceToken(mockauth.ServiceTokenParams{Subject: mockauth.DefaultServiceSubject}),
			"mock-service-token",
		},
		{
			"service subject",
			mockauth.ServiceToken(mockauth.ServiceTokenParams{Subject: "plugin:catalog"}),
			`mock-service-token:{"subject":"plugin:catalog"}`,
		},
		{
			"service target",
			mockauth.ServiceToken(mockauth.ServiceTokenParams{TargetPluginID: "test"}),
			`mock-service-token:{"targetPluginId":"test"}`,
		},
		{
			"service subject and target",
			mockauth.ServiceToken(mockauth.ServiceTokenParams{Subject: "external:other", TargetPluginID: "test"}),
			`mock-service-token:{"subject":"external:other","targetPluginId":"test"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}

func TestTokenPrefixesAreDistinct(t *testing.T) {
	prefixes := []string{
		mockauth.MockUserTokenPrefix,
		mockauth.MockServiceTokenPrefix,
		mockauth.MockLimitedUserTokenPrefix,
	}
	for i, a := range prefixes {
		for j, b := range prefixes {
			if i != j && len(a) <= len(b) && b[:len(a)] == a {
				t.Errorf("prefix %q shadows %q", a, b)
			}
		}
	}
}
