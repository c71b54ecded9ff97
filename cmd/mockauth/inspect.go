package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"mockauth/internal/domain"
	"mockauth/internal/mockauth"
)

func newInspectCmd() *cobra.Command {
	var (
		pluginID string
		limited  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Authenticate a mock token and print its credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := mockauth.New(pluginID)
			authenticate := svc.Authenticate
			if limited {
				authenticate = svc.AuthenticateLimited
			}

			token := args[0]
			cred, err := authenticate(cmd.Context(), token)
			if err != nil {
				if hint, ok := describeJWT(token); ok && errors.Is(err, domain.ErrInvalidToken) {
					return fmt.Errorf("authenticating token as plugin %q: %w (%s)", pluginID, err, hint)
				}
				return fmt.Errorf("authenticating token as plugin %q: %w", pluginID, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cred)
		},
	}
	cmd.Flags().StringVar(&pluginID, "plugin-id", "test", "plugin id of the receiving service")
	cmd.Flags().BoolVar(&limited, "limited", false, "accept limited user tokens")
	return cmd
}

// describeJWT reports the unverified subject and audience of a real JWT, which
// the mock service never accepts.
func describeJWT(token string) (string, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", false
	}
	sub, _ := claims.GetSubject()
	aud, _ := claims.GetAudience()
	return fmt.Sprintf("token is a JWT for sub=%q aud=%q, not a mock token", sub, strings.Join(aud, ",")), true
}
