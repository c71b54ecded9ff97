package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mockauth/internal/domain"
	"mockauth/internal/mockauth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a mock token",
	}
	cmd.AddCommand(
		newUserTokenCmd("user", "Print a mock user token", mockauth.UserToken),
		newUserTokenCmd("limited", "Print a mock limited user token", mockauth.LimitedUserToken),
		newServiceTokenCmd(),
	)
	return cmd
}

func newUserTokenCmd(use, short string, encode func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [entity-ref]",
		Short: short,
		Long:  short + ". Without an entity ref the token resolves to " + mockauth.DefaultUserEntityRef + ".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
				if err := domain.ValidateUserEntityRef(ref); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), encode(ref))
			return err
		},
	}
}

func newServiceTokenCmd() *cobra.Command {
	var params mockauth.ServiceTokenParams
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Print a mock service token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), mockauth.ServiceToken(params))
			return err
		},
	}
	cmd.Flags().StringVar(&params.Subject, "subject", "", "service subject (default "+mockauth.DefaultServiceSubject+")")
	cmd.Flags().StringVar(&params.TargetPluginID, "target", "", "plugin id the token is restricted to")
	return cmd
}
