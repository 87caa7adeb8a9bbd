package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store its access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || email == "" {
				return fmt.Errorf("name and email required (--name, --email)")
			}
			pw, err := resolvePassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}

			if err := store.Register(cmd.Context(), name, email, pw); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (default: $SFCTL_PASSWORD, then one line of stdin)")
	return cmd
}
