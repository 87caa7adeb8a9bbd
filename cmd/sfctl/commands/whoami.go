package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !store.LoggedIn() {
				return fmt.Errorf("not signed in")
			}
			store.FetchUser(cmd.Context())
			u := store.User()
			if u == nil {
				return fmt.Errorf("session expired; sign in again")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
}
