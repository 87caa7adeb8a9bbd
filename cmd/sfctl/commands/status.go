package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/storefront/internal/apperror"
	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/router"
	"github.com/keyxmakerx/storefront/internal/sanitize"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session phase and the pages it can open",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			persisted, err := store.PersistedToken(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "storage: %s\nsession: %s\ntoken persisted: %t\n\n", home, store.Phase(), persisted != "")

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ROUTE\tPATH\tACCESS")
			for _, r := range router.Table() {
				access := "allowed"
				if d := router.Decide(r.Path, "", store.LoggedIn()); !d.Allow {
					access = "redirect " + d.Redirect
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Path, access)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, m := range router.Lint(router.Table()) {
				fmt.Fprintf(out, "warning: %s\n", m)
			}
			return nil
		},
	}
}

// describe turns an auth failure into a one-line message.
func describe(err error) error {
	apiErr, ok := authapi.AsError(err)
	switch {
	case ok && apiErr.Unauthorized():
		return errors.New("invalid email or password")
	case ok && apiErr.IsValidation() && apiErr.Message != "":
		return errors.New(sanitize.Message(apiErr.Message))
	case ok:
		return fmt.Errorf("authentication service returned %d", apiErr.StatusCode)
	default:
		return fmt.Errorf("%s (%w)", apperror.NewBadGateway(err).Message, err)
	}
}
