package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("email required (--email)")
			}
			pw, err := resolvePassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}

			if err := store.Login(cmd.Context(), email, pw); err != nil {
				return describe(err)
			}
			if u := store.User(); u != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
				return nil
			}
			// The token was issued but then discarded when loading the user failed.
			return fmt.Errorf("login succeeded but loading the user failed; the token was discarded")
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (default: $SFCTL_PASSWORD, then one line of stdin)")
	return cmd
}

// resolvePassword prefers the flag, then SFCTL_PASSWORD, then the first
// line of in.
func resolvePassword(in io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("SFCTL_PASSWORD"); env != "" {
		return env, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", fmt.Errorf("password required (--password, $SFCTL_PASSWORD or stdin)")
	}
	return pw, nil
}
