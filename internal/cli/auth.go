package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/hooks"
)

// errLogoutDeclined is returned when the logout confirmation was declined.
var errLogoutDeclined = errors.New("logout cancelled")

// readPassword reads a secret from the terminal without echo. Swapped in tests.
//
//nolint:gochecknoglobals // Test seam.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// loginParams holds the flags of "login".
type loginParams struct {
	tokenStdin bool
	verify     bool
}

// NewLoginCmd creates the "login" command, which stores an API token.
func NewLoginCmd() *cobra.Command {
	var params loginParams

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store the API token used by every command in the token file (auth.token_file,
default ~/.ogdash/token) with owner-only permissions.

The token is read from --token, from stdin with --token-stdin, or from an
interactive prompt. With --verify the token is checked against the API by
fetching the current workspace before it is stored.`,
		Example: `  # Prompt for the token
  ogdash login

  # Non-interactive
  echo "$OGDASH_API_TOKEN" | ogdash login --token-stdin

  # Check the token against a workspace first
  ogdash login --verify --workspace acme`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, params)
		},
	}

	cmd.Flags().BoolVar(&params.tokenStdin, "token-stdin", false, "read the token from stdin")
	cmd.Flags().BoolVar(&params.verify, "verify", false, "verify the token before storing it")

	return cmd
}

func runLogin(cmd *cobra.Command, params loginParams) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	token, err := readToken(cmd, params.tokenStdin)
	if err != nil {
		return err
	}

	if params.verify {
		env, envErr := newAPIEnv(cmd)
		if envErr != nil {
			return envErr
		}
		env.client.Session().SetToken(token)
		ws, verifyErr := await(ctx, hooks.CurrentWorkspace(env.deps))
		if verifyErr != nil {
			return fmt.Errorf("verifying token: %w", verifyErr)
		}
		cmd.Printf("Token accepted for workspace %s.\n", ws.Name)
	}

	if err = auth.SaveToken(cfg.Auth.TokenFile, token); err != nil {
		return err
	}

	logger.Info().Ctx(ctx).Str("token_file", cfg.Auth.TokenFile).Msg("token stored")
	cmd.Printf("Token stored in %s\n", cfg.Auth.TokenFile)
	return nil
}

// readToken takes the token from --token, stdin, or an interactive prompt.
func readToken(cmd *cobra.Command, fromStdin bool) (string, error) {
	if token, _ := cmd.Flags().GetString("token"); strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token), nil
	}

	if fromStdin {
		return readTokenFrom(cmd.InOrStdin())
	}

	if !stdinIsTerminal() {
		return "", errors.New("no terminal to prompt for the token, use --token-stdin")
	}
	cmd.Print("API token: ")
	secret, err := readPassword()
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(secret))
	if token == "" {
		return "", auth.ErrNoToken
	}
	return token, nil
}

// readTokenFrom reads the first line of r as the token.
func readTokenFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", auth.ErrNoToken
	}
	return token, nil
}

// NewLogoutCmd creates the "logout" command, which removes the stored token.
func NewLogoutCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Long: `Delete the token file. A token given through OGDASH_TOKEN or --token is not
affected. Asks for confirmation on a terminal unless --yes is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogout(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runLogout(cmd *cobra.Command, yes bool) error {
	cfg := config.GetGlobalConfig()
	path := cfg.Auth.TokenFile

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cmd.Println("Not logged in.")
		return nil
	}

	if !yes && stdinIsTerminal() {
		if result := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), "Remove the stored API token?"); !result.Accepted {
			return errLogoutDeclined
		}
	}

	if err := auth.RemoveToken(path); err != nil {
		return err
	}

	logger.Info().Ctx(cmd.Context()).Str("token_file", path).Msg("token removed")
	cmd.Printf("Token removed from %s\n", path)
	if os.Getenv(auth.EnvToken) != "" {
		cmd.Printf("Note: %s is still set in the environment.\n", auth.EnvToken)
	}
	return nil
}
