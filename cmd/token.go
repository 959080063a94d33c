package cmd

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const tokenPrefix = "amberctl_token_"

var saveToken bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage tokens for the local API server",
	Long:  `Generate and manage the tokens 'amberctl serve' accepts from non-local clients.`,
}

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new server token",
	Long: `Generate a random token for 'amberctl serve'.

The token will be printed to stdout. Use --save to append it to ~/.amberctl/tokens.
Generated tokens are 32 bytes (64 hex characters).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := generateSecureToken()
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Generated token:")
		fmt.Fprintln(out, token)
		fmt.Fprintln(out)

		if saveToken {
			path, err := tokenFilePath()
			if err != nil {
				return err
			}
			if err := saveTokenToFile(path, token); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			fmt.Fprintf(out, "Token saved to %s\n", path)
		}

		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  - Set environment variable: export AMBER_AUTH_TOKENS="+token)
		fmt.Fprintln(out, "  - Or use the saved token file at ~/.amberctl/tokens")
		fmt.Fprintln(out, "  - Include in requests: X-Auth-Token: <token>")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Note: Requests from the loopback interface (127.0.0.1, ::1) are always allowed without token.")

		return nil
	},
}

func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return tokenPrefix + hex.EncodeToString(bytes), nil
}

func tokenFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".amberctl", "tokens"), nil
}

func saveTokenToFile(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening token file: %w", err)
	}
	if _, err := fmt.Fprintln(f, token); err != nil {
		f.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	return f.Close()
}

// loadTokenFile returns the tokens saved by 'token generate --save'. A
// missing file yields no tokens and no error.
func loadTokenFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens, scanner.Err()
}

func init() {
	tokenGenerateCmd.Flags().BoolVarP(&saveToken, "save", "s", false, "Save token to ~/.amberctl/tokens")
	tokenCmd.AddCommand(tokenGenerateCmd)
	rootCmd.AddCommand(tokenCmd)
}
