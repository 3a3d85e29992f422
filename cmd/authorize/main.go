// Command authorize performs the one-time interactive Gmail OAuth2 consent
// flow and stores the resulting token where the reconcile and api commands
// expect it.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/term"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadOrEnv()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "authorize: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	credBytes, err := os.ReadFile(cfg.Mailbox.CredentialsPath)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(credBytes, gmail.GmailModifyScope)
	if err != nil {
		return fmt.Errorf("unable to parse credentials: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println("Open the following URL in your browser and approve access:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()

	code, err := readAuthCode()
	if err != nil {
		return err
	}

	token, err := oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	if err := mailbox.SaveToken(cfg.Mailbox.TokenPath, token); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}

	fmt.Printf("Token saved to %s\n", cfg.Mailbox.TokenPath)
	return nil
}

// readAuthCode reads the authorization code without echoing it when stdin
// is a terminal.
func readAuthCode() (string, error) {
	fmt.Print("Authorization code: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("unable to read authorization code: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var code string
	if _, err := fmt.Fscan(os.Stdin, &code); err != nil {
		return "", fmt.Errorf("unable to read authorization code: %w", err)
	}
	return strings.TrimSpace(code), nil
}
