package main

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"os"

	"golang.org/x/term"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/config"
	"github.com/foxzi/leadboard/internal/session"
)

// loginEmail signs backend commands in as this user instead of relying on the API key
var loginEmail string

func init() {
	rootCmd.PersistentFlags().StringVar(&loginEmail, "login", "", "Sign in to the backend as this email (prompts for the password)")
}

// backendClient returns a client for the configured backend, signed in when --login is set
func backendClient(ctx context.Context, cfg *config.Config) (*apiclient.Client, error) {
	client := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.APIKey)
	if loginEmail == "" {
		return client, nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", loginEmail)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client = client.WithJar(jar)

	user, err := backend.NewAuthService(client).Login(ctx, backend.Credentials{Email: loginEmail, Password: string(pw)})
	if err != nil {
		return nil, fmt.Errorf("login failed: %s", apiclient.Message(err, err.Error()))
	}
	if user == nil {
		return nil, fmt.Errorf("login failed: %w", session.ErrNoUser)
	}
	fmt.Fprintf(os.Stderr, "Signed in as %s\n", user.DisplayName())
	return client, nil
}
