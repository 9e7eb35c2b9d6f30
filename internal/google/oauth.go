package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lonelyoctopus/gsheets-mcp/internal/logging"
)

// cacheDirName is the directory under the user cache dir where tokens live.
const cacheDirName = "gsheets-mcp"

// DefaultAccount is the account name used when none is specified.
const DefaultAccount = "default"

// tokenFileForAccount returns the token file path for the given account.
// The default account keeps the historical "google.token" name; other
// accounts get "<account>.token".
func tokenFileForAccount(account string) string {
	dir := filepath.Join(userCacheDir(), cacheDirName)
	if account == "" || account == DefaultAccount {
		return filepath.Join(dir, "google.token")
	}
	return filepath.Join(dir, sanitizeAccountName(account)+".token")
}

// sanitizeAccountName makes an account name safe to use as a file name.
// Email addresses are common account names, so "@" and path separators
// are replaced.
func sanitizeAccountName(account string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "@", "_at_", ":", "_", "..", "_")
	return r.Replace(account)
}

// HasTokenForAccount checks if a stored OAuth token exists for the account.
func HasTokenForAccount(account string) bool {
	_, err := os.ReadFile(tokenFileForAccount(account))
	return err == nil
}

// ListAccounts returns the account names that have a stored token.
func ListAccounts() ([]string, error) {
	dir := filepath.Join(userCacheDir(), cacheDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token directory: %w", err)
	}

	var accounts []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".token") {
			continue
		}
		if name == "google.token" {
			accounts = append(accounts, DefaultAccount)
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(name, ".token"))
	}
	return accounts, nil
}

// GetAuthURLForAccount returns the OAuth URL for user authorization.
func GetAuthURLForAccount(account string) string {
	conf := getOAuthConfig()
	return conf.AuthCodeURL("state-" + sanitizeAccountName(account))
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves
// them for the account.
func SaveTokenForAccount(ctx context.Context, authCode, account string) error {
	conf := getOAuthConfig()

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return writeTokenFile(account, t.AccessToken, t.RefreshToken)
}

// SaveRawTokenForAccount persists an already-issued token for the account.
// Used by the HTTP OAuth flow to share tokens with the STDIO transport.
func SaveRawTokenForAccount(t *oauth2.Token, account string) error {
	if t == nil {
		return fmt.Errorf("token is nil")
	}
	return writeTokenFile(account, t.AccessToken, t.RefreshToken)
}

// DeleteTokenForAccount removes the stored token for the account.
func DeleteTokenForAccount(account string) error {
	tokenFile := tokenFileForAccount(account)
	if err := os.Remove(tokenFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no token stored for account %s", account)
		}
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func writeTokenFile(account, accessToken, refreshToken string) error {
	tokenFile := tokenFileForAccount(account)

	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := accessToken + " " + refreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// getOAuthConfig returns the OAuth2 configuration shared by all Google services.
// Client credentials come from the environment so no secrets live in the binary.
func getOAuthConfig() *oauth2.Config {
	const OOB = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  OOB,
		Scopes: []string{
			"https://www.googleapis.com/auth/spreadsheets",
			"https://www.googleapis.com/auth/forms.body",
			"https://www.googleapis.com/auth/drive.readonly",
		},
	}
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the stored
// token for the account. The stored expiry is deliberately ancient so the
// source refreshes immediately, which validates the refresh token up front.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	conf := getOAuthConfig()

	slurp, err := os.ReadFile(tokenFileForAccount(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		slog.Warn("cached token invalid", logging.Account(account), logging.Err(err))
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// HTTPClientFromTokenSource builds an HTTP/1.1-only OAuth2 client from a
// token source. Used both for file tokens and tokens minted by the HTTP
// OAuth flow.
func HTTPClientFromTokenSource(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client
}

// GetAuthenticationErrorMessage returns an actionable message for a missing
// or unusable token, suitable for surfacing directly to the MCP client.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(
		"No Google OAuth token found for account %q. Run 'gsheets-mcp auth login --account %s' "+
			"with GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET set, then retry.",
		account, account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
