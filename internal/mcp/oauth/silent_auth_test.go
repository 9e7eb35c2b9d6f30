package oauth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSilentAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"generic error", errors.New("something went wrong"), false},
		{"login_required message", errors.New("oauth error: login_required - user must log in"), true},
		{"consent_required message", errors.New("oauth error: consent_required - user must consent"), true},
		{"interaction_required message", errors.New("oauth error: interaction_required"), true},
		{"account_selection_required message", errors.New("oauth error: account_selection_required"), true},
		{"typed SilentAuthError", &SilentAuthError{Code: ErrorCodeLoginRequired, Description: "no session"}, true},
		{"access_denied is not silent", errors.New("oauth error: access_denied - user denied access"), false},
		{"invalid_request is not silent", errors.New("oauth error: invalid_request - bad request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSilentAuthError(tt.err))
		})
	}
}

func TestParseOAuthError(t *testing.T) {
	tests := []struct {
		code       string
		wantNil    bool
		wantSilent bool
	}{
		{"", true, false},
		{ErrorCodeLoginRequired, false, true},
		{ErrorCodeConsentRequired, false, true},
		{ErrorCodeInteractionRequired, false, true},
		{ErrorCodeAccountSelectionRequired, false, true},
		{"access_denied", false, false},
		{"invalid_request", false, false},
	}

	for _, tt := range tests {
		name := tt.code
		if name == "" {
			name = "empty code"
		}
		t.Run(name, func(t *testing.T) {
			err := ParseOAuthError(tt.code, "description")
			if tt.wantNil {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantSilent, IsSilentAuthError(err))
		})
	}
}

func TestParseCallbackQuery(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		errorCode  string
		errorURI   string
		wantErr    bool
		wantSilent bool
	}{
		{"successful callback", "auth_code_123", "", "", false, false},
		{"login_required", "", ErrorCodeLoginRequired, "", true, true},
		{"consent_required", "", ErrorCodeConsentRequired, "", true, true},
		{"access_denied", "", "access_denied", "", true, false},
		{"server_error with uri", "", "server_error", "https://example.com/error", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCallbackQuery(tt.code, "state_456", tt.errorCode, "description", tt.errorURI)
			require.NotNil(t, result)

			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, "state_456", result.State)
			assert.Equal(t, tt.errorCode, result.Error)
			assert.Equal(t, tt.errorURI, result.ErrorURI)
			assert.Equal(t, tt.wantErr, result.IsError())

			err := result.Err()
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantSilent, IsSilentAuthError(err))
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestSilentAuthErrorMessage(t *testing.T) {
	withDesc := &SilentAuthError{Code: ErrorCodeLoginRequired, Description: "user session expired"}
	assert.Equal(t, "silent authentication failed: login_required - user session expired", withDesc.Error())

	withoutDesc := &SilentAuthError{Code: ErrorCodeLoginRequired}
	assert.Equal(t, "silent authentication failed: login_required", withoutDesc.Error())
}

func TestAuthorizationURLOptions(t *testing.T) {
	maxAge := 3600
	opts := &AuthorizationURLOptions{
		Prompt:    PromptNone,
		LoginHint: "user@example.com",
		MaxAge:    &maxAge,
		Extra:     map[string]string{"custom_param": "custom_value"},
	}

	assert.Equal(t, "none", opts.Prompt)
	assert.Equal(t, "user@example.com", opts.LoginHint)
	require.NotNil(t, opts.MaxAge)
	assert.Equal(t, 3600, *opts.MaxAge)
	assert.Equal(t, "custom_value", opts.Extra["custom_param"])
}

func TestOIDCPromptConstants(t *testing.T) {
	assert.Equal(t, "none", PromptNone)
	assert.Equal(t, "login", PromptLogin)
	assert.Equal(t, "consent", PromptConsent)
	assert.Equal(t, "select_account", PromptSelectAccount)
}
