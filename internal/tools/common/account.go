package common

import (
	"context"

	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
)

// GetAccountFromArgs resolves which Google account a tool call should use.
//
// An authenticated OAuth user always wins: the middleware puts the validated
// user into the context, and letting an "account" argument override it would
// allow one HTTP user to read another user's spreadsheets. Without OAuth
// (stdio transport), the explicit "account" argument selects among locally
// stored tokens, falling back to "default".
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if userInfo, ok := oauth.GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		return userInfo.Email
	}

	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return "default"
}
