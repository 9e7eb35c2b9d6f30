package common

import (
	"context"
	"testing"

	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		args map[string]interface{}
		want string
	}{
		{
			name: "no account argument",
			ctx:  context.Background(),
			args: map[string]interface{}{},
			want: "default",
		},
		{
			name: "explicit account argument",
			ctx:  context.Background(),
			args: map[string]interface{}{"account": "work"},
			want: "work",
		},
		{
			name: "empty account argument falls back to default",
			ctx:  context.Background(),
			args: map[string]interface{}{"account": ""},
			want: "default",
		},
		{
			name: "non-string account argument falls back to default",
			ctx:  context.Background(),
			args: map[string]interface{}{"account": 42},
			want: "default",
		},
		{
			name: "oauth user wins over account argument",
			ctx: oauth.ContextWithUserInfo(context.Background(), &oauth.GoogleUserInfo{
				Email: "alice@example.com",
				Sub:   "sub-1",
			}),
			args: map[string]interface{}{"account": "work"},
			want: "alice@example.com",
		},
		{
			name: "oauth user without email falls back to argument",
			ctx: oauth.ContextWithUserInfo(context.Background(), &oauth.GoogleUserInfo{
				Sub: "sub-2",
			}),
			args: map[string]interface{}{"account": "personal"},
			want: "personal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAccountFromArgs(tt.ctx, tt.args); got != tt.want {
				t.Errorf("GetAccountFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}
