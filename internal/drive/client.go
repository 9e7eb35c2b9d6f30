package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
)

const (
	// SpreadsheetMimeType is the MIME type of native Google Sheets files
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// DefaultMaxResults is used when a listing does not specify a page size
	DefaultMaxResults = 20
)

// Client is a per-account handle on the Google Drive API.
type Client struct {
	service *drive.Service
	account string
}

// Account reports which account this client authenticates as.
func (c *Client) Account() string {
	return c.account
}

// NewClientWithService creates a client around an existing Drive service.
// Used by the HTTP transport where the authenticated client comes from the
// OAuth token store rather than a token file.
func NewClientWithService(service *drive.Service, account string) *Client {
	return &Client{service: service, account: account}
}

// NewClientWithTokenSource builds a client whose requests authenticate
// through the given token source, regardless of where its tokens come from.
func NewClientWithTokenSource(ctx context.Context, ts oauth2.TokenSource, account string) (*Client, error) {
	httpClient := google.HTTPClientFromTokenSource(ctx, ts)
	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return NewClientWithService(service, account), nil
}

// ListSpreadsheets lists Google Sheets files in the user's Drive,
// most recently modified first unless options say otherwise.
func (c *Client) ListSpreadsheets(ctx context.Context, options *ListOptions) ([]*FileInfo, string, error) {
	query := fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)

	call := c.service.Files.List().
		Context(ctx).
		Fields("nextPageToken, files(id, name, webViewLink, createdTime, modifiedTime, owners)").
		OrderBy("modifiedTime desc").
		PageSize(DefaultMaxResults)

	if options != nil {
		if options.NameContains != "" {
			query += fmt.Sprintf(" and name contains '%s'", escapeQueryValue(options.NameContains))
		}
		if options.MaxResults > 0 {
			call = call.PageSize(int64(options.MaxResults))
		}
		if options.OrderBy != "" {
			call = call.OrderBy(options.OrderBy)
		}
		if options.PageToken != "" {
			call = call.PageToken(options.PageToken)
		}
	}

	fileList, err := call.Q(query).Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list spreadsheets: %w", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}

	return files, fileList.NextPageToken, nil
}

// GetFile fetches metadata for one file by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, mimeType, createdTime, modifiedTime, webViewLink, owners").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// escapeQueryValue escapes single quotes and backslashes for the Drive
// query language so user input cannot break out of the quoted value.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// convertToFileInfo maps the raw API file onto the trimmed FileInfo shape.
func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			info.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	for _, owner := range f.Owners {
		if owner == nil {
			continue
		}
		info.Owners = append(info.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return info
}
