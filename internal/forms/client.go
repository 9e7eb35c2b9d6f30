package forms

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
)

// Client wraps the Google Forms API service
type Client struct {
	service *forms.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientWithService creates a client around an existing Forms service.
// Used by the HTTP transport where the authenticated client comes from the
// OAuth token store rather than a token file.
func NewClientWithService(service *forms.Service, account string) *Client {
	return &Client{service: service, account: account}
}

// NewClientWithTokenSource builds a client whose requests authenticate
// through the given token source, regardless of where its tokens come from.
func NewClientWithTokenSource(ctx context.Context, ts oauth2.TokenSource, account string) (*Client, error) {
	httpClient := google.HTTPClientFromTokenSource(ctx, ts)
	service, err := forms.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms service: %w", err)
	}
	return NewClientWithService(service, account), nil
}

// CreateForm creates a new form with the given title and optional description.
// The create call only accepts a title; a non-empty description is applied
// with a follow-up batchUpdate. If that second call fails the form still
// exists, so the error says so.
func (c *Client) CreateForm(ctx context.Context, title, description string) (*FormInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	form := &forms.Form{
		Info: &forms.Info{
			Title:         title,
			DocumentTitle: title,
		},
	}

	created, err := c.service.Forms.Create(form).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	if description != "" {
		req := &forms.BatchUpdateFormRequest{
			Requests: []*forms.Request{
				{
					UpdateFormInfo: &forms.UpdateFormInfoRequest{
						Info:       &forms.Info{Description: description},
						UpdateMask: "description",
					},
				},
			},
		}

		if _, err := c.service.Forms.BatchUpdate(created.FormId, req).Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("form %s created but setting description failed: %w", created.FormId, err)
		}
	}

	info := convertToFormInfo(created)
	info.Description = description
	return info, nil
}

// GetForm retrieves metadata for a specific form
func (c *Client) GetForm(ctx context.Context, formID string) (*FormInfo, error) {
	if formID == "" {
		return nil, fmt.Errorf("formID is required")
	}

	form, err := c.service.Forms.Get(formID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}

	return convertToFormInfo(form), nil
}

// ListResponses lists the submitted responses for a form
func (c *Client) ListResponses(ctx context.Context, formID string) ([]*ResponseInfo, error) {
	if formID == "" {
		return nil, fmt.Errorf("formID is required")
	}

	resp, err := c.service.Forms.Responses.List(formID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for form %s: %w", formID, err)
	}

	responses := make([]*ResponseInfo, len(resp.Responses))
	for i, r := range resp.Responses {
		responses[i] = convertToResponseInfo(r)
	}

	return responses, nil
}

// convertToFormInfo converts a Forms API form to our FormInfo type
func convertToFormInfo(f *forms.Form) *FormInfo {
	info := &FormInfo{
		FormID:       f.FormId,
		ResponderURI: f.ResponderUri,
		ItemCount:    len(f.Items),
	}

	if f.Info != nil {
		info.Title = f.Info.Title
		info.DocumentTitle = f.Info.DocumentTitle
		info.Description = f.Info.Description
	}

	return info
}

// convertToResponseInfo converts a Forms API response to our ResponseInfo type
func convertToResponseInfo(r *forms.FormResponse) *ResponseInfo {
	info := &ResponseInfo{
		ResponseID:        r.ResponseId,
		CreateTime:        r.CreateTime,
		LastSubmittedTime: r.LastSubmittedTime,
		RespondentEmail:   r.RespondentEmail,
	}

	if len(r.Answers) > 0 {
		info.Answers = make(map[string][]string, len(r.Answers))
		for questionID, answer := range r.Answers {
			if answer.TextAnswers == nil {
				continue
			}
			var values []string
			for _, ta := range answer.TextAnswers.Answers {
				if ta != nil {
					values = append(values, ta.Value)
				}
			}
			info.Answers[questionID] = values
		}
	}

	return info
}
