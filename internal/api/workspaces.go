package api

import (
	"context"
	"net/http"
)

// Organization is the company owning a workspace.
type Organization struct {
	CompanyName   string `json:"companyName"`
	URL           string `json:"url"`
	AddressLine   string `json:"addressLine1"`
	City          string `json:"city"`
	Country       string `json:"country"`
	ContactPerson string `json:"contactPerson"`
	ContactPhone  string `json:"contactPhone"`
	ContactEmail  string `json:"contactEmail"`
}

// Workspace describes one tenant workspace.
type Workspace struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Tier         string        `json:"tier"`
	Size         string        `json:"size"`
	OwnerID      string        `json:"ownerId"`
	CreatedAt    string        `json:"createdAt"`
	Organization *Organization `json:"organization,omitempty"`
}

// ListWorkspacesRequest has no parameters; it exists so every operation shares
// the same descriptor shape.
type ListWorkspacesRequest struct{}

// ListWorkspaces returns the workspaces visible to the token. It is not
// workspace-scoped, so call.Workspace is ignored.
func (c *Client) ListWorkspaces(ctx context.Context, call Call, _ ListWorkspacesRequest) ([]Workspace, error) {
	var out []Workspace
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/workspace/api/v1/workspaces",
		Headers:  call.Headers,
		Unscoped: true,
		Refresh:  call.Refresh,
	}, &out)
	return out, err
}

// CurrentWorkspaceRequest has no parameters.
type CurrentWorkspaceRequest struct{}

// CurrentWorkspace returns the workspace call is addressed to.
func (c *Client) CurrentWorkspace(ctx context.Context, call Call, _ CurrentWorkspaceRequest) (Workspace, error) {
	var out Workspace
	err := c.get(ctx, call, "/workspace/api/v1/workspace/current", nil, &out)
	return out, err
}
