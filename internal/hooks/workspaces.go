package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

type (
	ListWorkspacesHook   = fetch.Hook[api.ListWorkspacesRequest, []api.Workspace]
	CurrentWorkspaceHook = fetch.Hook[api.CurrentWorkspaceRequest, api.Workspace]
)

// ListWorkspaces returns a hook over api.Client.ListWorkspaces. The call is
// unscoped, but the workspace is still resolved and validated first.
func ListWorkspaces(d Deps, opts ...fetch.Option) *ListWorkspacesHook {
	return newHook(d, "workspace.list", (*api.Client).ListWorkspaces, api.ListWorkspacesRequest{}, opts)
}

// CurrentWorkspace returns a hook over api.Client.CurrentWorkspace.
func CurrentWorkspace(d Deps, opts ...fetch.Option) *CurrentWorkspaceHook {
	return newHook(d, "workspace.current", (*api.Client).CurrentWorkspace, api.CurrentWorkspaceRequest{}, opts)
}
