package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

type (
	CreateThreadHook = fetch.Hook[api.SendMessageRequest, api.SendMessageResponse]
	ThreadDetailHook = fetch.Hook[api.ThreadRequest, api.ThreadResponse]
)

// CreateThread returns a hook over api.Client.CreateThread with auto-execute
// off, since sending a message is not idempotent.
func CreateThread(d Deps, req api.SendMessageRequest, opts ...fetch.Option) *CreateThreadHook {
	opts = append([]fetch.Option{fetch.WithAutoExecute(false)}, opts...)
	return newHook(d, "assistant.create_thread", (*api.Client).CreateThread, req, opts)
}

// ThreadDetail returns a hook over api.Client.ThreadDetail.
func ThreadDetail(d Deps, req api.ThreadRequest, opts ...fetch.Option) *ThreadDetailHook {
	return newHook(d, "assistant.thread_detail", (*api.Client).ThreadDetail, req, opts)
}
