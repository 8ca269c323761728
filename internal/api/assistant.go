package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// SendMessageRequest posts a message to the assistant, starting a new thread
// when ThreadID is empty.
type SendMessageRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Content  string `json:"content"`
}

// Validate requires message content.
func (r SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content", ErrMissingParameter)
	}
	return nil
}

// SendMessageResponse identifies the thread and the run answering the message.
type SendMessageResponse struct {
	ThreadID string `json:"thread_id"`
	RunID    string `json:"run_id"`
}

// CreateThread sends a message to the assistant.
func (c *Client) CreateThread(ctx context.Context, call Call, req SendMessageRequest) (SendMessageResponse, error) {
	var out SendMessageResponse
	err := c.send(ctx, call, http.MethodPost, "/assistant/api/v1/thread", nil, req, &out)
	return out, err
}

// ThreadRequest reads a thread, optionally for one run.
type ThreadRequest struct {
	ThreadID string
	RunID    string
}

// Validate requires the thread ID.
func (r ThreadRequest) Validate() error {
	_, err := pathParam("thread id", r.ThreadID)
	return err
}

// Run states reported by ThreadDetail.
const (
	RunQueued     = "queued"
	RunInProgress = "in_progress"
	RunCompleted  = "completed"
	RunFailed     = "failed"
)

// Message is one thread message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ThreadResponse is a thread's messages and the run's status.
type ThreadResponse struct {
	Messages []Message `json:"messages"`
	Status   string    `json:"status"`
}

// Done reports whether the run has finished.
func (r ThreadResponse) Done() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// ThreadDetail returns a thread's messages. Responses are never cached since
// the thread changes while the run progresses.
func (c *Client) ThreadDetail(ctx context.Context, call Call, req ThreadRequest) (ThreadResponse, error) {
	var out ThreadResponse
	id, err := pathParam("thread id", req.ThreadID)
	if err != nil {
		return out, err
	}
	err = c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      "/assistant/api/v1/thread/" + id,
		Query:     params{}.str("run_id", req.RunID).values(),
		Headers:   call.Headers,
		Workspace: call.Workspace,
		NoCache:   true,
	}, &out)
	return out, err
}
