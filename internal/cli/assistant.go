package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/hooks"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultAnswerWait   = 2 * time.Minute
)

// ErrRunFailed is returned when the assistant run ends in the failed state.
var ErrRunFailed = errors.New("assistant run failed")

// assistantAskParams holds the flags of "assistant ask".
type assistantAskParams struct {
	threadID string
	noWait   bool
	poll     time.Duration
	maxWait  time.Duration
}

// NewAssistantAskCmd creates the "assistant ask" command.
func NewAssistantAskCmd() *cobra.Command {
	var params assistantAskParams

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the workspace assistant a question",
		Long: `Send a message to the workspace assistant and wait for its answer.

Without --thread a new conversation is started. --no-wait prints the thread
and run IDs immediately; fetch the answer later with "ogdash assistant thread".`,
		Example: `  # Ask a question
  ogdash assistant ask "Which connections had the largest cost increase last month?"

  # Follow up in the same conversation
  ogdash assistant ask --thread thread_abc "And the month before?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistantAsk(cmd, strings.Join(args, " "), params)
		},
	}

	cmd.Flags().StringVar(&params.threadID, "thread", "", "continue an existing conversation")
	cmd.Flags().BoolVar(&params.noWait, "no-wait", false, "do not wait for the answer")
	cmd.Flags().DurationVar(&params.poll, "poll", defaultPollInterval, "interval between answer checks")
	cmd.Flags().DurationVar(&params.maxWait, "max-wait", defaultAnswerWait, "give up waiting after this long")

	return cmd
}

func runAssistantAsk(cmd *cobra.Command, content string, params assistantAskParams) error {
	ctx := cmd.Context()
	if params.poll <= 0 || params.maxWait <= 0 {
		return errors.New("poll and max-wait must be > 0")
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	sent, err := trigger(ctx, hooks.CreateThread(env.deps, api.SendMessageRequest{
		ThreadID: params.threadID,
		Content:  content,
	}))
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	logger.Debug().Ctx(ctx).
		Str("thread_id", sent.ThreadID).
		Str("run_id", sent.RunID).
		Msg("assistant message sent")

	if params.noWait {
		cmd.Printf("thread: %s\nrun:    %s\n", sent.ThreadID, sent.RunID)
		return nil
	}

	thread, err := pollThread(ctx, env, api.ThreadRequest{ThreadID: sent.ThreadID, RunID: sent.RunID},
		params.poll, params.maxWait)
	if err != nil {
		return err
	}
	return renderThread(cmd, sent.ThreadID, thread, true)
}

// pollThread re-executes the thread hook every interval until the run is done,
// maxWait elapses, or ctx ends.
func pollThread(
	ctx context.Context, env *apiEnv, req api.ThreadRequest, interval, maxWait time.Duration,
) (api.ThreadResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	deps := env.deps
	deps.Context = ctx
	h := hooks.ThreadDetail(deps, req)
	defer h.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		thread, err := settled(ctx, h)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return api.ThreadResponse{}, fmt.Errorf("no answer after %s, check later with 'ogdash assistant thread %s'",
				maxWait, req.ThreadID)
		case err != nil:
			return api.ThreadResponse{}, fmt.Errorf("fetching thread: %w", err)
		case thread.Status == api.RunFailed:
			return thread, ErrRunFailed
		case thread.Done():
			return thread, nil
		}

		select {
		case <-ctx.Done():
			return api.ThreadResponse{}, fmt.Errorf("no answer after %s, check later with 'ogdash assistant thread %s'",
				maxWait, req.ThreadID)
		case <-ticker.C:
			h.ExecuteNow()
		}
	}
}

// NewAssistantThreadCmd creates the "assistant thread" command.
func NewAssistantThreadCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "thread <thread-id>",
		Short: "Show an assistant conversation",
		Args:  cobra.ExactArgs(1),
		Example: `  # Full conversation
  ogdash assistant thread thread_abc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistantThread(cmd, api.ThreadRequest{ThreadID: args[0], RunID: runID})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "report the status of this run")

	return cmd
}

func runAssistantThread(cmd *cobra.Command, req api.ThreadRequest) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	thread, err := await(ctx, hooks.ThreadDetail(env.deps, req))
	if err != nil {
		return fmt.Errorf("fetching thread %s: %w", req.ThreadID, err)
	}
	return renderThread(cmd, req.ThreadID, thread, false)
}

// renderThread prints a conversation. lastOnly limits table output to the
// final assistant message.
func renderThread(cmd *cobra.Command, threadID string, thread api.ThreadResponse, lastOnly bool) error {
	messages := thread.Messages
	if lastOnly {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == "assistant" {
				messages = messages[i:]
				break
			}
		}
	}

	return render(cmd, thread, thread.Messages, func(w *tabwriter.Writer, _ *message.Printer) error {
		if !lastOnly {
			fmt.Fprintf(w, "thread %s (%s)\n\n", threadID, orDash(thread.Status))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		// Message bodies are free text and bypass the column writer.
		out := cmd.OutOrStdout()
		for _, m := range messages {
			if lastOnly {
				fmt.Fprintln(out, m.Content)
				continue
			}
			fmt.Fprintf(out, "%s:\n%s\n\n", m.Role, m.Content)
		}
		return nil
	})
}
