package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/logging"
)

// Filter keys accepted by --filter.
const (
	filterConnector  = "connector"
	filterConnection = "connection"
	filterGroup      = "group"
)

// ErrInvalidFilter is returned for a --filter value that is not key=value
// with a known key.
var ErrInvalidFilter = errors.New("invalid filter")

// bindFilterFlag registers the repeatable --filter flag on cmd.
func bindFilterFlag(cmd *cobra.Command, filters *[]string) {
	cmd.Flags().StringArrayVar(filters, "filter", nil,
		"narrow by connector=AWS, connection=<id>, or group=<name> (repeatable)")
}

// ParseConnectionFilters turns "key=value" expressions into a connection
// filter. All expressions are validated before any is applied; empty strings
// are ignored. Values for the same key accumulate.
func ParseConnectionFilters(ctx context.Context, filters []string) (api.ConnectionFilter, error) {
	log := logging.FromContext(ctx)

	var out api.ConnectionFilter
	for _, f := range filters {
		if f == "" {
			continue
		}
		key, value, ok := strings.Cut(f, "=")
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)
		if !ok || value == "" {
			log.Warn().Ctx(ctx).
				Str("operation", "parse_filters").
				Str("filter", f).
				Msg("invalid filter expression")
			return api.ConnectionFilter{}, fmt.Errorf("%w %q: use key=value", ErrInvalidFilter, f)
		}

		switch key {
		case filterConnector:
			out.Connector = append(out.Connector, value)
		case filterConnection:
			out.ConnectionID = append(out.ConnectionID, value)
		case filterGroup:
			out.ConnectionGroup = append(out.ConnectionGroup, value)
		default:
			return api.ConnectionFilter{}, fmt.Errorf("%w %q: key must be one of %s, %s, %s",
				ErrInvalidFilter, f, filterConnector, filterConnection, filterGroup)
		}
	}

	log.Debug().Ctx(ctx).
		Str("operation", "parse_filters").
		Strs("connector", out.Connector).
		Strs("connection", out.ConnectionID).
		Strs("group", out.ConnectionGroup).
		Msg("connection filters parsed")
	return out, nil
}
