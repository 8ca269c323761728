package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

// TriggerComplianceHook is the hook type returned by TriggerCompliance.
type TriggerComplianceHook = fetch.Hook[api.TriggerComplianceRequest, api.TriggerResult]

// TriggerCompliance returns a hook over api.Client.TriggerCompliance with
// auto-execute off: a trigger is a side effect and only runs through
// ExecuteNow or ExecuteNowWith.
func TriggerCompliance(d Deps, req api.TriggerComplianceRequest, opts ...fetch.Option) *TriggerComplianceHook {
	opts = append([]fetch.Option{fetch.WithAutoExecute(false)}, opts...)
	return newHook(d, "schedule.trigger_compliance", (*api.Client).TriggerCompliance, req, opts)
}
