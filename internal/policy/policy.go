// Package policy maps the two user-facing risk toggles onto blocking
// predicates over alert actions.
package policy

import "github.com/pmguard/pmguard/internal/riskapi"

// Kind names the active policy.
type Kind string

const (
	// Default blocks on error, monitor and warn actions.
	Default Kind = "default"
	// AcceptRisks blocks only on error alerts the service marks blocked.
	AcceptRisks Kind = "accept_risks"
	// ViewAllRisks reports everything and blocks nothing.
	ViewAllRisks Kind = "view_all_risks"
)

// Policy is a pure predicate over alerts. The same predicate is passed
// to the service as a request-side filter and re-applied locally,
// because the service-side filter is advisory.
type Policy struct {
	Kind Kind
}

// FromToggles resolves the policy from the two env-driven toggles.
// viewAllRisks wins when both are set: display-only is the safer
// interpretation of contradictory input, since it still surfaces
// every alert.
func FromToggles(acceptRisks, viewAllRisks bool) Policy {
	switch {
	case viewAllRisks:
		return Policy{Kind: ViewAllRisks}
	case acceptRisks:
		return Policy{Kind: AcceptRisks}
	default:
		return Policy{Kind: Default}
	}
}

// Blocks reports whether the alert is severe enough to halt execution
// under this policy.
func (p Policy) Blocks(a riskapi.Alert) bool {
	switch p.Kind {
	case ViewAllRisks:
		return false
	case AcceptRisks:
		return a.Action == riskapi.ActionError && a.Blocked
	default:
		switch a.Action {
		case riskapi.ActionError, riskapi.ActionMonitor, riskapi.ActionWarn:
			return true
		}
		return false
	}
}

// QueryActions returns the action filter forwarded to the service so
// that non-relevant alerts are not transferred at all. ViewAllRisks
// requests everything; the other policies request only what they can
// block.
func (p Policy) QueryActions() []string {
	switch p.Kind {
	case ViewAllRisks:
		return nil
	case AcceptRisks:
		return []string{riskapi.ActionError}
	default:
		return []string{riskapi.ActionError, riskapi.ActionMonitor, riskapi.ActionWarn}
	}
}

// DisplayOnly reports whether the policy never blocks.
func (p Policy) DisplayOnly() bool {
	return p.Kind == ViewAllRisks
}
