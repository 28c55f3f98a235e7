// Package gate runs the risk query and turns the filtered alerts into
// a block-or-allow decision.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pmguard/pmguard/internal/policy"
	"github.com/pmguard/pmguard/internal/riskapi"
)

// Querier is the batched risk-service query the gate depends on.
type Querier interface {
	Query(ctx context.Context, purls, actions []string) (*riskapi.AlertsMap, error)
}

// Stopper is the spinner surface the gate owns during the query. Only
// the gate may stop it, and only immediately before writing to stderr.
type Stopper interface {
	Start()
	Stop()
}

// ProcessExitError is a simulated abnormal termination injected by
// test harnesses. Unlike infrastructure failures it must propagate
// unchanged so suites can assert on abnormal termination paths.
type ProcessExitError struct {
	Code int
}

func (e *ProcessExitError) Error() string {
	return fmt.Sprintf("process exit %d", e.Code)
}

// Result is the terminal value of the scan phase. ShouldExit true
// means the real package manager must never be invoked; ExitCode is
// set but the caller performs the actual termination so cleanup can
// still run.
type Result struct {
	ShouldExit bool
	ExitCode   int
	Alerts     *riskapi.AlertsMap
}

// Gate wires the query, the policy filter and the decision together.
type Gate struct {
	Client  Querier
	Policy  policy.Policy
	Spinner Stopper
	Stderr  io.Writer
	Debug   bool
}

// QueryAndFilter issues the single batched query for the PURL set and
// narrows the response to the alerts the active policy considers
// relevant. The policy's actions are forwarded as a request-side
// filter; because that filter is advisory the policy is re-applied
// locally on every returned alert.
//
// Infrastructure failures degrade to an empty map logged at debug
// level: a risk-service outage must never block unrelated work. A
// *ProcessExitError propagates unchanged.
func (g *Gate) QueryAndFilter(ctx context.Context, purls []string) (*riskapi.AlertsMap, error) {
	if len(purls) == 0 {
		return riskapi.NewAlertsMap(), nil
	}

	if g.Spinner != nil {
		g.Spinner.Start()
	}
	raw, err := g.Client.Query(ctx, purls, g.Policy.QueryActions())
	if g.Spinner != nil {
		g.Spinner.Stop()
	}
	if err != nil {
		var pe *ProcessExitError
		if errors.As(err, &pe) {
			return nil, err
		}
		g.debugf("risk query failed, continuing without alerts: %v", err)
		return riskapi.NewAlertsMap(), nil
	}

	filtered := riskapi.NewAlertsMap()
	for _, p := range raw.PURLs() {
		for _, a := range raw.Alerts(p) {
			if g.Policy.Blocks(a) || g.Policy.DisplayOnly() {
				filtered.Add(p, a)
			}
		}
	}
	return filtered, nil
}

// Decide applies the filtered alert set. Blocking policies exit on any
// alert; the display-only policy reports alerts but never exits. On a
// clean result the gate stays silent so the wrapped manager's own
// output is uncluttered.
func (g *Gate) Decide(managerName string, alerts *riskapi.AlertsMap) Result {
	if alerts.Len() == 0 {
		return Result{Alerts: alerts}
	}

	if g.Policy.DisplayOnly() {
		g.render(alerts)
		return Result{Alerts: alerts}
	}

	g.render(alerts)
	fmt.Fprintf(g.Stderr, "\nExiting %s: execution stopped due to risks\n", managerName)
	return Result{ShouldExit: true, ExitCode: 1, Alerts: alerts}
}

// render prints alerts grouped by PURL in service response order.
func (g *Gate) render(alerts *riskapi.AlertsMap) {
	for _, p := range alerts.PURLs() {
		fmt.Fprintf(g.Stderr, "%s\n", p)
		for _, a := range alerts.Alerts(p) {
			fmt.Fprintf(g.Stderr, "  [%s] %s: %s\n", a.Action, a.Type, a.Description)
		}
	}
}

func (g *Gate) debugf(format string, args ...any) {
	if g.Debug && g.Stderr != nil {
		fmt.Fprintf(g.Stderr, "debug: "+format+"\n", args...)
	}
}
