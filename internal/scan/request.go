// Package scan decides whether a package-manager invocation needs a
// risk check and, when it does, which package specifiers to check.
package scan

import "github.com/pmguard/pmguard/internal/manager"

// Request is the immutable description of one wrapped invocation.
// It is constructed once at CLI entry; no component below the CLI
// reads the process environment or mutates it afterwards.
type Request struct {
	ManagerName  string
	Command      string
	RawArgs      []string
	AcceptRisks  bool
	ViewAllRisks bool
	InstallVerbs map[string]bool
	DlxVerbs     map[string]bool
	DryRunFlags  []string
}

// NewRequest builds a Request from the manager table and the raw
// argument vector as typed by the user (verb first, when present).
func NewRequest(m manager.Manager, argv []string, acceptRisks, viewAllRisks bool) Request {
	req := Request{
		ManagerName:  string(m.Kind),
		RawArgs:      argv,
		AcceptRisks:  acceptRisks,
		ViewAllRisks: viewAllRisks,
		InstallVerbs: m.InstallVerbs,
		DlxVerbs:     m.DlxVerbs,
		DryRunFlags:  m.DryRunFlags,
	}
	if m.VerbImplicit() {
		// npx: no verb grammar, the whole invocation is dlx.
		req.Command = ""
		return req
	}
	if len(argv) > 0 {
		req.Command = argv[0]
	}
	return req
}

// isDlx reports whether the invocation executes a package transiently.
func (r Request) isDlx() bool {
	return r.DlxVerbs[r.Command]
}

// isInstall reports whether the invocation persists packages.
func (r Request) isInstall() bool {
	return r.InstallVerbs[r.Command]
}
