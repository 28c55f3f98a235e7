package manager

// Kind identifies a supported package manager.
type Kind string

const (
	Npm  Kind = "npm"
	Npx  Kind = "npx"
	Yarn Kind = "yarn"
	Pnpm Kind = "pnpm"
)

// Manager describes one package manager's command conventions: which
// sub-verbs install packages, which execute them transiently (dlx), and
// which flags turn an invocation into a dry run.
type Manager struct {
	Kind Kind
	// Bin is the real executable name resolved on PATH at delegation time.
	Bin string
	// InstallVerbs are sub-verbs that persist packages into the project.
	InstallVerbs map[string]bool
	// DlxVerbs are sub-verbs that fetch and execute a package without
	// installing it. For npx the whole invocation is a dlx invocation,
	// modeled as the empty verb.
	DlxVerbs map[string]bool
	// DryRunFlags abort scanning when present at any argument position.
	DryRunFlags []string
	// PermissionScoped reports whether the manager's runtime supports
	// process-level permission flags (fs-write scoping, child processes).
	PermissionScoped bool
}

// VerbImplicit reports whether the manager has no sub-verb grammar and
// treats every positional argument as a package to execute.
func (m Manager) VerbImplicit() bool {
	return m.DlxVerbs[""]
}

var registry = map[Kind]Manager{
	Npm: {
		Kind:             Npm,
		Bin:              "npm",
		InstallVerbs:     verbs("install", "i", "in", "ins", "add", "update", "up", "upgrade"),
		DlxVerbs:         verbs("exec", "x"),
		DryRunFlags:      []string{"--dry-run"},
		PermissionScoped: true,
	},
	Npx: {
		Kind:         Npx,
		Bin:          "npx",
		InstallVerbs: verbs(),
		DlxVerbs:     verbs(""),
		DryRunFlags:  []string{"--dry-run"},
	},
	Yarn: {
		Kind:         Yarn,
		Bin:          "yarn",
		InstallVerbs: verbs("add", "install", "up", "upgrade", "upgrade-interactive"),
		DlxVerbs:     verbs("dlx"),
		DryRunFlags:  []string{"--dry-run", "--mode=update-lockfile"},
	},
	Pnpm: {
		Kind:         Pnpm,
		Bin:          "pnpm",
		InstallVerbs: verbs("add", "install", "i", "update", "up", "upgrade"),
		DlxVerbs:     verbs("dlx", "exec", "x"),
		DryRunFlags:  []string{"--dry-run"},
	},
}

// Lookup resolves a manager by its CLI name.
func Lookup(name string) (Manager, bool) {
	m, ok := registry[Kind(name)]
	return m, ok
}

// Names returns the CLI names of all supported managers.
func Names() []string {
	return []string{string(Npm), string(Npx), string(Yarn), string(Pnpm)}
}

func verbs(vs ...string) map[string]bool {
	m := make(map[string]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}
