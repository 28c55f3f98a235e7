// Package delegate builds and runs the subprocess launch plan for the
// real package manager, entered only after the gate allowed the
// invocation.
package delegate

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pmguard/pmguard/internal/manager"
)

// wrapperFlags are consumed by the shadow binary and must never reach
// the real package manager.
var wrapperFlags = map[string]bool{
	"--accept-risks":   true,
	"--view-all-risks": true,
}

// Spec is the fully resolved launch plan: executable path, cleaned
// argument vector, normalized stdio, hardening environment and the
// one-shot IPC handshake payload.
type Spec struct {
	BinPath   string
	Args      []string
	Stdio     []string
	Env       []string
	Handshake map[string]any
}

// Options carries the configuration the handshake and hardening need.
type Options struct {
	APIToken        string
	ProgressEnabled bool
	ProjectDir      string
}

// Build resolves the real manager binary and assembles the launch
// plan. Resolution failure is fatal and reported verbatim: silently
// continuing would leave the user believing the install succeeded.
func Build(m manager.Manager, args []string, opts Options) (*Spec, error) {
	bin, err := resolveBinary(m.Bin)
	if err != nil {
		return nil, err
	}

	env := hardenEnv(os.Environ(), m, opts.ProjectDir)

	return &Spec{
		BinPath:   bin,
		Args:      StripWrapperFlags(args),
		Stdio:     NormalizeStdio([]string{"inherit", "inherit", "inherit"}),
		Env:       env,
		Handshake: NewHandshake(opts.APIToken, string(m.Kind), opts.ProgressEnabled, nil),
	}, nil
}

// resolveBinary finds the real manager executable on PATH, skipping
// the shadow binary itself so an installed shim never recurses into
// this process.
func resolveBinary(name string) (string, error) {
	self, _ := os.Executable()
	selfDir := filepath.Dir(self)

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("delegate: locate %s: %w", name, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("delegate: resolve %s: %w", name, err)
	}

	if filepath.Dir(abs) == selfDir {
		// The first PATH hit is our own shim; search the remaining
		// entries for the genuine binary.
		for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
			if dir == "" || dir == selfDir {
				continue
			}
			candidate := filepath.Join(dir, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("delegate: %s resolves only to the shadow shim at %s", name, abs)
	}
	return abs, nil
}

// StripWrapperFlags removes shadow-only flags while preserving the
// manager's native flags unmodified and everything after the first --
// terminator verbatim.
func StripWrapperFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		if wrapperFlags[a] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// NormalizeStdio guarantees an IPC entry in the stdio configuration.
// A short configuration is padded to four entries with "ipc" appended;
// a configuration already containing "ipc" passes through unchanged,
// which makes normalization idempotent.
func NormalizeStdio(stdio []string) []string {
	for _, s := range stdio {
		if s == "ipc" {
			return stdio
		}
	}
	out := make([]string, 0, len(stdio)+1)
	out = append(out, stdio...)
	return append(out, "ipc")
}

// NormalizeStdioShorthand expands the string shorthand ("inherit",
// "pipe", "ignore") into the full four-element form.
func NormalizeStdioShorthand(mode string) []string {
	return NormalizeStdio([]string{mode, mode, mode})
}

// NewHandshake builds the flat one-shot IPC payload. Receivers must
// tolerate unknown extra keys, so extras are merged in as-is without
// clobbering the fixed fields.
func NewHandshake(apiToken, binName string, progress bool, extra map[string]any) map[string]any {
	h := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		h[k] = v
	}
	h["shadowApiToken"] = MaskToken(apiToken)
	h["shadowBinName"] = binName
	h["shadowProgressEnabled"] = progress
	return h
}

// MaskToken hides all but the last four characters of a token. The
// masked form is enough for the injected instrumentation inside the
// child to correlate, but useless for authenticating anew.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// Node hardening flags applied to every delegated manager.
var baseNodeFlags = []string{"--no-warnings", "--frozen-intrinsics"}

// hardenEnv merges runtime hardening into NODE_OPTIONS without
// overwriting flags the user already set. Managers whose runtime
// supports permission scoping additionally get filesystem writes
// restricted to the project directory with child processes allowed.
func hardenEnv(environ []string, m manager.Manager, projectDir string) []string {
	flags := append([]string{}, baseNodeFlags...)
	if m.PermissionScoped && projectDir != "" {
		flags = append(flags,
			"--permission",
			"--allow-fs-write="+filepath.Join(projectDir, "*"),
			"--allow-child-process",
		)
	}

	out := make([]string, 0, len(environ)+1)
	existing := ""
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "NODE_OPTIONS="); ok {
			existing = v
			continue
		}
		out = append(out, kv)
	}
	return append(out, "NODE_OPTIONS="+MergeNodeOptions(existing, flags))
}

// MergeNodeOptions appends each flag missing from existing, keeping
// pre-existing user flags first and untouched.
func MergeNodeOptions(existing string, flags []string) string {
	merged := strings.Fields(existing)
	for _, f := range flags {
		name, _, _ := strings.Cut(f, "=")
		present := false
		for _, have := range merged {
			haveName, _, _ := strings.Cut(have, "=")
			if haveName == name {
				present = true
				break
			}
		}
		if !present {
			merged = append(merged, f)
		}
	}
	return strings.Join(merged, " ")
}
