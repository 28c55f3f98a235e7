package scan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// manifest is the subset of package.json the extractor consults.
// Field order below is the flattening order.
type manifest struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
}

// ExtractPackages returns the package specifiers the invocation is
// about to install or execute.
//
// For dlx and explicit-package install verbs every positional argument
// after the verb is a candidate, trailing tool arguments included:
// overcapturing is fine because non-package tokens never survive PURL
// translation. For a bare install/upgrade the nearest package.json is
// flattened instead. A missing or unparsable manifest yields an empty
// list; it must never fail the user's install.
//
// An empty result is a valid terminal state and callers must
// short-circuit the risk query on it rather than issue a zero-PURL
// network call.
func ExtractPackages(req Request, dir string) []string {
	positionals := positionalArgs(req)

	if req.isDlx() {
		return positionals
	}
	if len(positionals) > 0 {
		return positionals
	}
	return manifestSpecifiers(dir)
}

// positionalArgs returns non-flag tokens after the verb. Everything
// after -- belongs to the sub-tool for dlx verbs and is still a
// candidate; flag filtering happens here, package filtering happens in
// the PURL translator.
func positionalArgs(req Request) []string {
	args := req.RawArgs
	if req.Command != "" && len(args) > 0 && args[0] == req.Command {
		args = args[1:]
	}

	var out []string
	for _, a := range args {
		if a == "--" || strings.HasPrefix(a, "-") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// manifestSpecifiers flattens the four dependency fields of the
// nearest package.json into name@range specifiers, in field order.
func manifestSpecifiers(dir string) []string {
	path := nearestManifest(dir)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}

	var out []string
	for _, deps := range []map[string]string{
		m.Dependencies,
		m.DevDependencies,
		m.OptionalDependencies,
		m.PeerDependencies,
	} {
		out = append(out, flatten(deps)...)
	}
	return out
}

// flatten emits name@range for every entry, sorted by name so the
// resulting batch is deterministic (Go map iteration is not).
func flatten(deps map[string]string) []string {
	if len(deps) == 0 {
		return nil
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name+"@"+deps[name])
	}
	return out
}

// nearestManifest walks upward from dir to the filesystem root looking
// for package.json.
func nearestManifest(dir string) string {
	for {
		candidate := filepath.Join(dir, "package.json")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
