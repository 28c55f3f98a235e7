package manager

import "testing"

func TestLookupKnownManagers(t *testing.T) {
	for _, name := range Names() {
		m, ok := Lookup(name)
		if !ok {
			t.Fatalf("expected %s to resolve", name)
		}
		if m.Bin == "" {
			t.Errorf("%s: empty binary name", name)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("cargo"); ok {
		t.Error("cargo should not resolve to a manager")
	}
}

func TestNpxIsImplicitDlx(t *testing.T) {
	m, _ := Lookup("npx")
	if !m.VerbImplicit() {
		t.Error("npx must treat every invocation as dlx")
	}
	if len(m.InstallVerbs) != 0 {
		t.Error("npx has no install verbs")
	}
}

func TestVerbTables(t *testing.T) {
	tests := []struct {
		manager string
		verb    string
		install bool
		dlx     bool
	}{
		{"npm", "install", true, false},
		{"npm", "i", true, false},
		{"npm", "exec", false, true},
		{"npm", "run", false, false},
		{"yarn", "add", true, false},
		{"yarn", "dlx", false, true},
		{"yarn", "test", false, false},
		{"pnpm", "add", true, false},
		{"pnpm", "dlx", false, true},
		{"pnpm", "why", false, false},
	}
	for _, tt := range tests {
		m, ok := Lookup(tt.manager)
		if !ok {
			t.Fatalf("lookup %s", tt.manager)
		}
		if m.InstallVerbs[tt.verb] != tt.install {
			t.Errorf("%s %s: install=%v, want %v", tt.manager, tt.verb, m.InstallVerbs[tt.verb], tt.install)
		}
		if m.DlxVerbs[tt.verb] != tt.dlx {
			t.Errorf("%s %s: dlx=%v, want %v", tt.manager, tt.verb, m.DlxVerbs[tt.verb], tt.dlx)
		}
	}
}
