package gate

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmguard/pmguard/internal/manager"
	"github.com/pmguard/pmguard/internal/policy"
	"github.com/pmguard/pmguard/internal/purl"
	"github.com/pmguard/pmguard/internal/riskapi"
	"github.com/pmguard/pmguard/internal/scan"
)

// These tests run the real pipeline stages against a fake risk
// service: classify, extract, translate, query, filter, decide.

func pipelineRequest(t *testing.T, managerName string, argv []string) scan.Request {
	t.Helper()
	m, ok := manager.Lookup(managerName)
	if !ok {
		t.Fatalf("unknown manager %s", managerName)
	}
	return scan.NewRequest(m, argv, false, false)
}

func TestEndToEndCleanInstallAllows(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"dependencies": {"lodash": "^4.17.21"}}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Safe dependencies: no alert rows at all.
	}))
	defer srv.Close()

	req := pipelineRequest(t, "npm", []string{"install"})
	if !scan.NeedsScanning(req) {
		t.Fatal("bare install must scan")
	}

	purls := purl.Batch(scan.ExtractPackages(req, dir))
	if len(purls) != 1 || purls[0] != "pkg:npm/lodash@^4.17.21" {
		t.Fatalf("purls = %v", purls)
	}

	var out bytes.Buffer
	g := &Gate{
		Client: riskapi.New(srv.URL, ""),
		Policy: policy.FromToggles(false, false),
		Stderr: &out,
	}
	alerts, err := g.QueryAndFilter(context.Background(), purls)
	if err != nil {
		t.Fatal(err)
	}
	res := g.Decide(req.ManagerName, alerts)
	if res.ShouldExit {
		t.Error("clean install must delegate")
	}
	if out.Len() != 0 {
		t.Errorf("clean install must be silent, got %q", out.String())
	}
}

func TestEndToEndMaliciousExecBlocks(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"purl":"pkg:npm/maliciously-named-pkg","alerts":[{"type":"malware","action":"error","blocked":true,"description":"install script exfiltrates env"}]}` + "\n"))
	}))
	defer srv.Close()

	req := pipelineRequest(t, "npm", []string{"exec", "maliciously-named-pkg"})
	purls := purl.Batch(scan.ExtractPackages(req, t.TempDir()))

	var out bytes.Buffer
	g := &Gate{
		Client: riskapi.New(srv.URL, ""),
		Policy: policy.FromToggles(false, false),
		Stderr: &out,
	}
	alerts, err := g.QueryAndFilter(context.Background(), purls)
	if err != nil {
		t.Fatal(err)
	}
	res := g.Decide(req.ManagerName, alerts)

	if !res.ShouldExit || res.ExitCode != 1 {
		t.Fatalf("expected block with exit 1, got %+v", res)
	}
	if requests != 1 {
		t.Errorf("expected one batched request, got %d", requests)
	}
	text := out.String()
	if !strings.Contains(text, "pkg:npm/maliciously-named-pkg") || !strings.Contains(text, "error") {
		t.Errorf("report missing purl or action:\n%s", text)
	}
}

func TestEndToEndDryRunNeverTouchesNetwork(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	req := pipelineRequest(t, "npm", []string{"install", "left-pad", "--dry-run"})
	if scan.NeedsScanning(req) {
		t.Fatal("dry run must not scan")
	}
	// The classifier short-circuits before extraction; nothing should
	// ever have reached the service.
	if requests != 0 {
		t.Errorf("dry run made %d network calls", requests)
	}
}

func TestEndToEndNonInstallVerbSkips(t *testing.T) {
	for _, argv := range [][]string{{"run", "build"}, {"test"}, {"info", "lodash"}} {
		req := pipelineRequest(t, "npm", argv)
		if scan.NeedsScanning(req) {
			t.Errorf("npm %v must not scan", argv)
		}
	}
}
