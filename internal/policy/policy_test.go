package policy

import (
	"testing"

	"github.com/pmguard/pmguard/internal/riskapi"
)

func TestFromToggles(t *testing.T) {
	tests := []struct {
		accept, viewAll bool
		want            Kind
	}{
		{false, false, Default},
		{true, false, AcceptRisks},
		{false, true, ViewAllRisks},
		{true, true, ViewAllRisks},
	}
	for _, tt := range tests {
		if got := FromToggles(tt.accept, tt.viewAll).Kind; got != tt.want {
			t.Errorf("FromToggles(%v, %v) = %s, want %s", tt.accept, tt.viewAll, got, tt.want)
		}
	}
}

func TestDefaultBlocksSevereActions(t *testing.T) {
	p := FromToggles(false, false)
	tests := []struct {
		alert riskapi.Alert
		want  bool
	}{
		{riskapi.Alert{Action: riskapi.ActionError}, true},
		{riskapi.Alert{Action: riskapi.ActionMonitor}, true},
		{riskapi.Alert{Action: riskapi.ActionWarn}, true},
		{riskapi.Alert{Action: riskapi.ActionIgnore}, false},
		{riskapi.Alert{Action: "license"}, false},
	}
	for _, tt := range tests {
		if got := p.Blocks(tt.alert); got != tt.want {
			t.Errorf("default Blocks(%s) = %v, want %v", tt.alert.Action, got, tt.want)
		}
	}
}

func TestAcceptRisksStrictlyNarrowerThanDefault(t *testing.T) {
	def := FromToggles(false, false)
	accept := FromToggles(true, false)

	alerts := []riskapi.Alert{
		{Action: riskapi.ActionError, Blocked: true},
		{Action: riskapi.ActionError, Blocked: false},
		{Action: riskapi.ActionMonitor, Blocked: true},
		{Action: riskapi.ActionWarn},
		{Action: riskapi.ActionIgnore},
	}

	narrower := false
	for _, a := range alerts {
		if accept.Blocks(a) && !def.Blocks(a) {
			t.Errorf("acceptRisks blocks %+v but default does not", a)
		}
		if def.Blocks(a) && !accept.Blocks(a) {
			narrower = true
		}
	}
	if !narrower {
		t.Error("acceptRisks should be strictly narrower than default")
	}
}

func TestViewAllRisksNeverBlocks(t *testing.T) {
	p := FromToggles(false, true)
	for _, action := range []string{riskapi.ActionError, riskapi.ActionMonitor, riskapi.ActionWarn} {
		if p.Blocks(riskapi.Alert{Action: action, Blocked: true}) {
			t.Errorf("viewAllRisks must not block %s", action)
		}
	}
	if !p.DisplayOnly() {
		t.Error("viewAllRisks is display-only")
	}
}

func TestQueryActions(t *testing.T) {
	if got := FromToggles(false, false).QueryActions(); len(got) != 3 {
		t.Errorf("default query actions = %v", got)
	}
	if got := FromToggles(true, false).QueryActions(); len(got) != 1 || got[0] != riskapi.ActionError {
		t.Errorf("acceptRisks query actions = %v", got)
	}
	if got := FromToggles(false, true).QueryActions(); got != nil {
		t.Errorf("viewAllRisks query actions = %v, want nil (everything)", got)
	}
}
