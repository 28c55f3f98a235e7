// Package riskapi is the client for the remote threat-intelligence
// service. The service is the sole source of alerts; nothing in this
// repository synthesizes one.
package riskapi

// Alert actions, ordered by severity as the service defines them.
const (
	ActionError   = "error"
	ActionMonitor = "monitor"
	ActionWarn    = "warn"
	ActionIgnore  = "ignore"
)

// Alert is one risk finding for a package, as returned by the service.
type Alert struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	Blocked     bool   `json:"blocked"`
	Description string `json:"description"`
}

// AlertsMap maps PURLs to their alerts, preserving service response
// order for both keys and per-key alerts. Built fresh per scan and
// never cached across invocations.
type AlertsMap struct {
	keys   []string
	alerts map[string][]Alert
}

// NewAlertsMap returns an empty AlertsMap.
func NewAlertsMap() *AlertsMap {
	return &AlertsMap{alerts: make(map[string][]Alert)}
}

// Add appends an alert under the given PURL, registering the PURL in
// insertion order on first use.
func (m *AlertsMap) Add(purl string, a Alert) {
	if _, ok := m.alerts[purl]; !ok {
		m.keys = append(m.keys, purl)
	}
	m.alerts[purl] = append(m.alerts[purl], a)
}

// Len returns the number of PURLs with at least one alert.
func (m *AlertsMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// PURLs returns the PURLs in insertion order.
func (m *AlertsMap) PURLs() []string {
	return m.keys
}

// Alerts returns the alerts recorded for a PURL, in response order.
func (m *AlertsMap) Alerts(purl string) []Alert {
	return m.alerts[purl]
}
