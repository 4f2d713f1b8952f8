package screen

import (
	"fmt"

	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/vehicle"
)

// HostInfo identifies the template host we are rendering for.
type HostInfo struct {
	Platform    string `json:"platform"`
	PackageName string `json:"package_name"`
	HostVersion string `json:"host_version"`
}

// DiagnosticsScreen shows connection details and per-signal listener state.
type DiagnosticsScreen struct {
	mgr  *manager.Manager
	host HostInfo
}

func NewDiagnosticsScreen(mgr *manager.Manager, host HostInfo) *DiagnosticsScreen {
	return &DiagnosticsScreen{mgr: mgr, host: host}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func statusText(st vehicle.ListenerStatus) string {
	if !st.Active {
		return "Inactive"
	}
	text := fmt.Sprintf("Active (%s)", st.Availability)
	if st.LastUpdated != nil {
		text += ", updated " + st.LastUpdated.Format("15:04:05")
	}
	return text
}

// Template renders the diagnostics pane.
func (d *DiagnosticsScreen) Template() PaneTemplate {
	rows := []Row{
		NewRow("Platform", orNA(d.host.Platform)),
		NewRow("Host Package", orNA(d.host.PackageName)),
		NewRow("Host Version", orNA(d.host.HostVersion)),
		NewRow("Detected Profile", d.mgr.Profile().Get().String()),
		NewRow("Raw Energy Profile", orNA(d.mgr.RawEnergyProfile().Get())),
	}
	for _, st := range d.mgr.Statuses() {
		rows = append(rows, NewRow(st.Name, statusText(st)))
	}
	return PaneTemplate{
		Title: "Diagnostics",
		Pane:  Pane{Rows: rows},
	}
}
