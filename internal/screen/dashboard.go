package screen

import (
	"fmt"

	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/vehicle"
)

// NotAvailable is shown for values the vehicle has not reported.
const NotAvailable = "N/A"

// PermissionDenied is the placeholder for a row whose permission is missing.
func PermissionDenied(p permission.Permission) string {
	return "Permission Denied: " + p.ShortName()
}

// cell is a formatted value; ok is false when the value was not reported.
type cell struct {
	text string
	ok   bool
}

var missing = cell{}

// gate resolves a row's text: the permission placeholder wins over N/A.
func gate(granted func(permission.Permission) bool, p permission.Permission, c cell) string {
	if p != "" && !granted(p) {
		return PermissionDenied(p)
	}
	if !c.ok {
		return NotAvailable
	}
	return c.text
}

func formatString(v *string) cell {
	if v == nil {
		return missing
	}
	return cell{*v, true}
}

func formatInt(v *int) cell {
	if v == nil {
		return missing
	}
	return cell{fmt.Sprintf("%d", *v), true}
}

func formatPercent(v *float64) cell {
	if v == nil {
		return missing
	}
	return cell{fmt.Sprintf("%.0f%%", *v), true}
}

func formatKilometers(meters *float64) cell {
	if meters == nil {
		return missing
	}
	return cell{fmt.Sprintf("%.1f km", *meters/1000), true}
}

func formatSpeed(mps *float64) cell {
	if mps == nil {
		return missing
	}
	return cell{fmt.Sprintf("%.1f km/h", *mps*3.6), true}
}

func formatYesNo(v *bool) cell {
	if v == nil {
		return missing
	}
	if *v {
		return cell{"Yes", true}
	}
	return cell{"No", true}
}

// dashboardRows lays out the snapshot for the given profile. Identity,
// odometer and speed are always shown; energy rows depend on the profile.
func dashboardRows(s vehicle.Snapshot, p profiler.Profile, granted func(permission.Permission) bool) []Row {
	row := func(title string, perm permission.Permission, c cell) Row {
		return NewRow(title, gate(granted, perm, c))
	}

	rows := []Row{
		row("Vehicle Make", "", formatString(s.Info.Make)),
		row("Vehicle Model", "", formatString(s.Info.Model)),
		row("Vehicle Year", "", formatInt(s.Info.Year)),
		row("Odometer", permission.CarMileage, formatKilometers(s.Info.OdometerMeters)),
		row("Speed", permission.CarSpeed, formatSpeed(s.Dynamics.SpeedMetersPerSecond)),
	}

	battery := func() Row {
		return row("Battery Level", permission.CarEnergy, formatPercent(s.Powertrain.StateOfChargePercent))
	}
	fuel := func() Row {
		return row("Fuel Level", permission.CarEnergy, formatPercent(s.Powertrain.FuelLevelPercent))
	}
	rangeRow := func() Row {
		return row("Remaining Range", permission.CarEnergy, formatKilometers(s.Powertrain.RemainingRangeMeters))
	}
	ports := func() []Row {
		return []Row{
			row("EV Port Connected", permission.CarEnergyPorts, formatYesNo(s.Charging.PortConnected)),
			row("EV Port Open", permission.CarEnergyPorts, formatYesNo(s.Charging.PortOpen)),
		}
	}

	switch p {
	case profiler.EV:
		rows = append(rows, battery(), rangeRow())
		rows = append(rows, ports()...)
	case profiler.PHEV:
		rows = append(rows, battery(), fuel(), rangeRow())
		rows = append(rows, ports()...)
	case profiler.ICE:
		rows = append(rows, fuel(), rangeRow())
	default:
		rows = append(rows,
			NewRow("Vehicle Profile", "Unknown or not yet determined"),
			battery(), fuel(), rangeRow())
	}
	return rows
}

