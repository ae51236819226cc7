package status

import (
	"fmt"

	"github.com/sweeney/smoker-controller/internal/control"
)

// Columns is the width of the character display.
const Columns = 16

const (
	heaterOnChar    = "*"
	heaterOffChar   = "<"
	standbyChar     = "="
	activeChar      = "."
	staleTempString = " ---"
)

// FormatLines renders a control summary as two fixed-width display lines.
//
// Line 1 shows elapsed cook time, the setpoint and the standby marker:
//
//	01:30  set 225 .
//
// Line 2 shows the oven and probe temperatures and the heater marker:
//
//	 224  163      *
//
// Stale temperatures render as " ---". Lines are always exactly Columns
// characters wide.
func FormatLines(s control.Summary) [2]string {
	hours := int(s.Elapsed.Hours())
	minutes := int(s.Elapsed.Minutes()) % 60
	if hours > 99 {
		hours, minutes = 99, 59
	}

	mode := activeChar
	if s.Standby {
		mode = standbyChar
	}
	heat := heaterOffChar
	if s.Heater == control.StateOn {
		heat = heaterOnChar
	}

	line1 := fmt.Sprintf("%02d:%02d  set %3d %s", hours, minutes, s.Target, mode)
	line2 := fmt.Sprintf("%4s %4s      %s",
		formatTemp(s.Oven, s.OvenStale),
		formatTemp(s.Probe, s.ProbeStale),
		heat)
	return [2]string{pad(line1), pad(line2)}
}

func formatTemp(temp float64, stale bool) string {
	if stale {
		return staleTempString
	}
	return fmt.Sprintf("%4.0f", temp)
}

func pad(line string) string {
	if len(line) >= Columns {
		return line[:Columns]
	}
	return line + fmt.Sprintf("%*s", Columns-len(line), "")
}
