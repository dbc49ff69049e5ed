package dataset

// Display timezone for all timestamps shown to the user. Naive timestamps in
// loaded files are interpreted in this zone.
const DisplayTZName = "America/Los_Angeles"

// Column names with special meaning in sensor exports.
const (
	counterColumnName = "Time (s)"
	modeColumnName    = "Mode"
)

// SensorDescriptions maps sensor tag fragments (matched case-insensitively
// against column headers) to human descriptions appended to display labels.
var SensorDescriptions = map[string]string{
	"AT-100": "Inlet CO2 (ppm)",
	"AT-200": "Outlet CO2 (ppm)",
	"AT-300": "Dew Point (°C)",
	"FT-100": "Inlet Flow (SLPM)",
	"TT-100": "Gas Delivery Temperature (°C)",
	"TT-200": "Ambient Air Temperature (°C)",
	"PT-100": "System Pressure (psi)",
	"PT-200": "Vacuum Pressure (psi)",
}

// Default auto-selections applied after a file loads. Matched against
// upper-cased column headers, same as the description lookup.
var (
	DefaultLeftAxisSensors = []string{"AT-100", "AT-200"}
	DefaultInletSensors    = []string{"AT-100"}
	DefaultOutletSensors   = []string{"AT-200"}
	DefaultFlowSensors     = []string{"FT-100"}
)
