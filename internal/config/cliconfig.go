package config

// CliConfig holds the daemon options, loaded from flags and environment by
// multiconfig in main.
type CliConfig struct {
	// LayoutFile selects the hardware layout profile. Empty uses the
	// reference layout.
	LayoutFile string

	Broker   string `default:"tcp://192.168.1.200:1883"`
	HTTPAddr string `default:":80"`
	LogLevel string `default:"info"`

	// Mock replaces the ADC and GPIO backends with fakes for bench runs
	// without hardware.
	Mock bool

	// DisableMQTT runs without the telemetry publisher.
	DisableMQTT bool
}
