package benchctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/pflag"

	"github.com/benchbus/benchbus/internal/version"
)

// APIResponse is the server's standard response envelope.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// InstrumentStatus is one entry in the instrument list response.
type InstrumentStatus struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
}

// MeasurementData is the measure response payload.
type MeasurementData struct {
	Primary   float64  `json:"primary"`
	Secondary *float64 `json:"secondary,omitempty"`
}

// FunctionRequest selects a measurement function on a meter.
type FunctionRequest struct {
	Function  string `json:"function"`
	Secondary bool   `json:"secondary,omitempty"`
}

// WaveformRequest configures a generator channel.
type WaveformRequest struct {
	Channel   int      `json:"channel"`
	Waveform  string   `json:"waveform,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	Amplitude *float64 `json:"amplitude,omitempty"`
	Offset    *float64 `json:"offset,omitempty"`
	Phase     *float64 `json:"phase,omitempty"`
	DutyCycle *float64 `json:"dutyCycle,omitempty"`
	Symmetry  *float64 `json:"symmetry,omitempty"`
}

// OutputRequest switches a channel output.
type OutputRequest struct {
	Channel int  `json:"channel"`
	On      bool `json:"on"`
}

// HTTPClient interface for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CLI represents the command line interface.
type CLI struct {
	config     *Config
	httpClient HTTPClient
	stdout     io.Writer
	stderr     io.Writer
}

// NewCLI creates a new CLI instance.
func NewCLI(cfg *Config, httpClient HTTPClient, stdout, stderr io.Writer) *CLI {
	return &CLI{
		config:     cfg,
		httpClient: httpClient,
		stdout:     stdout,
		stderr:     stderr,
	}
}

// CommandArgs represents parsed command line arguments.
type CommandArgs struct {
	Command string
	Args    []string
	Config  *Config

	Channel   int
	Display   string
	Secondary bool
	Waveform  string
	Frequency float64
	Amplitude float64
	Offset    float64
	Phase     float64
	DutyCycle float64
	Symmetry  float64

	// changed records which optional flags the user actually set, so
	// unset waveform parameters are left alone.
	changed map[string]bool
}

// Changed reports whether the named flag was explicitly set.
func (a *CommandArgs) Changed(name string) bool {
	return a.changed[name]
}

// ParseArgs parses command line arguments using pflag.CommandLine.
func ParseArgs(args []string) (*CommandArgs, error) {
	return ParseArgsWithFlagSet(args, pflag.CommandLine)
}

// ParseArgsWithFlagSet parses command line arguments with a custom flag set
// (for testing).
func ParseArgsWithFlagSet(args []string, fs *pflag.FlagSet) (*CommandArgs, error) {
	versionFlag := fs.Bool("version", false, "Show version and exit")
	helpFlag := fs.BoolP("help", "h", false, "Show help")

	cfg := NewConfig()
	cfg.AddFlags(fs)

	cmdArgs := &CommandArgs{Config: cfg}
	fs.IntVarP(&cmdArgs.Channel, "channel", "n", 1, "Instrument channel")
	fs.StringVarP(&cmdArgs.Display, "display", "D", "primary", "Display to read (primary, secondary or both)")
	fs.BoolVar(&cmdArgs.Secondary, "secondary", false, "Apply to the secondary display")
	fs.StringVarP(&cmdArgs.Waveform, "shape", "w", "", "Waveform shape")
	fs.Float64VarP(&cmdArgs.Frequency, "frequency", "f", 0, "Frequency in Hz")
	fs.Float64VarP(&cmdArgs.Amplitude, "amplitude", "a", 0, "Amplitude in volts")
	fs.Float64VarP(&cmdArgs.Offset, "offset", "o", 0, "DC offset in volts")
	fs.Float64Var(&cmdArgs.Phase, "phase", 0, "Start phase in degrees")
	fs.Float64Var(&cmdArgs.DutyCycle, "duty-cycle", 0, "Duty cycle in percent")
	fs.Float64Var(&cmdArgs.Symmetry, "symmetry", 0, "Ramp symmetry in percent")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *versionFlag {
		cmdArgs.Command = "version"
		return cmdArgs, nil
	}

	remainingArgs := fs.Args()
	if *helpFlag || len(remainingArgs) == 0 {
		cmdArgs.Command = "help"
		return cmdArgs, nil
	}

	if err := cfg.LoadConfigWithFlagSet(fs); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cmdArgs.Command = remainingArgs[0]
	cmdArgs.Args = remainingArgs[1:]
	cmdArgs.changed = make(map[string]bool)
	fs.Visit(func(flag *pflag.Flag) {
		cmdArgs.changed[flag.Name] = true
	})

	return cmdArgs, nil
}

// Execute runs the specified command.
func (c *CLI) Execute(cmdArgs *CommandArgs) error {
	switch cmdArgs.Command {
	case "version":
		version.ShowVersion()
		return nil
	case "help":
		c.showHelp()
		return nil
	case "list":
		return c.cmdList(cmdArgs.Args)
	case "connect":
		return c.cmdConnect(cmdArgs.Args)
	case "disconnect":
		return c.cmdDisconnect(cmdArgs.Args)
	case "identify":
		return c.cmdIdentify(cmdArgs.Args)
	case "reset":
		return c.cmdReset(cmdArgs.Args)
	case "measure":
		return c.cmdMeasure(cmdArgs)
	case "function":
		return c.cmdFunction(cmdArgs)
	case "waveform":
		return c.cmdWaveform(cmdArgs)
	case "output":
		return c.cmdOutput(cmdArgs)
	default:
		return fmt.Errorf("unknown command: %s", cmdArgs.Command)
	}
}

func (c *CLI) showHelp() {
	//nolint:errcheck
	fmt.Fprintf(c.stdout, `benchctl - Command line tool for controlling bench instruments

Usage: benchctl [flags] <command> [arguments]

Commands:
  list                           List configured instruments
  connect <instrument>           Connect to an instrument
  disconnect <instrument>        Disconnect from an instrument
  identify <instrument>          Show instrument identification
  reset <instrument>             Reset an instrument
  measure <instrument>           Read a measurement from a multimeter
  function <instrument> <func>   Select a multimeter function
  waveform <instrument>          Configure a generator channel
  output <instrument> on|off     Switch a channel output
  help                           Show this help
  version                        Show version information

Flags:
  -a, --amplitude float   Amplitude in volts
  -n, --channel int       Instrument channel (default 1)
      --config string     Config file to use (default "%s")
  -D, --display string    Display to read (default "primary")
      --duty-cycle float  Duty cycle in percent
  -f, --frequency float   Frequency in Hz
  -h, --help              Show help
  -o, --offset float      DC offset in volts
      --phase float       Start phase in degrees
      --secondary         Apply to the secondary display
      --server-url string API server URL (default "%s")
  -w, --shape string      Waveform shape
      --symmetry float    Ramp symmetry in percent
      --version           Show version and exit
`, getDefaultConfigFile(), defaultServerURL)
}

func requireInstrument(args []string, command string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s command requires exactly one instrument argument", command)
	}
	return args[0], nil
}

func (c *CLI) cmdList(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("list command takes no arguments")
	}

	apiResp, err := c.makeAPIRequest("GET", "/instruments", nil)
	if err != nil {
		return err
	}

	var statuses []InstrumentStatus
	if err := decodeData(apiResp.Data, &statuses); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Instruments (%d total):\n", len(statuses)) //nolint:errcheck
	for _, st := range statuses {
		state := "disconnected"
		if st.Connected {
			state = "connected"
		}
		fmt.Fprintf(c.stdout, "  %s: %s (%s)\n", st.Name, st.Type, state) //nolint:errcheck
	}
	return nil
}

func (c *CLI) cmdConnect(args []string) error {
	name, err := requireInstrument(args, "connect")
	if err != nil {
		return err
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/connect", nil); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Connected: %s\n", name) //nolint:errcheck
	return nil
}

func (c *CLI) cmdDisconnect(args []string) error {
	name, err := requireInstrument(args, "disconnect")
	if err != nil {
		return err
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/disconnect", nil); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Disconnected: %s\n", name) //nolint:errcheck
	return nil
}

func (c *CLI) cmdIdentify(args []string) error {
	name, err := requireInstrument(args, "identify")
	if err != nil {
		return err
	}

	apiResp, err := c.makeAPIRequest("GET", "/instruments/"+name+"/identity", nil)
	if err != nil {
		return err
	}

	var data struct {
		Identity string `json:"identity"`
	}
	if err := decodeData(apiResp.Data, &data); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "%s\n", data.Identity) //nolint:errcheck
	return nil
}

func (c *CLI) cmdReset(args []string) error {
	name, err := requireInstrument(args, "reset")
	if err != nil {
		return err
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/reset", nil); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Reset: %s\n", name) //nolint:errcheck
	return nil
}

func (c *CLI) cmdMeasure(cmdArgs *CommandArgs) error {
	name, err := requireInstrument(cmdArgs.Args, "measure")
	if err != nil {
		return err
	}

	path := "/instruments/" + name + "/measure?display=" + cmdArgs.Display
	apiResp, err := c.makeAPIRequest("GET", path, nil)
	if err != nil {
		return err
	}

	var data MeasurementData
	if err := decodeData(apiResp.Data, &data); err != nil {
		return err
	}

	switch cmdArgs.Display {
	case "both":
		fmt.Fprintf(c.stdout, "Primary: %g\n", data.Primary) //nolint:errcheck
		if data.Secondary != nil {
			fmt.Fprintf(c.stdout, "Secondary: %g\n", *data.Secondary) //nolint:errcheck
		}
	case "secondary":
		if data.Secondary != nil {
			fmt.Fprintf(c.stdout, "%g\n", *data.Secondary) //nolint:errcheck
		}
	default:
		fmt.Fprintf(c.stdout, "%g\n", data.Primary) //nolint:errcheck
	}
	return nil
}

func (c *CLI) cmdFunction(cmdArgs *CommandArgs) error {
	if len(cmdArgs.Args) != 2 {
		return fmt.Errorf("function command requires an instrument and a function argument")
	}

	name := cmdArgs.Args[0]
	req := FunctionRequest{
		Function:  cmdArgs.Args[1],
		Secondary: cmdArgs.Secondary,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/function", body); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Function set: %s\n", req.Function) //nolint:errcheck
	return nil
}

func (c *CLI) cmdWaveform(cmdArgs *CommandArgs) error {
	name, err := requireInstrument(cmdArgs.Args, "waveform")
	if err != nil {
		return err
	}

	req := WaveformRequest{
		Channel:  cmdArgs.Channel,
		Waveform: cmdArgs.Waveform,
	}
	if cmdArgs.Changed("frequency") {
		req.Frequency = &cmdArgs.Frequency
	}
	if cmdArgs.Changed("amplitude") {
		req.Amplitude = &cmdArgs.Amplitude
	}
	if cmdArgs.Changed("offset") {
		req.Offset = &cmdArgs.Offset
	}
	if cmdArgs.Changed("phase") {
		req.Phase = &cmdArgs.Phase
	}
	if cmdArgs.Changed("duty-cycle") {
		req.DutyCycle = &cmdArgs.DutyCycle
	}
	if cmdArgs.Changed("symmetry") {
		req.Symmetry = &cmdArgs.Symmetry
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/waveform", body); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Waveform configured on %s channel %d\n", name, req.Channel) //nolint:errcheck
	return nil
}

func (c *CLI) cmdOutput(cmdArgs *CommandArgs) error {
	if len(cmdArgs.Args) != 2 {
		return fmt.Errorf("output command requires an instrument and on|off")
	}

	name := cmdArgs.Args[0]
	var on bool
	switch cmdArgs.Args[1] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("output state must be 'on' or 'off'")
	}

	body, err := json.Marshal(OutputRequest{Channel: cmdArgs.Channel, On: on})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := c.makeAPIRequest("POST", "/instruments/"+name+"/output", body); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Output %s on %s channel %d\n", cmdArgs.Args[1], name, cmdArgs.Channel) //nolint:errcheck
	return nil
}

// decodeData remarshals the untyped Data field into a concrete type.
func decodeData(data any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("error parsing response data: %w", err)
	}
	return nil
}

func (c *CLI) makeAPIRequest(method, path string, body []byte) (*APIResponse, error) {
	url := c.config.ServerURL + path

	var req *http.Request
	var err error

	if body != nil {
		req, err = http.NewRequest(method, url, strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if apiResp.Status != "ok" {
		return nil, fmt.Errorf("API error: %s", apiResp.Message)
	}

	return &apiResp, nil
}
