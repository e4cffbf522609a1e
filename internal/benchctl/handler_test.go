package benchctl

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHTTPClient returns scripted responses and records the last request.
type fakeHTTPClient struct {
	statusCode int
	response   string
	lastMethod string
	lastURL    string
	lastBody   string
}

func (c *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.lastMethod = req.Method
	c.lastURL = req.URL.String()
	c.lastBody = ""
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		c.lastBody = string(body)
	}

	code := c.statusCode
	if code == 0 {
		code = http.StatusOK
	}
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(c.response)),
	}, nil
}

func newTestCLI(client *fakeHTTPClient) (*CLI, *bytes.Buffer) {
	var stdout bytes.Buffer
	cfg := &Config{ServerURL: "http://bench.local:8080"}
	return NewCLI(cfg, client, &stdout, io.Discard), &stdout
}

func TestCmdList(t *testing.T) {
	client := &fakeHTTPClient{
		response: `{"status":"ok","data":[
			{"name":"bench-dmm","type":"fluke45","connected":true},
			{"name":"siggen","type":"sdg2042x","connected":false}]}`,
	}
	cli, stdout := newTestCLI(client)

	require.NoError(t, cli.Execute(&CommandArgs{Command: "list"}))
	assert.Equal(t, "GET", client.lastMethod)
	assert.Equal(t, "http://bench.local:8080/instruments", client.lastURL)
	assert.Contains(t, stdout.String(), "bench-dmm: fluke45 (connected)")
	assert.Contains(t, stdout.String(), "siggen: sdg2042x (disconnected)")
}

func TestCmdMeasure(t *testing.T) {
	client := &fakeHTTPClient{
		response: `{"status":"ok","data":{"primary":1.2345}}`,
	}
	cli, stdout := newTestCLI(client)

	err := cli.Execute(&CommandArgs{
		Command: "measure",
		Args:    []string{"bench-dmm"},
		Display: "primary",
	})
	require.NoError(t, err)
	assert.Contains(t, client.lastURL, "/instruments/bench-dmm/measure?display=primary")
	assert.Contains(t, stdout.String(), "1.2345")
}

func TestCmdFunction(t *testing.T) {
	client := &fakeHTTPClient{response: `{"status":"ok"}`}
	cli, _ := newTestCLI(client)

	err := cli.Execute(&CommandArgs{
		Command: "function",
		Args:    []string{"bench-dmm", "VDC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "POST", client.lastMethod)

	var req FunctionRequest
	require.NoError(t, json.Unmarshal([]byte(client.lastBody), &req))
	assert.Equal(t, "VDC", req.Function)
	assert.False(t, req.Secondary)
}

func TestCmdWaveformSendsOnlyChangedFlags(t *testing.T) {
	client := &fakeHTTPClient{response: `{"status":"ok"}`}
	cli, _ := newTestCLI(client)

	err := cli.Execute(&CommandArgs{
		Command:   "waveform",
		Args:      []string{"siggen"},
		Channel:   2,
		Waveform:  "SINE",
		Frequency: 1000,
		changed:   map[string]bool{"frequency": true},
	})
	require.NoError(t, err)

	var req WaveformRequest
	require.NoError(t, json.Unmarshal([]byte(client.lastBody), &req))
	assert.Equal(t, 2, req.Channel)
	assert.Equal(t, "SINE", req.Waveform)
	require.NotNil(t, req.Frequency)
	assert.InDelta(t, 1000, *req.Frequency, 1e-9)
	assert.Nil(t, req.Amplitude)
	assert.Nil(t, req.Offset)
}

func TestCmdOutput(t *testing.T) {
	client := &fakeHTTPClient{response: `{"status":"ok"}`}
	cli, _ := newTestCLI(client)

	err := cli.Execute(&CommandArgs{
		Command: "output",
		Args:    []string{"siggen", "on"},
		Channel: 1,
	})
	require.NoError(t, err)

	var req OutputRequest
	require.NoError(t, json.Unmarshal([]byte(client.lastBody), &req))
	assert.True(t, req.On)

	err = cli.Execute(&CommandArgs{
		Command: "output",
		Args:    []string{"siggen", "sideways"},
	})
	assert.Error(t, err)
}

func TestAPIErrorSurfaced(t *testing.T) {
	client := &fakeHTTPClient{
		statusCode: http.StatusBadRequest,
		response:   `{"status":"error","message":"invalid range \"9\": above maximum 7"}`,
	}
	cli, _ := newTestCLI(client)

	err := cli.Execute(&CommandArgs{Command: "connect", Args: []string{"bench-dmm"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above maximum 7")
}

func TestUnknownCommand(t *testing.T) {
	cli, _ := newTestCLI(&fakeHTTPClient{})

	err := cli.Execute(&CommandArgs{Command: "explode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestParseArgsVersion(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cmdArgs, err := ParseArgsWithFlagSet([]string{"--version"}, fs)
	require.NoError(t, err)
	assert.Equal(t, "version", cmdArgs.Command)
}

func TestParseArgsNoCommandShowsHelp(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cmdArgs, err := ParseArgsWithFlagSet(nil, fs)
	require.NoError(t, err)
	assert.Equal(t, "help", cmdArgs.Command)
}

func TestParseArgsCommandWithFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cmdArgs, err := ParseArgsWithFlagSet(
		[]string{"--frequency", "2500", "waveform", "siggen"}, fs)
	require.NoError(t, err)
	assert.Equal(t, "waveform", cmdArgs.Command)
	assert.Equal(t, []string{"siggen"}, cmdArgs.Args)
	assert.InDelta(t, 2500, cmdArgs.Frequency, 1e-9)
	assert.True(t, cmdArgs.Changed("frequency"))
	assert.False(t, cmdArgs.Changed("amplitude"))
}
