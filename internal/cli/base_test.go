package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
)

type fakeConfig struct {
	Resource string
	loadErr  error
}

func (c *fakeConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Resource, "resource", c.Resource, "instrument resource")
}

func (c *fakeConfig) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	return c.loadErr
}

type fakeHandler struct {
	started bool
	err     error
}

func (h *fakeHandler) Start(config Configurable) error {
	h.started = true
	return h.err
}

func TestParseArgsStandardStart(t *testing.T) {
	cli := NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cmdArgs, err := cli.ParseArgsStandardWithFlagSet(
		[]string{"--resource", "tcp::localhost:5025"},
		func() Configurable { return &fakeConfig{} },
		fs,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmdArgs.Command != "start" {
		t.Errorf("expected command start, got %s", cmdArgs.Command)
	}
	if cfg := cmdArgs.Config.(*fakeConfig); cfg.Resource != "tcp::localhost:5025" {
		t.Errorf("unexpected resource: %s", cfg.Resource)
	}
}

func TestParseArgsStandardVersion(t *testing.T) {
	cli := NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cmdArgs, err := cli.ParseArgsStandardWithFlagSet(
		[]string{"--version"},
		func() Configurable { return &fakeConfig{} },
		fs,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmdArgs.Command != "version" {
		t.Errorf("expected command version, got %s", cmdArgs.Command)
	}
}

func TestParseArgsStandardLoadError(t *testing.T) {
	cli := NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	_, err := cli.ParseArgsStandardWithFlagSet(
		nil,
		func() Configurable { return &fakeConfig{loadErr: errors.New("boom")} },
		fs,
	)
	if err == nil {
		t.Fatal("expected error from config load")
	}
}

func TestExecuteStart(t *testing.T) {
	cli := NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})
	handler := &fakeHandler{}

	err := cli.Execute(&CommandArgs{Command: "start", Config: &fakeConfig{}}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handler.started {
		t.Error("handler was not started")
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	cli := NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})

	err := cli.Execute(&CommandArgs{Command: "bogus"}, &fakeHandler{})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
}
