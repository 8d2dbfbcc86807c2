package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/nexxia-ai/fileagent"
	"github.com/nexxia-ai/fileagent/ai"
	_ "github.com/nexxia-ai/fileagent/ai/anthropic"
	_ "github.com/nexxia-ai/fileagent/ai/openai"
	"github.com/nexxia-ai/fileagent/trace"
	"github.com/nexxia-ai/fileagent/utils"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	configFile string
	model      string
	envFile    string
	system     string
	debug      bool
	trace      bool
	record     string
	replay     string
	noColor    bool
	maxCalls   int
}

func (o *chatOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configFile, "config", "c", "", "YAML config file")
	f.StringVarP(&o.model, "model", "m", "", "model identifier as provider/model (see 'fileagent models')")
	f.StringVar(&o.envFile, "env", "", "env file loaded before reading API keys")
	f.StringVar(&o.system, "system", "", "system prompt")
	f.BoolVar(&o.debug, "debug", false, "log at debug level to stderr")
	f.BoolVar(&o.trace, "trace", false, "write a transcript of every model and tool call")
	f.StringVar(&o.record, "record", "", "append every model response to this JSONL file")
	f.StringVar(&o.replay, "replay", "", "answer from a file written by --record instead of calling a provider")
	f.BoolVar(&o.noColor, "no-color", false, "disable ANSI colors")
	f.IntVar(&o.maxCalls, "max-model-calls", 0, "limit model calls per message, 0 for unlimited")
}

// config loads the config file if given and applies the flags that were set.
func (o *chatOptions) config(cmd *cobra.Command) (fileagent.Config, error) {
	cfg := fileagent.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = fileagent.LoadConfigFile(o.configFile); err != nil {
			return cfg, fmt.Errorf("loading config %s: %w", o.configFile, err)
		}
	}

	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model = o.model
	}
	if f.Changed("env") {
		cfg.EnvFile = o.envFile
	}
	if f.Changed("system") {
		cfg.SystemPrompt = o.system
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	if o.trace {
		cfg.Trace = true
	}
	if f.Changed("record") {
		cfg.RecordFile = o.record
	}
	if o.noColor {
		cfg.NoColor = true
	}
	if f.Changed("max-model-calls") {
		cfg.MaxModelCalls = o.maxCalls
	}
	return cfg, cfg.Validate()
}

func runChat(cmd *cobra.Command, opts *chatOptions) error {
	cfg, err := opts.config(cmd)
	if err != nil {
		return err
	}

	if err := utils.LoadEnvFile(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var model *ai.Model
	if opts.replay != "" {
		records, err := ai.LoadRecords(opts.replay)
		if err != nil {
			return err
		}
		model = ai.NewReplayModel(records)
	} else {
		model, err = newModel(cfg.Model, in, out)
		if err != nil {
			return err
		}
	}

	var interceptors []fileagent.Interceptor
	if cfg.Trace {
		tracer := trace.NewTracer(trace.TraceConfig{Directory: cfg.TraceDir})
		defer tracer.Close()
		interceptors = append(interceptors, tracer)
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: %s\n", tracer.Filepath())
	}

	agent, err := fileagent.NewAgent(cfg, model, interceptors...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = agent.Run(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out)
		return nil
	}
	return err
}

// newModel creates the model for identifier. The API key comes from the
// provider's environment variable or, failing that, is asked for on in.
func newModel(identifier string, in *bufio.Reader, out io.Writer) (*ai.Model, error) {
	info, err := ai.LookupModel(identifier)
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv(info.APIKeyName)
	if apiKey == "" {
		fmt.Fprintf(out, "%s is not set. Enter your API key: ", info.APIKeyName)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading API key: %w", err)
		}
		apiKey = strings.TrimSpace(line)
		if apiKey == "" {
			return nil, fmt.Errorf("%s is required for %s", info.APIKeyName, identifier)
		}
	}

	return ai.New(identifier, apiKey)
}
