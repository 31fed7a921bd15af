package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/samvad-hq/frankfurter/internal/config"
	"github.com/samvad-hq/frankfurter/internal/logger"
	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
	"github.com/samvad-hq/frankfurter/pkg/httpclient"
)

// invocation holds what every command needs: parsed flags, config and a client.
type invocation struct {
	flags  *pflag.FlagSet
	cfg    *config.Config
	client *frankfurter.ServerClient
	out    outputFormat
	stdout io.Writer
}

// commandFlags registers the flags specific to each command.
var commandFlags = map[string]func(fs *pflag.FlagSet){
	"convert": func(fs *pflag.FlagSet) {
		fs.String("amount", "", "amount to convert (default 1)")
		fs.String("from", "", "base currency (default EUR)")
		fs.String("to", "", "comma separated target currencies (default all)")
		fs.String("date", "", "historical day, YYYY-MM-DD")
	},
	"period": func(fs *pflag.FlagSet) {
		fs.String("amount", "", "amount to convert (default 1)")
		fs.String("from", "", "base currency (default EUR)")
		fs.String("to", "", "comma separated target currencies (default all)")
		fs.String("start", "", "first day, YYYY-MM-DD (required)")
		fs.String("end", "", "last day, YYYY-MM-DD (default open ended)")
	},
	"currencies": func(*pflag.FlagSet) {},
	"ping":       func(*pflag.FlagSet) {},
}

// newInvocation parses args for command name. It returns nil, nil when help was requested.
func newInvocation(name string, args []string, stdout, stderr io.Writer) (*invocation, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("url", "", "API base URL")
	fs.Int64("timeout", 0, "request timeout in seconds, 0 disables")
	fs.StringP("output", "o", string(formatJSON), "output format: json or yaml")
	fs.String("log-level", "", "log level")
	commandFlags[name](fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	out, err := parseOutputFormat(mustString(fs, "output"))
	if err != nil {
		return nil, err
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"frankfurter_url":      "url",
		"http_timeout_seconds": "timeout",
		"log_level":            "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	cfg, err := config.LoadWith(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := frankfurter.Parse(cfg.FrankfurterURL)
	if err != nil {
		return nil, err
	}
	client = client.
		WithClient(httpclient.NewRestyClient(cfg.HTTPTimeout)).
		WithLogger(logger.New(sugar))

	return &invocation{
		flags:  fs,
		cfg:    cfg,
		client: client,
		out:    out,
		stdout: stdout,
	}, nil
}

func (inv *invocation) close() {
	_ = logger.Close()
}

func mustString(fs *pflag.FlagSet, name string) string {
	v, err := fs.GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}
