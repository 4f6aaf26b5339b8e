// Package cli implements the ytstream command line.
package cli

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/famomatic/ytstream/client"
	ytlog "github.com/famomatic/ytstream/internal/log"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	opts   Options
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
	client *client.Client
}

// NewRootCommand builds the ytstream command tree writing to stdout and
// stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "ytstream",
		Short:         "Fetch YouTube video metadata and stream media",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.ConfigFile, "config", "", "YAML configuration file")
	flags.StringVar(&a.opts.ProxyURL, "proxy", "", "HTTP/HTTPS proxy URL")
	flags.StringVar(&a.opts.CookiesFile, "cookies", "", "Netscape formatted cookies file")
	flags.StringVar(&a.opts.Lang, "lang", "", "display language (BCP 47), default en")
	flags.StringVar(&a.opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.opts.Debug, "debug", false, "log formats that could not be deciphered")
	flags.StringVar(&a.opts.BaseURL, "base-url", "", "override the site base URL")
	_ = flags.MarkHidden("base-url")

	root.AddCommand(
		newInfoCommand(a),
		newFormatsCommand(a),
		newDownloadCommand(a),
		newServeCommand(a),
	)
	return root
}

func (a *app) setup() error {
	if a.opts.ConfigFile != "" {
		file, err := LoadFileConfig(a.opts.ConfigFile)
		if err != nil {
			return err
		}
		a.opts.merge(file)
	}
	level := a.opts.LogLevel
	if level == "" && a.opts.Debug {
		level = "debug"
	}
	a.logger = ytlog.Configure(ytlog.Config{Level: level, Output: a.stderr, Pretty: true})

	cfg, err := ToClientConfig(a.opts, a.logger)
	if err != nil {
		return err
	}
	a.client = client.New(cfg)
	return nil
}

func (a *app) infoOptions() client.InfoOptions {
	return client.InfoOptions{Lang: a.opts.Lang, Debug: a.opts.Debug}
}
