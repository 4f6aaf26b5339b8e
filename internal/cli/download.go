package cli

import (
	"fmt"
	"io"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/famomatic/ytstream/client"
)

type downloadFlags struct {
	output  string
	quality []string
	format  string
	filter  string
	rng     string
	begin   string
	retries int
}

func newDownloadCommand(a *app) *cobra.Command {
	var f downloadFlags
	cmd := &cobra.Command{
		Use:   "download <url|id>",
		Short: "Download one format of a video",
		Example: `  ytstream download dQw4w9WgXcQ -o video.mp4
  ytstream download https://youtu.be/dQw4w9WgXcQ -q highestaudio -o - > audio.m4a
  ytstream download dQw4w9WgXcQ -q 137 -q 136 --range 0-1048575 -o part.mp4
  ytstream download dQw4w9WgXcQ -f "bestvideo[height<=720]/best" -o video.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.download(cmd, args[0], f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", `output file, "-" for stdout`)
	flags.StringSliceVarP(&f.quality, "quality", "q", nil, "quality keyword or itags in preference order")
	flags.StringVarP(&f.format, "format", "f", "", `selector expression, e.g. "bestaudio[ext=m4a]/best"`)
	flags.StringVar(&f.filter, "filter", "", "restrict to a named format class before choosing")
	flags.StringVar(&f.rng, "range", "", "byte range start-end of a progressive format")
	flags.StringVar(&f.begin, "begin", "", `start offset, e.g. "1m30s", "01:30.000" or milliseconds`)
	flags.IntVar(&f.retries, "retries", -1, "transport retry count (-1 keeps the default)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) download(cmd *cobra.Command, input string, f downloadFlags) error {
	rng, err := parseRange(f.rng)
	if err != nil {
		return err
	}
	opts := client.DownloadOptions{
		Quality: f.quality,
		Filter:  f.filter,
		Range:   rng,
		Begin:   f.begin,
		Lang:    a.opts.Lang,
		Debug:   a.opts.Debug,
		Retry:   client.DefaultRetryConfig(),
		OnEvent: a.logEvent,
	}
	if f.retries >= 0 {
		opts.Retry.MaxRetries = f.retries
	}

	var stream *client.Stream
	if f.format != "" {
		info, err := a.client.GetFullInfo(cmd.Context(), input, a.infoOptions())
		if err != nil {
			return err
		}
		format, err := client.SelectFormat(info.Formats, f.format)
		if err != nil {
			return err
		}
		opts.Format = &format
		if stream, err = a.client.DownloadFromInfo(cmd.Context(), info, opts); err != nil {
			return err
		}
	} else {
		stream = a.client.Download(cmd.Context(), input, opts)
	}
	defer stream.Destroy()

	if f.output == "-" {
		_, err := io.Copy(a.stdout, stream)
		return err
	}
	return writeAtomically(f.output, stream)
}

// writeAtomically writes r to path through a pending file that only
// replaces path once everything was written.
func writeAtomically(path string, r io.Reader) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	// No-op once the pending file was committed.
	defer func() { _ = pending.Cleanup() }()
	if _, err := io.Copy(pending, r); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (a *app) logEvent(ev client.Event) {
	switch ev.Kind {
	case client.EventInfo:
		a.logger.Info().
			Str("title", ev.Info.Title).
			Int("itag", ev.Format.Itag).
			Str("container", ev.Format.Container).
			Msg("downloading")
	case client.EventProgress:
		a.logger.Debug().
			Int64("downloaded", ev.Progress.Downloaded).
			Int64("total", ev.Progress.Total).
			Msg("progress")
	case client.EventRetry, client.EventReconnect:
		a.logger.Warn().Err(ev.Err).Int("attempt", ev.Attempt).Str("kind", string(ev.Kind)).Msg("transport retry")
	case client.EventError:
		a.logger.Error().Err(ev.Err).Msg("download failed")
	}
}
