package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/famomatic/ytstream/client"
)

func newInfoCommand(a *app) *cobra.Command {
	var full, asJSON bool
	cmd := &cobra.Command{
		Use:   "info <url|id>",
		Short: "Show video metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			get := a.client.GetBasicInfo
			if full {
				get = a.client.GetFullInfo
			}
			info, err := get(cmd.Context(), args[0], a.infoOptions())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			return printInfo(a, info)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "decipher URLs and merge manifest formats")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the info as JSON")
	return cmd
}

func printInfo(a *app, info *client.VideoInfo) error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", info.Title)
	fmt.Fprintf(w, "Video ID:\t%s\n", info.VideoID)
	if info.Author.Name != "" {
		fmt.Fprintf(w, "Author:\t%s\n", info.Author.Name)
	}
	if info.LengthSeconds != "" {
		fmt.Fprintf(w, "Length:\t%ss\n", info.LengthSeconds)
	}
	if info.Published != "" {
		fmt.Fprintf(w, "Published:\t%s\n", info.Published)
	}
	fmt.Fprintf(w, "Age restricted:\t%t\n", info.AgeRestricted)
	fmt.Fprintf(w, "Formats:\t%d\n", len(info.Formats))
	return w.Flush()
}

func newFormatsCommand(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "formats <url|id>",
		Short: "List the playable formats of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.client.GetFullInfo(cmd.Context(), args[0], a.infoOptions())
			if err != nil {
				return err
			}
			list := info.Formats
			if filter != "" {
				if list, err = client.FilterFormatsByName(list, filter); err != nil {
					return err
				}
			}
			return printFormats(a, list)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "audioandvideo, videoandaudio, video, videoonly, audio or audioonly")
	return cmd
}

func printFormats(a *app, list []client.Format) error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITAG\tCONTAINER\tQUALITY\tCODECS\tBITRATE\tAUDIO\tVIDEO\tSOURCE")
	for _, f := range list {
		quality := f.QualityLabel
		if quality == "" {
			quality = f.AudioQuality
		}
		source := "direct"
		switch {
		case f.IsHLS:
			source = "hls"
		case f.IsDashMPD:
			source = "dash"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%t\t%t\t%s\n",
			f.Itag, f.Container, quality, f.Codecs, f.Bitrate, f.HasAudio, f.HasVideo, source)
	}
	return w.Flush()
}
