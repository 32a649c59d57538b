// ABOUTME: Info command
// ABOUTME: Prints container header metadata as text, JSON or YAML
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// infoView adds derived fields to container.Info for structured output
type infoView struct {
	container.Info `json:",inline" yaml:",inline"`
	Seconds        float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

func (a *app) infoCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info <file>...",
		Short: "Show container metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views := make([]infoView, 0, len(args))
			for _, path := range args {
				info, err := container.ReadHeader(path)
				if err != nil {
					return err
				}
				views = append(views, infoView{Info: info, Seconds: info.Duration().Seconds()})
			}
			return writeInfo(cmd.OutOrStdout(), format, views)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeInfo(w io.Writer, format string, views []infoView) error {
	// A single file prints as an object rather than a list
	var doc any = views
	if len(views) == 1 {
		doc = views[0]
	}

	switch format {
	case "text", "":
		for i, v := range views {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeInfoText(w, v)
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (use text, json or yaml)", format)
	}
}

func writeInfoText(w io.Writer, v infoView) {
	fmt.Fprintf(w, "%s\n", v.Path)
	fmt.Fprintf(w, "  Format:      %s\n", v.Format)
	fmt.Fprintf(w, "  Sample rate: %d Hz\n", v.SampleRate)
	fmt.Fprintf(w, "  Channels:    %d\n", v.Channels)
	fmt.Fprintf(w, "  Samples:     %s\n", v.Samples)
	fmt.Fprintf(w, "  Frames:      %d\n", v.Frames)
	fmt.Fprintf(w, "  Duration:    %.3fs\n", v.Seconds)
	fmt.Fprintf(w, "  File size:   %d bytes\n", v.FileSize)
}
