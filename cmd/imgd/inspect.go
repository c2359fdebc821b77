package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imgd/internal/media"
	"imgd/internal/pipeline"
)

var (
	boldLabel = color.New(color.Bold).SprintFunc()
	dimNote   = color.New(color.FgHiBlack).SprintFunc()
)

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Detect and describe an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				color.NoColor = true
			}
			return inspectFile(os.Stdout, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

type inspectReport struct {
	Format string `json:"format"`
	MIME   string `json:"mime_type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Frames int    `json:"frames"`
	Bytes  int    `json:"binary_size"`
}

func inspectFile(w io.Writer, path string, asJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	format, err := media.Detect(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	inf, err := pipeline.NewProcessor(nil, nil, nil).Info(context.Background(), data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(inspectReport{
			Format: format.String(),
			MIME:   inf.MIME,
			Width:  inf.Width,
			Height: inf.Height,
			Frames: inf.Frames,
			Bytes:  inf.Size,
		})
	}

	fmt.Fprintf(w, "%s %s %s\n", boldLabel("Format:"), format.String(), dimNote("("+inf.MIME+")"))
	fmt.Fprintf(w, "%s %dx%d\n", boldLabel("Size:  "), inf.Width, inf.Height)
	fmt.Fprintf(w, "%s %d\n", boldLabel("Frames:"), inf.Frames)
	fmt.Fprintf(w, "%s %d\n", boldLabel("Bytes: "), inf.Size)
	return nil
}
