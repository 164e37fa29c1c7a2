// Command jdec decodes a baseline JPEG file and writes the result as a
// binary PPM (P6) to stdout or a file, for manual inspection of the
// decoder's output.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-jdec/jdec"
)

var (
	outPath string
	verbose bool
	strict  bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jdec:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jdec <input.jpg>",
		Short: "Decode a baseline JPEG file to a PPM image",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output PPM path (default: stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each marker encountered while parsing")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject streams that end without an EOI marker")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	opts := &jdec.Options{ColorSpace: jdec.RGB, Strict: strict}
	if verbose {
		opts.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	img, err := jdec.Decode(data, opts)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return writePPM(out, img)
}

// writePPM emits img as a binary PPM (P6): a plain-text header followed by
// raw RGB triples, row-major. RGBA/RGBX/Gray/YCbCr outputs are rejected
// since PPM only has a well-defined 3-byte-RGB variant.
func writePPM(w *os.File, img *jdec.Image) error {
	if img.ColorSpace != jdec.RGB {
		return fmt.Errorf("jdec: PPM output requires RGB color space, got %v", img.ColorSpace)
	}
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}
	_, err := w.Write(img.Pixels)
	return err
}
