package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-mhtml"
)

func newConvertCommand() *cobra.Command {
	var outFlag string
	var htmlFlag string

	cmd := &cobra.Command{
		Use:   "convert <archive>",
		Short: "Convert one archive to an MHTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := outFlag
			if output == "" {
				output = outputPath(input)
			}
			return runConvert(cmd, input, output, htmlFlag)
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path (default: input name with .mhtml extension)")
	cmd.Flags().StringVar(&htmlFlag, "html", "", "Relative path of the primary HTML document inside the archive")

	return cmd
}

func runConvert(cmd *cobra.Command, input, output, htmlPath string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	var opts []mhtml.ConvertOption
	if htmlPath != "" {
		opts = append(opts, mhtml.WithDocumentPath(htmlPath))
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	res, err := mhtml.Convert(f, data, opts...)
	if err != nil {
		f.Close()
		os.Remove(output)
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "document: %s (charset %s)\n", res.Document, res.Charset)
	if len(res.Inlined) == 0 {
		fmt.Fprintln(w, "no local images inlined (references are external or data URIs)")
	} else {
		fmt.Fprintln(w, "inlined images:")
		for _, p := range res.Inlined {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	fmt.Fprintf(w, "wrote %s\n", output)
	return nil
}
