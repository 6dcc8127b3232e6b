package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-mhtml"
)

func newBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Convert every archive in a directory",
		Long: "Scans a directory (non-recursive) for supported archives and converts\n" +
			"each one to a .mhtml file beside it. A failed conversion is reported\n" +
			"and does not stop the remaining ones.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runBatch(cmd, dir)
		},
	}
	return cmd
}

type batchOutcome struct {
	input   string
	output  string
	inlined int
	err     error
}

func runBatch(cmd *cobra.Command, dir string) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var outcomes []batchOutcome
	for _, e := range entries {
		if e.IsDir() || !isArchiveName(e.Name()) {
			continue
		}
		input := filepath.Join(dir, e.Name())
		output := outputPath(input)
		logger.Info("converting", "input", input, "output", output)
		outcomes = append(outcomes, convertOne(input, output, logger))
	}

	w := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintf(w, "no archives found in %s\n", dir)
		return nil
	}

	ok := 0
	for _, o := range outcomes {
		if o.err == nil {
			ok++
		}
	}
	printSummary(w, outcomes)
	fmt.Fprintf(w, "converted %d/%d\n", ok, len(outcomes))
	if ok == 0 {
		return fmt.Errorf("all %d conversions failed", len(outcomes))
	}
	return nil
}

// convertOne converts a single archive into its own output buffer and only
// persists the file on success, so a failure leaves nothing behind.
func convertOne(input, output string, logger *slog.Logger) batchOutcome {
	o := batchOutcome{input: filepath.Base(input), output: filepath.Base(output)}

	data, err := os.ReadFile(input)
	if err != nil {
		o.err = err
		logger.Error("conversion failed", "input", input, "error", err)
		return o
	}

	var buf bytes.Buffer
	res, err := mhtml.Convert(&buf, data)
	if err != nil {
		o.err = err
		logger.Error("conversion failed", "input", input, "error", err)
		return o
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		o.err = err
		logger.Error("conversion failed", "input", input, "error", err)
		return o
	}

	o.inlined = len(res.Inlined)
	logger.Info("converted", "input", input, "document", res.Document, "inlined", o.inlined)
	return o
}

func printSummary(w io.Writer, outcomes []batchOutcome) {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		if o.err != nil {
			status = o.err.Error()
		}
		rows = append(rows, []string{o.input, o.output, strconv.Itoa(o.inlined), status})
	}
	headers := []string{"Input", "Output", "Images", "Status"}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(w, renderTable(headers, rows))
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r[0], r[1], r[2], r[3])
	}
}
