package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// encodeCompact writes v as a single JSON line.
func encodeCompact(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printHeading writes a section title, highlighted on a terminal.
func printHeading(cmd *cobra.Command, title string) {
	out := cmd.OutOrStdout()
	c := color.New(color.FgHiMagenta, color.Bold)
	if shouldColorize(out) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintln(out, c.Sprint(title))
}

func printTable(cmd *cobra.Command, headers []string, rows [][]string, aligns []columnAlignment) {
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
}

func printCounts(cmd *cobra.Command, counts []models.PersonCount, unit string) {
	if len(counts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  no matching records")
		return
	}
	rows := make([][]string, len(counts))
	for i, pc := range counts {
		rows[i] = []string{strconv.Itoa(i + 1), pc.Name, strconv.Itoa(pc.Count)}
	}
	printTable(cmd, []string{"#", "Name", unit}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
}
