// Command ticket-parse runs the ticket parser over OCR text from a file or stdin
// and prints the reconstructed receipt as JSON.
package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("ticket-parse")
	var (
		file        = fs.StringLong("file", "-", "OCR text file to parse; '-' reads stdin")
		explain     = fs.BoolLong("explain", "Print how every line was classified instead of the receipt")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("TICKET_PARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		return
	}

	if err := run(*file, *explain, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, explain bool, stdin io.Reader, stdout io.Writer) error {
	text, err := readInput(file, stdin)
	if err != nil {
		return err
	}

	var out any = ticket.Parse(text)
	if explain {
		out = ticket.Explain(text)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

func readInput(file string, stdin io.Reader) (string, error) {
	if file == "-" || file == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(data), nil
}
