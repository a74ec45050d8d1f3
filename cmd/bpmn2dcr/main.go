// Command bpmn2dcr translates a BPMN 2.0 file into a DCR graph.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/pkg/bpmn"
	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/pbinitiative/zendcr/pkg/dcr/dcrxml"
	"github.com/pbinitiative/zendcr/pkg/dcr/translate"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	formatXml  = "xml"
	formatJson = "json"
	formatYaml = "yaml"
	formatDot  = "dot"
)

var extensions = map[string]string{
	formatXml:  ".dcr.xml",
	formatJson: ".dcr.json",
	formatYaml: ".dcr.yaml",
	formatDot:  ".dot",
}

type document struct {
	ProcessId   string              `json:"processId" yaml:"processId"`
	Threshold   int                 `json:"threshold" yaml:"threshold"`
	NestingIds  []string            `json:"nestingIds" yaml:"nestingIds"`
	Diagnostics process.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
	Graph       *dcr.Graph          `json:"graph" yaml:"graph"`
}

type options struct {
	threshold int
	format    string
	output    string
	verbose   bool
	input     string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 2
	}

	logger := hclog.NewNullLogger()
	if opts.verbose {
		logger = hclog.New(&hclog.LoggerOptions{Name: "bpmn2dcr", Level: hclog.Debug, Output: stderr})
	}
	engine := bpmn.NewEngine(
		bpmn.EngineWithName("bpmn2dcr"),
		bpmn.EngineWithNestingThreshold(opts.threshold),
		bpmn.EngineWithLogger(logger),
	)

	fmt.Fprintf(stderr, "INFO: Starting translation for '%s'...\n", opts.input)
	definition, err := engine.LoadFromFile(ctx, opts.input)
	if err != nil {
		printFailure(stderr, err)
		return 1
	}
	printDiagnostics(stderr, definition.Diagnostics)

	data, err := render(*definition, opts.format)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 1
	}
	if opts.output == "-" {
		_, err = stdout.Write(data)
	} else {
		err = os.WriteFile(opts.output, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to write output: %s\n", err)
		return 1
	}
	if opts.output != "-" {
		color.New(color.FgGreen).Fprintf(stderr, "SUCCESS: Translation finished. Output file is available at: %s\n", opts.output)
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	opts := options{}
	fs := pflag.NewFlagSet("bpmn2dcr", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVarP(&opts.threshold, "threshold", "t", bpmn.DefaultNestingThreshold, "minimum number of relations between two events to nest them")
	fs.StringVarP(&opts.format, "format", "f", formatXml, "output format: xml, json, yaml or dot")
	fs.StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default <input>.dcr.xml)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log translation details")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bpmn2dcr [flags] file.bpmn")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)
	if opts.threshold < 0 {
		return opts, fmt.Errorf("threshold must not be negative, got %d", opts.threshold)
	}
	ext, ok := extensions[opts.format]
	if !ok {
		return opts, fmt.Errorf("unsupported format %q", opts.format)
	}
	if opts.output == "" {
		opts.output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + ext
	}
	return opts, nil
}

func render(definition runtime.GraphDefinition, format string) ([]byte, error) {
	doc := document{
		ProcessId:   definition.BpmnProcessId,
		Threshold:   definition.Threshold,
		NestingIds:  definition.NestingIds,
		Diagnostics: definition.Diagnostics,
		Graph:       definition.Graph,
	}
	switch format {
	case formatXml:
		return []byte(definition.DcrXml), nil
	case formatJson:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	case formatYaml:
		return yaml.Marshal(doc)
	case formatDot:
		return []byte(dcrxml.ToDOT(definition.Graph)), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func printDiagnostics(w io.Writer, diagnostics process.Diagnostics) {
	if len(diagnostics) == 0 {
		fmt.Fprintln(w, "INFO: BPMN model is valid.")
		return
	}
	warn := color.New(color.FgYellow)
	warn.Fprintf(w, "WARNING: %d construct(s) were lowered or dropped:\n", len(diagnostics))
	for i, d := range diagnostics {
		fmt.Fprintf(w, "  %d. [%s] %s: %s\n", i+1, d.Kind, d.NodeId, d.Message)
	}
}

func printFailure(w io.Writer, err error) {
	fail := color.New(color.FgRed)
	var translationError *translate.TranslationError
	if errors.As(err, &translationError) && len(translationError.Diagnostics) > 0 {
		fail.Fprintln(w, "ERROR: BPMN model validation failed. Please fix the following issue(s):")
		for i, d := range translationError.Diagnostics {
			fmt.Fprintf(w, "  %d. [%s] %s: %s\n", i+1, d.Kind, d.NodeId, d.Message)
		}
		return
	}
	fail.Fprintf(w, "ERROR: %s\n", err)
}
