// Command dmtree is the entry point for the dmtree toolchain. It
// provides three modes of operation, per SPEC_FULL.md's ambient CLI
// section:
//
//  1. parse    - lex and parse a source file into an object tree, and
//     report the diagnostics produced.
//  2. tokens   - lex a source file and print its raw token stream.
//  3. repl     - interactive Read-Eval-Print Loop for live input.
//
// Source files are read as Latin-1 (one byte per character), matching
// the lexer's byte-oriented design.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kestrelscript/dmtree/annotation"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
	"github.com/kestrelscript/dmtree/location"
	"github.com/kestrelscript/dmtree/objtree"
	"github.com/kestrelscript/dmtree/parser"
	"github.com/kestrelscript/dmtree/repl"
)

// VERSION is the current version of the dmtree toolchain.
var VERSION = "v0.1.0"

// AUTHOR is the maintainer contact for the dmtree toolchain.
var AUTHOR = "dmtree maintainers"

// LICENSE is the toolchain's software license.
var LICENSE = "MIT"

// PROMPT is the command prompt displayed in REPL mode.
var PROMPT = "dmtree >>> "

// BANNER is the ASCII banner displayed when starting the REPL.
var BANNER = `
     _           _
  __| |_ __ ___ | |_ _ __ ___  ___
 / _` + "`" + ` | '_ ` + "`" + ` _ \| __| '__/ _ \/ _ \
| (_| | | | | | | |_| | |  __/  __/
 \__,_|_| |_| |_|\__|_|  \___|\___|
`

// LINE is a separator used for visual formatting in banners.
var LINE = "----------------------------------------------------------------"

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
)

func main() {
	root := &cobra.Command{
		Use:     "dmtree",
		Short:   "dmtree lexes and parses legacy DM-like scripting sources",
		Version: VERSION,
	}
	root.AddCommand(newParseCmd())
	root.AddCommand(newTokensCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file into an object tree and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(args[0])
		},
	}
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Lex a source file and print its raw token stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(args[0])
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive lex/parse REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENSE, PROMPT)
			repler.Start(os.Stdin, os.Stdout)
			return nil
		},
	}
}

func readSourceFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file %q: %w", path, err)
	}
	return content, nil
}

func runParse(path string) error {
	content, err := readSourceFile(path)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] %v\n", err)
		return err
	}

	registry := location.NewRegistry()
	fileID := registry.Register(path)
	ctx := diag.NewContext()
	src := lexer.NewByteSliceSource(content)
	lx := lexer.New(ctx, fileID, src)
	ann := annotation.New()

	p := parser.New(lx, ctx, ann)
	tree := p.Run()
	types, vars, procs := summarizeTree(tree.Root())
	cyanColor.Fprintf(os.Stdout, "%s: %d types, %d vars, %d procs\n", path, types, vars, procs)

	diags := ctx.Errors()
	anyErr := false
	for _, d := range diags {
		switch d.Severity {
		case diag.Error:
			anyErr = true
			redColor.Fprintf(os.Stderr, "%s: %s\n", path, d.String())
		case diag.Warning:
			yellowColor.Fprintf(os.Stderr, "%s: %s\n", path, d.String())
		default:
			cyanColor.Fprintf(os.Stderr, "%s: %s\n", path, d.String())
		}
	}

	if anyErr {
		return fmt.Errorf("parse failed with errors")
	}
	return nil
}

// summarizeTree walks node and its children, counting declared types,
// vars and procs, for the `parse` subcommand's one-line summary.
func summarizeTree(node *objtree.Node) (types, vars, procs int) {
	types = 1
	vars = len(node.Vars)
	procs = len(node.Procs)
	for _, child := range node.Children {
		ct, cv, cp := summarizeTree(child)
		types += ct
		vars += cv
		procs += cp
	}
	return types, vars, procs
}

func runTokens(path string) error {
	content, err := readSourceFile(path)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] %v\n", err)
		return err
	}

	registry := location.NewRegistry()
	fileID := registry.Register(path)
	ctx := diag.NewContext()
	src := lexer.NewByteSliceSource(content)
	lx := lexer.New(ctx, fileID, src)

	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		fmt.Printf("%s %s %q\n", tok.Location, tok.Token.Kind, tok.Token.Display())
	}

	for _, d := range ctx.Errors() {
		redColor.Fprintf(os.Stderr, "%s\n", d.String())
	}
	return nil
}
