// Package repl implements the Read-Eval-Print Loop for dmtree. Since
// this core does not evaluate expressions (spec Non-goal), the loop
// lexes and parses each line on its own, into a fresh object tree, and
// reports the tokens produced and any diagnostics, rather than a value.
// Declarations from earlier lines are not kept.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/kestrelscript/dmtree/annotation"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
	"github.com/kestrelscript/dmtree/location"
	"github.com/kestrelscript/dmtree/parser"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the banner/prompt configuration for an interactive
// session.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// NewRepl constructs a Repl with the given banner configuration.
func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner and usage instructions.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Type a line of DM source and press enter.")
	cyanColor.Fprintf(writer, "%s\n", "Each line is lexed and parsed on its own; earlier lines are not kept.")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit, '.tokens' to toggle raw token display.")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history.")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the REPL loop, reading lines via readline and reporting
// each line's tokens and diagnostics.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	registry := location.NewRegistry()
	fileID := registry.Register("<repl>")
	showTokens := false

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}
		if line == ".tokens" {
			showTokens = !showTokens
			cyanColor.Fprintf(writer, "token display: %v\n", showTokens)
			continue
		}

		rl.SaveHistory(line)
		r.executeWithRecovery(writer, line, fileID, showTokens)
	}
}

// executeWithRecovery lexes and parses one line, recovering from any
// panic (e.g. a lexer/parser invariant violation on pathological input)
// so the REPL keeps running rather than crashing the session.
func (r *Repl) executeWithRecovery(writer io.Writer, line string, fileID location.FileID, showTokens bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[internal error] %v\n", recovered)
		}
	}()

	ctx := diag.NewContext()
	src := lexer.NewByteSliceSource([]byte(line))
	lx := lexer.New(ctx, fileID, src)

	if showTokens {
		for {
			tok, ok := lx.Next()
			if !ok {
				break
			}
			yellowColor.Fprintf(writer, "%s %s %q\n", tok.Location, tok.Token.Kind, tok.Token.Display())
		}
	} else {
		src2 := lexer.NewByteSliceSource([]byte(line))
		lx2 := lexer.New(ctx, fileID, src2)
		ann := annotation.New()
		p := parser.New(lx2, ctx, ann)
		p.Run()
	}

	for _, d := range ctx.Errors() {
		redColor.Fprintf(writer, "%s\n", d.String())
	}
}
