// protex strips LaTeX-like markup from a document and reports either the
// cleaned text or the position map relating it back to the source.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lattay/protex/catalog"
	"github.com/lattay/protex/clean"
	"github.com/lattay/protex/syntax"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var outErr *outputPathError
		if errors.As(err, &outErr) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "protex",
		Short: "strip LaTeX-like markup and map positions back to the source",
	}
	root.AddCommand(newListCmd(), newCleanCmd())
	return root
}

// outputPathError reports that --output names a path that cannot be
// created, the one case the CLI surface documents its own exit code for.
type outputPathError struct {
	path string
	err  error
}

func (e *outputPathError) Error() string {
	return fmt.Sprintf("%s does not exist.", e.path)
}

func (e *outputPathError) Unwrap() error { return e.err }

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list SOURCE...",
		Short: "print every command name found across a set of files, sorted and deduplicated",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}
}

// runList lexes every named file independently (no parsing, no \input
// expansion) and prints the distinct CommandTok names it found across all
// of them, sorted, matching the original's list_commands behaviour of
// scanning raw token streams rather than a parsed tree.
func runList(cmd *cobra.Command, files []string) error {
	seen := make(map[string]struct{})
	for _, filename := range files {
		if err := collectCommandNames(filename, seen); err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func collectCommandNames(filename string, seen map[string]struct{}) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	lx := syntax.NewLexer(filename, f)
	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}
		if tok.Kind == syntax.TokCommand {
			seen[tok.Text] = struct{}{}
		}
		if tok.Kind == syntax.TokEOF {
			return nil
		}
	}
}

type cleanFlags struct {
	output      string
	expandInput bool
	jsonOut     bool
	cleanOut    bool
	mapOut      bool
	uglyJSON    bool
	debug       bool
}

func newCleanCmd() *cobra.Command {
	var flags cleanFlags
	cmd := &cobra.Command{
		Use:   "clean SOURCE",
		Short: "clean a file of its markup and report the position mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file; stdout is used if omitted")
	f.BoolVarP(&flags.expandInput, "expand-input", "i", false, `enable expanding \input commands`)
	f.BoolVarP(&flags.jsonOut, "json", "j", false, "output text and position map together as JSON")
	f.BoolVarP(&flags.cleanOut, "clean", "c", false, "output the cleaned text (default)")
	f.BoolVarP(&flags.mapOut, "map", "m", false, "output the position mapping in text form")
	f.BoolVarP(&flags.uglyJSON, "ugly-json", "u", false, "disable JSON pretty printing")
	f.BoolVarP(&flags.debug, "debug", "d", false, "print the token stream and parsed tree instead of cleaning")
	return cmd
}

// runClean mirrors __main__.py's clean(): json output wins over --clean,
// which wins over --map, with --clean the default when none is given.
func runClean(cmd *cobra.Command, file string, flags cleanFlags) error {
	def := syntax.NewDiscardPrototype("")
	cat, err := catalog.DiscoverDefault(def)
	if err != nil {
		return fmt.Errorf("loading command catalog: %w", err)
	}

	var opts []clean.Option
	if flags.expandInput {
		opts = append(opts, clean.ExpandInput(syntax.OSFileOpener{}))
	}

	if flags.debug {
		return runDebug(cmd, cat, file, opts)
	}

	result, err := clean.File(cat, file, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	out := cmd.OutOrStdout()
	if flags.output != "" {
		w, err := os.Create(flags.output)
		if err != nil {
			return &outputPathError{path: flags.output, err: err}
		}
		defer w.Close()
		out = w
	}

	switch {
	case flags.jsonOut:
		return writeJSON(out, result, flags.uglyJSON)
	case flags.cleanOut:
		fmt.Fprint(out, result.Text)
	case flags.mapOut:
		fmt.Fprint(out, result.PosMap.AsText())
	default:
		fmt.Fprint(out, result.Text)
	}
	return nil
}

func writeJSON(w io.Writer, result *clean.Result, ugly bool) error {
	payload := struct {
		Text string      `json:"text"`
		Map  interface{} `json:"map"`
	}{
		Text: result.Text,
		Map:  result.PosMap.AsDict(),
	}
	enc := json.NewEncoder(w)
	if !ugly {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

// runDebug prints the raw token stream followed by the parsed tree's
// top-level elements, then returns without writing any cleaned output —
// the Go analogue of __main__.py's --debug branch.
func runDebug(cmd *cobra.Command, cat *syntax.Catalog, file string, opts []clean.Option) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	toks, lexErr := func() ([]syntax.Token, error) {
		defer f.Close()
		lx := syntax.NewLexer(file, f)
		var toks []syntax.Token
		for {
			tok, err := lx.Next()
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
			if tok.Kind == syntax.TokEOF {
				return toks, nil
			}
		}
	}()
	if lexErr != nil {
		return lexErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%+v\n", toks)

	result, err := clean.File(cat, file, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	fmt.Fprintf(out, "%+v\n", result.Root.Elems)
	return nil
}
