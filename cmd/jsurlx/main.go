// Command jsurlx extracts URLs and endpoint-shaped strings from JavaScript
// source files.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sawzeeyy/w3av/internal/config"
	"github.com/sawzeeyy/w3av/internal/context"
	"github.com/sawzeeyy/w3av/internal/extract"
	"github.com/sawzeeyy/w3av/internal/htmlurls"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("jsurlx", pflag.ContinueOnError)

	placeholder := fs.String("placeholder", "", "token substituted for unresolved values (default FUZZ)")
	includeTemplates := fs.Bool("include-templates", false, "emit resolved, {name}, and placeholder forms for every template substitution")
	maxNodes := fs.Int("max-nodes", 0, "per-file AST node visitation budget (default 200000)")
	maxFileSize := fs.Int("max-file-size", 0, "byte size above which a file is extracted in degraded (no-symbol-table) mode")
	htmlParser := fs.String("html-parser", "net-html", "HTML backend for embedded markup candidates: net-html or tree-sitter")
	skipSymbols := fs.Bool("skip-symbols", false, "skip symbol-table construction; identifiers not supplied by --context resolve to the placeholder")
	skipAliases := fs.Bool("skip-aliases", false, "label template placeholders with the substituted name itself, not the name it was assigned from (x = y)")
	extensions := fs.StringSlice("extensions", nil, "extra file extensions for the filter's extension allowlist (the keep/reject rules do not consult the allowlist)")
	contextPairs := fs.StringArray("context", nil, "KEY=VALUE context binding, repeatable")
	contextJSON := fs.String("context-json", "", "path to a JSON file of context bindings")
	contextPolicy := fs.String("context-policy", "merge", "how context bindings combine with file-derived values: merge, override, or only")
	verbose := fs.Bool("verbose", false, "log each candidate as it's discovered")
	jsonOutput := fs.Bool("json", false, "emit one JSON object mapping each file path to its candidates instead of plain lines")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *showVersion {
		fmt.Println("jsurlx", version)
		return 0
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: jsurlx [flags] <file> [file...]")
		return 2
	}

	bindings, err := loadContext(*contextPairs, *contextJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: context: %v\n", err)
		return 1
	}

	policy, err := parsePolicy(*contextPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	cfg := config.Load(cwd)

	opts := cfg.Apply(extract.Options{
		Placeholder:      *placeholder,
		IncludeTemplates: *includeTemplates,
		MaxNodes:         *maxNodes,
		MaxFileSize:      *maxFileSize,
		HTMLParser:       htmlurls.Backend(*htmlParser),
		SkipSymbols:      *skipSymbols,
		SkipAliases:      *skipAliases,
		Extensions:       *extensions,
		Context:          bindings,
		ContextPolicy:    policy,
		Verbose:          *verbose,
	})

	results, err := extractFiles(files, opts, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	printResults(results, files, *jsonOutput)
	return 0
}

func loadContext(pairs []string, jsonPath string) (*context.Bindings, error) {
	if jsonPath == "" && len(pairs) == 0 {
		return nil, nil
	}
	if jsonPath != "" {
		b, err := context.ParseJSONFile(jsonPath)
		if err != nil {
			return nil, err
		}
		if len(pairs) == 0 {
			return b, nil
		}
		kv, err := context.ParseKeyValues(pairs)
		if err != nil {
			return nil, err
		}
		for _, name := range kv.Names() {
			for _, v := range kv.Values(name) {
				b.Set(name, v)
			}
		}
		for prop, v := range kv.LocationOverrides() {
			b.Set("window.location."+prop, v)
		}
		return b, nil
	}
	return context.ParseKeyValues(pairs)
}

func parsePolicy(s string) (context.Policy, error) {
	switch s {
	case "merge", "":
		return context.PolicyMerge, nil
	case "override":
		return context.PolicyOverride, nil
	case "only":
		return context.PolicyOnly, nil
	default:
		return "", fmt.Errorf("unknown context-policy %q (want merge, override, or only)", s)
	}
}

// extractFiles runs the driver over every file, fanned out across CPU
// cores. Each file owns an isolated symbol table and candidate set, so the
// only shared state is the results slice, indexed per file.
func extractFiles(files []string, opts extract.Options, verbose bool) ([][]string, error) {
	results := make([][]string, len(files))

	numWorkers := runtime.NumCPU()
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	g := new(errgroup.Group)
	g.SetLimit(numWorkers)
	for i, path := range files {
		g.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("jsurlx.read_failed", "path", path, "error", err)
				results[i] = []string{}
				return nil
			}

			fileOpts := opts
			if verbose {
				fileOpts.OnCandidate = func(c string) {
					fmt.Fprintf(os.Stderr, "%s: %s\n", path, c)
				}
			}

			d := extract.New(fileOpts)
			candidates, err := d.Extract(source)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(results [][]string, files []string, asJSON bool) {
	if asJSON {
		out := make(map[string][]string, len(files))
		for i, path := range files {
			out[path] = results[i]
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	multi := len(files) > 1
	for i, path := range files {
		for _, c := range results[i] {
			if multi {
				fmt.Printf("%s: %s\n", path, c)
			} else {
				fmt.Println(c)
			}
		}
	}
}
