// cmd/tools/tree-inspect/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "dialogue-navigator/internal/common/errors"
	"dialogue-navigator/internal/content"
	"dialogue-navigator/pkg/dialogue"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ContinueOnError)
	outlineCmd := flag.NewFlagSet("outline", flag.ContinueOnError)
	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(out)
	exportOut := exportCmd.String("out", "", "File to write the built-in tree to (default stdout)")

	var path string
	for _, fs := range []*flag.FlagSet{validateCmd, statsCmd, outlineCmd} {
		fs.SetOutput(out)
		fs.StringVar(&path, "path", "", "Path to a dialogue tree file (empty uses the built-in tree)")
	}

	if len(args) < 1 {
		help(out)
		return 1
	}

	switch args[0] {
	case "validate":
		if err := validateCmd.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadTree(path); err != nil {
			fmt.Fprintf(out, "Tree validation failed: %s\n", describe(err))
			return 1
		}
		fmt.Fprintf(out, "Tree validation passed: %s\n", sourceName(path))

	case "stats":
		if err := statsCmd.Parse(args[1:]); err != nil {
			return 2
		}
		tree, err := loadTree(path)
		if err != nil {
			fmt.Fprintf(out, "Error loading tree: %s\n", describe(err))
			return 1
		}
		printStats(out, dialogue.Summarize(tree))

	case "outline":
		if err := outlineCmd.Parse(args[1:]); err != nil {
			return 2
		}
		tree, err := loadTree(path)
		if err != nil {
			fmt.Fprintf(out, "Error loading tree: %s\n", describe(err))
			return 1
		}
		printOutline(out, tree.Root)

	case "export":
		if err := exportCmd.Parse(args[1:]); err != nil {
			return 2
		}
		if *exportOut == "" {
			out.Write(content.Raw())
			return 0
		}
		if err := os.WriteFile(*exportOut, content.Raw(), 0o644); err != nil {
			fmt.Fprintf(out, "Error exporting tree: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Built-in tree written to %s\n", *exportOut)

	case "help":
		help(out)

	default:
		help(out)
		return 1
	}
	return 0
}

func loadTree(path string) (*dialogue.Tree, error) {
	if path == "" {
		return content.Default()
	}
	return dialogue.Load(path)
}

func sourceName(path string) string {
	if path == "" {
		return "built-in tree"
	}
	return path
}

// describe lists every violation on its own line when err carries them.
func describe(err error) string {
	stdErr := apperrors.Normalize(err)
	violations, ok := stdErr.Metadata["violations"].([]string)
	if !ok || len(violations) == 0 {
		return stdErr.Error()
	}
	return stdErr.Message + "\n  - " + strings.Join(violations, "\n  - ")
}

func printStats(out io.Writer, s dialogue.Stats) {
	fmt.Fprintf(out, "nodes:     %d\n", s.Nodes)
	fmt.Fprintf(out, "options:   %d\n", s.Options)
	fmt.Fprintf(out, "followup:  %d\n", s.ByKind[dialogue.KindFollowup])
	fmt.Fprintf(out, "return:    %d\n", s.ByKind[dialogue.KindReturnToRoot])
	fmt.Fprintf(out, "leaf:      %d\n", s.ByKind[dialogue.KindLeaf])
	fmt.Fprintf(out, "max depth: %d\n", s.MaxDepth)
}

// printOutline prints prompts and options in display order, each followup
// indented under the option that leads to it.
func printOutline(out io.Writer, root *dialogue.Node) {
	type item struct {
		depth int
		node  *dialogue.Node
		opt   *dialogue.Option
	}

	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		indent := strings.Repeat("  ", it.depth)

		if it.node != nil {
			fmt.Fprintf(out, "%s%s\n", indent, it.node.Prompt)
			for i := len(it.node.Options) - 1; i >= 0; i-- {
				stack = append(stack, item{depth: it.depth + 1, opt: &it.node.Options[i]})
			}
			continue
		}

		fmt.Fprintf(out, "%s%s. %s [%s]\n", indent, it.opt.Key, it.opt.Text, it.opt.Kind)
		if it.opt.Followup != nil {
			stack = append(stack, item{depth: it.depth + 1, node: it.opt.Followup})
		}
	}
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Usage: tree-inspect <command> [options]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  validate  Load a dialogue tree and report every violation")
	fmt.Fprintln(out, "  stats     Print node and option counts")
	fmt.Fprintln(out, "  outline   Print prompts and options in display order")
	fmt.Fprintln(out, "  export    Write the built-in tree as a starting point for a custom one")
	fmt.Fprintln(out, "  help      Show this help message")
	fmt.Fprintln(out, "Run 'tree-inspect <command> -h' for command-specific options.")
}
