// Command cli is the cyql interactive shell and one-shot query runner.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/corvidgraph/cyql"
	"github.com/spf13/cobra"
)

const replHelp = `cyql interactive shell

Commands:
  new <name>            Create a new empty graph
  load <name> <file>    Load a graph from a JSON file
  save <name> <file>    Save a graph to a JSON file
  use <name>            Set the active graph for queries
  list                  List all loaded graphs
  help                  Show this help message
  exit / quit           Exit the shell

Any other input is treated as a query against the active graph.
`

type session struct {
	graphs map[string]*cyql.CyQL
	active string
	opts   cyql.Options
}

func main() {
	sess := &session{graphs: make(map[string]*cyql.CyQL), opts: cyql.DefaultOptions()}

	var optsPath string
	root := &cobra.Command{
		Use:   "cli",
		Short: "cyql — embeddable Cypher-subset query engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if optsPath == "" {
				return nil
			}
			opts, err := cyql.LoadOptions(optsPath)
			if err != nil {
				return fmt.Errorf("loading options: %w", err)
			}
			sess.opts = opts
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess.repl()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&optsPath, "options", "", "path to a YAML options file")

	root.AddCommand(
		sess.newCmd(),
		sess.loadCmd(),
		sess.saveCmd(),
		sess.useCmd(),
		sess.listCmd(),
		sess.queryCmd(),
		sess.replCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (s *session) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new empty graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s.create(args[0])
			fmt.Printf("created empty graph %q\n", args[0])
			return nil
		},
	}
}

func (s *session) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name> <file>",
		Short: "Load a graph from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			c, err := cyql.LoadFile(path, s.opts, nil)
			if err != nil {
				return fmt.Errorf("loading %q: %w", path, err)
			}
			s.graphs[name] = c
			if s.active == "" {
				s.active = name
			}
			fmt.Printf("loaded %q (%d nodes)\n", name, len(c.Graph.GetAllNodes()))
			return nil
		},
	}
}

func (s *session) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Save a graph to a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			c, ok := s.graphs[name]
			if !ok {
				return fmt.Errorf("no graph named %q", name)
			}
			if err := c.SaveFile(path); err != nil {
				return fmt.Errorf("saving %q: %w", name, err)
			}
			fmt.Printf("saved %q to %s\n", name, path)
			return nil
		},
	}
}

func (s *session) useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the active graph for queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := s.graphs[args[0]]; !ok {
				return fmt.Errorf("no graph named %q", args[0])
			}
			s.active = args[0]
			fmt.Printf("active graph set to %q\n", args[0])
			return nil
		},
	}
}

func (s *session) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all loaded graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s.printList()
			return nil
		},
	}
}

func (s *session) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <name> <text>",
		Short: "Run a single query against a loaded graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, text := args[0], args[1]
			c, ok := s.graphs[name]
			if !ok {
				return fmt.Errorf("no graph named %q", name)
			}
			printResult(c.Query(text))
			return nil
		},
	}
}

func (s *session) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			s.repl()
			return nil
		},
	}
}

func (s *session) create(name string) {
	s.graphs[name] = cyql.New(s.opts, nil)
	if s.active == "" {
		s.active = name
	}
}

func (s *session) printList() {
	if len(s.graphs) == 0 {
		fmt.Println("(no graphs loaded)")
		return
	}
	for name := range s.graphs {
		marker := " "
		if name == s.active {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
}

func (s *session) repl() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("cyql — embeddable Cypher-subset query engine")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		if s.active != "" {
			fmt.Printf("[%s]> ", s.active)
		} else {
			fmt.Print("> ")
		}

		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "exit", "quit":
			return

		case "help":
			fmt.Print(replHelp)

		case "list":
			s.printList()

		case "new":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: new <name>")
				continue
			}
			s.create(parts[1])
			fmt.Printf("created empty graph %q\n", parts[1])

		case "use":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: use <name>")
				continue
			}
			if _, ok := s.graphs[parts[1]]; !ok {
				fmt.Fprintf(os.Stderr, "no graph named %q\n", parts[1])
				continue
			}
			s.active = parts[1]
			fmt.Printf("active graph set to %q\n", parts[1])

		case "load":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: load <name> <file>")
				continue
			}
			name, path := parts[1], parts[2]
			c, err := cyql.LoadFile(path, s.opts, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error loading %q: %v\n", path, err)
				continue
			}
			s.graphs[name] = c
			if s.active == "" {
				s.active = name
			}
			fmt.Printf("loaded %q (%d nodes)\n", name, len(c.Graph.GetAllNodes()))

		case "save":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: save <name> <file>")
				continue
			}
			name, path := parts[1], parts[2]
			c, ok := s.graphs[name]
			if !ok {
				fmt.Fprintf(os.Stderr, "no graph named %q\n", name)
				continue
			}
			if err := c.SaveFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "error saving %q: %v\n", name, err)
				continue
			}
			fmt.Printf("saved %q to %s\n", name, path)

		default:
			if s.active == "" {
				fmt.Fprintln(os.Stderr, "no active graph — use 'new' or 'load' first")
				continue
			}
			printResult(s.graphs[s.active].Query(line))
		}
	}
}

func printResult(res cyql.Result) {
	if !res.Success {
		fmt.Fprintf(os.Stderr, "query error: %s\n", res.Error)
		return
	}
	if len(res.Columns) > 0 {
		fmt.Println(strings.Join(res.Columns, " | "))
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.String()
			}
			fmt.Println(strings.Join(cells, " | "))
		}
		return
	}
	fmt.Printf("match_count=%d\n", res.MatchCount)
	if res.Actions != nil {
		for _, a := range res.Actions.ActionResults {
			if !a.Success {
				fmt.Printf("  action failed: %s\n", a.Error)
				continue
			}
			fmt.Printf("  affected %d node(s), %d edge(s)\n", len(a.AffectedNodes), len(a.AffectedEdges))
		}
	}
}
