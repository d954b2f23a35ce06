// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main provides an interactive REPL (Read-Eval-Print Loop) for the weak list.
//
// This command-line tool allows users to interactively explore weak-reference
// semantics: values are pinned by the REPL while added, and dropping a pin
// lets the garbage collector reclaim the value out from under the list. It's
// useful for development, testing, and learning the container API.
//
// # Features
//
//   - Interactive command-line interface
//   - Membership operations (add, remove, contains, len)
//   - Pin bookkeeping: drop a value's pin and watch it disappear
//   - Forced GC cycles and manual sweeps
//   - Metrics reporting
//   - JSON and CSV dumps of the surviving elements
//
// # Usage
//
// Start the REPL:
//
//	go run cmd/repl/main.go
//
// Available commands:
//
//	add <value>         - Pin a value and add it to the list
//	drop <value>        - Unpin a value (the collector may then reclaim it)
//	remove <value>      - Remove a pinned value from the list
//	contains <value>    - Check membership of a pinned value
//	len                 - Count live elements
//	list                - Print the surviving elements in insertion order
//	clear               - Empty the list (pins are kept)
//	gc                  - Force a garbage collection cycle
//	sweep               - Force a sweep decision
//	metrics             - Print collected metrics
//	dump <json|csv> <file> - Write the surviving elements to a file
//	help                - Show the command list
//	quit, exit          - Exit the REPL
//
// Example session:
//
//	> add alpha
//	OK
//	> add beta
//	OK
//	> len
//	Len: 2
//	> drop beta
//	Unpinned
//	> gc
//	GC cycle forced
//	> len
//	Len: 1
//	> list
//	0: alpha
//	> quit
//	Goodbye!
//
// # Dangers and Warnings
//
//   - **Pins Are the Only Owners**: The REPL's pin table is what keeps added
//     values alive. After drop, reclamation is the collector's decision; gc
//     forces a cycle but the exact moment an entry vanishes is not promised.
//   - **Values Are Single Tokens**: Input is split on whitespace; values with
//     spaces are not supported.
//   - **No Persistence**: The list is in-memory. dump writes a snapshot, but
//     there is no way to load one back - a weak list cannot own revived
//     values.
//   - **Concurrent Access**: The REPL is single-threaded and not designed for
//     concurrent access.
//
// # Best Practices
//
//   - Use short descriptive values (e.g., "conn:42", "listener:ui")
//   - Pair drop with gc to observe reclamation promptly
//   - Watch metrics to see sweeps and epoch-gated skips accumulate
//
// # See Also
//
// For the container API, see the root weaklist package. For performance
// testing, see the bench tool.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	core "github.com/kianostad/weaklist/internal/core"
)

type REPL struct {
	list core.Collection[string]

	// pins holds the strong references; the list itself never keeps a value
	// alive.
	pins map[string]*string
}

func NewREPL(list core.Collection[string]) *REPL {
	return &REPL{
		list: list,
		pins: make(map[string]*string),
	}
}

func (r *REPL) Run() {
	fmt.Println("Weak List REPL")
	fmt.Println("Commands: add <value>, drop <value>, remove <value>, contains <value>, len, list, clear, gc, sweep, metrics, dump <json|csv> <file>, help, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		ctx := context.Background()

		switch cmd {
		case "add":
			if len(args) != 1 {
				fmt.Println("Usage: add <value>")
				continue
			}
			p, pinned := r.pins[args[0]]
			if !pinned {
				v := args[0]
				p = &v
				r.pins[args[0]] = p
			}
			if err := r.list.Add(ctx, p); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if pinned {
				fmt.Println("OK (duplicate entry)")
			} else {
				fmt.Println("OK")
			}

		case "drop":
			if len(args) != 1 {
				fmt.Println("Usage: drop <value>")
				continue
			}
			if _, pinned := r.pins[args[0]]; !pinned {
				fmt.Println("Not pinned")
				continue
			}
			delete(r.pins, args[0])
			fmt.Println("Unpinned")

		case "remove":
			if len(args) != 1 {
				fmt.Println("Usage: remove <value>")
				continue
			}
			p, pinned := r.pins[args[0]]
			if !pinned {
				fmt.Println("Not pinned (only pinned values can be addressed)")
				continue
			}
			removed, err := r.list.Remove(ctx, p)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if removed {
				fmt.Println("Removed")
			} else {
				fmt.Println("Not a member")
			}

		case "contains":
			if len(args) != 1 {
				fmt.Println("Usage: contains <value>")
				continue
			}
			p, pinned := r.pins[args[0]]
			if !pinned {
				fmt.Println("Not pinned (only pinned values can be addressed)")
				continue
			}
			ok, err := r.list.Contains(ctx, p)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("Contains: %t\n", ok)

		case "len":
			fmt.Printf("Len: %d\n", r.list.Len(ctx))

		case "list":
			i := 0
			for v := range r.list.Items(ctx) {
				fmt.Printf("%d: %s\n", i, *v)
				i++
			}
			if i == 0 {
				fmt.Println("(empty)")
			}

		case "clear":
			r.list.Clear(ctx)
			fmt.Println("Cleared")

		case "gc":
			runtime.GC()
			fmt.Println("GC cycle forced")

		case "sweep":
			if err := r.list.ManualSweep(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Swept")

		case "metrics":
			stats := r.list.Metrics(ctx)
			fmt.Printf("Live entries:   %d\n", stats.LiveEntries)
			fmt.Printf("Adds:           %d (batched: %d)\n", stats.Operations.Add, stats.Operations.BatchAdd)
			fmt.Printf("Removes:        %d (batched: %d)\n", stats.Operations.Remove, stats.Operations.BatchRemove)
			fmt.Printf("Contains:       %d\n", stats.Operations.Contains)
			fmt.Printf("Len calls:      %d\n", stats.Operations.Len)
			fmt.Printf("Iterations:     %d\n", stats.Operations.Iterate)
			fmt.Printf("Sweep scans:    %d\n", stats.Sweeps.Scans)
			fmt.Printf("Sweep skips:    %d\n", stats.Sweeps.Skipped)
			fmt.Printf("Swept entries:  %d\n", stats.Sweeps.SweptEntries)

		case "dump":
			if len(args) != 2 {
				fmt.Println("Usage: dump <json|csv> <file>")
				continue
			}
			if err := r.dump(ctx, args[0], args[1]); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("Dumped to %s\n", args[1])

		case "help":
			fmt.Println("Commands:")
			fmt.Println("  add <value>            - Pin a value and add it to the list")
			fmt.Println("  drop <value>           - Unpin a value so the collector can reclaim it")
			fmt.Println("  remove <value>         - Remove a pinned value from the list")
			fmt.Println("  contains <value>       - Check membership of a pinned value")
			fmt.Println("  len                    - Count live elements")
			fmt.Println("  list                   - Print surviving elements in insertion order")
			fmt.Println("  clear                  - Empty the list")
			fmt.Println("  gc                     - Force a garbage collection cycle")
			fmt.Println("  sweep                  - Force a sweep decision")
			fmt.Println("  metrics                - Print collected metrics")
			fmt.Println("  dump <json|csv> <file> - Write surviving elements to a file")
			fmt.Println("  quit, exit             - Exit the REPL")

		case "quit", "exit":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}

// dump writes the surviving elements to filename. The snapshot pins them for
// the duration of the write.
func (r *REPL) dump(ctx context.Context, format, filename string) error {
	snapshot := r.list.Snapshot(ctx)

	file, err := os.Create(filename) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", filename, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	switch format {
	case "json":
		if _, err := writer.WriteString("[\n"); err != nil {
			return fmt.Errorf("failed to write JSON header: %v", err)
		}
		for i, v := range snapshot {
			line := fmt.Sprintf("  %q", *v)
			if i < len(snapshot)-1 {
				line += ","
			}
			if _, err := writer.WriteString(line + "\n"); err != nil {
				return fmt.Errorf("failed to write JSON entry: %v", err)
			}
		}
		if _, err := writer.WriteString("]\n"); err != nil {
			return fmt.Errorf("failed to write JSON footer: %v", err)
		}

	case "csv":
		if _, err := writer.WriteString("index,value\n"); err != nil {
			return fmt.Errorf("failed to write CSV header: %v", err)
		}
		for i, v := range snapshot {
			valStr := escapeCSV(*v)
			valStr = strings.ReplaceAll(valStr, "\n", "\\n")
			if _, err := writer.WriteString(fmt.Sprintf("%d,%s\n", i, valStr)); err != nil {
				return fmt.Errorf("failed to write CSV line: %v", err)
			}
		}

	default:
		return fmt.Errorf("unknown format %q (want json or csv)", format)
	}

	return nil
}

// escapeCSV quotes a value when it contains CSV metacharacters
func escapeCSV(s string) string {
	if len(s) == 0 {
		return `""`
	}

	needsQuotes := false
	for _, char := range s {
		if char == '"' || char == ',' || char == '\n' || char == '\r' {
			needsQuotes = true
			break
		}
	}

	if !needsQuotes {
		return s
	}

	result := `"`
	for _, char := range s {
		if char == '"' {
			result += `""`
		} else {
			result += string(char)
		}
	}
	result += `"`
	return result
}

func main() {
	_ = flag.Bool("quiet", false, "Run in quiet mode")
	flag.Parse()

	list := core.New[string]()
	defer list.Close(context.Background())

	repl := NewREPL(list)

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived shutdown signal. Closing list...")
		list.Close(context.Background())
		os.Exit(0)
	}()

	repl.Run()
}
