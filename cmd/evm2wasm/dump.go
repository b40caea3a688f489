package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"
)

// runDumpCLI implements `evm2wasm dump`, a small debug-artifact inspector
// over whatever -d DIR wrote during a compile (internal/debugdump). Built
// with urfave/cli/v2 rather than the hand-rolled flagSet, since this is a
// standalone diagnostic tool with its own flag/help conventions rather
// than part of the compiler's core surface.
func runDumpCLI(args []string) int {
	app := &cli.App{
		Name:  "dump",
		Usage: "inspect debug artifacts written by `evm2wasm -d DIR`",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Required: true, Usage: "debug artifact directory"},
		},
		Action: func(c *cli.Context) error {
			return listArtifacts(c.String("dir"))
		},
	}
	if err := app.Run(append([]string{"dump"}, args...)); err != nil {
		fmt.Fprintf(os.Stderr, "evm2wasm dump: %v\n", err)
		return 1
	}
	return 0
}

func listArtifacts(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %8d bytes\n", name, info.Size())
		if filepath.Ext(name) == ".json" {
			printJSONPreview(path)
		}
	}
	return nil
}

func printJSONPreview(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}
	pretty, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return
	}
	fmt.Printf("  %s\n", pretty)
}
