package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cigno/platform/internal/tracker"
)

func main() {
	file := flag.String("file", "TODO.md", "Markdown tracking document")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: todo-status [-file TODO.md] <task-id> <status>\n\n")
		fmt.Fprintf(os.Stderr, "Statuses: todo (pending), in-progress (wip), blocked, done (complete)\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	taskID, keyword := flag.Arg(0), flag.Arg(1)

	status, err := tracker.ParseStatus(keyword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, err := tracker.Update(*file, taskID, status, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	lines := make([]string, len(res.Lines))
	for i, n := range res.Lines {
		lines[i] = fmt.Sprint(n)
	}
	fmt.Printf("%s -> %s (%s line %s)\n", taskID, res.Status, *file, strings.Join(lines, ", "))
	if res.Updated != "" {
		fmt.Printf("Last updated: %s\n", res.Updated)
	}
}
