package main

import (
	"fmt"
	"io"

	"github.com/amonks/taskprompt/todo"
)

// printTodoTree prints nested todo items with ASCII art.
func printTodoTree(w io.Writer, items []todo.Item, prefix string) {
	for i, item := range items {
		isLast := i == len(items)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if isLast {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Fprintf(w, "%s%s%s %s\n", prefix, connector, statusIcon(item), item.DisplayContent())
		printTodoTree(w, item.Children, childPrefix)
	}
}

// statusIcon returns an icon for the item's status.
func statusIcon(item todo.Item) string {
	if item.IsCompleted() {
		return "[x]"
	}
	switch item.Status {
	case todo.StatusInProgress:
		return "[~]"
	case todo.StatusPending, "":
		return "[ ]"
	default:
		return "[?]"
	}
}
