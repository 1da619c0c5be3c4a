// free-learn records labeled frames, trains a small classifier on their embeddings
// and predicts labels for new frames.
//
// Usage:
//
//	free-learn train --data data/train --test data/test
//	free-learn record --label left --source screen --duration 5s
//	free-learn predict --source screen --duration 10s
package main

import (
	"fmt"
	"os"

	"github.com/drakos74/free-learn/cmd/free-learn/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
