package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	for _, want := range []string{
		"accounts", "add", "transfer", "reconcile", "reserve",
		"seed", "export", "export-csv", "import",
	} {
		require.Contains(t, names, want)
	}
}
