package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal"
	"pepco/internal/selection"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"extract", "run", "export", "documents", "reference:sync", "mail:fetch", "mail:process", "mail:listen"} {
		assert.Contains(t, names, want)
	}
}

func TestSelectionFlags(t *testing.T) {
	f := selectionFlags{
		department:    " Baby Boy ",
		product:       "Jacket",
		price:         "12,99",
		materials:     []string{"Cotton:60", "Polyester:40"},
		extraOrderIDs: []string{"PO-2"},
	}
	sel, err := f.selections()
	require.NoError(t, err)
	assert.Equal(t, "Baby Boy", sel.Department)
	assert.Equal(t, []internal.MaterialSelection{{Material: "Cotton", Percent: 60}, {Material: "Polyester", Percent: 40}}, sel.Materials)
	assert.Equal(t, "PO-2", sel.ExtraOrderIDsJoined())

	f.materials = []string{"Cotton:lots"}
	_, err = f.selections()
	assert.ErrorIs(t, err, selection.ErrInvalidSelection)
}
