package main

import (
	"bytes"
	"testing"

	"cinenacional-backend/internal/domains/person"
	"cinenacional-backend/internal/shared/slug"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate"},
		{"user", "create"},
		{"slugs", "audit"},
		{"people", "review-names"},
		{"people", "import"},
		{"people", "split"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.RunE, path)
	}
}

func TestRequiredFlags(t *testing.T) {
	assert.Equal(t, []string{"true"}, userCreateCmd.Flag("email").Annotations[cobra.BashCompOneRequiredFlag])
	assert.Equal(t, []string{"true"}, peopleImportCmd.Flag("file").Annotations[cobra.BashCompOneRequiredFlag])
	assert.Equal(t, "EDITOR", userCreateCmd.Flag("role").DefValue)
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"person", "production-company"})
	require.NoError(t, err)
	assert.Equal(t, []slug.Kind{slug.KindPerson, slug.KindProductionCompany}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = parseKinds([]string{"actor"})
	assert.ErrorContains(t, err, `unknown slug kind "actor"`)
}

func TestWriteAuditReport(t *testing.T) {
	fixes := []slug.Fix{{Kind: slug.KindGenre, ID: 3, Text: "Ciencia Ficción", NewSlug: "ciencia-ficcion"}}

	var buf bytes.Buffer
	require.NoError(t, writeAuditReport(&buf, slug.Report{Checked: 10, Fixes: fixes}))
	assert.Contains(t, buf.String(), "ciencia-ficcion")
	assert.Contains(t, buf.String(), "10 checked, 1 to fix (run with --fix to apply)")

	buf.Reset()
	require.NoError(t, writeAuditReport(&buf, slug.Report{Checked: 10, Fixes: fixes, Applied: true}))
	assert.Contains(t, buf.String(), "10 checked, 1 fixed")

	buf.Reset()
	require.NoError(t, writeAuditReport(&buf, slug.Report{Checked: 4}))
	assert.Equal(t, "4 checked, all slugs are canonical\n", buf.String())
}

func TestWriteImportResults(t *testing.T) {
	results := []person.ImportResult{
		{Row: 2, FirstName: "Pedro", LastName: "García", Slug: "pedro-garcia"},
		{Row: 3, LastName: "Shakira", Slug: "shakira"},
		{Row: 4, Error: "lastName: se requiere nombre o apellido."},
	}

	var buf bytes.Buffer
	require.NoError(t, writeImportResults(&buf, results, true))
	out := buf.String()
	assert.Contains(t, out, "pedro-garcia")
	assert.Contains(t, out, "error: lastName")
	assert.Contains(t, out, "2 of 3 rows would be created")
	assert.Equal(t, 2, countOK(results))
}

func TestWriteReview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReview(&buf, person.ReviewResponse{
		Cases: []person.ReviewCase{{ID: 9, FirstName: "Juan", LastName: "de la Cruz Martínez Pérez", FirstNameWords: 1, LastNameWords: 5, TotalRoles: 2}},
		Total: 1,
	}))
	assert.Contains(t, buf.String(), "1+5")
	assert.Contains(t, buf.String(), "1 people to review")
}
