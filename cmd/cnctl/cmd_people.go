package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"cinenacional-backend/internal/domains/person"
	"cinenacional-backend/pkg/container"

	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Bulk tools for people records",
}

var reviewOut string

var peopleReviewCmd = &cobra.Command{
	Use:   "review-names",
	Short: "List people whose name parts look wrongly split",
	Long: `List people with more than three words in the first or last name,
most suspicious first. With --out the list is written as an xlsx workbook
for manual review.`,
	Args: cobra.NoArgs,
	RunE: runPeopleReview,
}

var (
	importFile   string
	importDryRun bool
)

var peopleImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create people from an xlsx sheet",
	Long: `Create people from the first sheet of an xlsx workbook.

The first row holds the headers. A "nombre" (or "full_name") column is
required; "nombre_real", "genero", "nacimiento" and "fallecimiento" are
optional. Full names are split into first and last name the same way the
API does it, and every person gets a unique slug.

With --dry-run nothing is written; the output shows the split and the
slug each row would get.`,
	Args: cobra.NoArgs,
	RunE: runPeopleImport,
}

var peopleSplitCmd = &cobra.Command{
	Use:     "split <full name>",
	Short:   "Show how a full name would be split",
	Example: `  cnctl people split "María del Carmen Rodríguez"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPeopleSplit,
}

func init() {
	peopleReviewCmd.Flags().StringVar(&reviewOut, "out", "", "Write the review to this .xlsx file")
	peopleImportCmd.Flags().StringVar(&importFile, "file", "", "xlsx file to import (required)")
	peopleImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be created without writing")
	_ = peopleImportCmd.MarkFlagRequired("file")

	peopleCmd.AddCommand(peopleReviewCmd)
	peopleCmd.AddCommand(peopleImportCmd)
	peopleCmd.AddCommand(peopleSplitCmd)
}

func runPeopleReview(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
		review, err := person.ReviewNames(ctx, c.People)
		if err != nil {
			return err
		}

		if reviewOut != "" {
			f, err := os.Create(reviewOut)
			if err != nil {
				return err
			}
			if err := person.WriteReviewSheet(f, review); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", reviewOut, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d people written to %s\n", review.Total, reviewOut)
			return nil
		}

		if asJSON {
			return printJSON(cmd, review)
		}
		return writeReview(cmd.OutOrStdout(), review)
	})
}

func writeReview(w io.Writer, review person.ReviewResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tLAST NAME\tWORDS\tROLES")
	for _, c := range review.Cases {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d+%d\t%d\n", c.ID, c.FirstName, c.LastName, c.FirstNameWords, c.LastNameWords, c.TotalRoles)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d people to review\n", review.Total)
	return err
}

func runPeopleImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
		known, err := c.People.KnownNames(ctx)
		if err != nil {
			return fmt.Errorf("load known names: %w", err)
		}
		rows, err := person.ReadImportSheet(f, known)
		if err != nil {
			return err
		}

		importer := person.NewImporter(person.NewStore(c.DB.Pool), c.Slugs)
		results, err := importer.Import(ctx, rows, importDryRun)
		created := 0
		for _, r := range results {
			if r.ID != 0 {
				created++
			}
		}
		if created > 0 {
			c.CRUD.Invalidate(ctx, "people")
		}
		if err != nil {
			return err
		}

		if asJSON {
			if err := printJSON(cmd, results); err != nil {
				return err
			}
		} else if err := writeImportResults(cmd.OutOrStdout(), results, importDryRun); err != nil {
			return err
		}
		if failed := len(results) - countOK(results); failed > 0 {
			return fmt.Errorf("%d of %d rows failed", failed, len(results))
		}
		return nil
	})
}

func countOK(results []person.ImportResult) int {
	n := 0
	for _, r := range results {
		if r.Error == "" {
			n++
		}
	}
	return n
}

func writeImportResults(w io.Writer, results []person.ImportResult, dryRun bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tFIRST NAME\tLAST NAME\tSLUG\tRESULT")
	for _, r := range results {
		result := "created"
		switch {
		case r.Error != "":
			result = "error: " + r.Error
		case dryRun:
			result = "ok"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Row, orDash(r.FirstName), orDash(r.LastName), orDash(r.Slug), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	verb := "created"
	if dryRun {
		verb = "would be created"
	}
	_, err := fmt.Fprintf(w, "%d of %d rows %s\n", countOK(results), len(results), verb)
	return err
}

func runPeopleSplit(cmd *cobra.Command, args []string) error {
	full := strings.Join(args, " ")
	return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
		known, err := c.People.KnownNames(ctx)
		if err != nil {
			return fmt.Errorf("load known names: %w", err)
		}
		first, last := person.SplitFullName(full, known)
		if asJSON {
			return printJSON(cmd, map[string]string{"firstName": first, "lastName": last})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "first name: %s\n", orDash(first))
		fmt.Fprintf(out, "last name:  %s\n", orDash(last))
		return nil
	})
}
