package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/pkg/container"

	"github.com/spf13/cobra"
)

var slugsCmd = &cobra.Command{
	Use:   "slugs",
	Short: "Inspect and repair catalogue slugs",
}

var (
	auditKinds []string
	auditFix   bool
)

var slugsAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Find empty or non-canonical slugs",
	Long: `Scan the sluggable tables for slugs that are empty or not in canonical
form and propose a unique replacement for each.

Without --fix nothing is written. With --fix every replacement is stored
and the cached API responses of the affected resources are dropped.`,
	Example: `  cnctl slugs audit
  cnctl slugs audit --kind person --kind genre --fix`,
	Args: cobra.NoArgs,
	RunE: runSlugsAudit,
}

func init() {
	slugsAuditCmd.Flags().StringSliceVar(&auditKinds, "kind", nil, "Kinds to audit (default all): location, movie, person, genre, production-company, distribution-company")
	slugsAuditCmd.Flags().BoolVar(&auditFix, "fix", false, "Write the proposed slugs")

	slugsCmd.AddCommand(slugsAuditCmd)
}

func parseKinds(raw []string) ([]slug.Kind, error) {
	kinds := make([]slug.Kind, 0, len(raw))
	for _, r := range raw {
		k, err := slug.ParseKind(r)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runSlugsAudit(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(auditKinds)
	if err != nil {
		return err
	}

	return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
		report, err := c.SlugAuditor().Audit(ctx, kinds, auditFix)
		if touched := report.Touched(); len(touched) > 0 {
			c.CRUD.Invalidate(ctx, touched...)
		}
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, report)
		}
		return writeAuditReport(cmd.OutOrStdout(), report)
	})
}

func writeAuditReport(w io.Writer, report slug.Report) error {
	if len(report.Fixes) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tID\tTEXT\tOLD\tNEW")
		for _, f := range report.Fixes {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", f.Kind, f.ID, f.Text, orDash(f.OldSlug), f.NewSlug)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	var err error
	switch {
	case len(report.Fixes) == 0:
		_, err = fmt.Fprintf(w, "%d checked, all slugs are canonical\n", report.Checked)
	case report.Applied:
		_, err = fmt.Fprintf(w, "%d checked, %d fixed\n", report.Checked, len(report.Fixes))
	default:
		_, err = fmt.Fprintf(w, "%d checked, %d to fix (run with --fix to apply)\n", report.Checked, len(report.Fixes))
	}
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
