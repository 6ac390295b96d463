package person

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/slug"
	"cinenacional-backend/internal/shared/utils"

	"github.com/xuri/excelize/v2"
)

// importColumns maps normalized header names to PersonInput fields.
var importColumns = map[string]string{
	"nombre":              "full_name",
	"nombre_completo":     "full_name",
	"full_name":           "full_name",
	"name":                "full_name",
	"nombre_real":         "real_name",
	"real_name":           "real_name",
	"genero":              "gender",
	"gender":              "gender",
	"nacimiento":          "birth_date",
	"fecha_nacimiento":    "birth_date",
	"birth_date":          "birth_date",
	"fallecimiento":       "death_date",
	"fecha_fallecimiento": "death_date",
	"death_date":          "death_date",
}

// ImportRow is one spreadsheet row, already split and validated.
// Err is set when the row cannot be imported.
type ImportRow struct {
	Row      int
	FullName string
	Input    PersonInput
	Err      error
}

func normalizeHeader(h string) string {
	h = strings.ToLower(utils.RemoveDiacritics(strings.TrimSpace(h)))
	return strings.Join(strings.Fields(h), "_")
}

// ReadImportSheet reads the first sheet of an xlsx workbook. The first row
// holds the headers; a full-name column is required.
func ReadImportSheet(r io.Reader, known NameSet) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("the sheet is empty")
	}

	colIndex := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := importColumns[normalizeHeader(h)]; ok {
			if _, dup := colIndex[field]; !dup {
				colIndex[field] = i
			}
		}
	}
	if _, ok := colIndex["full_name"]; !ok {
		return nil, errors.New(`missing name column (expected "nombre" or "full_name")`)
	}

	cell := func(record []string, field string) *string {
		i, ok := colIndex[field]
		if !ok || i >= len(record) {
			return nil
		}
		return utils.TrimPtr(&record[i])
	}

	var out []ImportRow
	for n, record := range rows[1:] {
		full := cell(record, "full_name")
		if full == nil {
			continue
		}
		first, last := SplitFullName(*full, known)
		in := PersonInput{
			FirstName: utils.TrimPtr(&first),
			LastName:  utils.TrimPtr(&last),
			RealName:  cell(record, "real_name"),
			Gender:    cell(record, "gender"),
			BirthDate: cell(record, "birth_date"),
			DeathDate: cell(record, "death_date"),
		}
		row := ImportRow{Row: n + 2, FullName: *full, Input: in}
		if err := in.Validate(); err != nil {
			row.Err = err
		}
		out = append(out, row)
	}
	return out, nil
}

// ImportResult reports what happened to one row.
type ImportResult struct {
	Row       int    `json:"row"`
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Slug      string `json:"slug,omitempty"`
	ID        int64  `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Importer creates people from spreadsheet rows.
type Importer struct {
	store   crud.Store[Person]
	checker slug.Checker
}

func NewImporter(store crud.Store[Person], checker slug.Checker) *Importer {
	return &Importer{store: store, checker: checker}
}

// Import resolves a unique slug for every valid row and, unless dryRun,
// inserts it. Slugs assigned earlier in the same run count as taken, so a
// dry run predicts the slugs a real run would assign.
func (im *Importer) Import(ctx context.Context, rows []ImportRow, dryRun bool) ([]ImportResult, error) {
	taken := &runChecker{inner: im.checker, taken: map[string]bool{}}
	resolver := slug.NewResolver(taken)

	results := make([]ImportResult, 0, len(rows))
	for _, row := range rows {
		res := ImportResult{
			Row:       row.Row,
			FullName:  row.FullName,
			FirstName: deref(row.Input.FirstName),
			LastName:  deref(row.Input.LastName),
		}
		if row.Err != nil {
			res.Error = row.Err.Error()
			results = append(results, res)
			continue
		}

		s, err := resolver.Resolve(ctx, row.Input.FullName(), slug.KindPerson, nil)
		if err != nil {
			return results, fmt.Errorf("row %d: %w", row.Row, err)
		}
		res.Slug = s
		taken.taken[s] = true

		if !dryRun {
			p := payload(row.Input)
			p.Set("is_active", true)
			p.Set("slug", s)
			created, err := im.store.Create(ctx, p)
			if err != nil {
				res.Error = err.Error()
				results = append(results, res)
				continue
			}
			res.ID = created.ID
		}
		results = append(results, res)
	}
	return results, nil
}

type runChecker struct {
	inner slug.Checker
	taken map[string]bool
}

func (c *runChecker) SlugExists(ctx context.Context, kind slug.Kind, s string, excludeID *int64) (bool, error) {
	if c.taken[s] {
		return true, nil
	}
	return c.inner.SlugExists(ctx, kind, s, excludeID)
}

var reviewHeaders = []string{"ID", "Nombre", "Apellido", "Slug", "Palabras nombre", "Palabras apellido", "Películas"}

// WriteReviewSheet writes the name review as an xlsx workbook.
func WriteReviewSheet(w io.Writer, res ReviewResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Revisión de nombres"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, h := range reviewHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(reviewHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, c := range res.Cases {
		values := []any{c.ID, c.FirstName, c.LastName, c.Slug, c.FirstNameWords, c.LastNameWords, c.TotalRoles}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "B", "C", 32)

	return f.Write(w)
}
