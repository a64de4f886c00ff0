// Package report flattens analyzer results into named tables for export.
package report

import (
	"fmt"
	"time"
)

const (
	TableEmail       = "email"
	TableForms       = "forms"
	TableAbandonment = "form_abandonment"
	TableLanding     = "landing_pages"
	TableDuplicates  = "duplicates"
	TableInactive    = "inactive_prospects"
	TableMissing     = "missing_fields"
	TableScoring     = "scoring_issues"
	TableUTM         = "utm_issues"
	TableCampaigns   = "campaigns"
	TablePrograms    = "engagement_programs"
	TableSummary     = "executive_summary"
)

// Tables lists every table name in export order.
var Tables = []string{
	TableSummary, TableEmail, TableForms, TableAbandonment, TableLanding,
	TableDuplicates, TableInactive, TableMissing, TableScoring, TableUTM,
	TableCampaigns, TablePrograms,
}

type Row map[string]any

type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ShapeError means a table was requested for an analysis that never ran.
type ShapeError struct {
	Table string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("report: no %s data to shape", e.Table)
}

func newTable(name string, cols ...string) *Table {
	return &Table{Name: name, Columns: cols, Rows: []Row{}}
}

// ISO formats t as RFC 3339 in UTC.
func ISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ISOPtr is ISO for nullable timestamps; nil becomes "".
func ISOPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ISO(*t)
}
