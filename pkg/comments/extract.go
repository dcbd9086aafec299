// Package comments copies model documentation into database comment metadata.
//
// A Synchronizer takes one module at a time: it checks that the module has not
// been handled yet in this process, that the target connection supports
// COMMENT ON, derives column and table comments from the model descriptors and
// writes them in one transaction per entity kind.
package comments

import (
	"strings"

	"github.com/leapstack-labs/dbcomments/pkg/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins the display name and help text of a column comment.
const Separator = " | "

// ColumnComment is the comment for one column.
type ColumnComment struct {
	Column  string `json:"column"`
	Comment string `json:"comment"`
}

// TableColumns groups the column comments of one table.
type TableColumns struct {
	Table   string          `json:"table"`
	Columns []ColumnComment `json:"columns"`
}

// CommentMap maps table -> column -> comment, in insertion order.
type CommentMap []TableColumns

// Len returns the number of column comments across all tables.
func (c CommentMap) Len() int {
	n := 0
	for _, t := range c {
		n += len(t.Columns)
	}
	return n
}

// TableComment is the comment for one table.
type TableComment struct {
	Table   string `json:"table"`
	Comment string `json:"comment"`
}

// TableCommentMap maps table -> comment, in insertion order.
type TableCommentMap []TableComment

// ExtractColumnComments derives column comments from the fields declared
// directly on m. A column gets a comment when its display name carries more
// than its name, when it has help text, or both.
func ExtractColumnComments(m *model.Model) []ColumnComment {
	var out []ColumnComment
	for _, f := range m.Fields {
		if !f.DeclaredOn(m) {
			continue
		}

		var parts []string
		if verbose := model.Resolve(f.VerboseName); verbose != "" && !isDerivedName(verbose, f) {
			parts = append(parts, verbose)
		}
		if help := model.Resolve(f.HelpText); help != "" {
			parts = append(parts, help)
		}
		if len(parts) > 0 {
			out = append(out, ColumnComment{Column: f.Column, Comment: strings.Join(parts, Separator)})
		}
	}
	return out
}

// isDerivedName reports whether verbose is what the model system would
// generate from the field's name on its own.
func isDerivedName(verbose string, f *model.Field) bool {
	name := f.Name
	if name == "" {
		name = f.Column
	}
	return strings.EqualFold(verbose, strings.ReplaceAll(name, "_", " "))
}

// ExtractTableComment derives the table comment from the model display name,
// title-cased. ok is false when the model has no display name.
func ExtractTableComment(m *model.Model) (TableComment, bool) {
	verbose := model.Resolve(m.VerboseName)
	if verbose == "" {
		return TableComment{}, false
	}
	return TableComment{Table: m.Table, Comment: cases.Title(language.Und).String(verbose)}, true
}

// BuildComments computes the column and table comments for models.
// Tables without any column comment are left out of the column map.
func BuildComments(models []*model.Model) (CommentMap, TableCommentMap) {
	var columns CommentMap
	var tables TableCommentMap
	for _, m := range models {
		if cols := ExtractColumnComments(m); len(cols) > 0 {
			columns = append(columns, TableColumns{Table: m.Table, Columns: cols})
		}
		if tc, ok := ExtractTableComment(m); ok {
			tables = append(tables, tc)
		}
	}
	return columns, tables
}

// ConcreteModels filters out abstract, proxy and unmanaged models.
func ConcreteModels(models []*model.Model) []*model.Model {
	var out []*model.Model
	for _, m := range models {
		if m.Concrete() {
			out = append(out, m)
		}
	}
	return out
}
