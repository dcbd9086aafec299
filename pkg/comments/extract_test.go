package comments

import (
	"testing"

	"github.com/leapstack-labs/dbcomments/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// newModel builds a model whose fields are all declared on it.
func newModel(module, name, table string, fields ...*model.Field) *model.Model {
	m := &model.Model{Module: module, Name: name, Table: table}
	for _, f := range fields {
		if f.Model == nil {
			f.Model = m
		}
		if f.Column == "" {
			f.Column = f.Name
		}
		if f.VerboseName == nil {
			f.VerboseName = model.String(model.DefaultVerboseName(f.Name))
		}
	}
	m.Fields = fields
	return m
}

func TestExtractColumnComments(t *testing.T) {
	m := newModel("unit_test", "model", "unit_test_model",
		&model.Field{Name: "no_comment"},
		&model.Field{Name: "verbose_name", VerboseName: model.String("This is verbose name")},
		&model.Field{Name: "help_text", HelpText: model.String("I am really should see this in database")},
	)

	assert.Equal(t, []ColumnComment{
		{Column: "verbose_name", Comment: "This is verbose name"},
		{Column: "help_text", Comment: "I am really should see this in database"},
	}, ExtractColumnComments(m))
}

func TestExtractColumnComments_Joined(t *testing.T) {
	m := newModel("unit_test", "model", "unit_test_model",
		&model.Field{
			Name:        "verbose_name",
			VerboseName: model.String("This is verbose name"),
			HelpText:    model.String("I am really should see this in database"),
		},
	)

	got := ExtractColumnComments(m)
	require.Len(t, got, 1)
	assert.Equal(t, "This is verbose name | I am really should see this in database", got[0].Comment)
}

func TestExtractColumnComments_DerivedNameIgnored(t *testing.T) {
	tests := []struct {
		name    string
		field   *model.Field
		wantNil bool
	}{
		{
			name:    "exact derived name",
			field:   &model.Field{Name: "created_at", VerboseName: model.String("created at")},
			wantNil: true,
		},
		{
			name:    "case differs only",
			field:   &model.Field{Name: "created_at", VerboseName: model.String("Created At")},
			wantNil: true,
		},
		{
			name:    "custom column keeps derived name check on field name",
			field:   &model.Field{Name: "user", Column: "user_id", VerboseName: model.String("user")},
			wantNil: true,
		},
		{
			name:    "column used when name is empty",
			field:   &model.Field{Column: "created_at", VerboseName: model.String("created at")},
			wantNil: true,
		},
		{
			name:  "real display name",
			field: &model.Field{Name: "created_at", VerboseName: model.String("creation time")},
		},
		{
			name:    "empty help text",
			field:   &model.Field{Name: "title", HelpText: model.String("")},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel("app", "thing", "app_thing", tt.field)
			got := ExtractColumnComments(m)
			if tt.wantNil {
				assert.Empty(t, got)
			} else {
				assert.Len(t, got, 1)
			}
		})
	}
}

func TestExtractColumnComments_InheritedFieldsSkipped(t *testing.T) {
	base := newModel("unit_test", "basemodel", "unit_test_basemodel",
		&model.Field{Name: "first_name"},
		&model.Field{Name: "last_name"},
		&model.Field{Name: "date_of_birth", HelpText: model.String("belongs to the base table")},
	)
	child := newModel("unit_test", "inheritingmodel", "unit_test_inheritingmodel",
		&model.Field{Name: "no_comment"},
		&model.Field{Name: "verbose_name", VerboseName: model.String("This is a verbose name")},
		&model.Field{Name: "help_text", HelpText: model.String("I really should see this in the database")},
	)
	child.Fields = append(append([]*model.Field{}, base.Fields...), child.Fields...)

	assert.Equal(t, []ColumnComment{
		{Column: "verbose_name", Comment: "This is a verbose name"},
		{Column: "help_text", Comment: "I really should see this in the database"},
	}, ExtractColumnComments(child))

	assert.Equal(t, []ColumnComment{
		{Column: "date_of_birth", Comment: "belongs to the base table"},
	}, ExtractColumnComments(base))
}

func TestBuildComments_AbstractStructBase(t *testing.T) {
	type timestamped struct {
		CreatedAt string `help:"model creation time"`
	}
	type article struct {
		timestamped
		Title string `help:"headline"`
	}

	r := model.NewRegistry()
	_, err := r.RegisterStruct("news", timestamped{}, model.AsAbstract())
	require.NoError(t, err)
	_, err = r.RegisterStruct("news", article{})
	require.NoError(t, err)

	mod, ok := r.Module("news")
	require.True(t, ok)

	columns, _ := BuildComments(ConcreteModels(mod.Models))
	assert.Equal(t, CommentMap{{
		Table: "news_article",
		Columns: []ColumnComment{
			{Column: "created_at", Comment: "model creation time"},
			{Column: "title", Comment: "headline"},
		},
	}}, columns)
}

func TestExtractColumnComments_MissingDeclaringModel(t *testing.T) {
	m := &model.Model{Module: "app", Name: "thing", Table: "app_thing"}
	m.Fields = []*model.Field{
		{Name: "orphan", Column: "orphan", HelpText: model.String("no owner")},
	}
	assert.Empty(t, ExtractColumnComments(m))
}

func TestExtractColumnComments_LazyText(t *testing.T) {
	tr := model.NewTranslator(nil, language.English)
	m := newModel("unit_test", "gettextlazymodel", "unit_test_gettextlazymodel",
		&model.Field{
			Name:        "is_superuser",
			VerboseName: tr.Lazy("superuser status"),
			HelpText:    tr.Lazy("Designates that this user has all permissions without explicitly assigning them."),
		},
	)

	assert.Equal(t, []ColumnComment{{
		Column:  "is_superuser",
		Comment: "superuser status | Designates that this user has all permissions without explicitly assigning them.",
	}}, ExtractColumnComments(m))
}

func TestExtractTableComment(t *testing.T) {
	m := &model.Model{Table: "tests_examplemodel", VerboseName: model.String("this is an example for table comment")}
	tc, ok := ExtractTableComment(m)
	require.True(t, ok)
	assert.Equal(t, TableComment{Table: "tests_examplemodel", Comment: "This Is An Example For Table Comment"}, tc)

	_, ok = ExtractTableComment(&model.Model{Table: "anonymous"})
	assert.False(t, ok)
}

func TestExtractTableComment_TitleCase(t *testing.T) {
	tests := []struct {
		verbose string
		want    string
	}{
		{verbose: "o'reilly book", want: "O'reilly Book"},
		{verbose: "2nd floor room", want: "2Nd Floor Room"},
		{verbose: "UPPER case", want: "Upper Case"},
	}
	for _, tt := range tests {
		t.Run(tt.verbose, func(t *testing.T) {
			tc, ok := ExtractTableComment(&model.Model{Table: "t", VerboseName: model.String(tt.verbose)})
			require.True(t, ok)
			assert.Equal(t, tt.want, tc.Comment)
		})
	}
}

func TestBuildComments(t *testing.T) {
	documented := newModel("tests", "examplemodel", "tests_examplemodel",
		&model.Field{Name: "created_at", HelpText: model.String("model creation time")},
	)
	documented.VerboseName = model.String("this is an example for table comment")
	bare := newModel("tests", "bare", "tests_bare", &model.Field{Name: "id"})

	columns, tables := BuildComments([]*model.Model{documented, bare})
	assert.Equal(t, CommentMap{{
		Table:   "tests_examplemodel",
		Columns: []ColumnComment{{Column: "created_at", Comment: "model creation time"}},
	}}, columns)
	assert.Equal(t, 1, columns.Len())
	assert.Equal(t, TableCommentMap{{Table: "tests_examplemodel", Comment: "This Is An Example For Table Comment"}}, tables)
}

func TestConcreteModels(t *testing.T) {
	concrete := &model.Model{Name: "concrete"}
	models := []*model.Model{
		concrete,
		{Name: "abstract", Abstract: true},
		{Name: "proxy", Proxy: true},
		{Name: "unmanaged", Unmanaged: true},
	}
	assert.Equal(t, []*model.Model{concrete}, ConcreteModels(models))
}
