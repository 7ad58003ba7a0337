package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sable/internal/ast"
	"sable/internal/names"
	"sable/internal/source"
)

func makeTree(t *testing.T) (ast.Expr, *names.Table) {
	t.Helper()
	in := source.NewInterner()
	tbl := names.NewTable(in)

	// prop :owner, String
	return &ast.Send{
		Name: tbl.Prop,
		Args: []ast.Expr{
			&ast.Literal{Kind: ast.LitSymbol, Name: in.Intern("owner")},
			&ast.UnresolvedConstant{Scope: &ast.EmptyTree{}, Name: tbl.ConstString},
		},
	}, tbl
}

// TestFormatTreePretty проверяет коннекторы и подписи узлов.
func TestFormatTreePretty(t *testing.T) {
	tree, tbl := makeTree(t)

	var buf bytes.Buffer
	FormatTreePretty(&buf, tree, tbl, nil)
	out := buf.String()

	for _, want := range []string{
		`Send "prop"`,
		"├─ arg[0]: Literal :owner",
		`└─ arg[1]: Constant "String"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

// TestFormatTreeJSON проверяет структуру JSON-дампа.
func TestFormatTreeJSON(t *testing.T) {
	tree, tbl := makeTree(t)

	var buf bytes.Buffer
	if err := FormatTreeJSON(&buf, tree, tbl, nil); err != nil {
		t.Fatalf("FormatTreeJSON: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`"type": "Send"`,
		`"name": "prop"`,
		`"field": "arg[1]"`,
		`"type": "Constant"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}

// TestLiteralLabels проверяет текст литералов всех видов.
func TestLiteralLabels(t *testing.T) {
	in := source.NewInterner()
	tbl := names.NewTable(in)

	tests := []struct {
		lit  *ast.Literal
		want string
	}{
		{&ast.Literal{Kind: ast.LitNil}, "nil"},
		{&ast.Literal{Kind: ast.LitTrue}, "true"},
		{&ast.Literal{Kind: ast.LitFalse}, "false"},
		{&ast.Literal{Kind: ast.LitSymbol, Name: in.Intern("tok")}, ":tok"},
		{&ast.Literal{Kind: ast.LitString, Name: in.Intern("hi")}, `"hi"`},
		{&ast.Literal{Kind: ast.LitInt, Int: 42}, "42"},
		{&ast.Literal{Kind: ast.LitFloat, Float: 1.5}, "1.5"},
	}
	for _, tt := range tests {
		if got := literalText(tt.lit, tbl); got != tt.want {
			t.Errorf("literalText(%v) = %q, want %q", tt.lit.Kind, got, tt.want)
		}
	}
}
