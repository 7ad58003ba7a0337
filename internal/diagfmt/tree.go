package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sable/internal/ast"
	"sable/internal/names"
	"sable/internal/source"
)

// TreeNodeOutput — узел дерева для JSON-вывода.
type TreeNodeOutput struct {
	Type     string           `json:"type"`
	Field    string           `json:"field,omitempty"`
	Name     string           `json:"name,omitempty"`
	Span     string           `json:"span,omitempty"`
	Children []TreeNodeOutput `json:"children,omitempty"`
}

type treeChild struct {
	field string
	expr  ast.Expr
}

// FormatTreePretty печатает дерево выражения с коннекторами ├─/└─.
func FormatTreePretty(w io.Writer, e ast.Expr, tbl *names.Table, fs *source.FileSet) {
	writeTreeNode(w, "", "", e, tbl, fs)
}

func writeTreeNode(w io.Writer, prefix, field string, e ast.Expr, tbl *names.Table, fs *source.FileSet) {
	label := nodeLabel(e, tbl)
	if fs != nil && e != nil && !e.Span().Empty() {
		label += " (span: " + formatSpan(e.Span(), fs) + ")"
	}
	if field != "" {
		label = field + ": " + label
	}
	fmt.Fprintln(w, label)

	kids := nodeChildren(e, tbl)
	for i, k := range kids {
		last := i == len(kids)-1
		if last {
			fmt.Fprintf(w, "%s└─ ", prefix)
			childPrefixTree(w, prefix+"   ", k, tbl, fs)
		} else {
			fmt.Fprintf(w, "%s├─ ", prefix)
			childPrefixTree(w, prefix+"│  ", k, tbl, fs)
		}
	}
}

func childPrefixTree(w io.Writer, prefix string, k treeChild, tbl *names.Table, fs *source.FileSet) {
	writeTreeNode(w, prefix, k.field, k.expr, tbl, fs)
}

// FormatTreeJSON сериализует дерево выражения в JSON.
func FormatTreeJSON(w io.Writer, e ast.Expr, tbl *names.Table, fs *source.FileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(treeJSONNode("", e, tbl, fs))
}

func treeJSONNode(field string, e ast.Expr, tbl *names.Table, fs *source.FileSet) TreeNodeOutput {
	out := TreeNodeOutput{
		Type:  nodeType(e),
		Field: field,
		Name:  nodeName(e, tbl),
	}
	if fs != nil && e != nil {
		out.Span = formatSpan(e.Span(), fs)
	}
	for _, k := range nodeChildren(e, tbl) {
		out.Children = append(out.Children, treeJSONNode(k.field, k.expr, tbl, fs))
	}
	return out
}

func nodeType(e ast.Expr) string {
	switch e.(type) {
	case nil:
		return "<nil>"
	case *ast.EmptyTree:
		return "EmptyTree"
	case *ast.Cbase:
		return "Cbase"
	case *ast.Self:
		return "Self"
	case *ast.ZSuper:
		return "ZSuper"
	case *ast.Local:
		return "Local"
	case *ast.Instance:
		return "Instance"
	case *ast.Literal:
		return "Literal"
	case *ast.UnresolvedConstant:
		return "Constant"
	case *ast.Send:
		return "Send"
	case *ast.Hash:
		return "Hash"
	case *ast.Block:
		return "Block"
	case *ast.Assign:
		return "Assign"
	case *ast.InsSeq:
		return "InsSeq"
	case *ast.Sig:
		return "Sig"
	case *ast.MethodDef:
		return "MethodDef"
	case *ast.ClassDef:
		return "ClassDef"
	default:
		return fmt.Sprintf("%T", e)
	}
}

// nodeName возвращает интернированное имя узла, если оно у него есть.
func nodeName(e ast.Expr, tbl *names.Table) string {
	switch n := e.(type) {
	case *ast.Local:
		return tbl.Show(n.Name)
	case *ast.Instance:
		return tbl.Show(n.Name)
	case *ast.UnresolvedConstant:
		return tbl.Show(n.Name)
	case *ast.Send:
		return tbl.Show(n.Name)
	case *ast.MethodDef:
		return tbl.Show(n.Name)
	case *ast.Literal:
		return literalText(n, tbl)
	default:
		return ""
	}
}

func literalText(l *ast.Literal, tbl *names.Table) string {
	switch l.Kind {
	case ast.LitNil:
		return "nil"
	case ast.LitTrue:
		return "true"
	case ast.LitFalse:
		return "false"
	case ast.LitSymbol:
		return ":" + tbl.Show(l.Name)
	case ast.LitString:
		return strconv.Quote(tbl.Show(l.Name))
	case ast.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	default:
		return "?"
	}
}

func nodeLabel(e ast.Expr, tbl *names.Table) string {
	t := nodeType(e)
	switch n := e.(type) {
	case *ast.Local, *ast.Instance, *ast.UnresolvedConstant, *ast.Send, *ast.MethodDef:
		label := t + " " + strconv.Quote(nodeName(e, tbl))
		if m, ok := e.(*ast.MethodDef); ok && m.Synthetic {
			label += " synthetic"
		}
		return label
	case *ast.Literal:
		return t + " " + literalText(n, tbl)
	case *ast.Hash:
		return fmt.Sprintf("%s (%d pairs)", t, len(n.Keys))
	case *ast.Block:
		if len(n.Params) > 0 {
			parts := make([]string, len(n.Params))
			for i, p := range n.Params {
				parts[i] = tbl.Show(p)
			}
			return t + " |" + strings.Join(parts, ", ") + "|"
		}
		return t
	case *ast.Sig:
		if n.Void {
			return t + " void"
		}
		return t
	default:
		return t
	}
}

func nodeChildren(e ast.Expr, tbl *names.Table) []treeChild {
	var kids []treeChild
	add := func(field string, c ast.Expr) {
		if c != nil {
			kids = append(kids, treeChild{field, c})
		}
	}
	switch n := e.(type) {
	case *ast.UnresolvedConstant:
		if _, empty := n.Scope.(*ast.EmptyTree); n.Scope != nil && !empty {
			add("scope", n.Scope)
		}
	case *ast.Send:
		add("recv", n.Recv)
		for i, a := range n.Args {
			add(fmt.Sprintf("arg[%d]", i), a)
		}
	case *ast.Hash:
		for i := range n.Keys {
			add(fmt.Sprintf("key[%d]", i), n.Keys[i])
			add(fmt.Sprintf("value[%d]", i), n.Values[i])
		}
	case *ast.Block:
		add("call", n.Call)
		add("body", n.Body)
	case *ast.Assign:
		add("lhs", n.Lhs)
		add("rhs", n.Rhs)
	case *ast.InsSeq:
		for i, s := range n.Stats {
			add(fmt.Sprintf("stat[%d]", i), s)
		}
		add("final", n.Final)
	case *ast.Sig:
		for _, p := range n.Params {
			add(tbl.Show(p.Name), p.Type)
		}
		add("return", n.Return)
	case *ast.MethodDef:
		for _, p := range n.Params {
			c := p.Default
			if c == nil {
				c = ast.Expr(&ast.EmptyTree{Loc: p.Loc})
			}
			kids = append(kids, treeChild{field: paramField(p, tbl), expr: c})
		}
		add("body", n.Body)
	case *ast.ClassDef:
		add("name", n.Name)
		for i, a := range n.Ancestors {
			add(fmt.Sprintf("ancestor[%d]", i), a)
		}
		for i, s := range n.Rhs {
			add(fmt.Sprintf("body[%d]", i), s)
		}
	}
	return kids
}

func paramField(p ast.Param, tbl *names.Table) string {
	name := tbl.Show(p.Name)
	switch p.Kind {
	case ast.ParamKeyword:
		return "param " + name + ":"
	case ast.ParamKeywordOptional:
		return "param " + name + ": (optional)"
	case ast.ParamKeywordRest:
		return "param **" + name
	default:
		return "param " + name
	}
}

func formatSpan(sp source.Span, fs *source.FileSet) string {
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
