// Package treeio кодирует десугаренные деревья в msgpack: обмен между
// стадиями пайплайна и дисковый кеш реврайтера.
package treeio

import (
	"fmt"

	"sable/internal/ast"
	"sable/internal/names"
	"sable/internal/source"
)

// Вид узла на проводе. Литералы несут LitKind отдельным полем.
const (
	kindAbsent uint8 = iota // nil-выражение (нет receiver'а, нет scope)
	kindEmpty
	kindCbase
	kindSelf
	kindZSuper
	kindLocal
	kindInstance
	kindLiteral
	kindConstant
	kindSend
	kindHash
	kindBlock
	kindAssign
	kindInsSeq
	kindSig
	kindMethodDef
	kindClassDef
)

// wireNode — один узел дерева. Имена передаются строками и
// интернируются заново на стороне декодера.
//
// Раскладка Kids по видам:
//
//	Constant:  [scope]
//	Send:      [recv, args...]
//	Hash:      [k0, v0, k1, v1, ...]
//	Block:     [call, body], Strs - параметры
//	Assign:    [lhs, rhs]
//	InsSeq:    [stats..., final]
//	Sig:       [return], SigParams - параметры
//	MethodDef: [body], Params - параметры, Flag - synthetic
//	ClassDef:  [name, ancestors..., body...], Int - число предков
type wireNode struct {
	Kind      uint8          `msgpack:"k"`
	Start     uint32         `msgpack:"s,omitempty"`
	End       uint32         `msgpack:"e,omitempty"`
	Lit       uint8          `msgpack:"l,omitempty"`
	Name      string         `msgpack:"n,omitempty"`
	Int       int64          `msgpack:"i,omitempty"`
	Float     float64        `msgpack:"f,omitempty"`
	Flag      bool           `msgpack:"b,omitempty"`
	Strs      []string       `msgpack:"w,omitempty"`
	Kids      []wireNode     `msgpack:"c,omitempty"`
	Params    []wireParam    `msgpack:"p,omitempty"`
	SigParams []wireSigParam `msgpack:"g,omitempty"`
}

type wireParam struct {
	Kind    uint8     `msgpack:"k"`
	Name    string    `msgpack:"n"`
	Start   uint32    `msgpack:"s,omitempty"`
	End     uint32    `msgpack:"e,omitempty"`
	Default *wireNode `msgpack:"d,omitempty"`
}

type wireSigParam struct {
	Name  string   `msgpack:"n"`
	Start uint32   `msgpack:"s,omitempty"`
	End   uint32   `msgpack:"e,omitempty"`
	Type  wireNode `msgpack:"t"`
}

// encodeExpr переводит дерево в проводное представление.
// nil кодируется узлом kindAbsent.
func encodeExpr(e ast.Expr, tbl *names.Table) wireNode {
	if e == nil {
		return wireNode{Kind: kindAbsent}
	}
	sp := e.Span()
	n := wireNode{Start: sp.Start, End: sp.End}

	switch v := e.(type) {
	case *ast.EmptyTree:
		n.Kind = kindEmpty
	case *ast.Cbase:
		n.Kind = kindCbase
	case *ast.Self:
		n.Kind = kindSelf
	case *ast.ZSuper:
		n.Kind = kindZSuper
	case *ast.Local:
		n.Kind = kindLocal
		n.Name = tbl.Show(v.Name)
	case *ast.Instance:
		n.Kind = kindInstance
		n.Name = tbl.Show(v.Name)
	case *ast.Literal:
		n.Kind = kindLiteral
		n.Lit = uint8(v.Kind)
		if v.Kind == ast.LitSymbol || v.Kind == ast.LitString {
			n.Name = tbl.Show(v.Name)
		}
		n.Int = v.Int
		n.Float = v.Float
	case *ast.UnresolvedConstant:
		n.Kind = kindConstant
		n.Name = tbl.Show(v.Name)
		n.Kids = []wireNode{encodeExpr(v.Scope, tbl)}
	case *ast.Send:
		n.Kind = kindSend
		n.Name = tbl.Show(v.Name)
		n.Kids = make([]wireNode, 0, len(v.Args)+1)
		n.Kids = append(n.Kids, encodeExpr(v.Recv, tbl))
		for _, a := range v.Args {
			n.Kids = append(n.Kids, encodeExpr(a, tbl))
		}
	case *ast.Hash:
		n.Kind = kindHash
		n.Kids = make([]wireNode, 0, 2*len(v.Keys))
		for i := range v.Keys {
			n.Kids = append(n.Kids, encodeExpr(v.Keys[i], tbl), encodeExpr(v.Values[i], tbl))
		}
	case *ast.Block:
		n.Kind = kindBlock
		n.Kids = []wireNode{encodeExpr(v.Call, tbl), encodeExpr(v.Body, tbl)}
		n.Strs = make([]string, len(v.Params))
		for i, p := range v.Params {
			n.Strs[i] = tbl.Show(p)
		}
	case *ast.Assign:
		n.Kind = kindAssign
		n.Kids = []wireNode{encodeExpr(v.Lhs, tbl), encodeExpr(v.Rhs, tbl)}
	case *ast.InsSeq:
		n.Kind = kindInsSeq
		n.Kids = make([]wireNode, 0, len(v.Stats)+1)
		for _, s := range v.Stats {
			n.Kids = append(n.Kids, encodeExpr(s, tbl))
		}
		n.Kids = append(n.Kids, encodeExpr(v.Final, tbl))
	case *ast.Sig:
		n.Kind = kindSig
		n.Flag = v.Void
		n.Kids = []wireNode{encodeExpr(v.Return, tbl)}
		n.SigParams = make([]wireSigParam, len(v.Params))
		for i, p := range v.Params {
			n.SigParams[i] = wireSigParam{
				Name:  tbl.Show(p.Name),
				Start: p.Loc.Start,
				End:   p.Loc.End,
				Type:  encodeExpr(p.Type, tbl),
			}
		}
	case *ast.MethodDef:
		n.Kind = kindMethodDef
		n.Name = tbl.Show(v.Name)
		n.Flag = v.Synthetic
		n.Kids = []wireNode{encodeExpr(v.Body, tbl)}
		n.Params = make([]wireParam, len(v.Params))
		for i, p := range v.Params {
			wp := wireParam{
				Kind:  uint8(p.Kind),
				Name:  tbl.Show(p.Name),
				Start: p.Loc.Start,
				End:   p.Loc.End,
			}
			if p.Default != nil {
				d := encodeExpr(p.Default, tbl)
				wp.Default = &d
			}
			n.Params[i] = wp
		}
	case *ast.ClassDef:
		n.Kind = kindClassDef
		n.Int = int64(len(v.Ancestors))
		n.Kids = make([]wireNode, 0, 1+len(v.Ancestors)+len(v.Rhs))
		n.Kids = append(n.Kids, encodeExpr(v.Name, tbl))
		for _, a := range v.Ancestors {
			n.Kids = append(n.Kids, encodeExpr(a, tbl))
		}
		for _, s := range v.Rhs {
			n.Kids = append(n.Kids, encodeExpr(s, tbl))
		}
	default:
		panic(fmt.Sprintf("treeio: unknown node %T", e))
	}
	return n
}

// decodeExpr восстанавливает дерево. Все спаны получают file,
// имена интернируются в таблицу декодера.
func decodeExpr(n wireNode, file source.FileID, tbl *names.Table) (ast.Expr, error) {
	sp := source.Span{File: file, Start: n.Start, End: n.End}
	kid := func(i int) (ast.Expr, error) {
		if i >= len(n.Kids) {
			return nil, fmt.Errorf("treeio: node kind %d: missing child %d", n.Kind, i)
		}
		return decodeExpr(n.Kids[i], file, tbl)
	}

	switch n.Kind {
	case kindAbsent:
		return nil, nil
	case kindEmpty:
		return &ast.EmptyTree{Loc: sp}, nil
	case kindCbase:
		return &ast.Cbase{Loc: sp}, nil
	case kindSelf:
		return &ast.Self{Loc: sp}, nil
	case kindZSuper:
		return &ast.ZSuper{Loc: sp}, nil
	case kindLocal:
		return &ast.Local{Loc: sp, Name: tbl.Strings.Intern(n.Name)}, nil
	case kindInstance:
		return &ast.Instance{Loc: sp, Name: tbl.Strings.Intern(n.Name)}, nil
	case kindLiteral:
		lit := &ast.Literal{Loc: sp, Kind: ast.LitKind(n.Lit), Int: n.Int, Float: n.Float}
		if lit.Kind == ast.LitSymbol || lit.Kind == ast.LitString {
			lit.Name = tbl.Strings.Intern(n.Name)
		}
		return lit, nil
	case kindConstant:
		scope, err := kid(0)
		if err != nil {
			return nil, err
		}
		return &ast.UnresolvedConstant{Loc: sp, Scope: scope, Name: tbl.Strings.Intern(n.Name)}, nil
	case kindSend:
		recv, err := kid(0)
		if err != nil {
			return nil, err
		}
		send := &ast.Send{Loc: sp, Recv: recv, Name: tbl.Strings.Intern(n.Name)}
		for i := 1; i < len(n.Kids); i++ {
			a, err := kid(i)
			if err != nil {
				return nil, err
			}
			send.Args = append(send.Args, a)
		}
		return send, nil
	case kindHash:
		if len(n.Kids)%2 != 0 {
			return nil, fmt.Errorf("treeio: hash with odd child count %d", len(n.Kids))
		}
		h := &ast.Hash{Loc: sp}
		for i := 0; i < len(n.Kids); i += 2 {
			k, err := kid(i)
			if err != nil {
				return nil, err
			}
			v, err := kid(i + 1)
			if err != nil {
				return nil, err
			}
			h.Keys = append(h.Keys, k)
			h.Values = append(h.Values, v)
		}
		return h, nil
	case kindBlock:
		call, err := kid(0)
		if err != nil {
			return nil, err
		}
		send, ok := call.(*ast.Send)
		if !ok {
			return nil, fmt.Errorf("treeio: block call is %T, want send", call)
		}
		body, err := kid(1)
		if err != nil {
			return nil, err
		}
		b := &ast.Block{Loc: sp, Call: send, Body: body}
		for _, s := range n.Strs {
			b.Params = append(b.Params, tbl.Strings.Intern(s))
		}
		return b, nil
	case kindAssign:
		lhs, err := kid(0)
		if err != nil {
			return nil, err
		}
		rhs, err := kid(1)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Loc: sp, Lhs: lhs, Rhs: rhs}, nil
	case kindInsSeq:
		if len(n.Kids) == 0 {
			return nil, fmt.Errorf("treeio: empty instruction sequence")
		}
		seq := &ast.InsSeq{Loc: sp}
		for i := 0; i < len(n.Kids)-1; i++ {
			s, err := kid(i)
			if err != nil {
				return nil, err
			}
			seq.Stats = append(seq.Stats, s)
		}
		final, err := kid(len(n.Kids) - 1)
		if err != nil {
			return nil, err
		}
		seq.Final = final
		return seq, nil
	case kindSig:
		ret, err := kid(0)
		if err != nil {
			return nil, err
		}
		sig := &ast.Sig{Loc: sp, Return: ret, Void: n.Flag}
		for _, p := range n.SigParams {
			typ, err := decodeExpr(p.Type, file, tbl)
			if err != nil {
				return nil, err
			}
			sig.Params = append(sig.Params, ast.SigParam{
				Loc:  source.Span{File: file, Start: p.Start, End: p.End},
				Name: tbl.Strings.Intern(p.Name),
				Type: typ,
			})
		}
		return sig, nil
	case kindMethodDef:
		body, err := kid(0)
		if err != nil {
			return nil, err
		}
		m := &ast.MethodDef{Loc: sp, Name: tbl.Strings.Intern(n.Name), Body: body, Synthetic: n.Flag}
		for _, p := range n.Params {
			param := ast.Param{
				Loc:  source.Span{File: file, Start: p.Start, End: p.End},
				Kind: ast.ParamKind(p.Kind),
				Name: tbl.Strings.Intern(p.Name),
			}
			if p.Default != nil {
				d, err := decodeExpr(*p.Default, file, tbl)
				if err != nil {
					return nil, err
				}
				param.Default = d
			}
			m.Params = append(m.Params, param)
		}
		return m, nil
	case kindClassDef:
		nAnc := int(n.Int)
		if len(n.Kids) < 1+nAnc {
			return nil, fmt.Errorf("treeio: class with %d children, want at least %d", len(n.Kids), 1+nAnc)
		}
		name, err := kid(0)
		if err != nil {
			return nil, err
		}
		cls := &ast.ClassDef{Loc: sp, Name: name}
		for i := 1; i <= nAnc; i++ {
			a, err := kid(i)
			if err != nil {
				return nil, err
			}
			cls.Ancestors = append(cls.Ancestors, a)
		}
		for i := 1 + nAnc; i < len(n.Kids); i++ {
			s, err := kid(i)
			if err != nil {
				return nil, err
			}
			cls.Rhs = append(cls.Rhs, s)
		}
		return cls, nil
	default:
		return nil, fmt.Errorf("treeio: unknown wire kind %d", n.Kind)
	}
}
