package rewriter

import (
	"fmt"

	"fortio.org/safecast"

	"sable/internal/ast"
	"sable/internal/source"
)

// ---- options hash ----

// hashValue находит значение по ключу-символу. Не извлекает.
func hashValue(h *ast.Hash, key source.StringID) ast.Expr {
	for i, k := range h.Keys {
		lit, ok := k.(*ast.Literal)
		if ok && lit.IsSymbol() && lit.SymbolName() == key {
			return h.Values[i]
		}
	}
	return nil
}

func hasHashValue(h *ast.Hash, key source.StringID) bool {
	return hashValue(h, key) != nil
}

// hasTruthyHashValue: ключ присутствует и значение не nil/false литерал.
func hasTruthyHashValue(h *ast.Hash, key source.StringID) bool {
	v := hashValue(h, key)
	if v == nil {
		return false
	}
	if lit, ok := v.(*ast.Literal); ok && lit.IsFalsy() {
		return false
	}
	return true
}

// extractHashValue извлекает пару по ключу-символу, разрушая hash,
// и возвращает значение (единственную выжившую ссылку на него).
func extractHashValue(h *ast.Hash, key source.StringID) ast.Expr {
	for i, k := range h.Keys {
		lit, ok := k.(*ast.Literal)
		if ok && lit.IsSymbol() && lit.SymbolName() == key {
			v := h.Values[i]
			h.Keys = append(h.Keys[:i], h.Keys[i+1:]...)
			h.Values = append(h.Values[:i], h.Values[i+1:]...)
			return v
		}
	}
	return nil
}

// thunkBody разворачивает thunk-литерал `-> { body }` в его тело.
// Возвращает nil, если выражение — не лямбда без параметров.
func (p *pass) thunkBody(e ast.Expr) ast.Expr {
	b, ok := e.(*ast.Block)
	if !ok || b.Call == nil || b.Call.Name != p.names.Lambda || len(b.Params) != 0 {
		return nil
	}
	return b.Body
}

// isProbablyType проверяет, выглядит ли тип как ссылка на константу cnst
// (`Hash`, `::Hash`, `T::Hash`), возможно параметризованную через `[]`.
// Имя может указывать и на что-то другое — на этой стадии это не узнать.
func (p *pass) isProbablyType(e ast.Expr, cnst source.StringID) bool {
	switch v := e.(type) {
	case *ast.UnresolvedConstant:
		if v.Name != cnst {
			return false
		}
		switch sc := v.Scope.(type) {
		case nil, *ast.EmptyTree, *ast.Cbase:
			return true
		case *ast.UnresolvedConstant:
			return p.isT(sc)
		}
		return false
	case *ast.Send:
		if v.Name != p.names.SquareBrackets {
			return false
		}
		return p.isProbablyType(v.Recv, cnst)
	}
	return false
}

// ---- node factories ----

func (p *pass) tConst(loc source.Span) ast.Expr {
	return &ast.UnresolvedConstant{Loc: loc, Scope: &ast.EmptyTree{Loc: loc}, Name: p.names.T}
}

// rootConst строит `::Name`.
func (p *pass) rootConst(loc source.Span, name source.StringID) ast.Expr {
	return &ast.UnresolvedConstant{Loc: loc, Scope: &ast.Cbase{Loc: loc}, Name: name}
}

func (p *pass) untyped(loc source.Span) ast.Expr {
	return &ast.Send{Loc: loc, Recv: p.tConst(loc), Name: p.names.Untyped}
}

// nilableOf оборачивает тип в `T.nilable(...)`.
func (p *pass) nilableOf(loc source.Span, inner ast.Expr) ast.Expr {
	return &ast.Send{Loc: loc, Recv: p.tConst(loc), Name: p.names.Nilable, Args: []ast.Expr{inner}}
}

// unsafeOf строит `T.unsafe(x)`.
func (p *pass) unsafeOf(loc source.Span, inner ast.Expr) ast.Expr {
	return &ast.Send{Loc: loc, Recv: p.tConst(loc), Name: p.names.Unsafe, Args: []ast.Expr{inner}}
}

// assertType строит `T.assert_type!(value, type)`.
func (p *pass) assertType(loc source.Span, value, typ ast.Expr) ast.Expr {
	return &ast.Send{Loc: loc, Recv: p.tConst(loc), Name: p.names.AssertType, Args: []ast.Expr{value, typ}}
}

func (p *pass) nilLit(loc source.Span) ast.Expr {
	return &ast.Literal{Loc: loc, Kind: ast.LitNil}
}

// raiseUnimplemented — стандартная заглушка тела: `::Kernel.raise("not implemented")`.
// Рантайм-поведение подставляется вне модели этого прохода.
func (p *pass) raiseUnimplemented(loc source.Span) ast.Expr {
	return &ast.Send{
		Loc:  loc,
		Recv: p.rootConst(loc, p.names.Kernel),
		Name: p.names.Raise,
		Args: []ast.Expr{&ast.Literal{Loc: loc, Kind: ast.LitString, Name: p.names.NotImplemented}},
	}
}

// mkGetter строит синтетический геттер `def name; body; end`.
func (p *pass) mkGetter(loc source.Span, name source.StringID, body ast.Expr) ast.Expr {
	return &ast.MethodDef{Loc: loc, Name: name, Body: body, Synthetic: true}
}

// mkSetter строит синтетический сеттер `def name=(arg0); body; end`.
func (p *pass) mkSetter(loc source.Span, setName source.StringID, nameLoc source.Span, body ast.Expr) ast.Expr {
	return &ast.MethodDef{
		Loc:  loc,
		Name: setName,
		Params: []ast.Param{
			{Loc: nameLoc, Kind: ast.ParamPositional, Name: p.names.Arg0},
		},
		Body:      body,
		Synthetic: true,
	}
}

// mkKwRestMethod строит `def name(**opts); body; end`.
func (p *pass) mkKwRestMethod(loc source.Span, name source.StringID, nameLoc source.Span, body ast.Expr) ast.Expr {
	return &ast.MethodDef{
		Loc:  loc,
		Name: name,
		Params: []ast.Param{
			{Loc: nameLoc, Kind: ast.ParamKeywordRest, Name: p.names.Opts},
		},
		Body:      body,
		Synthetic: true,
	}
}

// mkSig0 — сигнатура без параметров.
func (p *pass) mkSig0(loc source.Span, ret ast.Expr) ast.Expr {
	return &ast.Sig{Loc: loc, Return: ret}
}

// mkSig1 — сигнатура с единственным параметром.
func (p *pass) mkSig1(loc, nameLoc source.Span, name source.StringID, typ, ret ast.Expr) ast.Expr {
	return &ast.Sig{
		Loc:    loc,
		Params: []ast.SigParam{{Loc: nameLoc, Name: name, Type: typ}},
		Return: ret,
	}
}

// mkMutatorRef строит ссылку `Std::Props::<which>` на контейнерный
// mutator-хелпер из рантайм-библиотеки.
func (p *pass) mkMutatorRef(loc source.Span, which source.StringID) ast.Expr {
	std := &ast.UnresolvedConstant{Loc: loc, Scope: &ast.EmptyTree{Loc: loc}, Name: p.names.Std}
	props := &ast.UnresolvedConstant{Loc: loc, Scope: std, Name: p.names.Props}
	return &ast.UnresolvedConstant{Loc: loc, Scope: props, Name: which}
}

// mustWidth переводит длину фиксированной строки в uint32 для span-арифметики.
func mustWidth(s string) uint32 {
	w, err := safecast.Conv[uint32](len(s))
	if err != nil {
		panic(fmt.Errorf("width overflow: %w", err))
	}
	return w
}
