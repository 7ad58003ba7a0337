package ast

import (
	"sable/internal/source"
)

// Expr — узел десугаренного дерева. Дерево владеющее: каждый узел
// принадлежит ровно одному родителю, переиспользование фрагмента в двух
// местах идёт только через DeepCopy (или DupType для типовых выражений).
type Expr interface {
	Span() source.Span
	DeepCopy() Expr
	isExpr()
}

// EmptyTree — отсутствующий узел (пустой scope константы и т.п.).
type EmptyTree struct {
	Loc source.Span
}

// Cbase — корневой scope `::`.
type Cbase struct {
	Loc source.Span
}

// Self — `self`.
type Self struct {
	Loc source.Span
}

// ZSuper — `super` без скобок: пробрасывает все аргументы текущего метода.
type ZSuper struct {
	Loc source.Span
}

// Local — локальная переменная или параметр.
type Local struct {
	Loc  source.Span
	Name source.StringID
}

// Instance — инстанс-переменная `@foo`.
type Instance struct {
	Loc  source.Span
	Name source.StringID
}

// LitKind различает виды литералов.
type LitKind uint8

const (
	LitNil LitKind = iota
	LitTrue
	LitFalse
	LitSymbol
	LitString
	LitInt
	LitFloat
)

// Literal — литерал. Name занят только для LitSymbol и LitString.
type Literal struct {
	Loc   source.Span
	Kind  LitKind
	Name  source.StringID
	Int   int64
	Float float64
}

// IsSymbol reports whether the literal is a symbol like `:foo`.
func (l *Literal) IsSymbol() bool {
	return l.Kind == LitSymbol
}

// SymbolName returns the interned name of a symbol literal.
func (l *Literal) SymbolName() source.StringID {
	if l.Kind != LitSymbol {
		return source.NoStringID
	}
	return l.Name
}

// IsFalsy reports whether the literal is `nil` or `false`.
func (l *Literal) IsFalsy() bool {
	return l.Kind == LitNil || l.Kind == LitFalse
}

// UnresolvedConstant — константная ссылка `Scope::Name` до резолва имён.
// Scope может быть EmptyTree (без scope), Cbase (`::Name`) или другой
// константой/вызовом.
type UnresolvedConstant struct {
	Loc   source.Span
	Scope Expr
	Name  source.StringID
}

// Send — вызов метода: recv.name(args...). Опции-хвост (`key: value`)
// приходят последним аргументом-Hash, как и в остальном пайплайне.
type Send struct {
	Loc  source.Span
	Recv Expr
	Name source.StringID
	Args []Expr
}

// Hash — литерал `{k => v, ...}`; Keys и Values параллельны.
type Hash struct {
	Loc    source.Span
	Keys   []Expr
	Values []Expr
}

// Block — вызов с блоком. Для thunk-литерала `-> { body }` Call — это
// send `lambda` без параметров.
type Block struct {
	Loc    source.Span
	Call   *Send
	Params []source.StringID
	Body   Expr
}

// Assign — присваивание.
type Assign struct {
	Loc source.Span
	Lhs Expr
	Rhs Expr
}

// InsSeq — последовательность инструкций со значением последней.
type InsSeq struct {
	Loc   source.Span
	Stats []Expr
	Final Expr
}

func (e *EmptyTree) Span() source.Span          { return e.Loc }
func (e *Cbase) Span() source.Span              { return e.Loc }
func (e *Self) Span() source.Span               { return e.Loc }
func (e *ZSuper) Span() source.Span             { return e.Loc }
func (e *Local) Span() source.Span              { return e.Loc }
func (e *Instance) Span() source.Span           { return e.Loc }
func (e *Literal) Span() source.Span            { return e.Loc }
func (e *UnresolvedConstant) Span() source.Span { return e.Loc }
func (e *Send) Span() source.Span               { return e.Loc }
func (e *Hash) Span() source.Span               { return e.Loc }
func (e *Block) Span() source.Span              { return e.Loc }
func (e *Assign) Span() source.Span             { return e.Loc }
func (e *InsSeq) Span() source.Span             { return e.Loc }

func (*EmptyTree) isExpr()          {}
func (*Cbase) isExpr()              {}
func (*Self) isExpr()               {}
func (*ZSuper) isExpr()             {}
func (*Local) isExpr()              {}
func (*Instance) isExpr()           {}
func (*Literal) isExpr()            {}
func (*UnresolvedConstant) isExpr() {}
func (*Send) isExpr()               {}
func (*Hash) isExpr()               {}
func (*Block) isExpr()              {}
func (*Assign) isExpr()             {}
func (*InsSeq) isExpr()             {}
