package ast

import (
	"sable/internal/source"
)

// ParamKind различает виды параметров метода.
type ParamKind uint8

const (
	// ParamPositional — обычный позиционный параметр.
	ParamPositional ParamKind = iota
	// ParamKeyword — обязательный keyword-параметр `name:`.
	ParamKeyword
	// ParamKeywordOptional — keyword-параметр со значением по умолчанию.
	ParamKeywordOptional
	// ParamKeywordRest — `**name`, мешок произвольных keyword-аргументов.
	ParamKeywordRest
)

// Param — параметр метода. Default занят только для ParamKeywordOptional.
type Param struct {
	Loc     source.Span
	Kind    ParamKind
	Name    source.StringID
	Default Expr
}

// SigParam — пара (имя параметра, тип) в сигнатуре.
type SigParam struct {
	Loc  source.Span
	Name source.StringID
	Type Expr
}

// Sig — явная сигнатура для следующего за ней определения метода.
// Return == nil вместе с Void=true означает void-сигнатуру.
type Sig struct {
	Loc    source.Span
	Params []SigParam
	Return Expr
	Void   bool
}

// MethodDef — определение метода.
// Synthetic помечает методы, порождённые реврайтером, — диагностики
// последующих фаз указывают на исходный вызов-макрос, а не на тело.
type MethodDef struct {
	Loc       source.Span
	Name      source.StringID
	Params    []Param
	Body      Expr
	Synthetic bool
}

// ClassDef — определение класса: имя, предки и упорядоченное тело.
type ClassDef struct {
	Loc       source.Span
	Name      Expr
	Ancestors []Expr
	Rhs       []Expr
}

func (e *Sig) Span() source.Span       { return e.Loc }
func (e *MethodDef) Span() source.Span { return e.Loc }
func (e *ClassDef) Span() source.Span  { return e.Loc }

func (*Sig) isExpr()       {}
func (*MethodDef) isExpr() {}
func (*ClassDef) isExpr()  {}
