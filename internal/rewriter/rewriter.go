// Package rewriter реализует ранние синтаксические переписывания тел
// классов. Единственный проход здесь — десугаринг property-макросов
// (`prop`, `const` и их шорткаты) в обычные определения методов с явными
// сигнатурами, чтобы последующие фазы видели класс единообразно.
//
// Проход чисто синтаксический: он не резолвит receiver'ы и допускает
// ложные срабатывания по имени вызова — корректность восстанавливают
// последующие фазы.
package rewriter

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/names"
	"sable/internal/source"
)

// Context — явные коллабораторы прохода. Никакого глобального состояния:
// интернер имён и приёмник диагностик приходят параметрами.
type Context struct {
	Names    *names.Table
	Files    *source.FileSet
	Reporter diag.Reporter
	// Autogen пропускает проход целиком: в autogen-режиме синтезированные
	// методы только мешают.
	Autogen bool
}

// Props переписывает property-объявления внутри тела одного класса.
// Нераспознанные statement'ы остаются на месте в исходном порядке.
func Props(ctx *Context, class *ast.ClassDef) {
	if ctx == nil || class == nil || ctx.Autogen {
		return
	}
	p := &pass{
		names:    ctx.Names,
		files:    ctx.Files,
		reporter: ctx.Reporter,
	}

	forStruct := false
	for _, a := range class.Ancestors {
		if p.isStructBase(a) {
			forStruct = true
			break
		}
	}

	// Замены ключуются идентичностью исходного statement'а.
	replace := make(map[ast.Expr][]ast.Expr)
	var props []*propInfo
	for _, stat := range class.Rhs {
		send, ok := stat.(*ast.Send)
		if !ok {
			continue
		}
		info := p.parseProp(send)
		if info == nil {
			continue
		}
		nodes := p.processProp(info, forStruct)
		if len(nodes) == 0 {
			panic("rewriter: parseProp succeeded but processProp produced nothing")
		}
		replace[stat] = nodes
		props = append(props, info)
	}

	old := class.Rhs
	out := make([]ast.Expr, 0, len(old))
	if forStruct {
		// Синтезированный initialize идёт первым: если пользователь написал
		// свой ниже по телу, его определение перекроет наше, а не наоборот.
		out = append(out, p.mkStructInitialize(class.Loc, props)...)
	}
	for _, stat := range old {
		if nodes, ok := replace[stat]; ok {
			out = append(out, nodes...)
		} else {
			out = append(out, stat)
		}
	}
	class.Rhs = out
}

type pass struct {
	names    *names.Table
	files    *source.FileSet
	reporter diag.Reporter
}

// isT распознаёт `T` без scope или с корневым scope (`::T`). Это может
// оказаться и не «тем самым» T — на этой стадии мы этого знать не можем.
func (p *pass) isT(e ast.Expr) bool {
	c, ok := e.(*ast.UnresolvedConstant)
	if !ok || c.Name != p.names.T {
		return false
	}
	switch c.Scope.(type) {
	case nil, *ast.EmptyTree, *ast.Cbase:
		return true
	}
	return false
}

// isNilable распознаёт `T.nilable(...)`.
func (p *pass) isNilable(e ast.Expr) bool {
	s, ok := e.(*ast.Send)
	return ok && s.Name == p.names.Nilable && p.isT(s.Recv)
}

// isStructBase распознаёт предка `T::Struct` (или `::T::Struct`).
func (p *pass) isStructBase(e ast.Expr) bool {
	c, ok := e.(*ast.UnresolvedConstant)
	return ok && c.Name == p.names.Struct && p.isT(c.Scope)
}
