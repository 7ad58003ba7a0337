package ast

import (
	"slices"
)

// DeepCopy возвращает независимую копию поддерева. Никакие узлы и срезы
// не разделяются с оригиналом.

func (e *EmptyTree) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *Cbase) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *Self) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *ZSuper) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *Local) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *Instance) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *Literal) DeepCopy() Expr {
	cp := *e
	return &cp
}

func (e *UnresolvedConstant) DeepCopy() Expr {
	return &UnresolvedConstant{
		Loc:   e.Loc,
		Scope: copyExpr(e.Scope),
		Name:  e.Name,
	}
}

func (e *Send) DeepCopy() Expr {
	return &Send{
		Loc:  e.Loc,
		Recv: copyExpr(e.Recv),
		Name: e.Name,
		Args: copyExprs(e.Args),
	}
}

func (e *Hash) DeepCopy() Expr {
	return &Hash{
		Loc:    e.Loc,
		Keys:   copyExprs(e.Keys),
		Values: copyExprs(e.Values),
	}
}

func (e *Block) DeepCopy() Expr {
	var call *Send
	if e.Call != nil {
		call = e.Call.DeepCopy().(*Send)
	}
	cp := &Block{
		Loc:  e.Loc,
		Call: call,
		Body: copyExpr(e.Body),
	}
	if e.Params != nil {
		cp.Params = slices.Clone(e.Params)
	}
	return cp
}

func (e *Assign) DeepCopy() Expr {
	return &Assign{
		Loc: e.Loc,
		Lhs: copyExpr(e.Lhs),
		Rhs: copyExpr(e.Rhs),
	}
}

func (e *InsSeq) DeepCopy() Expr {
	return &InsSeq{
		Loc:   e.Loc,
		Stats: copyExprs(e.Stats),
		Final: copyExpr(e.Final),
	}
}

func (e *Sig) DeepCopy() Expr {
	cp := &Sig{
		Loc:    e.Loc,
		Return: copyExpr(e.Return),
		Void:   e.Void,
	}
	if e.Params != nil {
		cp.Params = make([]SigParam, len(e.Params))
		for i, p := range e.Params {
			cp.Params[i] = SigParam{Loc: p.Loc, Name: p.Name, Type: copyExpr(p.Type)}
		}
	}
	return cp
}

func (e *MethodDef) DeepCopy() Expr {
	cp := &MethodDef{
		Loc:       e.Loc,
		Name:      e.Name,
		Body:      copyExpr(e.Body),
		Synthetic: e.Synthetic,
	}
	if e.Params != nil {
		cp.Params = make([]Param, len(e.Params))
		for i, p := range e.Params {
			cp.Params[i] = Param{Loc: p.Loc, Kind: p.Kind, Name: p.Name, Default: copyExpr(p.Default)}
		}
	}
	return cp
}

func (e *ClassDef) DeepCopy() Expr {
	return &ClassDef{
		Loc:       e.Loc,
		Name:      copyExpr(e.Name),
		Ancestors: copyExprs(e.Ancestors),
		Rhs:       copyExprs(e.Rhs),
	}
}

func copyExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.DeepCopy()
}

func copyExprs(es []Expr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = copyExpr(e)
	}
	return out
}
