package ast

// DupType дублирует поддерево, если оно является корректным типовым
// выражением, и возвращает nil в противном случае. Это единственная
// проверка «законности» типа во всём десугаринге: литералы, локальные
// переменные и прочие выражения типами не являются.
//
// Корректные формы:
//   - константа `A`, `::A`, `A::B` (scope сам должен быть типовым);
//   - аппликация/вызов над типом: `T.nilable(X)`, `T.untyped`,
//     `T::Hash[K, V]` — send, у которого и receiver, и все аргументы
//     типовые.
func DupType(e Expr) Expr {
	switch v := e.(type) {
	case *UnresolvedConstant:
		scope := dupTypeScope(v.Scope)
		if scope == nil {
			return nil
		}
		return &UnresolvedConstant{Loc: v.Loc, Scope: scope, Name: v.Name}
	case *Send:
		recv := DupType(v.Recv)
		if recv == nil {
			return nil
		}
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			dup := DupType(a)
			if dup == nil {
				return nil
			}
			args[i] = dup
		}
		return &Send{Loc: v.Loc, Recv: recv, Name: v.Name, Args: args}
	}
	return nil
}

// dupTypeScope допускает пустой и корневой scope в дополнение к
// обычным типовым формам.
func dupTypeScope(e Expr) Expr {
	switch v := e.(type) {
	case nil:
		return &EmptyTree{}
	case *EmptyTree:
		cp := *v
		return &cp
	case *Cbase:
		cp := *v
		return &cp
	}
	return DupType(e)
}
