package ast

// Equal сравнивает два поддерева структурно, игнорируя span'ы.
// Используется тестами и golden-сравнениями: дубликат типа равен
// оригиналу по Equal, но никогда не совпадает по указателю.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch va := a.(type) {
	case *EmptyTree:
		_, ok := b.(*EmptyTree)
		return ok
	case *Cbase:
		_, ok := b.(*Cbase)
		return ok
	case *Self:
		_, ok := b.(*Self)
		return ok
	case *ZSuper:
		_, ok := b.(*ZSuper)
		return ok
	case *Local:
		vb, ok := b.(*Local)
		return ok && va.Name == vb.Name
	case *Instance:
		vb, ok := b.(*Instance)
		return ok && va.Name == vb.Name
	case *Literal:
		vb, ok := b.(*Literal)
		return ok && va.Kind == vb.Kind && va.Name == vb.Name &&
			va.Int == vb.Int && va.Float == vb.Float
	case *UnresolvedConstant:
		vb, ok := b.(*UnresolvedConstant)
		return ok && va.Name == vb.Name && Equal(va.Scope, vb.Scope)
	case *Send:
		vb, ok := b.(*Send)
		if !ok || va.Name != vb.Name || len(va.Args) != len(vb.Args) {
			return false
		}
		if !Equal(va.Recv, vb.Recv) {
			return false
		}
		for i := range va.Args {
			if !Equal(va.Args[i], vb.Args[i]) {
				return false
			}
		}
		return true
	case *Hash:
		vb, ok := b.(*Hash)
		if !ok || len(va.Keys) != len(vb.Keys) || len(va.Values) != len(vb.Values) {
			return false
		}
		for i := range va.Keys {
			if !Equal(va.Keys[i], vb.Keys[i]) {
				return false
			}
		}
		for i := range va.Values {
			if !Equal(va.Values[i], vb.Values[i]) {
				return false
			}
		}
		return true
	case *Block:
		vb, ok := b.(*Block)
		if !ok || len(va.Params) != len(vb.Params) {
			return false
		}
		for i := range va.Params {
			if va.Params[i] != vb.Params[i] {
				return false
			}
		}
		var ca, cb Expr
		if va.Call != nil {
			ca = va.Call
		}
		if vb.Call != nil {
			cb = vb.Call
		}
		return Equal(ca, cb) && Equal(va.Body, vb.Body)
	case *Assign:
		vb, ok := b.(*Assign)
		return ok && Equal(va.Lhs, vb.Lhs) && Equal(va.Rhs, vb.Rhs)
	case *InsSeq:
		vb, ok := b.(*InsSeq)
		if !ok || len(va.Stats) != len(vb.Stats) {
			return false
		}
		for i := range va.Stats {
			if !Equal(va.Stats[i], vb.Stats[i]) {
				return false
			}
		}
		return Equal(va.Final, vb.Final)
	case *Sig:
		vb, ok := b.(*Sig)
		if !ok || va.Void != vb.Void || len(va.Params) != len(vb.Params) {
			return false
		}
		for i := range va.Params {
			if va.Params[i].Name != vb.Params[i].Name || !Equal(va.Params[i].Type, vb.Params[i].Type) {
				return false
			}
		}
		return Equal(va.Return, vb.Return)
	case *MethodDef:
		vb, ok := b.(*MethodDef)
		if !ok || va.Name != vb.Name || va.Synthetic != vb.Synthetic || len(va.Params) != len(vb.Params) {
			return false
		}
		for i := range va.Params {
			pa, pb := va.Params[i], vb.Params[i]
			if pa.Kind != pb.Kind || pa.Name != pb.Name || !Equal(pa.Default, pb.Default) {
				return false
			}
		}
		return Equal(va.Body, vb.Body)
	case *ClassDef:
		vb, ok := b.(*ClassDef)
		if !ok || len(va.Ancestors) != len(vb.Ancestors) || len(va.Rhs) != len(vb.Rhs) {
			return false
		}
		if !Equal(va.Name, vb.Name) {
			return false
		}
		for i := range va.Ancestors {
			if !Equal(va.Ancestors[i], vb.Ancestors[i]) {
				return false
			}
		}
		for i := range va.Rhs {
			if !Equal(va.Rhs[i], vb.Rhs[i]) {
				return false
			}
		}
		return true
	}
	return false
}
