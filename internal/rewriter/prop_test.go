package rewriter

import (
	"testing"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/names"
	"sable/internal/source"
)

type fixture struct {
	tbl *names.Table
	fs  *source.FileSet
	bag *diag.Bag
	ctx *Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := source.NewInterner()
	tbl := names.NewTable(in)
	fs := source.NewFileSet()
	bag := diag.NewBag(50)
	return &fixture{
		tbl: tbl,
		fs:  fs,
		bag: bag,
		ctx: &Context{
			Names:    tbl,
			Files:    fs,
			Reporter: diag.BagReporter{Bag: bag},
		},
	}
}

func (f *fixture) intern(s string) source.StringID {
	return f.tbl.Strings.Intern(s)
}

func (f *fixture) sym(name string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitSymbol, Name: f.intern(name)}
}

func (f *fixture) constRef(name string) *ast.UnresolvedConstant {
	return &ast.UnresolvedConstant{Scope: &ast.EmptyTree{}, Name: f.intern(name)}
}

func (f *fixture) scopedConst(scope ast.Expr, name string) *ast.UnresolvedConstant {
	return &ast.UnresolvedConstant{Scope: scope, Name: f.intern(name)}
}

// tNilable строит `T.nilable(inner)`.
func (f *fixture) tNilable(inner ast.Expr) *ast.Send {
	return &ast.Send{Recv: f.constRef("T"), Name: f.intern("nilable"), Args: []ast.Expr{inner}}
}

func (f *fixture) optionsHash(pairs ...any) *ast.Hash {
	h := &ast.Hash{}
	for i := 0; i < len(pairs); i += 2 {
		h.Keys = append(h.Keys, f.sym(pairs[i].(string)))
		h.Values = append(h.Values, pairs[i+1].(ast.Expr))
	}
	return h
}

func (f *fixture) call(callee string, args ...ast.Expr) *ast.Send {
	return &ast.Send{Name: f.intern(callee), Args: args}
}

func (f *fixture) classWith(stats ...ast.Expr) *ast.ClassDef {
	return &ast.ClassDef{
		Name: f.constRef("Widget"),
		Rhs:  stats,
	}
}

func (f *fixture) structClassWith(stats ...ast.Expr) *ast.ClassDef {
	cls := f.classWith(stats...)
	cls.Ancestors = []ast.Expr{f.scopedConst(f.constRef("T"), "Struct")}
	return cls
}

func (f *fixture) rewrite(cls *ast.ClassDef) {
	Props(f.ctx, cls)
}

// methodDefs собирает топ-левел определения методов по имени.
func methodDefs(f *fixture, stats []ast.Expr) map[string][]*ast.MethodDef {
	out := make(map[string][]*ast.MethodDef)
	for _, s := range stats {
		if def, ok := s.(*ast.MethodDef); ok {
			name := f.tbl.Show(def.Name)
			out[name] = append(out[name], def)
		}
	}
	return out
}

func nestedClasses(stats []ast.Expr) []*ast.ClassDef {
	var out []*ast.ClassDef
	for _, s := range stats {
		if cls, ok := s.(*ast.ClassDef); ok {
			out = append(out, cls)
		}
	}
	return out
}

func isStub(f *fixture, body ast.Expr) bool {
	send, ok := body.(*ast.Send)
	return ok && send.Name == f.tbl.Raise
}

func TestMatchAllVariants(t *testing.T) {
	cases := []struct {
		name      string
		mk        func(f *fixture) *ast.Send
		propName  string
		immutable bool
	}{
		{"prop", func(f *fixture) *ast.Send {
			return f.call("prop", f.sym("foo"), f.constRef("String"))
		}, "foo", false},
		{"const", func(f *fixture) *ast.Send {
			return f.call("const", f.sym("foo"), f.constRef("String"))
		}, "foo", true},
		{"token_prop", func(f *fixture) *ast.Send {
			return f.call("token_prop")
		}, "token", false},
		{"timestamped_token_prop", func(f *fixture) *ast.Send {
			return f.call("timestamped_token_prop")
		}, "token", false},
		{"created_prop", func(f *fixture) *ast.Send {
			return f.call("created_prop")
		}, "created", false},
		{"merchant_prop", func(f *fixture) *ast.Send {
			return f.call("merchant_prop")
		}, "merchant", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			stat := tc.mk(f)
			cls := f.classWith(stat)
			f.rewrite(cls)

			if len(cls.Rhs) < 2 {
				t.Fatalf("матч должен дать непустой список замен, получили %d узлов", len(cls.Rhs))
			}
			for _, s := range cls.Rhs {
				if s == ast.Expr(stat) {
					t.Fatal("исходный statement должен быть заменён")
				}
			}

			defs := methodDefs(f, cls.Rhs)
			if len(defs[tc.propName]) != 1 {
				t.Errorf("ждали ровно один геттер %q, получили %d", tc.propName, len(defs[tc.propName]))
			}
			setter := tc.propName + "="
			if tc.immutable {
				if len(defs[setter]) != 0 {
					t.Errorf("immutable-свойство не должно получать сеттер %q", setter)
				}
			} else {
				if len(defs[setter]) != 1 {
					t.Errorf("ждали ровно один сеттер %q, получили %d", setter, len(defs[setter]))
				}
			}
		})
	}
}

func TestGetterSetterTypesDuplicatedNotAliased(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("prop", f.sym("foo"), f.constRef("String")))
	f.rewrite(cls)

	var sigs []*ast.Sig
	for _, s := range cls.Rhs {
		if sig, ok := s.(*ast.Sig); ok {
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) != 2 {
		t.Fatalf("ждали сигнатуры геттера и сеттера, получили %d", len(sigs))
	}
	getterSig, setterSig := sigs[0], sigs[1]

	if !ast.Equal(getterSig.Return, setterSig.Return) {
		t.Error("типы в сигнатурах должны быть структурно равны")
	}
	if getterSig.Return == setterSig.Return {
		t.Error("типы в сигнатурах должны быть независимыми дубликатами, не одним узлом")
	}
	if len(setterSig.Params) != 1 {
		t.Fatalf("сеттер должен иметь один параметр, получили %d", len(setterSig.Params))
	}
	if setterSig.Params[0].Type == setterSig.Return {
		t.Error("тип параметра и тип возврата сеттера не должны алиаситься")
	}
	if f.tbl.Show(setterSig.Params[0].Name) != "arg0" {
		t.Errorf("параметр сеттера должен называться arg0, получили %q", f.tbl.Show(setterSig.Params[0].Name))
	}
}

func TestNilableImplicitDefault(t *testing.T) {
	f := newFixture(t)
	a := f.call("prop", f.sym("a"), f.tNilable(f.constRef("String")))
	b := f.call("prop", f.sym("b"), f.tNilable(f.constRef("String")),
		f.optionsHash("default", &ast.Literal{Kind: ast.LitString, Name: f.intern("x")}))
	c := f.call("prop", f.sym("c"), f.constRef("String"))
	cls := f.structClassWith(a, b, c)
	f.rewrite(cls)

	init := methodDefs(f, cls.Rhs)["initialize"]
	if len(init) != 1 {
		t.Fatalf("ждали синтезированный initialize, получили %d", len(init))
	}
	byName := make(map[string]ast.Param)
	for _, p := range init[0].Params {
		byName[f.tbl.Show(p.Name)] = p
	}

	// nilable без default получает неявный nil
	pa := byName["a"]
	if pa.Kind != ast.ParamKeywordOptional {
		t.Fatal("nilable-свойство без default должно стать опциональным")
	}
	if lit, ok := pa.Default.(*ast.Literal); !ok || lit.Kind != ast.LitNil {
		t.Errorf("неявный default должен быть nil-литералом, получили %T", pa.Default)
	}

	// явный default сохраняется
	pb := byName["b"]
	if lit, ok := pb.Default.(*ast.Literal); !ok || lit.Kind != ast.LitString || f.tbl.Show(lit.Name) != "x" {
		t.Errorf("явный default должен сохраниться дословно, получили %#v", pb.Default)
	}

	// ненилабельный тип без default остаётся обязательным
	if byName["c"].Kind != ast.ParamKeyword {
		t.Error("свойство без default и без nilable-типа должно остаться обязательным")
	}
}

func TestForeignAccessors(t *testing.T) {
	for _, callee := range []string{"prop", "const"} {
		t.Run(callee, func(t *testing.T) {
			f := newFixture(t)
			thunk := &ast.Block{
				Call: f.call("lambda"),
				Body: f.constRef("Merchant"),
			}
			cls := f.classWith(f.call(callee, f.sym("owner"), f.constRef("String"),
				f.optionsHash("foreign", thunk)))
			f.rewrite(cls)

			defs := methodDefs(f, cls.Rhs)
			if len(defs["owner_"]) != 1 || len(defs["owner_!"]) != 1 {
				t.Fatalf("foreign должен дать ровно пару доступов owner_/owner_!: %d/%d",
					len(defs["owner_"]), len(defs["owner_!"]))
			}
			for _, name := range []string{"owner_", "owner_!"} {
				def := defs[name][0]
				if len(def.Params) != 1 || def.Params[0].Kind != ast.ParamKeywordRest {
					t.Errorf("%s должен принимать **opts", name)
				}
				if !isStub(f, def.Body) {
					t.Errorf("%s должен иметь тело-заглушку", name)
				}
			}
			if f.bag.Len() != 0 {
				t.Errorf("валидный thunk не должен давать диагностик: %d", f.bag.Len())
			}
		})
	}
}

func TestForeignSignatureTypes(t *testing.T) {
	f := newFixture(t)
	thunk := &ast.Block{Call: f.call("lambda"), Body: f.constRef("Merchant")}
	cls := f.classWith(f.call("const", f.sym("owner"), f.constRef("String"),
		f.optionsHash("foreign", thunk)))
	f.rewrite(cls)

	var sigs []*ast.Sig
	for _, s := range cls.Rhs {
		if sig, ok := s.(*ast.Sig); ok {
			sigs = append(sigs, sig)
		}
	}
	// const: сигнатура геттера + две сигнатуры foreign-доступов
	if len(sigs) != 3 {
		t.Fatalf("ждали 3 сигнатуры, получили %d", len(sigs))
	}
	nilableSig, bareSig := sigs[1], sigs[2]

	want := f.tNilable(f.constRef("Merchant"))
	if !ast.Equal(nilableSig.Return, want) {
		t.Error("owner_ должен возвращать T.nilable(Merchant)")
	}
	if !ast.Equal(bareSig.Return, f.constRef("Merchant")) {
		t.Error("owner_! должен возвращать Merchant без nilable")
	}
}

func TestForeignInvalidFallsBackToUntyped(t *testing.T) {
	f := newFixture(t)
	src := []byte("prop :owner, String, foreign: owner_model")
	id := f.fs.AddVirtual("widget.rb", src)
	// `owner_model` занимает байты 30..41
	foreignExpr := &ast.Local{
		Loc:  source.Span{File: id, Start: 30, End: 41},
		Name: f.intern("owner_model"),
	}
	cls := f.classWith(f.call("prop", f.sym("owner"), f.constRef("String"),
		f.optionsHash("foreign", foreignExpr)))
	f.rewrite(cls)

	// ровно одна диагностика с автофиксом-обёрткой
	if f.bag.Len() != 1 {
		t.Fatalf("ждали одну диагностику, получили %d", f.bag.Len())
	}
	d := f.bag.Items()[0]
	if d.Code != diag.RewriteForeignLambda {
		t.Errorf("неверный код диагностики: %v", d.Code)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("диагностика должна нести один автофикс: %+v", d.Fixes)
	}
	if got := d.Fixes[0].Edits[0].NewText; got != "-> {owner_model}" {
		t.Errorf("автофикс должен оборачивать исходный текст в thunk: %q", got)
	}

	// доступы всё равно генерируются, но с untyped-сигнатурами
	defs := methodDefs(f, cls.Rhs)
	if len(defs["owner_"]) != 1 || len(defs["owner_!"]) != 1 {
		t.Fatal("невалидный foreign всё равно должен дать пару доступов")
	}
	var sigs []*ast.Sig
	for _, s := range cls.Rhs {
		if sig, ok := s.(*ast.Sig); ok {
			sigs = append(sigs, sig)
		}
	}
	untyped := &ast.Send{Recv: f.constRef("T"), Name: f.intern("untyped")}
	if !ast.Equal(sigs[len(sigs)-2].Return, untyped) || !ast.Equal(sigs[len(sigs)-1].Return, untyped) {
		t.Error("невалидный foreign-тип должен дать untyped-сигнатуры")
	}
}

func TestComputedByValid(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("const", f.sym("score"), f.constRef("Float"),
		f.optionsHash("computed_by", f.sym("compute_score"))))
	f.rewrite(cls)

	if f.bag.Len() != 0 {
		t.Fatalf("валидный computed_by не должен давать диагностик: %d", f.bag.Len())
	}
	getter := methodDefs(f, cls.Rhs)["score"][0]
	seq, ok := getter.Body.(*ast.InsSeq)
	if !ok {
		t.Fatalf("геттер computed_by должен содержать assert + заглушку, получили %T", getter.Body)
	}
	if len(seq.Stats) != 1 {
		t.Fatalf("ждали одну инструкцию-assert, получили %d", len(seq.Stats))
	}
	assert, ok := seq.Stats[0].(*ast.Send)
	if !ok || f.tbl.Show(assert.Name) != "assert_type!" {
		t.Errorf("инструкция должна быть T.assert_type!, получили %#v", seq.Stats[0])
	}
	if !isStub(f, seq.Final) {
		t.Error("итоговое выражение геттера должно быть заглушкой")
	}
	// проверяемый вызов: self.class.compute_score(T.unsafe(nil))
	call := assert.Args[0].(*ast.Send)
	if f.tbl.Show(call.Name) != "compute_score" {
		t.Errorf("assert должен вызывать compute_score, получили %q", f.tbl.Show(call.Name))
	}
}

func TestComputedByInvalid(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("const", f.sym("score"), f.constRef("Float"),
		f.optionsHash("computed_by", &ast.Literal{Kind: ast.LitString, Name: f.intern("oops")})))
	f.rewrite(cls)

	if f.bag.Len() != 1 {
		t.Fatalf("ждали ровно одну диагностику, получили %d", f.bag.Len())
	}
	if f.bag.Items()[0].Code != diag.RewriteComputedBySymbol {
		t.Errorf("неверный код: %v", f.bag.Items()[0].Code)
	}
	// запись продолжает жить без computed_by: геттер — fallback-заглушка
	getter := methodDefs(f, cls.Rhs)["score"][0]
	if !isStub(f, getter.Body) {
		t.Errorf("геттер должен взять fallback-ветку заглушки, получили %T", getter.Body)
	}
}

func TestStructConstructorOrdering(t *testing.T) {
	f := newFixture(t)
	a := f.call("prop", f.sym("a"), f.constRef("String"))
	b := f.call("prop", f.sym("b"), f.constRef("Integer"),
		f.optionsHash("default", &ast.Literal{Kind: ast.LitInt, Int: 1}))
	c := f.call("prop", f.sym("c"), f.constRef("Float"))
	cls := f.structClassWith(a, b, c)
	f.rewrite(cls)

	// конструктор идёт до всех остальных statement'ов
	sig, ok := cls.Rhs[0].(*ast.Sig)
	if !ok || !sig.Void {
		t.Fatalf("первым должен идти void-sig конструктора, получили %T", cls.Rhs[0])
	}
	init, ok := cls.Rhs[1].(*ast.MethodDef)
	if !ok || f.tbl.Show(init.Name) != "initialize" || !init.Synthetic {
		t.Fatalf("вторым должен идти синтезированный initialize, получили %#v", cls.Rhs[1])
	}

	// параметры: обязательные в порядке объявления, потом опциональные
	var paramOrder []string
	for _, p := range init.Params {
		paramOrder = append(paramOrder, f.tbl.Show(p.Name))
	}
	if len(paramOrder) != 3 || paramOrder[0] != "a" || paramOrder[1] != "c" || paramOrder[2] != "b" {
		t.Errorf("порядок параметров должен быть [a c b], получили %v", paramOrder)
	}
	if init.Params[0].Kind != ast.ParamKeyword || init.Params[1].Kind != ast.ParamKeyword {
		t.Error("обязательные свойства должны стать keyword-параметрами")
	}
	if init.Params[2].Kind != ast.ParamKeywordOptional {
		t.Error("свойство с default должно стать опциональным параметром")
	}

	// sig перечисляет те же имена в том же порядке
	var sigOrder []string
	for _, p := range sig.Params {
		sigOrder = append(sigOrder, f.tbl.Show(p.Name))
	}
	if len(sigOrder) != 3 || sigOrder[0] != "a" || sigOrder[1] != "c" || sigOrder[2] != "b" {
		t.Errorf("порядок в sig должен быть [a c b], получили %v", sigOrder)
	}

	// тело присваивает слоты в исходном порядке объявления
	body, ok := init.Body.(*ast.InsSeq)
	if !ok {
		t.Fatalf("тело initialize должно быть последовательностью, получили %T", init.Body)
	}
	var slotOrder []string
	for _, s := range body.Stats {
		assign := s.(*ast.Assign)
		slotOrder = append(slotOrder, f.tbl.Show(assign.Lhs.(*ast.Instance).Name))
	}
	if len(slotOrder) != 3 || slotOrder[0] != "@a" || slotOrder[1] != "@b" || slotOrder[2] != "@c" {
		t.Errorf("порядок присваиваний должен быть [@a @b @c], получили %v", slotOrder)
	}
	if _, ok := body.Final.(*ast.ZSuper); !ok {
		t.Error("тело должно завершаться пробросом super")
	}
}

func TestStructGetterReadsSlot(t *testing.T) {
	f := newFixture(t)
	cls := f.structClassWith(f.call("prop", f.sym("foo"), f.constRef("String")))
	f.rewrite(cls)

	getter := methodDefs(f, cls.Rhs)["foo"][0]
	inst, ok := getter.Body.(*ast.Instance)
	if !ok || f.tbl.Show(inst.Name) != "@foo" {
		t.Errorf("в struct-классе геттер должен читать backing-слот, получили %#v", getter.Body)
	}

	// ifunset выключает тривиальный доступ даже в struct-классе
	f2 := newFixture(t)
	cls2 := f2.structClassWith(f2.call("prop", f2.sym("foo"), f2.constRef("String"),
		f2.optionsHash("ifunset", &ast.Literal{Kind: ast.LitInt, Int: 0})))
	f2.rewrite(cls2)
	getter2 := methodDefs(f2, cls2.Rhs)["foo"][0]
	if !isStub(f2, getter2.Body) {
		t.Errorf("с ifunset геттер должен быть заглушкой, получили %T", getter2.Body)
	}
}

func TestNonStructGetterIsStub(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("prop", f.sym("foo"), f.constRef("String")))
	f.rewrite(cls)
	getter := methodDefs(f, cls.Rhs)["foo"][0]
	if !isStub(f, getter.Body) {
		t.Errorf("вне struct-класса геттер должен быть заглушкой, получили %T", getter.Body)
	}
}

func TestNoRecognizedCallsLeavesBodyUntouched(t *testing.T) {
	f := newFixture(t)
	stats := []ast.Expr{
		f.call("attr_reader", f.sym("foo")),
		&ast.MethodDef{Name: f.intern("bar"), Body: &ast.Literal{Kind: ast.LitNil}},
		f.call("prop"), // без аргументов — тихо отвергается
		f.call("include", f.constRef("Comparable")),
	}
	orig := make([]ast.Expr, len(stats))
	copy(orig, stats)
	cls := f.classWith(stats...)
	f.rewrite(cls)

	if len(cls.Rhs) != len(orig) {
		t.Fatalf("тело не должно меняться: %d != %d", len(cls.Rhs), len(orig))
	}
	for i := range orig {
		if cls.Rhs[i] != orig[i] {
			t.Errorf("statement %d должен остаться тем же узлом", i)
		}
	}
	if f.bag.Len() != 0 {
		t.Errorf("тихое отторжение не должно давать диагностик: %d", f.bag.Len())
	}
}

func TestSilentRejections(t *testing.T) {
	cases := []struct {
		name string
		mk   func(f *fixture) *ast.Send
	}{
		{"too many args", func(f *fixture) *ast.Send {
			return f.call("prop", f.sym("a"), f.constRef("String"), f.optionsHash(), f.optionsHash())
		}},
		{"single argument is ambiguous", func(f *fixture) *ast.Send {
			return f.call("prop", f.sym("a"))
		}},
		{"name is not a symbol", func(f *fixture) *ast.Send {
			return f.call("prop", &ast.Literal{Kind: ast.LitString, Name: f.intern("a")}, f.constRef("String"))
		}},
		{"type is not a type", func(f *fixture) *ast.Send {
			return f.call("prop", f.sym("a"), f.sym("b"))
		}},
		{"third positional arg is not options", func(f *fixture) *ast.Send {
			return f.call("prop", f.sym("a"), f.constRef("String"), f.constRef("Integer"))
		}},
		{"unknown callee", func(f *fixture) *ast.Send {
			return f.call("property", f.sym("a"), f.constRef("String"))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			stat := tc.mk(f)
			cls := f.classWith(stat)
			f.rewrite(cls)
			if len(cls.Rhs) != 1 || cls.Rhs[0] != ast.Expr(stat) {
				t.Error("отвергнутый вызов должен пройти сквозь переписывание нетронутым")
			}
			if f.bag.Len() != 0 {
				t.Errorf("отторжение должно быть тихим: %d диагностик", f.bag.Len())
			}
		})
	}
}

func TestOptionsHashNotCorrupted(t *testing.T) {
	f := newFixture(t)
	opts := f.optionsHash("default", &ast.Literal{Kind: ast.LitInt, Int: 5})
	cls := f.classWith(f.call("prop", f.sym("a"), f.constRef("String"), opts))
	f.rewrite(cls)

	// извлечение шло по глубокой копии: исходный hash невредим
	if len(opts.Keys) != 1 || len(opts.Values) != 1 {
		t.Errorf("исходный options-hash повреждён: %d ключей", len(opts.Keys))
	}
}

func TestShorthandNameSpans(t *testing.T) {
	f := newFixture(t)
	src := []byte("timestamped_token_prop\ntoken_prop\ncreated_prop\n")
	id := f.fs.AddVirtual("shorthand.rb", src)

	tsCall := f.call("timestamped_token_prop")
	tsCall.Loc = source.Span{File: id, Start: 0, End: 22}
	tokCall := f.call("token_prop")
	tokCall.Loc = source.Span{File: id, Start: 23, End: 33}
	createdCall := f.call("created_prop")
	createdCall.Loc = source.Span{File: id, Start: 34, End: 46}

	for _, tc := range []struct {
		call *ast.Send
		want string
	}{
		{tsCall, "token"},
		{tokCall, "token"},
		{createdCall, "created"},
	} {
		info := (&pass{names: f.tbl, files: f.fs, reporter: diag.NopReporter{}}).parseProp(tc.call)
		if info == nil {
			t.Fatal("шорткат обязан матчиться")
		}
		if got := f.fs.Text(info.nameLoc); got != tc.want {
			t.Errorf("nameLoc должен вырезать %q из текста вызова, получили %q", tc.want, got)
		}
	}
}

func TestMutatorApplicability(t *testing.T) {
	cases := []struct {
		name       string
		typ        func(f *fixture) ast.Expr
		wantHelper bool
		wantParams int
	}{
		{"parameterized hash", func(f *fixture) ast.Expr {
			return &ast.Send{Recv: f.scopedConst(f.constRef("T"), "Hash"), Name: f.intern("[]"),
				Args: []ast.Expr{f.constRef("Symbol"), f.constRef("Integer")}}
		}, true, 2},
		{"bare hash", func(f *fixture) ast.Expr { return f.constRef("Hash") }, true, 2},
		{"parameterized array", func(f *fixture) ast.Expr {
			return &ast.Send{Recv: f.scopedConst(f.constRef("T"), "Array"), Name: f.intern("[]"),
				Args: []ast.Expr{f.constRef("Integer")}}
		}, true, 1},
		{"bare array", func(f *fixture) ast.Expr { return f.constRef("Array") }, true, 1},
		{"unresolved constant", func(f *fixture) ast.Expr { return f.constRef("SomeRecord") }, false, 0},
		{"nilable wrapper", func(f *fixture) ast.Expr { return f.tNilable(f.constRef("String")) }, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			cls := f.classWith(f.call("prop", f.sym("items"), tc.typ(f)))
			f.rewrite(cls)

			nested := nestedClasses(cls.Rhs)
			if !tc.wantHelper {
				if len(nested) != 0 {
					t.Fatalf("для этого типа хелпер не должен генерироваться: %d", len(nested))
				}
				return
			}
			if len(nested) != 1 {
				t.Fatalf("ждали один вложенный Mutator-класс, получили %d", len(nested))
			}
			helper := nested[0]
			nameConst := helper.Name.(*ast.UnresolvedConstant)
			if f.tbl.Show(nameConst.Name) != "Mutator" {
				t.Errorf("вложенный класс должен называться Mutator, получили %q", f.tbl.Show(nameConst.Name))
			}
			// внутри: sig сеттера, сеттер, sig геттера, геттер
			if len(helper.Rhs) != 4 {
				t.Fatalf("тело хелпера должно содержать 4 узла, получили %d", len(helper.Rhs))
			}
			getterSig := helper.Rhs[2].(*ast.Sig)
			ref, ok := getterSig.Return.(*ast.Send)
			if !ok || f.tbl.Show(ref.Name) != "[]" || len(ref.Args) != tc.wantParams {
				t.Errorf("sig геттера должен ссылаться на параметризованный mutator (%d парам.)", tc.wantParams)
			}
		})
	}
}

func TestMutatorGeneratedEvenForImmutable(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("const", f.sym("items"), f.constRef("Array")))
	f.rewrite(cls)

	if len(nestedClasses(cls.Rhs)) != 1 {
		t.Error("mutator-хелпер не зависит от immutable")
	}
	if len(methodDefs(f, cls.Rhs)["items="]) != 0 {
		t.Error("топ-левел сеттер для const генерироваться не должен")
	}
}

func TestFactoryBecomesUnimplementedDefault(t *testing.T) {
	f := newFixture(t)
	cls := f.structClassWith(f.call("prop", f.sym("a"), f.constRef("String"),
		f.optionsHash("factory", &ast.Literal{Kind: ast.LitTrue})))
	f.rewrite(cls)

	init := methodDefs(f, cls.Rhs)["initialize"][0]
	if len(init.Params) != 1 || init.Params[0].Kind != ast.ParamKeywordOptional {
		t.Fatal("factory-свойство должно стать опциональным параметром")
	}
	if def, ok := init.Params[0].Default.(*ast.Send); !ok || f.tbl.Show(def.Name) != "raise" {
		t.Errorf("default фабрики — маркер-заглушка, получили %#v", init.Params[0].Default)
	}
}

func TestImmutableOptionOverrides(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("prop", f.sym("a"), f.constRef("String"),
		f.optionsHash("immutable", &ast.Literal{Kind: ast.LitTrue})))
	f.rewrite(cls)
	if len(methodDefs(f, cls.Rhs)["a="]) != 0 {
		t.Error("immutable: true должен подавить сеттер и у prop")
	}

	// falsy-значение опции не считается
	f2 := newFixture(t)
	cls2 := f2.classWith(f2.call("prop", f2.sym("a"), f2.constRef("String"),
		f2.optionsHash("immutable", &ast.Literal{Kind: ast.LitFalse})))
	f2.rewrite(cls2)
	if len(methodDefs(f2, cls2.Rhs)["a="]) != 1 {
		t.Error("immutable: false не должен подавлять сеттер")
	}
}

func TestAutogenSkipsPass(t *testing.T) {
	f := newFixture(t)
	f.ctx.Autogen = true
	stat := f.call("prop", f.sym("a"), f.constRef("String"))
	cls := f.classWith(stat)
	f.rewrite(cls)
	if len(cls.Rhs) != 1 || cls.Rhs[0] != ast.Expr(stat) {
		t.Error("в autogen-режиме проход должен пропускаться целиком")
	}
}

func TestStructConstructorAbsentForPlainClass(t *testing.T) {
	f := newFixture(t)
	cls := f.classWith(f.call("prop", f.sym("a"), f.constRef("String")))
	f.rewrite(cls)
	if len(methodDefs(f, cls.Rhs)["initialize"]) != 0 {
		t.Error("без предка T::Struct конструктор не синтезируется")
	}
}

func TestRootScopedStructBase(t *testing.T) {
	f := newFixture(t)
	rootT := f.scopedConst(&ast.Cbase{}, "T")
	cls := f.classWith(f.call("prop", f.sym("a"), f.constRef("String")))
	cls.Ancestors = []ast.Expr{f.scopedConst(rootT, "Struct")}
	f.rewrite(cls)
	if len(methodDefs(f, cls.Rhs)["initialize"]) != 1 {
		t.Error("::T::Struct тоже должен распознаваться как struct-база")
	}

	// а вот Foo::T::Struct — нет
	f2 := newFixture(t)
	scopedT := f2.scopedConst(f2.constRef("Foo"), "T")
	cls2 := f2.classWith(f2.call("prop", f2.sym("a"), f2.constRef("String")))
	cls2.Ancestors = []ast.Expr{f2.scopedConst(scopedT, "Struct")}
	f2.rewrite(cls2)
	if len(methodDefs(f2, cls2.Rhs)["initialize"]) != 0 {
		t.Error("T в чужом scope не должен распознаваться")
	}
}
