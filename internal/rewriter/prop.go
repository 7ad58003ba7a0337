package rewriter

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
)

// propInfo — нормализованная запись одного property-объявления.
// Живёт ровно столько, сколько переписывается тело класса: его
// потребляют processProp и (для struct-классов) mkStructInitialize.
type propInfo struct {
	loc         source.Span
	immutable   bool
	name        source.StringID
	nameLoc     source.Span
	typ         ast.Expr
	def         ast.Expr
	computed    source.StringID
	computedLoc source.Span
	foreign     ast.Expr
	ifunset     ast.Expr
}

// parseProp решает, является ли send распознанным property-макросом,
// и собирает его поля. nil значит «не матч»: statement проходит сквозь
// переписывание нетронутым, без диагностик.
func (p *pass) parseProp(send *ast.Send) *propInfo {
	n := p.names
	info := &propInfo{loc: send.Loc}

	// ----- интересный ли это вызов? -----
	switch send.Name {
	case n.Prop:
		// ничего особенного
	case n.Const:
		info.immutable = true
	case n.TokenProp, n.TimestampedTokenProp:
		info.name = n.Token
		// Под-диапазон имени восстанавливаем арифметикой по span'у вызова,
		// не перелексируя: `token` — это текст вызова без префикса
		// `timestamped_` и суффикса `_prop`.
		nameLoc := send.Loc
		if send.Name == n.TimestampedTokenProp {
			nameLoc = nameLoc.TrimPrefix(mustWidth("timestamped_"))
		}
		info.nameLoc = nameLoc.TrimSuffix(mustWidth("_prop"))
		info.typ = p.rootConst(send.Loc, n.ConstString)
	case n.CreatedProp:
		info.name = n.Created
		info.nameLoc = send.Loc.TrimSuffix(mustWidth("_prop"))
		info.typ = p.rootConst(send.Loc, n.ConstFloat)
	case n.MerchantProp:
		info.immutable = true
		info.name = n.Merchant
		info.nameLoc = send.Loc.TrimSuffix(mustWidth("_prop"))
		info.typ = p.rootConst(send.Loc, n.ConstString)
	default:
		return nil
	}

	if len(send.Args) >= 4 {
		// Слишком много аргументов, даже если все опциональные на месте.
		return nil
	}

	// ----- имя свойства -----
	if info.name == source.NoStringID {
		if len(send.Args) == 0 {
			return nil
		}
		lit, ok := send.Args[0].(*ast.Literal)
		if !ok || !lit.IsSymbol() {
			return nil
		}
		info.name = lit.SymbolName()
		// span символа включает ведущий ':'
		info.nameLoc = lit.Loc.TrimPrefix(1)
	}

	// ----- тип свойства -----
	if info.typ == nil {
		if len(send.Args) == 1 {
			// Тип не подразумевается вариантом вызова и не дан вторым
			// аргументом — неоднозначно.
			return nil
		}
		info.typ = ast.DupType(send.Args[1])
		if info.typ == nil {
			return nil
		}
	}

	// ----- хвостовые опции -----
	var rules *ast.Hash
	if len(send.Args) > 0 {
		if back, ok := send.Args[len(send.Args)-1].(*ast.Hash); ok {
			// Глубокая копия: поля извлекаются разрушающе, а дерево
			// оригинала портить нельзя.
			rules = back.DeepCopy().(*ast.Hash)
		}
	}
	if rules == nil && len(send.Args) >= 3 {
		// Третий позиционный аргумент легален только как options-hash.
		return nil
	}

	if rules != nil {
		p.parseRules(info, rules)
	}

	if info.def == nil && p.isNilable(info.typ) {
		info.def = p.nilLit(info.loc)
	}

	return info
}

// parseRules извлекает опции из (уже скопированного) options-hash.
func (p *pass) parseRules(info *propInfo, rules *ast.Hash) {
	n := p.names

	if hasTruthyHashValue(rules, n.Immutable) {
		info.immutable = true
	}

	if hasTruthyHashValue(rules, n.Factory) {
		// Фабрики на этой стадии не вычисляются.
		info.def = p.raiseUnimplemented(info.loc)
	} else if hasHashValue(rules, n.Default) {
		info.def = extractHashValue(rules, n.Default)
	}

	// например `const :foo, type, computed_by: :method_name`
	if hasTruthyHashValue(rules, n.ComputedBy) {
		val := extractHashValue(rules, n.ComputedBy)
		if lit, ok := val.(*ast.Literal); ok && lit.IsSymbol() {
			info.computedLoc = lit.Loc
			info.computed = lit.SymbolName()
		} else {
			diag.ReportError(p.reporter, diag.RewriteComputedBySymbol, val.Span(),
				"value for `computed_by` must be a symbol literal").Emit()
		}
	}

	if foreign := extractHashValue(rules, n.Foreign); foreign != nil {
		info.foreign = foreign
		if body := p.thunkBody(info.foreign); body != nil {
			info.foreign = body
		} else {
			loc := info.foreign.Span()
			diag.ReportError(p.reporter, diag.RewriteForeignLambda, loc,
				"the argument to `foreign:` must be a lambda").
				WithFix("Convert to lambda", diag.FixEdit{
					Span:    loc,
					NewText: "-> {" + p.files.Text(loc) + "}",
				}).
				Emit()
		}
	}

	if ifunset := extractHashValue(rules, n.Ifunset); ifunset != nil {
		info.ifunset = ifunset
	}
}

// processProp превращает одну запись в список узлов-замен. Список всегда
// непуст: минимум сигнатура и геттер.
func (p *pass) processProp(info *propInfo, forStruct bool) []ast.Expr {
	n := p.names
	var nodes []ast.Expr

	loc := info.loc
	getType := ast.DupType(info.typ)
	if getType == nil {
		panic("rewriter: no obvious type AST for this prop")
	}
	varName := n.InstanceVar(info.name)

	// Геттер: sig без параметров с типом свойства.
	nodes = append(nodes, p.mkSig0(loc, ast.DupType(getType)))

	switch {
	case info.computed != source.NoStringID:
		// Для `const :foo, type, computed_by: <name>` геттер утверждает, что
		// вызов метода класса <name> c одним (любым) аргументом возвращает
		// тип свойства: `T.assert_type!(self.class.<name>(T.unsafe(nil)), type)`.
		// Само тело — заглушка; assert существует только ради последующей
		// проверки типов.
		selfClass := &ast.Send{
			Loc:  info.computedLoc,
			Recv: &ast.Self{Loc: loc},
			Name: n.Class,
		}
		sendComputed := &ast.Send{
			Loc:  info.computedLoc,
			Recv: selfClass,
			Name: info.computed,
			Args: []ast.Expr{p.unsafeOf(info.computedLoc, p.nilLit(info.computedLoc))},
		}
		assert := p.assertType(info.computedLoc, sendComputed, ast.DupType(getType))
		body := &ast.InsSeq{
			Loc:   loc,
			Stats: []ast.Expr{assert},
			Final: p.raiseUnimplemented(loc),
		}
		nodes = append(nodes, p.mkGetter(loc, info.name, body))
	case info.ifunset == nil && forStruct:
		// Тривиальный доступ к backing-слоту.
		nodes = append(nodes, p.mkGetter(loc, info.name, &ast.Instance{Loc: info.nameLoc, Name: varName}))
	default:
		nodes = append(nodes, p.mkGetter(loc, info.name, p.raiseUnimplemented(loc)))
	}

	setName := n.Setter(info.name)

	// Сеттер, если свойство мутабельно.
	if !info.immutable {
		setType := ast.DupType(info.typ)
		nodes = append(nodes, p.mkSig1(loc, info.nameLoc, n.Arg0, ast.DupType(setType), ast.DupType(setType)))
		nodes = append(nodes, p.mkSetter(loc, setName, info.nameLoc, p.raiseUnimplemented(loc)))
	}

	// Foreign-доступ: `foo_` (nilable) и `foo_!` (без nil).
	if info.foreign != nil {
		var fkType, fkBareType ast.Expr
		if ast.DupType(info.foreign) == nil {
			// Невалидный тип — просто untyped.
			fkType = p.untyped(loc)
			fkBareType = p.untyped(loc)
		} else {
			fkType = p.nilableOf(loc, ast.DupType(info.foreign))
			fkBareType = ast.DupType(info.foreign)
		}

		// sig {params(opts: T.untyped).returns(T.nilable($foreign))}
		nodes = append(nodes, p.mkSig1(loc, info.nameLoc, n.Opts, p.untyped(loc), fkType))
		fkMethod := n.ForeignReader(info.name)
		nodes = append(nodes, p.mkKwRestMethod(loc, fkMethod, info.nameLoc, p.raiseUnimplemented(loc)))

		// sig {params(opts: T.untyped).returns($foreign)}
		nodes = append(nodes, p.mkSig1(loc, info.nameLoc, n.Opts, p.untyped(loc), fkBareType))
		fkMethodBang := n.ForeignReaderBang(info.name)
		nodes = append(nodes, p.mkKwRestMethod(loc, fkMethodBang, info.nameLoc, p.raiseUnimplemented(loc)))
	}

	// Mutator-хелпер: вложенный класс с индексированной мутацией контейнера
	// без переприсваивания целиком.
	{
		setType := ast.DupType(info.typ)
		rhs := []ast.Expr{
			p.mkSig1(loc, info.nameLoc, n.Arg0, ast.DupType(setType), ast.DupType(setType)),
			p.mkSetter(loc, setName, info.nameLoc, p.raiseUnimplemented(loc)),
		}

		var mutator ast.Expr
		switch {
		case p.isProbablyType(info.typ, n.ConstHash):
			mutator = p.mkMutatorRef(loc, n.HashMutator)
			if send, ok := info.typ.(*ast.Send); ok && send.Name == n.SquareBrackets && len(send.Args) == 2 {
				mutator = &ast.Send{Loc: loc, Recv: mutator, Name: n.SquareBrackets,
					Args: []ast.Expr{ast.DupType(send.Args[0]), ast.DupType(send.Args[1])}}
			} else {
				mutator = &ast.Send{Loc: loc, Recv: mutator, Name: n.SquareBrackets,
					Args: []ast.Expr{p.untyped(loc), p.untyped(loc)}}
			}
		case p.isProbablyType(info.typ, n.ConstArray):
			mutator = p.mkMutatorRef(loc, n.ArrayMutator)
			if send, ok := info.typ.(*ast.Send); ok && send.Name == n.SquareBrackets && len(send.Args) == 1 {
				mutator = &ast.Send{Loc: loc, Recv: mutator, Name: n.SquareBrackets,
					Args: []ast.Expr{ast.DupType(send.Args[0])}}
			} else {
				mutator = &ast.Send{Loc: loc, Recv: mutator, Name: n.SquareBrackets,
					Args: []ast.Expr{p.untyped(loc)}}
			}
		default:
			if _, ok := info.typ.(*ast.UnresolvedConstant); ok {
				// Известный пробел: именованный тип мог бы объявлять собственный
				// Mutator, на который стоило бы сослаться, но без резолва имён
				// его не найти. Хелпер не генерируется.
			}
		}

		if mutator != nil {
			rhs = append(rhs, p.mkSig0(loc, ast.DupType(mutator)))
			rhs = append(rhs, p.mkGetter(loc, info.name, p.raiseUnimplemented(loc)))

			nodes = append(nodes, &ast.ClassDef{
				Loc:  loc,
				Name: &ast.UnresolvedConstant{Loc: loc, Scope: &ast.EmptyTree{Loc: loc}, Name: n.Mutator},
				Rhs:  rhs,
			})
		}
	}

	return nodes
}

// mkStructInitialize синтезирует sig+initialize для класса с предком
// T::Struct. Сигнатура перечисляет сначала обязательные свойства, потом
// опциональные (внутри каждой группы — исходный порядок объявления):
// так контракт keyword-аргументов на вызывающей стороне не зависит от
// того, вперемешку ли объявлены обязательные и опциональные. Тело при
// этом присваивает слоты строго в исходном порядке объявления.
func (p *pass) mkStructInitialize(classLoc source.Span, props []*propInfo) []ast.Expr {
	params := make([]ast.Param, 0, len(props))
	sigParams := make([]ast.SigParam, 0, len(props))

	// сначала все обязательные
	for _, prop := range props {
		if prop.def != nil {
			continue
		}
		loc := prop.loc
		params = append(params, ast.Param{Loc: loc, Kind: ast.ParamKeyword, Name: prop.name})
		sigParams = append(sigParams, ast.SigParam{Loc: loc, Name: prop.name, Type: prop.typ.DeepCopy()})
	}

	// потом все опциональные
	for _, prop := range props {
		if prop.def == nil {
			continue
		}
		loc := prop.loc
		params = append(params, ast.Param{
			Loc:     loc,
			Kind:    ast.ParamKeywordOptional,
			Name:    prop.name,
			Default: prop.def.DeepCopy(),
		})
		sigParams = append(sigParams, ast.SigParam{Loc: loc, Name: prop.name, Type: prop.typ.DeepCopy()})
	}

	// тело: слоты в исходном порядке объявления, затем super со всеми
	// неявными аргументами — логика инициализации предков должна отработать
	stats := make([]ast.Expr, 0, len(props))
	for _, prop := range props {
		varName := p.names.InstanceVar(prop.name)
		stats = append(stats, &ast.Assign{
			Loc: prop.loc,
			Lhs: &ast.Instance{Loc: prop.nameLoc, Name: varName},
			Rhs: &ast.Local{Loc: prop.nameLoc, Name: prop.name},
		})
	}
	body := &ast.InsSeq{Loc: classLoc, Stats: stats, Final: &ast.ZSuper{Loc: classLoc}}

	return []ast.Expr{
		&ast.Sig{Loc: classLoc, Params: sigParams, Void: true},
		&ast.MethodDef{
			Loc:       classLoc,
			Name:      p.names.Initialize,
			Params:    params,
			Body:      body,
			Synthetic: true,
		},
	}
}
