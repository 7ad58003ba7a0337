package names

import (
	"sable/internal/source"
)

// Table держит предзасеянные ID часто используемых имён.
// Реврайтер дочеканивает производные имена (`foo=`, `@foo`, `foo_`, `foo_!`)
// через тот же интернер, поэтому Table передаётся в read-write виде.
type Table struct {
	Strings *source.Interner

	// property macro callees
	Prop                 source.StringID
	Const                source.StringID
	TokenProp            source.StringID
	TimestampedTokenProp source.StringID
	CreatedProp          source.StringID
	MerchantProp         source.StringID

	// hard-coded property names of the shorthand macros
	Token    source.StringID
	Created  source.StringID
	Merchant source.StringID

	// option keys of the trailing rules hash
	Immutable  source.StringID
	Factory    source.StringID
	Default    source.StringID
	ComputedBy source.StringID
	Foreign    source.StringID
	Ifunset    source.StringID

	// type grammar
	T              source.StringID
	Struct         source.StringID
	Nilable        source.StringID
	Untyped        source.StringID
	Unsafe         source.StringID
	AssertType     source.StringID
	SquareBrackets source.StringID
	ConstString    source.StringID
	ConstFloat     source.StringID
	ConstHash      source.StringID
	ConstArray     source.StringID

	// synthesis
	Class          source.StringID
	Initialize     source.StringID
	Kernel         source.StringID
	Raise          source.StringID
	NotImplemented source.StringID
	Arg0           source.StringID
	Opts           source.StringID
	Lambda         source.StringID
	Mutator        source.StringID
	HashMutator    source.StringID
	ArrayMutator   source.StringID
	Std            source.StringID
	Props          source.StringID
}

// NewTable seeds the well-known names into the given interner.
func NewTable(in *source.Interner) *Table {
	return &Table{
		Strings: in,

		Prop:                 in.Intern("prop"),
		Const:                in.Intern("const"),
		TokenProp:            in.Intern("token_prop"),
		TimestampedTokenProp: in.Intern("timestamped_token_prop"),
		CreatedProp:          in.Intern("created_prop"),
		MerchantProp:         in.Intern("merchant_prop"),

		Token:    in.Intern("token"),
		Created:  in.Intern("created"),
		Merchant: in.Intern("merchant"),

		Immutable:  in.Intern("immutable"),
		Factory:    in.Intern("factory"),
		Default:    in.Intern("default"),
		ComputedBy: in.Intern("computed_by"),
		Foreign:    in.Intern("foreign"),
		Ifunset:    in.Intern("ifunset"),

		T:              in.Intern("T"),
		Struct:         in.Intern("Struct"),
		Nilable:        in.Intern("nilable"),
		Untyped:        in.Intern("untyped"),
		Unsafe:         in.Intern("unsafe"),
		AssertType:     in.Intern("assert_type!"),
		SquareBrackets: in.Intern("[]"),
		ConstString:    in.Intern("String"),
		ConstFloat:     in.Intern("Float"),
		ConstHash:      in.Intern("Hash"),
		ConstArray:     in.Intern("Array"),

		Class:          in.Intern("class"),
		Initialize:     in.Intern("initialize"),
		Kernel:         in.Intern("Kernel"),
		Raise:          in.Intern("raise"),
		NotImplemented: in.Intern("not implemented"),
		Arg0:           in.Intern("arg0"),
		Opts:           in.Intern("opts"),
		Lambda:         in.Intern("lambda"),
		Mutator:        in.Intern("Mutator"),
		HashMutator:    in.Intern("HashMutator"),
		ArrayMutator:   in.Intern("ArrayMutator"),
		Std:            in.Intern("Std"),
		Props:          in.Intern("Props"),
	}
}

// Show возвращает текст имени.
func (t *Table) Show(id source.StringID) string {
	return t.Strings.MustLookup(id)
}

// Setter чеканит `foo=` для `foo`.
func (t *Table) Setter(name source.StringID) source.StringID {
	return t.Strings.Intern(t.Show(name) + "=")
}

// InstanceVar чеканит `@foo` для `foo`.
func (t *Table) InstanceVar(name source.StringID) source.StringID {
	return t.Strings.Intern("@" + t.Show(name))
}

// ForeignReader чеканит `foo_` — nilable-доступ к foreign-записи.
func (t *Table) ForeignReader(name source.StringID) source.StringID {
	return t.Strings.Intern(t.Show(name) + "_")
}

// ForeignReaderBang чеканит `foo_!` — доступ без nil.
func (t *Table) ForeignReaderBang(name source.StringID) source.StringID {
	return t.Strings.Intern(t.Show(name) + "_!")
}
