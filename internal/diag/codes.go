package diag

import (
	"fmt"
)

type Code uint16

// Диапазоны кодов закреплены за фазами пайплайна. Ранние фазы
// (лексер/парсер) живут во внешнем фронтенде и сюда не попадают;
// здесь занят только диапазон десугаринга.
const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Desugar/rewrite phase
	RewriteInfo Code = 4600
	// Значение computed_by: обязано быть литералом-символом.
	RewriteComputedBySymbol Code = 4601
	// Аргумент foreign: обязан быть лямбдой (thunk).
	RewriteForeignLambda Code = 4602

	// Tree interchange (serialized class files)
	TreeInfo          Code = 4700
	TreeSchemaVersion Code = 4701
)

func (c Code) String() string {
	return fmt.Sprintf("E%04d", uint16(c))
}

// Name возвращает машинно-стабильное имя кода для golden-вывода.
func (c Code) Name() string {
	switch c {
	case UnknownCode:
		return "unknown"
	case RewriteInfo:
		return "rewrite-info"
	case RewriteComputedBySymbol:
		return "rewrite-computed-by-symbol"
	case RewriteForeignLambda:
		return "rewrite-foreign-lambda"
	case TreeInfo:
		return "tree-info"
	case TreeSchemaVersion:
		return "tree-schema-version"
	}
	return fmt.Sprintf("code-%d", uint16(c))
}
