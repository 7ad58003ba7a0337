package treeio

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"sable/internal/ast"
	"sable/internal/names"
	"sable/internal/source"
)

// Current schema version - increment when the wire format changes
const SchemaVersion uint16 = 1

// ClassFile — сериализованный результат реврайта одного файла:
// исходный текст (для резолва спанов) и верхнеуровневые выражения.
type ClassFile struct {
	Schema uint16     `msgpack:"v"`
	Path   string     `msgpack:"p"`
	Source []byte     `msgpack:"src"`
	Body   []wireNode `msgpack:"body"`
}

// Encode пишет файл с деревом в w.
func Encode(w io.Writer, path string, src []byte, body []ast.Expr, tbl *names.Table) error {
	cf := ClassFile{
		Schema: SchemaVersion,
		Path:   path,
		Source: src,
	}
	cf.Body = make([]wireNode, len(body))
	for i, e := range body {
		cf.Body[i] = encodeExpr(e, tbl)
	}
	return msgpack.NewEncoder(w).Encode(&cf)
}

// DecodedFile — результат Decode: дерево привязано к свежему файлу
// в переданном FileSet.
type DecodedFile struct {
	File source.FileID
	Path string
	Body []ast.Expr
}

// Decode читает файл с деревом, регистрирует исходник в fs
// и интернирует имена в tbl.
// Несовпадение схемы это ошибка: кеши на старом формате пересобираются.
func Decode(r io.Reader, fs *source.FileSet, tbl *names.Table) (*DecodedFile, error) {
	var cf ClassFile
	if err := msgpack.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("treeio: decode: %w", err)
	}
	if cf.Schema != SchemaVersion {
		return nil, fmt.Errorf("treeio: schema %d, want %d", cf.Schema, SchemaVersion)
	}

	id := fs.AddVirtual(cf.Path, cf.Source)
	out := &DecodedFile{File: id, Path: cf.Path, Body: make([]ast.Expr, len(cf.Body))}
	for i, n := range cf.Body {
		e, err := decodeExpr(n, id, tbl)
		if err != nil {
			return nil, err
		}
		out.Body[i] = e
	}
	return out, nil
}
