// Package driver прогоняет реврайтер по файлам с деревьями:
// одиночный файл, директория с пулом воркеров, дисковый кеш.
package driver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/names"
	"sable/internal/rewriter"
	"sable/internal/source"
	"sable/internal/treeio"
)

// Options настраивает прогон реврайтера.
type Options struct {
	// Jobs ограничивает число воркеров в RewriteDir, 0 - по числу CPU.
	Jobs int
	// MaxDiagnostics ограничивает Bag каждого файла.
	MaxDiagnostics int
	// Autogen пропускает переписывание тел классов.
	Autogen bool
	// Cache, если не nil, хранит результаты по хешу входа.
	// Кешируются только чистые прогоны (без диагностик).
	Cache *treeio.Cache
	// Extensions перечисляет расширения файлов с деревьями для RewriteDir.
	Extensions []string
}

// RewriteResult — результат переписывания одного файла. Интернер, FileSet
// и таблица имён у каждого файла свои: воркеры не делят состояние.
type RewriteResult struct {
	Path      string
	File      source.FileID
	Files     *source.FileSet
	Names     *names.Table
	Body      []ast.Expr
	Bag       *diag.Bag
	FromCache bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// RewriteTree переписывает property-объявления во всех классах дерева,
// включая вложенные. Вложенные классы обходятся первыми: их тела не
// должны видеть методы, синтезированные для внешнего класса.
func RewriteTree(ctx *rewriter.Context, body []ast.Expr) {
	for _, e := range body {
		rewriteExpr(ctx, e)
	}
}

func rewriteExpr(ctx *rewriter.Context, e ast.Expr) {
	cls, ok := e.(*ast.ClassDef)
	if !ok {
		return
	}
	for _, stat := range cls.Rhs {
		rewriteExpr(ctx, stat)
	}
	rewriter.Props(ctx, cls)
}

// RewriteFile читает закодированный файл с деревом, переписывает его
// и возвращает результат. ctx останавливает работу между стадиями.
func RewriteFile(ctx context.Context, path string, opts Options) (*RewriteResult, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := sha256.Sum256(data)
	if opts.Cache != nil {
		if res, ok := loadCached(key, path, opts); ok {
			return res, nil
		}
	}

	tbl := names.NewTable(source.NewInterner())
	fs := source.NewFileSet()
	decoded, err := treeio.Decode(bytes.NewReader(data), fs, tbl)
	if err != nil {
		return nil, fmt.Errorf("driver: %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bag := diag.NewBag(opts.maxDiagnostics())
	rctx := &rewriter.Context{
		Names:    tbl,
		Files:    fs,
		Reporter: &diag.BagReporter{Bag: bag},
		Autogen:  opts.Autogen,
	}
	RewriteTree(rctx, decoded.Body)

	res := &RewriteResult{
		Path:  path,
		File:  decoded.File,
		Files: fs,
		Names: tbl,
		Body:  decoded.Body,
		Bag:   bag,
	}

	if opts.Cache != nil && bag.Len() == 0 {
		storeCached(key, res, opts)
	}
	return res, nil
}

// loadCached пытается достать уже переписанное дерево по хешу входа.
// Битую запись игнорируем: прогон пойдёт обычным путём и перезапишет её.
func loadCached(key treeio.Digest, path string, opts Options) (*RewriteResult, bool) {
	enc, ok, err := opts.Cache.Get(key)
	if err != nil || !ok {
		return nil, false
	}
	tbl := names.NewTable(source.NewInterner())
	fs := source.NewFileSet()
	decoded, err := treeio.Decode(bytes.NewReader(enc), fs, tbl)
	if err != nil {
		return nil, false
	}
	return &RewriteResult{
		Path:      path,
		File:      decoded.File,
		Files:     fs,
		Names:     tbl,
		Body:      decoded.Body,
		Bag:       diag.NewBag(opts.maxDiagnostics()),
		FromCache: true,
	}, true
}

// storeCached кладёт переписанное дерево в кеш. Ошибки кеша не
// влияют на результат прогона.
func storeCached(key treeio.Digest, res *RewriteResult, opts Options) {
	f := res.Files.Get(res.File)
	var buf bytes.Buffer
	if err := treeio.Encode(&buf, f.Path, f.Content, res.Body, res.Names); err != nil {
		return
	}
	_ = opts.Cache.Put(key, buf.Bytes())
}
