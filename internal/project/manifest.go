package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest — распарсенный sable.toml вместе с его местоположением.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Rewrite RewriteConfig `toml:"rewrite"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// RewriteConfig настраивает прогон реврайтера.
type RewriteConfig struct {
	// Autogen отключает переписывание тел классов: сгенерированный код
	// уже содержит раскрытые определения.
	Autogen bool `toml:"autogen"`
	// Jobs ограничивает число параллельных воркеров, 0 - по числу CPU.
	Jobs int `toml:"jobs"`
	// MaxDiagnostics ограничивает Bag на файл.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// Extensions перечисляет расширения файлов с деревьями,
	// по умолчанию [".mpt"] (msgpack tree).
	Extensions []string `toml:"extensions"`
}

const defaultMaxDiagnostics = 100

// DefaultRewriteConfig returns the config used when no manifest is present.
func DefaultRewriteConfig() RewriteConfig {
	return RewriteConfig{
		MaxDiagnostics: defaultMaxDiagnostics,
		Extensions:     []string{".mpt"},
	}
}

// Load находит sable.toml вверх от startDir и разбирает его.
// ok=false без ошибки означает, что манифеста нет: работаем с дефолтами.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindSableToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	cfg := Config{Rewrite: DefaultRewriteConfig()}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Rewrite.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [rewrite].jobs must be >= 0", path)
	}
	if cfg.Rewrite.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [rewrite].max_diagnostics must be > 0", path)
	}
	for _, ext := range cfg.Rewrite.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return Config{}, fmt.Errorf("%s: [rewrite].extensions entries must start with a dot: %q", path, ext)
		}
	}
	return cfg, nil
}
