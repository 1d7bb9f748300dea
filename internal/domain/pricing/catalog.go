package pricing

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

//go:embed configs/*.yaml
var defaultConfigs embed.FS

// Catalog holds one GameConfig per game. It is read-only after loading and
// safe for concurrent use.
type Catalog struct {
	games map[Game]*GameConfig
}

// LoadCatalog parses the embedded game tables. When dir is not empty, any
// <game>.yaml found there replaces the embedded table for that game.
func LoadCatalog(dir string) (*Catalog, error) {
	embedded, err := fs.Sub(defaultConfigs, "configs")
	if err != nil {
		return nil, fmt.Errorf("open embedded pricing configs: %w", err)
	}

	catalog := &Catalog{games: make(map[Game]*GameConfig)}
	if err := catalog.loadFS(embedded); err != nil {
		return nil, fmt.Errorf("load embedded pricing configs: %w", err)
	}

	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("pricing config dir %q: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("pricing config dir %q is not a directory", dir)
		}
		if err := catalog.loadFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("load pricing configs from %s: %w", dir, err)
		}
	}

	return catalog, nil
}

// NewCatalog builds a catalog from already parsed configs.
func NewCatalog(configs ...*GameConfig) *Catalog {
	catalog := &Catalog{games: make(map[Game]*GameConfig, len(configs))}
	for _, cfg := range configs {
		if cfg != nil {
			catalog.games[cfg.Game] = cfg
		}
	}
	return catalog
}

func (c *Catalog) loadFS(fsys fs.FS) error {
	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		cfg, err := ParseConfig(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		c.games[cfg.Game] = cfg
	}
	return errors.Join(errs...)
}

func (c *Catalog) Get(game Game) (*GameConfig, bool) {
	if c == nil {
		return nil, false
	}
	cfg, ok := c.games[game]
	return cfg, ok
}

func (c *Catalog) Games() []Game {
	if c == nil {
		return nil
	}
	out := make([]Game, 0, len(c.games))
	for g := range c.games {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}
