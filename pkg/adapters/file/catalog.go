package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Catalog serves funnel definitions from a directory of .json, .yaml and
// .yml files. A funnel is addressed by its uuid, or by its file name
// without extension when the document has no uuid.
//
// The directory is rescanned on every call, so edits show up immediately.
// It implements ports.FunnelSource, ports.FunnelLister and ports.FunnelStore.
type Catalog struct {
	Dir    string
	logger *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used to report unreadable documents.
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// NewCatalog creates a catalog over dir.
func NewCatalog(dir string, opts ...CatalogOption) *Catalog {
	c := &Catalog{Dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type entry struct {
	path   string
	funnel *domain.Funnel
}

func isFunnelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return !strings.HasPrefix(name, "tmp-")
	}
	return false
}

// scan parses every document in the directory. Files that fail to parse are
// reported through the logger and skipped; the first file (in lexical
// order) claiming a uuid wins.
func (c *Catalog) scan(ctx context.Context) (map[string]entry, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]entry{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	index := make(map[string]entry)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !isFunnelFile(e.Name()) {
			continue
		}

		path := filepath.Join(c.Dir, e.Name())
		f, err := readFunnel(path)
		if err != nil {
			c.logger.Warn("skipping catalog document", "path", path, "err", err)
			continue
		}
		if prev, ok := index[f.UUID]; ok {
			c.logger.Warn("duplicate funnel uuid in catalog", "uuid", f.UUID, "kept", prev.path, "ignored", path)
			continue
		}
		index[f.UUID] = entry{path: path, funnel: f}
	}
	return index, nil
}

func readFunnel(path string) (*domain.Funnel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := domain.ParseFunnel(data, domain.FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if f.UUID == "" {
		f.UUID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Fetch implements ports.FunnelSource.
func (c *Catalog) Fetch(ctx context.Context, uuid string) (*domain.Funnel, error) {
	f, err := c.GetFunnel(ctx, uuid)
	if errors.Is(err, domain.ErrFunnelNotFound) {
		return nil, &domain.FetchError{Kind: domain.FetchNotFound, UUID: uuid}
	}
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchFailed, UUID: uuid, Err: err}
	}
	return f, nil
}

// List implements ports.FunnelLister.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	return c.ListFunnels(ctx)
}

// GetFunnel returns domain.ErrFunnelNotFound for unknown uuids.
func (c *Catalog) GetFunnel(ctx context.Context, uuid string) (*domain.Funnel, error) {
	index, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := index[uuid]
	if !ok {
		return nil, domain.ErrFunnelNotFound
	}
	return e.funnel, nil
}

// ListFunnels returns every uuid in the catalog in lexical order.
func (c *Catalog) ListFunnels(ctx context.Context) ([]string, error) {
	index, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Funnels returns every parsed definition, ordered by uuid.
func (c *Catalog) Funnels(ctx context.Context) ([]*domain.Funnel, error) {
	index, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Funnel, 0, len(index))
	for _, e := range index {
		out = append(out, e.funnel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out, nil
}

// SaveFunnel rewrites the document that holds the uuid, keeping its format,
// or creates <uuid>.json.
func (c *Catalog) SaveFunnel(ctx context.Context, f *domain.Funnel) error {
	if f.UUID == "" {
		return errors.New("funnel missing uuid")
	}
	if strings.ContainsAny(f.UUID, `/\`) {
		return fmt.Errorf("invalid funnel uuid %q", f.UUID)
	}

	index, err := c.scan(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(c.Dir, f.UUID+".json")
	if e, ok := index[f.UUID]; ok {
		path = e.path
	}

	var data []byte
	switch domain.FormatFromPath(path) {
	case domain.FormatYAML:
		data, err = yaml.Marshal(f)
	default:
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal funnel %s: %w", f.UUID, err)
	}
	return writeFileAtomic(path, data)
}
