package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"santavideo/models"
	"santavideo/pipeline"
)

// catalogCacheTTL is how long a loaded collection stays valid before the
// backing file is re-read
const catalogCacheTTL = 5 * time.Minute

// Catalog resolves template and script identifiers against file-backed
// collections, caching each collection in memory
type Catalog struct {
	templatesPath string
	scriptsPath   string

	mu          sync.Mutex
	templates   []models.Template
	templatesAt time.Time
	scripts     []models.Script
	scriptsAt   time.Time
}

// NewCatalog creates a catalog over dataDir/templates.json and
// dataDir/scripts.json
func NewCatalog(dataDir string) *Catalog {
	return &Catalog{
		templatesPath: filepath.Join(dataDir, "templates.json"),
		scriptsPath:   filepath.Join(dataDir, "scripts.json"),
	}
}

// Templates returns all templates
func (c *Catalog) Templates() ([]models.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.templates == nil || time.Since(c.templatesAt) >= catalogCacheTTL {
		var templates []models.Template
		if err := readCollection(c.templatesPath, &templates); err != nil {
			return nil, err
		}
		c.templates = templates
		c.templatesAt = time.Now()
	}
	return c.templates, nil
}

// Scripts returns all script segments, goodbye messages included
func (c *Catalog) Scripts() ([]models.Script, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scripts == nil || time.Since(c.scriptsAt) >= catalogCacheTTL {
		var scripts []models.Script
		if err := readCollection(c.scriptsPath, &scripts); err != nil {
			return nil, err
		}
		c.scripts = scripts
		c.scriptsAt = time.Now()
	}
	return c.scripts, nil
}

// TemplateByID resolves one template
func (c *Catalog) TemplateByID(id string) (models.Template, error) {
	templates, err := c.Templates()
	if err != nil {
		return models.Template{}, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Template{}, pipeline.NewNotFoundError("template", id)
}

// ScriptByID resolves one script segment
func (c *Catalog) ScriptByID(id string) (models.Script, error) {
	scripts, err := c.Scripts()
	if err != nil {
		return models.Script{}, err
	}
	for _, s := range scripts {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Script{}, pipeline.NewNotFoundError("script", id)
}

// Invalidate drops both caches so the next lookup re-reads the files
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = nil
	c.scripts = nil
}

func readCollection(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
