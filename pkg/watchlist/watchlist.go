package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
)

// Package watchlist loads the currency pairs the rate watcher polls (YAML/JSON).

// Watch is one base currency observed against a set of targets.
type Watch struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Base    string          `json:"base" yaml:"base"`
	Targets []string        `json:"targets" yaml:"targets"`
	Amount  decimal.Decimal `json:"amount" yaml:"amount"`
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled" yaml:"enabled"`
}

// IsEnabled reports whether the watch should be polled.
func (w Watch) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// ConvertRequest builds the latest-rates request for the watch.
func (w Watch) ConvertRequest() frankfurter.ConvertRequest {
	targets := make([]frankfurter.Currency, 0, len(w.Targets))
	for _, t := range w.Targets {
		targets = append(targets, frankfurter.Currency(t))
	}
	return frankfurter.ConvertRequest{
		Amount: w.Amount,
		From:   frankfurter.Currency(w.Base),
		To:     targets,
	}
}

// Registry is an immutable, validated set of watches in file order.
type Registry struct {
	watches []Watch
	idx     map[string]int
}

type fileFormat struct {
	Watches []Watch `json:"watches" yaml:"watches"`
}

// LoadRegistry reads and validates a watchlist file.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("watchlist file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}

	parsed, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Watches)
}

// NewRegistry sanitizes and validates watches.
func NewRegistry(watches []Watch) (*Registry, error) {
	if len(watches) == 0 {
		return nil, errors.New("watchlist contains no watches")
	}

	reg := &Registry{
		watches: make([]Watch, 0, len(watches)),
		idx:     make(map[string]int, len(watches)),
	}
	for i := range watches {
		w := sanitizeWatch(watches[i])
		if err := validateWatch(w); err != nil {
			return nil, fmt.Errorf("watch[%d]: %w", i, err)
		}
		if _, exists := reg.idx[w.ID]; exists {
			return nil, fmt.Errorf("duplicate watch id %q", w.ID)
		}
		reg.idx[w.ID] = len(reg.watches)
		reg.watches = append(reg.watches, w)
	}
	return reg, nil
}

// All returns a copy of every watch.
func (r *Registry) All() []Watch {
	if r == nil || len(r.watches) == 0 {
		return nil
	}
	out := make([]Watch, len(r.watches))
	copy(out, r.watches)
	return out
}

// Enabled returns the watches that should be polled.
func (r *Registry) Enabled() []Watch {
	if r == nil {
		return nil
	}
	var out []Watch
	for _, w := range r.watches {
		if w.IsEnabled() {
			out = append(out, w)
		}
	}
	return out
}

// ByID returns the watch with the given id.
func (r *Registry) ByID(id string) (Watch, bool) {
	id = strings.TrimSpace(id)
	if r == nil || id == "" {
		return Watch{}, false
	}
	i, ok := r.idx[id]
	if !ok {
		return Watch{}, false
	}
	return r.watches[i], true
}

type unmarshalFn func([]byte, any) error

func parseFile(data []byte, ext string) (fileFormat, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out fileFormat
		if err := d.fn(data, &out); err != nil {
			lastErr = fmt.Errorf("decode %s watchlist: %w", d.name, err)
			continue
		}
		return out, nil
	}
	if lastErr != nil {
		return fileFormat{}, lastErr
	}
	return fileFormat{}, errors.New("watchlist file format not recognized (expected YAML or JSON)")
}

func sanitizeWatch(w Watch) Watch {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	w.Base = frankfurter.ParseCurrency(w.Base).String()

	targets := make([]string, 0, len(w.Targets))
	for _, t := range w.Targets {
		if code := frankfurter.ParseCurrency(t); code != "" {
			targets = append(targets, code.String())
		}
	}
	w.Targets = targets

	if w.Name == "" {
		w.Name = w.ID
	}
	return w
}

func validateWatch(w Watch) error {
	if w.ID == "" {
		return errors.New("id is required")
	}
	if w.Base == "" {
		return fmt.Errorf("base is required for watch %q", w.ID)
	}
	if err := w.ConvertRequest().Validate(); err != nil {
		return fmt.Errorf("watch %q: %w", w.ID, err)
	}
	return nil
}
