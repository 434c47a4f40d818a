// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/storage"
)

// GroupFilePrefix is the file name prefix of saved group members.
const GroupFilePrefix = "config_hyperparams_"

// Store reads and writes configuration files.
type Store struct {
	logger *slog.Logger
}

var _ storage.ConfigStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a new Store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.Default().With("component", "config_store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load reads the base configuration at path. The document's model_type
// selects a default schema; document entries override matching defaults and
// entries unknown to the schema are appended in document order.
func (s *Store) Load(path string) (*core.HParams, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	doc := core.NewHParams()
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	modelType, err := doc.ModelType()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defaults, err := core.DefaultHParams(modelType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	merged, err := core.Merge(defaults, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Debug("loaded base config", "path", path, "model_type", modelType, "entries", merged.Len())
	return merged, nil
}

// LoadSearchConfig reads and validates the search config at path. Files
// ending in ".hcl" are decoded as HCL, everything else as JSON.
func (s *Store) LoadSearchConfig(path string) (*core.SearchConfig, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	var cfg *core.SearchConfig
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		cfg, err = decodeHCLSearchConfig(data, path)
	} else {
		cfg = &core.SearchConfig{}
		err = cfg.UnmarshalJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := core.ValidateSearchConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Debug("loaded search config", "path", path,
		"variables", len(cfg.Variables), "hyperparams", len(cfg.Hyperparams))
	return cfg, nil
}

// SaveGroup creates outputDir if needed and writes member i of group to
// config_hyperparams_<i>.json. Files are written in order; files written
// before a failure are left in place.
func (s *Store) SaveGroup(group core.Group, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	for i, hparams := range group {
		data, err := encodeHParams(hparams)
		if err != nil {
			return fmt.Errorf("encode group member %d: %w", i, err)
		}
		path := GroupFilePath(outputDir, i)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	s.logger.Info("saved group", "dir", outputDir, "size", len(group))
	return nil
}

// GroupFilePath returns the path SaveGroup uses for member index.
func GroupFilePath(outputDir string, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s%d.json", GroupFilePrefix, index))
}

func readConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrConfigNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

// encodeHParams renders h with four-space indentation and without HTML
// escaping, so tokens like "<s>" stay readable.
func encodeHParams(h *core.HParams) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
