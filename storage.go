// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ArtifactStore writes charts and metrics documents into one output directory.
// Every write replaces the previous file of the same name.
type ArtifactStore struct {
	basePath string
	logger   *Logger
}

// NewArtifactStore creates the output directory if needed
func NewArtifactStore(basePath string, logger *Logger) (*ArtifactStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &StorageError{
			Operation: "create_directory",
			Path:      basePath,
			Err:       err,
		}
	}

	logger.Debug("Artifact store initialized", "path", basePath)

	return &ArtifactStore{
		basePath: basePath,
		logger:   logger,
	}, nil
}

// Dir returns the output directory
func (s *ArtifactStore) Dir() string {
	return s.basePath
}

// Path returns the full path of a named artifact
func (s *ArtifactStore) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// WriteFile replaces a named artifact with data and returns its path
func (s *ArtifactStore) WriteFile(name string, data []byte) (string, error) {
	path := s.Path(name)
	s.logger.LogStorageOperation("write_artifact", path)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &StorageError{
			Operation: "write_file",
			Path:      path,
			Err:       err,
		}
	}
	return path, nil
}

// SaveJSON replaces a named artifact with indented JSON and returns its path
func (s *ArtifactStore) SaveJSON(name string, data interface{}) (string, error) {
	path := s.Path(name)
	s.logger.LogStorageOperation("save_json", path)

	file, err := os.Create(path)
	if err != nil {
		return "", &StorageError{
			Operation: "create_file",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(data); err != nil {
		return "", &StorageError{
			Operation: "encode_json",
			Path:      path,
			Err:       err,
		}
	}

	return path, nil
}

// LoadJSON decodes a named artifact into target
func (s *ArtifactStore) LoadJSON(name string, target interface{}) error {
	path := s.Path(name)
	s.logger.LogStorageOperation("load_json", path)

	file, err := os.Open(path)
	if err != nil {
		return &StorageError{
			Operation: "open_file",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return &StorageError{
			Operation: "decode_json",
			Path:      path,
			Err:       err,
		}
	}

	return nil
}

// ListArtifacts lists all files in the output directory
func (s *ArtifactStore) ListArtifacts() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, &StorageError{
			Operation: "list_directory",
			Path:      s.basePath,
			Err:       err,
		}
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}
