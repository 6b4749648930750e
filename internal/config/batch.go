package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Batch — содержимое batch-файла (--batch).
//
//	server: satellite.example.com
//	content_views:
//	  - app-a
//	  - app-b
//	environments:
//	  - dev
//	  - stage
type Batch struct {
	Server          string   `yaml:"server"`
	ContentViews    []string `yaml:"content_views"`
	AllEnvironments bool     `yaml:"all_environments"`
	Environments    []string `yaml:"environments"`
}

// LoadBatch читает batch-файл.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch разбирает YAML batch-файла. Неизвестные ключи — ошибка.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	return &b, nil
}
