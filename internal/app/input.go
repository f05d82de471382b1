package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/sciencedigest/internal/digest"
)

// inputFile is the object form of an input file. A bare list of articles
// is accepted as well.
type inputFile struct {
	Articles []digest.RawArticle `yaml:"articles" json:"articles"`
}

// readInput loads raw articles from a JSON or YAML file.
func readInput(path string) ([]digest.RawArticle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	unmarshal := yaml.Unmarshal
	if filepath.Ext(path) == ".json" {
		unmarshal = json.Unmarshal
	}
	var list []digest.RawArticle
	if err := unmarshal(b, &list); err == nil {
		return list, nil
	}
	var obj inputFile
	if err := unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return obj.Articles, nil
}
