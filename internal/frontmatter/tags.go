package frontmatter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrTagsNotList is returned when the tags field exists but is not a sequence.
var ErrTagsNotList = errors.New("frontmatter: expected 'tags' to be a list")

// document is the only part of the front matter we read. Other keys are
// ignored by the decoder.
type document struct {
	Tags yaml.Node `yaml:"tags"`
}

// ParseTags decodes block as YAML and returns the trimmed, non-empty string
// entries of its tags list in source order. An empty block or a missing or
// null tags field gives an empty list.
func ParseTags(block string) ([]string, error) {
	var doc document
	dec := yaml.NewDecoder(strings.NewReader(block))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("frontmatter: parse yaml: %w", err)
	}

	node := &doc.Tags
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch {
	case node.Kind == 0:
		return []string{}, nil
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null":
		return []string{}, nil
	case node.Kind != yaml.SequenceNode:
		return nil, ErrTagsNotList
	}

	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind == yaml.AliasNode && item.Alias != nil {
			item = item.Alias
		}
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			continue
		}
		if s := strings.TrimSpace(item.Value); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseFile extracts the front matter of the note at path and parses its tags.
func ParseFile(path string) ([]string, error) {
	block, err := Extract(path)
	if err != nil {
		return nil, err
	}
	return ParseTags(block)
}
