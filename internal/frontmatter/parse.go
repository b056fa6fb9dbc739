// Package frontmatter reads markdown notes that start with a YAML frontmatter block.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// Split separates the frontmatter block from the note body.
func Split(content []byte) ([]byte, string, error) {
	trimmed := bytes.TrimSpace(content)
	if !bytes.HasPrefix(trimmed, delimiter) {
		return nil, "", fmt.Errorf("invalid markdown format: missing opening frontmatter delimiter")
	}

	rest := trimmed[len(delimiter):]
	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	if end < 0 {
		return nil, "", fmt.Errorf("invalid markdown format: missing closing frontmatter delimiter")
	}

	fm := rest[:end]
	body := rest[end+1+len(delimiter):]
	return fm, strings.TrimSpace(string(body)), nil
}

// Decode unmarshals the frontmatter of content into v and returns the body.
func Decode(content []byte, v any) (string, error) {
	fm, body, err := Split(content)
	if err != nil {
		return "", err
	}
	if err := yaml.Unmarshal(fm, v); err != nil {
		return "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return body, nil
}

// StripImages drops markdown image lines from a note body.
func StripImages(body string) string {
	var kept []string
	for line := range strings.SplitSeq(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "![") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
