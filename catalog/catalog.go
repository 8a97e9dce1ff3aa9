package catalog

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Catalog message texts keyed by "<section>.<key>", or the bare key outside any section
type Catalog map[string]string

// Get returns the text of key, fallback when it is missing or blank
func (c Catalog) Get(key, fallback string) string {
	if text, ok := c[key]; ok && text != "" {
		return text
	}
	return fallback
}

// Merge returns a copy of c with the texts of other added over it
func (c Catalog) Merge(other Catalog) Catalog {
	merged := make(Catalog, len(c)+len(other))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Load reads key=value message files, later sources win on duplicate keys
func Load(source interface{}, others ...interface{}) (Catalog, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, source, others...)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	messages := Catalog{}
	for _, section := range file.Sections() {
		prefix := ""
		if name := section.Name(); name != ini.DefaultSection {
			prefix = name + "."
		}
		for _, key := range section.Keys() {
			messages[prefix+key.Name()] = key.String()
		}
	}
	return messages, nil
}
