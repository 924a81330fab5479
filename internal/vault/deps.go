package vault

import (
	"bufio"
	"bytes"
	"strings"
)

// ParseTextureRefs extracts texture dependency paths from a material
// descriptor. Descriptors are line-oriented key/value text; any key starting
// with "texture" contributes its value. Duplicates are removed, order of
// first appearance is kept.
func ParseTextureRefs(data []byte) []string {
	var refs []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			key, value, ok = strings.Cut(line, " ")
			if !ok {
				continue
			}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" || !strings.HasPrefix(key, "texture") {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		refs = append(refs, value)
	}
	return refs
}
