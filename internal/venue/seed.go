package venue

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk format consumed by "events venues import".
type SeedFile struct {
	Venues []*Venue `yaml:"venues"`
}

// LoadSeedFile reads and validates a venue seed file.
func LoadSeedFile(path string) ([]*Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if len(seed.Venues) == 0 {
		return nil, fmt.Errorf("seed file %s contains no venues", path)
	}

	seen := make(map[string]string, len(seed.Venues))
	for _, v := range seed.Venues {
		if v.ID == "" {
			v.ID = slugify(v.Name)
		}
		if v.State == "" {
			v.State = StateConfigured
		}
		if v.RenderMode == "" {
			v.RenderMode = RenderStatic
		}
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("seed file %s: %w", path, err)
		}
		if other, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("seed file %s: venues %q and %q share id %q", path, other, v.Name, v.ID)
		}
		seen[v.ID] = v.Name
	}

	return seed.Venues, nil
}

// slugify derives a stable venue ID from its name, so id-less seed entries
// stay keyed the same across re-imports.
func slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
