// Package rotation implements the regulation-mark rotation calendar from
// SPEC_FULL.md §4.D, grounded on the original src/engine/rotation.py and
// on the teacher's static-data bootstrap idiom in internal/sde/loader.go
// (a fixed reference table loaded once at process start). Unlike the SDE,
// which the teacher downloads and extracts at runtime, the rotation
// calendar is small and changes on a yearly cadence, so it is compiled
// into the binary via go:embed instead of fetched.
package rotation

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed calendar.yaml
var calendarYAML []byte

type markEntry struct {
	Mark         string `yaml:"mark"`
	Status       string `yaml:"status"`
	RotationDate string `yaml:"rotation_date"`
}

type calendarFile struct {
	CurrentMark string      `yaml:"current_mark"`
	Marks       []markEntry `yaml:"marks"`
}

// MustLoad parses the embedded calendar and panics on malformed YAML,
// which would indicate a build-time error rather than a runtime one —
// the data is compiled into the binary, so a parse failure can only come
// from a broken edit to calendar.yaml.
func MustLoad() *Calendar {
	c, err := Load(calendarYAML)
	if err != nil {
		panic("rotation: embedded calendar.yaml is malformed: " + err.Error())
	}
	return c
}

// Load parses raw calendar YAML into a Calendar. Exported primarily for
// tests that exercise alternate calendars.
func Load(raw []byte) (*Calendar, error) {
	var f calendarFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(f.Marks))
	entries := make(map[string]Entry, len(f.Marks))
	for _, m := range f.Marks {
		order = append(order, m.Mark)
		entries[m.Mark] = Entry{
			Status:       m.Status,
			RotationDate: m.RotationDate,
		}
	}

	return &Calendar{
		currentMark: f.CurrentMark,
		order:       order,
		entries:     entries,
	}, nil
}
