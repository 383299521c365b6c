package position

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled once.
var (
	iniSection = regexp.MustCompile(`^\[(.+)\]`)
	iniOption  = regexp.MustCompile(`^(.*?)\s*[=:]\s*(.*)$`)
)

const iniDefaultSection = "default"

// INI indexes an INI document by lower-cased section and option name.
//
// Lines indented deeper than their option continue its value and extend its
// range. Lines starting with '#' or ';' are comments. Options before the
// first section or inside [DEFAULT] belong to the root, addressed by a
// one-segment path; other options are addressed by the section name split on dots
// followed by the option.
func INI(content []byte) (INIMap, error) {
	lines := make(INIMap)

	var (
		section     string
		option      string
		hasOption   bool
		indentLevel int
	)

	for number, raw := range strings.Split(string(content), "\n") {
		lineNo := number + 1
		raw = strings.TrimRight(raw, "\r")
		stripped := strings.TrimSpace(raw)

		if stripped == "" || strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, ";") {
			continue
		}

		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

		if hasOption && indent > indentLevel {
			key := iniKey{section: section, option: option}
			if existing, ok := lines[key]; ok {
				lines[key] = LineRange{Start: existing.Start, End: lineNo}
			}

			continue
		}

		indentLevel = indent

		if match := iniSection.FindStringSubmatch(stripped); match != nil {
			section = strings.ToLower(strings.TrimSpace(match[1]))
			if section == iniDefaultSection {
				section = ""
			}

			hasOption = false

			continue
		}

		if match := iniOption.FindStringSubmatch(stripped); match != nil {
			option = strings.ToLower(strings.TrimSpace(match[1]))
			hasOption = true
			lines[iniKey{section: section, option: option}] = LineRange{Start: lineNo, End: lineNo}
		}
	}

	return lines, nil
}

type iniKey struct {
	section string
	option  string
}

// INIMap maps (section, option) pairs to line ranges.
type INIMap map[iniKey]LineRange

// Find implements Finder.
func (m INIMap) Find(path []string) (LineRange, bool) {
	if len(path) == 0 {
		return LineRange{}, false
	}

	key := iniKey{
		section: strings.ToLower(strings.Join(path[:len(path)-1], ".")),
		option:  strings.ToLower(path[len(path)-1]),
	}

	lineRange, ok := m[key]

	return lineRange, ok
}
