package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/mana"
	"gopkg.in/yaml.v3"
)

// Library is a reusable card list, shared between scenarios.
type Library struct {
	Cards []CardSpec `yaml:"cards"`
}

// LoadLibrary reads a library file.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse library YAML: %w", err)
	}
	return &lib, nil
}

// WriteLibrary encodes lib as YAML.
func WriteLibrary(w io.Writer, lib *Library) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lib); err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	return enc.Close()
}

// merge adds library cards the scenario does not define itself.
func (f *File) merge(lib *Library) {
	have := make(map[string]bool, len(f.Cards))
	for _, c := range f.Cards {
		have[c.Name] = true
	}
	for _, c := range lib.Cards {
		if !have[c.Name] {
			f.Cards = append(f.Cards, c)
			have[c.Name] = true
		}
	}
}

// Card export columns.
const (
	colName      = 0
	colPower     = 4
	colToughness = 5
	colTypes     = 10
	colSubtypes  = 11
	colManaCosts = 13
	colRules     = 14
	minColumns   = colRules + 1
)

// ErrEmptyExport is returned for a card export without data rows.
var ErrEmptyExport = errors.New("card export has no data rows")

var keywordText = map[string]cards.Keyword{
	"first strike":  cards.FirstStrike,
	"double strike": cards.DoubleStrike,
	"deathtouch":    cards.Deathtouch,
	"lifelink":      cards.Lifelink,
	"flying":        cards.Flying,
	"vigilance":     cards.Vigilance,
	"trample":       cards.Trample,
	"haste":         cards.Haste,
}

// ImportCSV converts a card database export into library cards. Rows of
// unsupported types, short rows and reprints of a name already seen are
// skipped and counted.
func ImportCSV(r io.Reader) (lib *Library, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read card export: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, ErrEmptyExport
	}

	lib = &Library{}
	seen := make(map[string]bool)
	for _, record := range records[1:] {
		if len(record) < minColumns {
			skipped++
			continue
		}
		spec, ok := cardFromRecord(record)
		if !ok || seen[spec.Name] {
			skipped++
			continue
		}
		seen[spec.Name] = true
		lib.Cards = append(lib.Cards, spec)
	}
	return lib, skipped, nil
}

func cardFromRecord(record []string) (CardSpec, bool) {
	spec := CardSpec{Name: strings.TrimSpace(record[colName])}
	if spec.Name == "" {
		return spec, false
	}

	types := strings.ToLower(record[colTypes])
	switch {
	case strings.Contains(types, "creature"):
		spec.Type = cards.TypeCreature
	case strings.Contains(types, "instant"), strings.Contains(types, "sorcery"):
		spec.Type = cards.TypeInstant
	case strings.Contains(types, "enchantment"):
		spec.Type = cards.TypeEnchantment
	case strings.Contains(types, "land"):
		spec.Type = cards.TypeLand
	default:
		return spec, false
	}

	if cost := strings.TrimSpace(record[colManaCosts]); cost != "" {
		if _, err := mana.ParseCost(cost); err == nil {
			spec.Cost = cost
		}
	}
	if spec.Type == cards.TypeCreature {
		spec.Power, _ = strconv.Atoi(strings.TrimSpace(record[colPower]))
		spec.Toughness, _ = strconv.Atoi(strings.TrimSpace(record[colToughness]))
	}
	if subtypes := strings.FieldsFunc(record[colSubtypes], func(r rune) bool {
		return r == ',' || r == ' '
	}); len(subtypes) > 0 {
		spec.Subtypes = subtypes
	}
	spec.Keywords = keywordsFromRules(record[colRules])
	return spec, true
}

// keywordsFromRules picks keyword lines such as "Flying, vigilance" out of
// rules text.
func keywordsFromRules(rules string) []cards.Keyword {
	var out cards.Keywords
	lines := strings.FieldsFunc(rules, func(r rune) bool {
		return r == '\n' || r == '|' || r == ';'
	})
	for _, line := range lines {
		for _, part := range strings.Split(line, ",") {
			part = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ".")))
			if k, ok := keywordText[part]; ok {
				out = out.With(k)
			}
		}
	}
	return out
}
