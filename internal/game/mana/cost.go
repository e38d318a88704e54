package mana

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownSymbol is returned for a mana symbol ParseCost does not understand.
var ErrUnknownSymbol = errors.New("unknown mana symbol")

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Cost represents a parsed mana cost such as "{2}{R}{R}".
type Cost struct {
	Generic int
	Colored map[Color]int
	X       int
	Hybrid  [][2]string
}

// ParseCost parses a mana cost string. The empty string is a zero cost.
// Supported symbols: generic numbers, W U B R G C, X and two-way hybrids.
func ParseCost(raw string) (Cost, error) {
	cost := Cost{Colored: make(map[Color]int)}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cost, nil
	}

	for _, match := range symbolPattern.FindAllStringSubmatch(raw, -1) {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		if color, ok := parseColor(symbol); ok {
			cost.Colored[color]++
			continue
		}
		switch {
		case symbol == "X":
			cost.X++
		case strings.Contains(symbol, "/"):
			parts := strings.SplitN(symbol, "/", 2)
			cost.Hybrid = append(cost.Hybrid, [2]string{parts[0], parts[1]})
		default:
			n, err := strconv.Atoi(symbol)
			if err != nil {
				return Cost{}, fmt.Errorf("parse %q: %w: {%s}", raw, ErrUnknownSymbol, symbol)
			}
			cost.Generic += n
		}
	}
	return cost, nil
}

// Value returns the mana value of the cost. X counts as zero and a hybrid
// symbol counts as its larger half.
func (c Cost) Value() int {
	total := c.Generic
	for _, n := range c.Colored {
		total += n
	}
	for _, h := range c.Hybrid {
		best := 1
		for _, half := range h {
			if n, err := strconv.Atoi(half); err == nil && n > best {
				best = n
			}
		}
		total += best
	}
	return total
}

// String renders the cost back in brace notation, generic first.
func (c Cost) String() string {
	var b strings.Builder
	for i := 0; i < c.X; i++ {
		b.WriteString("{X}")
	}
	if c.Generic > 0 {
		fmt.Fprintf(&b, "{%d}", c.Generic)
	}
	for _, h := range c.Hybrid {
		fmt.Fprintf(&b, "{%s/%s}", h[0], h[1])
	}
	for _, color := range colorOrder {
		for i := 0; i < c.Colored[color]; i++ {
			fmt.Fprintf(&b, "{%s}", color)
		}
	}
	return b.String()
}
