package mana

// Color identifies a kind of mana.
type Color string

const (
	White     Color = "W"
	Blue      Color = "U"
	Black     Color = "B"
	Red       Color = "R"
	Green     Color = "G"
	Colorless Color = "C"
)

var colorOrder = []Color{White, Blue, Black, Red, Green, Colorless}

func parseColor(symbol string) (Color, bool) {
	for _, c := range colorOrder {
		if string(c) == symbol {
			return c, true
		}
	}
	return "", false
}

// Pool holds the mana a player has floating. It empties between phases.
type Pool struct {
	amounts map[Color]int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{amounts: make(map[Color]int)}
}

// Add puts amount mana of the given color in the pool.
func (p *Pool) Add(color Color, amount int) {
	if amount <= 0 {
		return
	}
	if _, ok := parseColor(string(color)); !ok {
		color = Colorless
	}
	p.amounts[color] += amount
}

// Get returns the floating amount of one color.
func (p *Pool) Get(color Color) int {
	return p.amounts[color]
}

// Total returns all floating mana.
func (p *Pool) Total() int {
	total := 0
	for _, n := range p.amounts {
		total += n
	}
	return total
}

// Spend removes amount mana of color if available.
func (p *Pool) Spend(color Color, amount int) bool {
	if amount <= 0 {
		return true
	}
	if p.amounts[color] < amount {
		return false
	}
	p.amounts[color] -= amount
	return true
}

// Empty drains the pool.
func (p *Pool) Empty() {
	for c := range p.amounts {
		delete(p.amounts, c)
	}
}

// CanPay reports whether the pool covers the colored and generic parts of
// cost. Hybrid symbols are paid generically.
func (p *Pool) CanPay(cost Cost) bool {
	remaining := make(map[Color]int, len(p.amounts))
	for c, n := range p.amounts {
		remaining[c] = n
	}
	for color, need := range cost.Colored {
		if remaining[color] < need {
			return false
		}
		remaining[color] -= need
	}
	left := 0
	for _, n := range remaining {
		left += n
	}
	return left >= cost.Generic+len(cost.Hybrid)
}

// Pay removes cost from the pool. Colored symbols are paid first, then
// generic and hybrid symbols from whatever is left, colorless first. Nothing
// is spent when the pool cannot cover the whole cost.
func (p *Pool) Pay(cost Cost) bool {
	if !p.CanPay(cost) {
		return false
	}
	for color, need := range cost.Colored {
		p.amounts[color] -= need
	}
	generic := cost.Generic + len(cost.Hybrid)
	order := append([]Color{Colorless}, colorOrder[:len(colorOrder)-1]...)
	for _, c := range order {
		if generic == 0 {
			break
		}
		take := min(p.amounts[c], generic)
		p.amounts[c] -= take
		generic -= take
	}
	return true
}
