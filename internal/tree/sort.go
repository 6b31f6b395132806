package tree

import (
	"strings"

	"github.com/maruel/natural"
)

// Order selects how sibling names are compared.
type Order int

const (
	// Natural compares embedded digit runs by numeric value, so file2
	// sorts before file10.
	Natural Order = iota
	// Lexical compares names case-insensitively character by character,
	// so file10 sorts before file2.
	Lexical
)

// ParseOrder maps a config value to an Order. Unknown values yield Natural.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), "lexical") {
		return Lexical
	}
	return Natural
}

func (o Order) String() string {
	if o == Lexical {
		return "lexical"
	}
	return "natural"
}

// Compare orders two names. Ties under case folding fall back to byte
// order so the result is a total order.
func (o Order) Compare(a, b string) int {
	var c int
	if o == Lexical {
		c = strings.Compare(strings.ToLower(a), strings.ToLower(b))
	} else {
		c = compareNatural(a, b)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareNatural folds case and leaves digit runs to natural.Less, which
// compares them by value and puts digits before other characters.
func compareNatural(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case natural.Less(la, lb):
		return -1
	case natural.Less(lb, la):
		return 1
	}
	return 0
}
