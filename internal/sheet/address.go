package sheet

import (
	"fmt"
	"strings"
)

// Address identifies a cell by zero-based row and column.
//
// The canonical string form is the usual spreadsheet notation: column
// letters in bijective base-26 (A=0, Z=25, AA=26) followed by the
// 1-based row number. (0,0) is "A1", (4,1) is "B5".
type Address struct {
	Row    int
	Column int
}

// String returns the canonical uppercase form of the address.
func (a Address) String() string {
	return EncodeAddress(a.Row, a.Column)
}

// EncodeAddress renders a zero-based (row, column) pair as a canonical
// address string.
func EncodeAddress(row, col int) string {
	var letters []byte
	c := col
	for {
		letters = append([]byte{byte('A' + c%26)}, letters...)
		c = c/26 - 1
		if c < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", letters, row+1)
}

// ParseAddress parses an address string into a zero-based (row, column)
// pair. Input is case-insensitive. The string must be one or more letters
// followed by one or more digits, with a row number of at least 1.
func ParseAddress(s string) (Address, error) {
	up := strings.ToUpper(strings.TrimSpace(s))

	letterEnd := 0
	for letterEnd < len(up) && up[letterEnd] >= 'A' && up[letterEnd] <= 'Z' {
		letterEnd++
	}
	if letterEnd == 0 || letterEnd == len(up) {
		return Address{}, fmt.Errorf("invalid cell address: %q", s)
	}

	col := 0
	for i := 0; i < letterEnd; i++ {
		col = col*26 + int(up[i]-'A') + 1
	}
	col--

	row := 0
	for i := letterEnd; i < len(up); i++ {
		ch := up[i]
		if ch < '0' || ch > '9' {
			return Address{}, fmt.Errorf("invalid cell address: %q", s)
		}
		row = row*10 + int(ch-'0')
	}
	if row < 1 {
		return Address{}, fmt.Errorf("invalid cell address: row must be at least 1 in %q", s)
	}

	return Address{Row: row - 1, Column: col}, nil
}

// IsValidAddress reports whether s parses as a cell address with
// non-negative row and column.
func IsValidAddress(s string) bool {
	a, err := ParseAddress(s)
	return err == nil && a.Row >= 0 && a.Column >= 0
}

// CanonicalKey converts any parseable address string to its canonical
// uppercase form, suitable for use as a cell map key.
func CanonicalKey(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
