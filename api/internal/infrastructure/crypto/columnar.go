package crypto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"cifra/api/internal/core/domain"
)

const pad = " "

// MaxColumns bounds the grid width so a single call cannot request an
// arbitrarily large allocation.
const MaxColumns = 1 << 16

// Transposition is the outcome of a columnar transform: the text and the
// grid it was written into or rebuilt from.
type Transposition struct {
	Text string
	Grid domain.Grid
}

// ColumnarEncrypt writes text row by row into a grid of the given width and
// reads it back column by column. Padding left at the foot of a column is
// trimmed and columns are joined by a single space.
func ColumnarEncrypt(text string, columns int) (Transposition, error) {
	if err := validateColumns(columns); err != nil {
		return Transposition{}, err
	}

	chars := []rune(text)
	rows := ceilDiv(len(chars), columns)
	grid := newGrid(rows, columns)
	for i := 0; i < rows*columns; i++ {
		if i < len(chars) {
			grid[i/columns][i%columns] = string(chars[i])
		}
	}

	parts := make([]string, columns)
	for c := 0; c < columns; c++ {
		var col strings.Builder
		for r := 0; r < rows; r++ {
			col.WriteString(grid[r][c])
		}
		parts[c] = strings.TrimRightFunc(col.String(), unicode.IsSpace)
	}

	return Transposition{
		Text: strings.TrimSpace(strings.Join(parts, " ")),
		Grid: grid,
	}, nil
}

// ColumnarDecrypt rebuilds the grid from cipher text produced by
// ColumnarEncrypt with the same column count. Whitespace in the input is
// ignored. The last rows*columns-n columns are one cell short, matching the
// right-hand padding applied on encryption.
func ColumnarDecrypt(cipherText string, columns int) (Transposition, error) {
	if err := validateColumns(columns); err != nil {
		return Transposition{}, err
	}

	dense := []rune(strings.Join(strings.Fields(cipherText), ""))
	n := len(dense)
	rows := ceilDiv(n, columns)
	shortCols := rows*columns - n
	grid := newGrid(rows, columns)

	next := 0
	for c := 0; c < columns; c++ {
		height := rows
		if c >= columns-shortCols {
			height = rows - 1
		}
		for r := 0; r < height; r++ {
			if next < n {
				grid[r][c] = string(dense[next])
				next++
			}
		}
	}

	var b strings.Builder
	b.Grow(rows * columns)
	for _, row := range grid {
		for _, cell := range row {
			b.WriteString(cell)
		}
	}

	return Transposition{
		Text: strings.TrimRightFunc(b.String(), unicode.IsSpace),
		Grid: grid,
	}, nil
}

func validateColumns(columns int) error {
	if columns < 1 {
		return fmt.Errorf("%w: columns must be at least 1, got %d", domain.ErrInvalidColumnCount, columns)
	}
	if columns > MaxColumns {
		return fmt.Errorf("%w: columns must be at most %d, got %d", domain.ErrInvalidColumnCount, MaxColumns, columns)
	}
	return nil
}

// newGrid allocates a rows x columns grid filled with padding.
func newGrid(rows, columns int) domain.Grid {
	grid := make(domain.Grid, rows)
	for r := range grid {
		row := make([]string, columns)
		for c := range row {
			row[c] = pad
		}
		grid[r] = row
	}
	return grid
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// ParseColumns converts a raw key into a column count.
func ParseColumns(key string) (int, error) {
	key = strings.TrimSpace(key)
	columns, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("%w: columns must be an integer, got %q", domain.ErrInvalidColumnCount, key)
	}
	if err := validateColumns(columns); err != nil {
		return 0, err
	}
	return columns, nil
}

// Columnar adapts the transposition cipher to domain.Cipher.
type Columnar struct{}

func NewColumnar() *Columnar { return &Columnar{} }

func (c *Columnar) Kind() domain.Kind { return domain.KindColumnar }

func (c *Columnar) Encrypt(ctx context.Context, text, key string) (domain.Result, error) {
	columns, err := ParseColumns(key)
	if err != nil {
		return domain.Result{}, err
	}
	t, err := ColumnarEncrypt(text, columns)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindColumnar, Operation: domain.OpEncrypt, Text: t.Text, Grid: t.Grid}, nil
}

func (c *Columnar) Decrypt(ctx context.Context, text, key string) (domain.Result, error) {
	columns, err := ParseColumns(key)
	if err != nil {
		return domain.Result{}, err
	}
	t, err := ColumnarDecrypt(text, columns)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindColumnar, Operation: domain.OpDecrypt, Text: t.Text, Grid: t.Grid}, nil
}
