package format

import "strings"

// Card assembles a legacy Markdown message line by line. Every value passed
// in is escaped; optional values that are nil or blank are skipped. Titles
// and italic lines go through Bold and Italic so no escape lands inside an
// entity.
type Card struct {
	b strings.Builder
}

// Title writes a bold line.
func (c *Card) Title(s string) *Card {
	return c.raw(Bold(s))
}

// Italic writes an italic line when s is set.
func (c *Card) Italic(s *string) *Card {
	if v := Deref(s, ""); strings.TrimSpace(v) != "" {
		c.raw(Italic(v))
	}
	return c
}

// Text writes s as a plain line when set.
func (c *Card) Text(s *string) *Card {
	if v := Deref(s, ""); strings.TrimSpace(v) != "" {
		c.raw(MD(v))
	}
	return c
}

// Field writes "label value" when value is set. The label is not escaped.
func (c *Card) Field(label string, value *string) *Card {
	if v := Deref(value, ""); strings.TrimSpace(v) != "" {
		c.raw(label + " " + MD(v))
	}
	return c
}

// Line writes a preformatted line as is.
func (c *Card) Line(s string) *Card {
	return c.raw(s)
}

// Break inserts an empty line unless the card is empty or already ends with one.
func (c *Card) Break() *Card {
	s := c.b.String()
	if s != "" && !strings.HasSuffix(s, "\n\n") {
		c.b.WriteByte('\n')
	}
	return c
}

// String returns the card without trailing newlines.
func (c *Card) String() string {
	return strings.TrimRight(c.b.String(), "\n")
}

func (c *Card) raw(s string) *Card {
	c.b.WriteString(s)
	c.b.WriteByte('\n')
	return c
}
