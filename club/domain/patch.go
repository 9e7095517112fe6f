package domain

import "strings"

// EditableField names a game attribute an administrator may change.
type EditableField string

const (
	FieldName        EditableField = "name"
	FieldDescription EditableField = "description"
	FieldGenre       EditableField = "genre"
	FieldPhoto       EditableField = "photo"
	FieldAuthor      EditableField = "author"
)

// EditableFields lists fields in the order they are offered for editing.
var EditableFields = []EditableField{FieldName, FieldDescription, FieldGenre, FieldPhoto, FieldAuthor}

// ParseEditableField accepts field names and the short "desc" alias used in
// selection payloads.
func ParseEditableField(s string) (EditableField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return FieldName, true
	case "desc", "description":
		return FieldDescription, true
	case "genre":
		return FieldGenre, true
	case "photo":
		return FieldPhoto, true
	case "author":
		return FieldAuthor, true
	}
	return "", false
}

// Token is the short form used in selection payloads.
func (f EditableField) Token() string {
	if f == FieldDescription {
		return "desc"
	}
	return string(f)
}

// Optional reports whether the field may be cleared.
func (f EditableField) Optional() bool {
	switch f {
	case FieldDescription, FieldGenre, FieldAuthor:
		return true
	}
	return false
}

// Patch validates value and builds a single-field GamePatch. A blank value
// for an optional field clears it.
func (f EditableField) Patch(value string) (GamePatch, error) {
	value = strings.TrimSpace(value)
	if value == "" && f.Optional() {
		return GamePatch{Clear: []EditableField{f}}, nil
	}
	switch f {
	case FieldName:
		if value == "" {
			return GamePatch{}, Invalid("name", "The name must not be empty.")
		}
		return GamePatch{Name: &value}, nil
	case FieldDescription:
		return GamePatch{Description: &value}, nil
	case FieldGenre:
		return GamePatch{Genre: &value}, nil
	case FieldPhoto:
		if value == "" {
			return GamePatch{}, Invalid("photo", "Send a photo for this field.")
		}
		return GamePatch{Photo: &value}, nil
	case FieldAuthor:
		return GamePatch{Author: &value}, nil
	}
	return GamePatch{}, Invalid("field", "Unknown field "+string(f)+".")
}

// GamePatch carries the fields to change; nil means untouched. Fields in
// Clear are reset to NULL and win over a value set for the same field.
type GamePatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Genre       *string         `json:"genre,omitempty"`
	Photo       *string         `json:"photo,omitempty"`
	Author      *string         `json:"author,omitempty"`
	Clear       []EditableField `json:"clear,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p GamePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Genre == nil && p.Photo == nil && p.Author == nil &&
		len(p.Clear) == 0
}

// Apply returns g with the patch applied.
func (p GamePatch) Apply(g Game) Game {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Description != nil {
		g.Description = p.Description
	}
	if p.Genre != nil {
		g.Genre = p.Genre
	}
	if p.Photo != nil {
		g.Photo = p.Photo
	}
	if p.Author != nil {
		g.Author = p.Author
	}
	for _, f := range p.Clear {
		switch f {
		case FieldDescription:
			g.Description = nil
		case FieldGenre:
			g.Genre = nil
		case FieldPhoto:
			g.Photo = nil
		case FieldAuthor:
			g.Author = nil
		}
	}
	return g
}
