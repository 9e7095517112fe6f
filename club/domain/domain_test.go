package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create event: %w", Invalid("name", "is required"))
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation match")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestEventValidate(t *testing.T) {
	start := time.Date(2025, 12, 25, 18, 0, 0, 0, time.UTC)
	ok := Event{Name: "Catan night", StartsAt: start, DurationMinutes: 120}
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := ok.EndsAt(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("ends at = %v", got)
	}
	bad := []Event{
		{StartsAt: start, DurationMinutes: 10},
		{Name: "x", DurationMinutes: 10},
		{Name: "x", StartsAt: start},
	}
	for i, e := range bad {
		if err := e.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestParseEditableField(t *testing.T) {
	cases := map[string]EditableField{
		"name": FieldName, "desc": FieldDescription, "description": FieldDescription,
		"genre": FieldGenre, "photo": FieldPhoto, "author": FieldAuthor,
	}
	for in, want := range cases {
		got, ok := ParseEditableField(in)
		if !ok || got != want {
			t.Fatalf("ParseEditableField(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseEditableField("price"); ok {
		t.Fatal("unexpected field accepted")
	}
	if FieldDescription.Token() != "desc" || FieldGenre.Token() != "genre" {
		t.Fatal("unexpected payload tokens")
	}
}

func TestPatchApplyTouchesOnlyOneField(t *testing.T) {
	g := Game{ID: 1, Name: "Catan", Genre: Optional("Strategy"), Author: Optional("Ann")}
	p, err := FieldGenre.Patch("Family")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	got := p.Apply(g)
	if *got.Genre != "Family" || got.Name != "Catan" || *got.Author != "Ann" {
		t.Fatalf("unexpected game: %+v", got)
	}
	if _, err := FieldName.Patch("  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected empty name rejection, got %v", err)
	}
	if !(GamePatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
}

func TestPatchBlankOptionalClears(t *testing.T) {
	g := Game{ID: 1, Name: "Catan", Genre: Optional("Strategy"), Author: Optional("Ann")}
	p, err := FieldAuthor.Patch("  ")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if p.Empty() || p.Author != nil {
		t.Fatalf("patch = %+v", p)
	}
	got := p.Apply(g)
	if got.Author != nil || *got.Genre != "Strategy" {
		t.Fatalf("unexpected game: %+v", got)
	}
	if _, err := FieldPhoto.Patch(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank photo must be rejected, got %v", err)
	}
}
