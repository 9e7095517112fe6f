package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/m3rciful/gameclub/club/domain"
)

func TestNonAdminActionsAreDenied(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})

	h.command(memberID, "addgame", "")
	h.text(memberID, "Half a game")
	before := h.sessions.Get(memberID)

	updates := []Update{
		{Kind: KindCommand, Command: "admin_games"},
		{Kind: KindCommand, Command: "broadcast"},
		{Kind: KindCommand, Command: "help"},
		{Kind: KindCallback, Payload: fmt.Sprintf("admin_edit_game_%d", g.ID)},
		{Kind: KindCallback, Payload: fmt.Sprintf("admin_edit_name_%d", g.ID)},
		{Kind: KindCallback, Payload: fmt.Sprintf("admin_delete_game_%d", g.ID)},
		{Kind: KindCallback, Payload: "admin_cancel_edit"},
	}
	for _, u := range updates {
		u.UserID, u.ChatID = memberID, memberID
		res, rec := h.dispatch(u)
		expectOutcome(t, res, OutcomeDenied)
		if rec.last(t).Text != msgDenied {
			t.Fatalf("%s reply = %q", res.Handler, rec.last(t).Text)
		}
	}

	if h.catalog.mutations != 0 {
		t.Fatalf("mutations = %d, want 0", h.catalog.mutations)
	}
	after := h.sessions.Get(memberID)
	if after.State != before.State || len(after.Fields) != len(before.Fields) {
		t.Fatalf("session changed: %+v -> %+v", before, after)
	}
	if _, err := h.catalog.GetGame(context.Background(), g.ID); err != nil {
		t.Fatalf("game gone: %v", err)
	}
}

func TestAdminGamesListsEditButtons(t *testing.T) {
	h := newHarness(t, Club{})
	a := h.catalog.addGame(domain.Game{Name: "Azul"})
	h.catalog.addGame(domain.Game{Name: "Catan"})

	_, rec := h.command(adminID, "admin_games", "")
	kb := rec.last(t).Keyboard
	if kb == nil || len(kb.Inline) != 2 {
		t.Fatalf("keyboard = %+v", kb)
	}
	if kb.Inline[0][0].Text != "Azul" || kb.Inline[0][0].Data != fmt.Sprintf("admin_edit_game_%d", a.ID) {
		t.Fatalf("first button = %+v", kb.Inline[0][0])
	}
}

func TestAdminGameDetailOffersActions(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan", Photo: domain.Optional("file-1")})

	res, rec := h.callback(adminID, fmt.Sprintf("admin_edit_game_%d", g.ID))
	if res.Handler != "callback.admin_edit_game" {
		t.Fatalf("handler = %q", res.Handler)
	}
	card := rec.last(t)
	if card.Photo != "file-1" || card.Keyboard == nil {
		t.Fatalf("card = %+v", card)
	}
	var payloads []string
	for _, row := range card.Keyboard.Inline {
		for _, b := range row {
			payloads = append(payloads, b.Data)
		}
	}
	joined := strings.Join(payloads, " ")
	for _, want := range []string{
		fmt.Sprintf("admin_edit_desc_%d", g.ID),
		fmt.Sprintf("admin_edit_photo_%d", g.ID),
		fmt.Sprintf("admin_delete_game_%d", g.ID),
		PayloadCancelEdit,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("payloads %v lack %q", payloads, want)
		}
	}
}

func TestAdminEditFieldUpdatesOnlyThatField(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{
		Name:        "Catan",
		Description: domain.Optional("Trade"),
		Genre:       domain.Optional("Strategy"),
	})

	h.callback(adminID, fmt.Sprintf("admin_edit_desc_%d", g.ID))
	if got := h.stateOf(adminID); got != StageAdminNewValue {
		t.Fatalf("state = %q", got)
	}
	res, rec := h.text(adminID, "Trade, build, settle")
	expectOutcome(t, res, OutcomeOK)
	if !strings.Contains(rec.last(t).Text, "Catan") {
		t.Fatalf("reply = %q", rec.last(t).Text)
	}

	got, _ := h.catalog.GetGame(context.Background(), g.ID)
	if *got.Description != "Trade, build, settle" || got.Name != "Catan" || *got.Genre != "Strategy" {
		t.Fatalf("game = %+v", got)
	}
	if !h.sessions.Get(adminID).Idle() {
		t.Fatal("session should be idle")
	}
}

func TestAdminEditRejectsEmptyName(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})
	h.callback(adminID, fmt.Sprintf("admin_edit_name_%d", g.ID))

	res, _ := h.text(adminID, "   ")
	expectOutcome(t, res, OutcomeInvalid)
	if got := h.stateOf(adminID); got != StageAdminNewValue {
		t.Fatalf("state = %q", got)
	}
	if h.catalog.mutations != 0 {
		t.Fatal("empty name must not reach the store")
	}
}

func TestAdminEditPhotoTakesPhotoOrReference(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan", Photo: domain.Optional("old")})

	h.callback(adminID, fmt.Sprintf("admin_edit_photo_%d", g.ID))
	res, _ := h.photo(adminID, "new-photo")
	expectOutcome(t, res, OutcomeOK)
	got, _ := h.catalog.GetGame(context.Background(), g.ID)
	if *got.Photo != "new-photo" {
		t.Fatalf("photo = %q", *got.Photo)
	}

	h.callback(adminID, fmt.Sprintf("admin_edit_photo_%d", g.ID))
	res, _ = h.text(adminID, " https://example.org/catan.jpg ")
	expectOutcome(t, res, OutcomeOK)
	got, _ = h.catalog.GetGame(context.Background(), g.ID)
	if *got.Photo != "https://example.org/catan.jpg" {
		t.Fatalf("photo = %q", *got.Photo)
	}
	if !h.sessions.Get(adminID).Idle() {
		t.Fatal("session should be cleared after the edit")
	}
}

func TestAdminEditTextFieldRejectsPhoto(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})
	h.callback(adminID, fmt.Sprintf("admin_edit_author_%d", g.ID))

	res, _ := h.photo(adminID, "file-9")
	expectOutcome(t, res, OutcomeInvalid)
	if got := h.stateOf(adminID); got != StageAdminNewValue {
		t.Fatalf("state = %q", got)
	}
	if h.catalog.mutations != 0 {
		t.Fatal("photo must not reach the store for a text field")
	}
}

func TestAdminEditMissingGameClearsSession(t *testing.T) {
	h := newHarness(t, Club{})
	h.command(adminID, "add", "")

	res, rec := h.callback(adminID, "admin_edit_name_999")
	expectOutcome(t, res, OutcomeNotFound)
	if rec.last(t).Text != msgNotFound {
		t.Fatalf("reply = %q", rec.last(t).Text)
	}
	if !h.sessions.Get(adminID).Idle() {
		t.Fatal("session should be cleared")
	}
}

func TestAdminEditUnknownFieldIsRejected(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})
	res, _ := h.callback(adminID, fmt.Sprintf("admin_edit_price_%d", g.ID))
	expectOutcome(t, res, OutcomeInvalid)
	if !h.sessions.Get(adminID).Idle() {
		t.Fatal("unknown field must not start a dialogue")
	}
}

func TestAdminDeleteGame(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})
	payload := fmt.Sprintf("admin_delete_game_%d", g.ID)

	res, rec := h.callback(adminID, payload)
	expectOutcome(t, res, OutcomeOK)
	if !strings.Contains(rec.last(t).Text, "Catan") {
		t.Fatalf("reply = %q", rec.last(t).Text)
	}
	if _, err := h.catalog.GetGame(context.Background(), g.ID); err == nil {
		t.Fatal("game still present")
	}

	res, _ = h.callback(adminID, payload)
	expectOutcome(t, res, OutcomeNotFound)
	if h.catalog.mutations != 1 {
		t.Fatalf("mutations = %d, want 1", h.catalog.mutations)
	}
}

func TestAdminCancelEditResetsSession(t *testing.T) {
	h := newHarness(t, Club{})
	g := h.catalog.addGame(domain.Game{Name: "Catan"})
	h.callback(adminID, fmt.Sprintf("admin_edit_genre_%d", g.ID))

	res, _ := h.callback(adminID, PayloadCancelEdit)
	expectOutcome(t, res, OutcomeOK)
	if !h.sessions.Get(adminID).Idle() {
		t.Fatal("session should be idle")
	}
	if h.catalog.mutations != 0 {
		t.Fatal("cancel must not mutate")
	}
}

func TestAdminHelpListsCommands(t *testing.T) {
	h := newHarness(t, Club{})
	_, rec := h.command(adminID, "help", "")
	help := rec.last(t)
	if !help.Markdown || !strings.Contains(help.Text, `/admin\_games`) || !strings.Contains(help.Text, "/addgame") {
		t.Fatalf("help = %q", help.Text)
	}
}
