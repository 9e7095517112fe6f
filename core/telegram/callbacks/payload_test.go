package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestSuffixInt64(t *testing.T) {
	id, err := SuffixInt64("admin_delete_game_42", "admin_delete_game_")
	if err != nil || id != 42 {
		t.Fatalf("id = %d, err = %v", id, err)
	}
	for _, bad := range []string{"admin_delete_game_", "admin_delete_game_x", "admin_delete_game_-1", "genre_42"} {
		if _, err := SuffixInt64(bad, "admin_delete_game_"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSplitLast(t *testing.T) {
	field, id, err := SplitLast("admin_edit_desc_7", "admin_edit_")
	if err != nil || field != "desc" || id != 7 {
		t.Fatalf("field = %q, id = %d, err = %v", field, id, err)
	}
	if _, _, err := SplitLast("admin_edit_name", "admin_edit_"); err == nil {
		t.Fatal("expected error without id")
	}
}

func TestSuffixKeepsUnderscores(t *testing.T) {
	g, ok := Suffix("genre_Для двоих", "genre_")
	if !ok || g != "Для двоих" {
		t.Fatalf("genre = %q", g)
	}
	if Build("genre_", "Пати") != "genre_Пати" {
		t.Fatal("unexpected build result")
	}
}

func TestParseCallbackData(t *testing.T) {
	key, payload := ParseCallbackData(&tele.Callback{Data: "\fedit|42"})
	if key != "edit" || payload != "42" {
		t.Fatalf("key = %q payload = %q", key, payload)
	}
	key, payload = ParseCallbackData(&tele.Callback{Data: "genre_Пати"})
	if key != "genre_Пати" || payload != "" {
		t.Fatalf("raw key = %q payload = %q", key, payload)
	}
}
