package bot

import (
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
	"github.com/m3rciful/gameclub/core/telegram/state"
)

// Reply keyboard labels. Buttons are matched by exact text.
const (
	BtnAnnouncements = "Announcements"
	BtnCatalog       = "Game Catalog"
	BtnAbout         = "About"
	BtnContacts      = "Contacts"

	LabelConfirm = "Confirm"
	LabelCancel  = "Cancel"
	LabelEdit    = "Edit"
)

// Selection payload prefixes carried by inline buttons.
const (
	PayloadGenre      = "genre_"
	PayloadEditGame   = "admin_edit_game_"
	PayloadEditField  = "admin_edit_"
	PayloadDeleteGame = "admin_delete_game_"
	PayloadCancelEdit = "admin_cancel_edit"
)

// Dialogue stages.
const (
	StageEventName        state.State = "event.name"
	StageEventDescription state.State = "event.description"
	StageEventStart       state.State = "event.start"
	StageEventDuration    state.State = "event.duration"
	StageEventLocation    state.State = "event.location"
	StageEventOrganizer   state.State = "event.organizer"
	StageEventAuthor      state.State = "event.author"
	StageEventConfirm     state.State = "event.confirm"

	StageGameName        state.State = "game.name"
	StageGameDescription state.State = "game.description"
	StageGameGenre       state.State = "game.genre"
	StageGamePhoto       state.State = "game.photo"
	StageGameAuthor      state.State = "game.author"

	StageAdminNewValue    state.State = "admin.new_value"
	StageSearchQuery      state.State = "search.query"
	StageBroadcastPending state.State = "broadcast.pending"
)

// Session field keys.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldStartsAt    = "starts_at"
	fieldDuration    = "duration_minutes"
	fieldLocation    = "location"
	fieldOrganizer   = "organizer"
	fieldAuthor      = "author"
	fieldGenre       = "genre"
	fieldPhoto       = "photo"
	fieldGameID      = "game_id"
	fieldEditField   = "field"
)

const (
	msgDenied       = "⛔ You do not have permission for this action."
	msgNotFound     = "Game not found. It may have been deleted."
	msgFailure      = "Something went wrong, please try again later."
	msgCancelled    = "Cancelled."
	msgNothingToDo  = "Nothing to cancel."
	msgEmptyCatalog = "The catalog is empty for now 😔"
	msgNoEvents     = "No upcoming events yet 😔"
	msgNothingFound = "❌ Nothing found."
)

func mainKeyboard() *keyboard.Layout {
	return keyboard.Reply(
		[]string{BtnAnnouncements, BtnCatalog},
		[]string{BtnAbout, BtnContacts},
	)
}

func confirmKeyboard() *keyboard.Layout {
	return keyboard.Reply(
		[]string{LabelConfirm, LabelCancel},
		[]string{LabelEdit},
	)
}
