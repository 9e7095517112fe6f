package commands

// Command describes a slash command for routing and the Telegram command menu.
type Command struct {
	Description string
	// AdminOnly hides the command from the public menu. Authorization itself
	// is enforced by the handler.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
