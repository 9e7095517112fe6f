package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/gameclub/core/logger"
)

func (r *Router) registerBroadcast() {
	r.addCommand(CommandInfo{Name: "broadcast", Description: "Message every user", AdminOnly: true}, r.startBroadcast)
	r.addStage(StageBroadcastPending, true, textOrPhoto, r.broadcastMessage)
}

func (r *Router) startBroadcast(ctx context.Context, req *request) error {
	if r.broadcaster == nil {
		return fmt.Errorf("broadcast: no broadcaster configured")
	}
	r.sessions.Reset(req.UserID, StageBroadcastPending)
	return r.say(ctx, req, "📣 Send the message to broadcast, text or photo. /cancel aborts.", nil)
}

func (r *Router) broadcastMessage(ctx context.Context, req *request) error {
	r.sessions.Clear(req.UserID)
	msg := Reply{Text: req.Text}
	if req.Kind == KindPhoto {
		msg.Photo = req.PhotoRef
	}
	delivered, total := r.deliver(ctx, "admin.broadcast", msg)
	return r.say(ctx, req, fmt.Sprintf("📣 Delivered to %d of %d users.", delivered, total), nil)
}

// deliver sends msg to every registered user. Per-recipient failures are
// logged and counted, never returned.
func (r *Router) deliver(ctx context.Context, kind string, msg Reply) (delivered, total int) {
	if r.broadcaster == nil {
		return 0, 0
	}
	id := uuid.NewString()
	ids, err := r.catalog.ListUserIDs(ctx)
	if err != nil {
		logger.Error(ctx, logger.CompBroadcast, "broadcast.recipients_failed",
			slog.String("broadcast_id", id),
			slog.String("err", err.Error()),
		)
		return 0, 0
	}
	for _, chatID := range ids {
		if err := r.broadcaster.SendTo(ctx, chatID, msg); err != nil {
			logger.Warn(ctx, logger.CompBroadcast, "broadcast.send_failed",
				slog.String("broadcast_id", id),
				slog.Int64("chat_id", chatID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		delivered++
	}
	logger.Info(ctx, logger.CompBroadcast, "broadcast.done",
		slog.String("broadcast_id", id),
		slog.String("kind", kind),
		slog.Int("recipients", len(ids)),
		slog.Int("delivered", delivered),
	)
	return delivered, len(ids)
}
