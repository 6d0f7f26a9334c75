package chat

import (
	"context"
	"time"

	"conecta/logger"
	safe "conecta/tools/safe"
)

// Mirror is an optional external presence record (Redis-backed in
// production). It exists for operators and future multi-node
// deployments; the in-process event flow never reads it, so every
// call is best-effort.
type Mirror interface {
	Online(ctx context.Context, userID, conversationID string) error
	Offline(ctx context.Context, userID string) error
}

const mirrorTimeout = 2 * time.Second

// Presence derives online/offline notifications from registry
// transitions. Presence is not persisted in-process and is lost on
// gateway restart.
//
// With multiple connections per user, presence is aggregated: online
// is announced when the user's first connection enters the room,
// offline when the last one leaves.
type Presence struct {
	mirror Mirror // nil disables mirroring
}

func NewPresence(mirror Mirror) *Presence {
	return &Presence{mirror: mirror}
}

// OnTransition announces the status changes implied by a membership
// transition. Offline for the old room is announced to the members
// remaining after removal; online for the new room is announced to
// the full post-join membership, the joiner included.
func (p *Presence) OnTransition(t Transition) {
	if t.From != "" && t.UserLeftFrom {
		p.announce(t.FromMembers, StatusUpdate{
			UserID:         t.Client.UserID,
			ConversationID: t.From,
			Status:         StatusOffline,
		})
	}
	if t.To != "" && t.UserFirstInTo {
		p.announce(t.ToMembers, StatusUpdate{
			UserID:         t.Client.UserID,
			ConversationID: t.To,
			Status:         StatusOnline,
		})
	}
	p.mirrorTransition(t)
}

func (p *Presence) announce(members []*Client, update StatusUpdate) {
	if len(members) == 0 {
		return
	}
	data, err := EncodeFrame(EventUserStatusUpdate, update)
	if err != nil {
		logger.Errorf("[presence] encode status update: %v", err)
		return
	}
	for _, m := range members {
		m.TrySend(data)
	}
}

func (p *Presence) mirrorTransition(t Transition) {
	if p.mirror == nil {
		return
	}
	userID := t.Client.UserID
	to := t.To
	from := t.From
	userLeft := t.UserLeftFrom
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		var err error
		switch {
		case to != "":
			err = p.mirror.Online(ctx, userID, to)
		case from != "" && userLeft:
			err = p.mirror.Offline(ctx, userID)
		}
		if err != nil {
			logger.Warnf("[presence] mirror update failed user=%s: %v", userID, err)
		}
	})
}
