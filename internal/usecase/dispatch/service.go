package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/repository"
)

// Service sends the two lanes of a run: one topic broadcast per occasion
// (or per festival event), then one personal wish per resolvable device.
// Every send is guarded by a ledger lookup and followed by a ledger
// write, so at most one delivery per composite key ever happens even
// across interrupted and re-executed runs.
type Service struct {
	ledger    repository.NotificationLedger
	devices   repository.DeviceRepository
	gateway   Gateway
	community string
	logger    *slog.Logger
}

// NewService creates a dispatcher. community is the display name suffixed
// to occasion broadcast titles.
func NewService(
	ledger repository.NotificationLedger,
	devices repository.DeviceRepository,
	gateway Gateway,
	community string,
	logger *slog.Logger,
) *Service {
	return &Service{
		ledger:    ledger,
		devices:   devices,
		gateway:   gateway,
		community: community,
		logger:    logger,
	}
}

// bestEffort runs a non-critical side write and logs on failure instead
// of propagating it: a lost ledger record or token clear must never turn
// an otherwise delivered notification into a run failure.
func (s *Service) bestEffort(ctx context.Context, op string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		s.logger.WarnContext(ctx, "best-effort write failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

// BroadcastOccasion sends the single daily birthday or anniversary topic
// broadcast. No recipients means no send and no record. The outcome is
// tallied into stats.
func (s *Service) BroadcastOccasion(ctx context.Context, kind, slot, date string, recipients []entity.Recipient, stats *RunStats) {
	if len(recipients) == 0 {
		return
	}

	key := entity.NotificationKey{
		Kind:      kind,
		Topic:     entity.TopicFestivals,
		Slot:      slot,
		EventDate: date,
		EventID:   entity.EventIDSummary,
	}
	msg := occasionBroadcastMessage(kind, slot, date, s.community, recipients)
	s.sendBroadcast(ctx, key, msg, kind, stats)
}

// BroadcastFestival sends one topic broadcast per calendar event, each
// with its own ledger record keyed by the event name.
func (s *Service) BroadcastFestival(ctx context.Context, slot, date string, events []entity.CalendarEvent, stats *RunStats) {
	for _, event := range events {
		key := entity.NotificationKey{
			Kind:      entity.KindFestival,
			Topic:     entity.TopicFestivals,
			Slot:      slot,
			EventDate: date,
			EventID:   event.Event,
		}
		msg := festivalBroadcastMessage(slot, date, event)
		s.sendBroadcast(ctx, key, msg, event.Event, stats)
	}
}

// sendBroadcast performs one guarded topic send and records its outcome.
func (s *Service) sendBroadcast(ctx context.Context, key entity.NotificationKey, msg Message, name string, stats *RunStats) {
	exists, err := s.ledger.Exists(ctx, key)
	if err != nil {
		// An unreadable ledger makes the send unsafe: a delivery we
		// cannot verify against prior runs could be a duplicate.
		stats.Record(LaneBroadcast, Detail{Name: name, Outcome: OutcomeFailed, Error: fmt.Sprintf("ledger lookup: %v", err)})
		return
	}
	if exists {
		stats.Record(LaneBroadcast, Detail{Name: name, Outcome: OutcomeSkippedAlreadySent})
		return
	}

	messageID, sendErr := s.gateway.SendToTopic(ctx, entity.TopicFestivals, msg)
	rec := &entity.NotificationRecord{Key: key}
	if sendErr != nil {
		rec.Status = entity.StatusFailed
		rec.Error = sendErr.Error()
		stats.Record(LaneBroadcast, Detail{Name: name, Outcome: OutcomeFailed, Error: sendErr.Error()})
	} else {
		rec.Status = entity.StatusSent
		rec.MessageID = messageID
		stats.Record(LaneBroadcast, Detail{Name: name, Outcome: OutcomeSent})
	}

	s.bestEffort(ctx, "create broadcast record", func(ctx context.Context) error {
		if err := s.ledger.CreateLeaf(ctx, rec); err != nil && !errors.Is(err, repository.ErrDuplicateRecord) {
			return err
		}
		return nil
	})
}

// SendPersonalWishes delivers one greeting per recipient device. The
// ledger key uses the personal kind suffix and the recipient's mobile as
// event ID, so the same person is wished at most once per slot and day.
func (s *Service) SendPersonalWishes(ctx context.Context, kind, slot, date string, recipients []entity.Recipient, stats *RunStats) {
	mobiles := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Mobile != "" {
			mobiles = append(mobiles, r.Mobile)
		}
	}

	tokens, err := s.devices.TokensByMobile(ctx, mobiles)
	if err != nil {
		// Without the token map no personal send can happen; fail every
		// recipient that would have needed one.
		for _, r := range recipients {
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeFailed, Error: fmt.Sprintf("token lookup: %v", err)})
		}
		return
	}

	personalKind := kind + entity.PersonalKindSuffix

	for _, r := range recipients {
		if r.Mobile == "" {
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Outcome: OutcomeSkippedNoMobile})
			continue
		}
		token, ok := tokens[r.Mobile]
		if !ok || token == "" {
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeSkippedNoToken})
			continue
		}

		key := entity.NotificationKey{
			Kind:      personalKind,
			Topic:     entity.TopicToken,
			Slot:      slot,
			EventDate: date,
			EventID:   r.Mobile,
		}

		exists, err := s.ledger.Exists(ctx, key)
		if err != nil {
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeFailed, Error: fmt.Sprintf("ledger lookup: %v", err)})
			continue
		}
		if exists {
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeSkippedAlreadySent})
			continue
		}

		msg := personalWishMessage(kind, date, r)
		messageID, sendErr := s.gateway.SendToToken(ctx, token, msg)

		rec := &entity.NotificationRecord{Key: key}
		if sendErr != nil {
			rec.Status = entity.StatusFailed
			rec.Error = sendErr.Error()
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeFailed, Error: sendErr.Error()})

			if IsTokenInvalid(sendErr) {
				mobile := r.Mobile
				s.bestEffort(ctx, "clear dead token", func(ctx context.Context) error {
					return s.devices.ClearToken(ctx, mobile)
				})
			}
		} else {
			rec.Status = entity.StatusSent
			rec.MessageID = messageID
			stats.Record(LanePersonal, Detail{Name: r.DisplayName, Mobile: r.Mobile, Outcome: OutcomeSent})
		}

		s.bestEffort(ctx, "create personal record", func(ctx context.Context) error {
			if err := s.ledger.CreateLeaf(ctx, rec); err != nil && !errors.Is(err, repository.ErrDuplicateRecord) {
				return err
			}
			return nil
		})
	}
}
