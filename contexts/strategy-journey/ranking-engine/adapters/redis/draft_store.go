package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/redis/go-redis/v9"
)

const defaultDraftTTL = 24 * time.Hour

// saveDraftScript swaps the draft only when the stored version matches.
// KEYS[1] = draft key
// ARGV[1] = expected version (0 when absent)
// ARGV[2] = new version
// ARGV[3] = encoded draft
// ARGV[4] = ttl in milliseconds
var saveDraftScript = redis.NewScript(`
local current = tonumber(redis.call("HGET", KEYS[1], "version") or "0")
if current ~= tonumber(ARGV[1]) then
    return 0
end
redis.call("HSET", KEYS[1], "version", ARGV[2], "payload", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// DraftStore keeps ranking drafts in Redis hashes keyed by (pillar, session).
type DraftStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewDraftStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *DraftStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftStore{client: client, ttl: ttl, logger: logger}
}

func (s *DraftStore) LoadDraft(ctx context.Context, sessionID string, pillarID string) (ports.Draft, bool, error) {
	key := draftKey(sessionID, pillarID)
	payload, err := s.client.HGet(ctx, key, "payload").Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.Draft{}, false, nil
	}
	if err != nil {
		return ports.Draft{}, false, s.logError("ranking_draft_load_failed", err, "key", key)
	}
	var draft ports.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		// A corrupt draft is dropped; the ranking is rebuilt from persistence.
		s.logger.Warn("ranking draft undecodable, discarding",
			"event", "ranking_draft_decode_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "adapter",
			"key", key,
			"error", err.Error(),
		)
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			return ports.Draft{}, false, s.logError("ranking_draft_delete_failed", delErr, "key", key)
		}
		return ports.Draft{}, false, nil
	}
	return draft, true, nil
}

func (s *DraftStore) SaveDraft(
	ctx context.Context,
	sessionID string,
	pillarID string,
	draft ports.Draft,
	expectedVersion int64,
) error {
	key := draftKey(sessionID, pillarID)
	payload, err := json.Marshal(draft)
	if err != nil {
		return s.logError("ranking_draft_encode_failed", err, "key", key)
	}
	swapped, err := saveDraftScript.Run(ctx, s.client, []string{key},
		expectedVersion,
		draft.Version,
		string(payload),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return s.logError("ranking_draft_save_failed", err, "key", key)
	}
	if swapped != 1 {
		return domainerrors.ErrDraftConflict
	}
	return nil
}

func (s *DraftStore) DeleteDraft(ctx context.Context, sessionID string, pillarID string) error {
	key := draftKey(sessionID, pillarID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return s.logError("ranking_draft_delete_failed", err, "key", key)
	}
	return nil
}

func (s *DraftStore) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "strategy-journey/ranking-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("ranking draft store operation failed", fields...)
	return err
}

func draftKey(sessionID string, pillarID string) string {
	return fmt.Sprintf("ranking:draft:%s:%s", strings.TrimSpace(pillarID), strings.TrimSpace(sessionID))
}

var _ ports.DraftStore = (*DraftStore)(nil)
