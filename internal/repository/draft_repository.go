package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

const draftKeyPrefix = "draft:"

// DraftKey is the redis key holding one unfinished submission.
func DraftKey(userID, draftID string) string {
	return draftKeyPrefix + userID + ":" + draftID
}

// DraftRepository keeps in-progress wizard state in Redis with an expiry.
type DraftRepository struct {
	client *redis.Client
}

// NewDraftRepository constructs a draft store.
func NewDraftRepository(client *redis.Client) *DraftRepository {
	return &DraftRepository{client: client}
}

// Save writes the draft and refreshes its TTL.
func (r *DraftRepository) Save(ctx context.Context, userID, draftID string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return appErrors.Clone(appErrors.ErrInternal, "draft storage unavailable")
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draftID, err)
	}
	if err := r.client.Set(ctx, DraftKey(userID, draftID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draftID, err)
	}
	return nil
}

// Load decodes the draft into dest. Missing or expired drafts return ErrDraftNotFound.
func (r *DraftRepository) Load(ctx context.Context, userID, draftID string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrDraftNotFound
	}
	raw, err := r.client.Get(ctx, DraftKey(userID, draftID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrDraftNotFound
		}
		return fmt.Errorf("redis get draft %s: %w", draftID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal draft %s: %w", draftID, err)
	}
	return nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (r *DraftRepository) Delete(ctx context.Context, userID, draftID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, DraftKey(userID, draftID)).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", draftID, err)
	}
	return nil
}

// ListIDs returns the ids of every live draft owned by userID.
func (r *DraftRepository) ListIDs(ctx context.Context, userID string) ([]string, error) {
	if r.client == nil {
		return nil, nil
	}
	prefix := DraftKey(userID, "")
	var ids []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan drafts for %s: %w", userID, err)
	}
	return ids, nil
}
