package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

func TestDraftKey(t *testing.T) {
	assert.Equal(t, "draft:u1:d1", DraftKey("u1", "d1"))
}

func TestDraftRepositoryWithoutRedis(t *testing.T) {
	repo := NewDraftRepository(nil)
	ctx := context.Background()

	var dest map[string]interface{}
	err := repo.Load(ctx, "u1", "d1", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrDraftNotFound))

	assert.Error(t, repo.Save(ctx, "u1", "d1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "u1", "d1"))

	ids, err := repo.ListIDs(ctx, "u1")
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
