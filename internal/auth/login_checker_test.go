package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_OwnerOf(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	loginChecker := NewLoginChecker(rdb)
	require.NotNil(t, loginChecker)

	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid token").SetErr(redis.Nil)
	ownerID, err := loginChecker.OwnerOf(ctx, "invalid token")
	require.NoError(t, err)
	assert.Empty(t, ownerID)

	mock.ExpectGet(sessionKeyPrefix + "test-token").SetVal(testOwnerID)
	ownerID, err = loginChecker.OwnerOf(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, testOwnerID, ownerID)

	mock.ExpectGet(sessionKeyPrefix + "test-token").SetErr(errors.New("conn refused"))
	_, err = loginChecker.OwnerOf(ctx, "test-token")
	assert.EqualError(t, err, "conn refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerContext(t *testing.T) {
	assert.Empty(t, OwnerFromContext(context.Background()))
	ctx := WithOwner(context.Background(), testOwnerID)
	assert.Equal(t, testOwnerID, OwnerFromContext(ctx))
}

func TestIdentity_SignedIn(t *testing.T) {
	assert.False(t, Identity{}.SignedIn())
	assert.False(t, Identity{OwnerID: " ", Token: "t"}.SignedIn())
	assert.False(t, Identity{OwnerID: testOwnerID}.SignedIn())
	assert.True(t, Identity{OwnerID: testOwnerID, Token: "t"}.SignedIn())
}
