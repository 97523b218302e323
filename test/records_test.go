//go:build integration_test || all_tests

package test

import (
	"context"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking/remote"
)

func (s *IntegrationTestSuite) signedInClient() *remote.Client {
	identity, err := remote.Login(context.Background(), serverEndpoint, s.httpClient, auth.Credentials{
		Username: testUsername,
		Password: testPassword,
	})
	s.Require().NoError(err)
	return remote.NewClient(serverEndpoint, identity, s.httpClient)
}

func (s *IntegrationTestSuite) TestCatalog() {
	t := s.T()
	ctx := context.Background()
	catalogClient := remote.NewClient(serverEndpoint, auth.Identity{}, s.httpClient).Catalog()

	exercises, err := catalogClient.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(exercises), 5)

	squat, err := catalogClient.Get(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", squat.Name)
	assert.Equal(t, "legs", squat.MuscleGroup)
}

func (s *IntegrationTestSuite) TestRecordSessionLifecycle() {
	t := s.T()
	ctx := context.Background()
	client := s.signedInClient()
	ownerID := client.Identity().OwnerID

	squat, err := client.Catalog().Get(ctx, "squat")
	require.NoError(t, err)

	recorder := tracking.NewRecorder(client, ownerID)
	require.NoError(t, recorder.Start(squat.Ref()))
	require.NoError(t, recorder.AddSet("10", "60"))
	require.NoError(t, recorder.AddSet("8", "62,5"))
	require.NoError(t, recorder.AddSet("6", "65"))
	require.NoError(t, recorder.RemoveLastSet())
	require.NoError(t, recorder.SetDate(time.Date(2024, 1, 6, 23, 30, 0, 0, time.UTC)))

	record, err := recorder.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusCompleted, recorder.Status())

	// a second create of the same identity is refused
	err = client.Create(ctx, record)
	assert.ErrorIs(t, err, tracking.ErrRecordExists)

	var rows int
	require.NoError(t, s.DB.QueryRow(`SELECT count(*) FROM tracking_record WHERE id = $1`, record.ID).Scan(&rows))
	assert.Equal(t, 1, rows)

	records, err := client.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	stored := findByID(records, record.ID)
	require.NotNil(t, stored)
	assert.Equal(t, `[{"reps":10,"weight":60},{"reps":8,"weight":62.5}]`, stored.Sets)
	assert.True(t, stored.PerformedAt.Equal(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, ownerID, stored.OwnerID)

	editor, err := tracking.OpenEditor(client, ownerID, *stored)
	require.NoError(t, err)
	require.NoError(t, editor.AddSet("5", "70"))
	require.NoError(t, editor.SetDate(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
	updated, err := editor.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, record.ID, updated.ID)

	records, err = client.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	stored = findByID(records, record.ID)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.Series().Len())
	assert.Equal(t, "Back Squat", stored.ExerciseName)

	summaries := tracking.Summarize(records)
	require.NotEmpty(t, summaries)

	require.NoError(t, client.Delete(ctx, record.ID))
	// idempotent
	require.NoError(t, client.Delete(ctx, record.ID))

	err = client.Update(ctx, updated)
	assert.ErrorIs(t, err, tracking.ErrRecordNotFound)

	records, err = client.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Nil(t, findByID(records, record.ID))
}

func (s *IntegrationTestSuite) TestRecordsNeedSession() {
	t := s.T()
	ctx := context.Background()

	rec, err := tracking.NewRecord(
		s.testOwnerID,
		tracking.Exercise{ID: "bench", Name: "Bench Press"},
		tracking.NormalizeDate(time.Now()),
		tracking.SetSeries{{Reps: 5, Weight: 80}},
	)
	require.NoError(t, err)

	forged := remote.NewClient(serverEndpoint, auth.Identity{OwnerID: s.testOwnerID, Token: "forged"}, s.httpClient)
	err = forged.Create(ctx, rec)
	assert.ErrorIs(t, err, tracking.ErrNotAuthenticated)
	assert.True(t, tracking.IsRemoteError(err))
}

func findByID(records []tracking.Record, id string) *tracking.Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}
