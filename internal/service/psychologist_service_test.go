package service

import (
	"context"
	"net/http"
	"testing"

	"ruangpulih/internal/api"
	"ruangpulih/internal/config"
	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPsychologistService(t *testing.T) {
	f := newFixture(t)
	c, err := api.NewClient(config.APIConfig{BaseURL: f.backend.URL()}, nil)
	require.NoError(t, err)
	svc := NewPsychologistService(store.New[models.Psychologist](store.Psychologists, c, nil, nil))
	ctx := context.Background()

	res := svc.Ensure(ctx)
	require.True(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "dr.ana", res.Items[0].Username)

	res = svc.Ensure(ctx)
	require.True(t, res.Success)
	assert.Equal(t, 1, f.backend.Requests("GET /psychologists/available"))

	detail := svc.Detail(ctx, f.psychologist.ID)
	require.True(t, detail.Success)
	assert.Equal(t, 0, *detail.Item.TotalReviews)
	assert.Nil(t, detail.Item.AverageRating)

	f.backend.FailNext("GET /psychologists/{id}", http.StatusNotFound, "")
	detail = svc.Detail(ctx, "nobody")
	assert.Equal(t, "Psychologist not found.", detail.Error)
	assert.Nil(t, svc.Store().Selected())

	assert.True(t, IsValidation(svc.Detail(ctx, "").Err))
}
