package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincave/vincave/pkg/models"
)

func seedWine(t *testing.T, ts *testStore) *models.Wine {
	t.Helper()
	v := 2018
	wine := &models.Wine{
		ID:      uuid.New(),
		Name:    "Ch. Test",
		Color:   models.ColorRed,
		Vintage: &v,
		Region:  "Bordeaux",
	}
	require.NoError(t, ts.CreateWine(context.Background(), wine))
	return wine
}

func seedBottle(t *testing.T, ts *testStore, userID, wineID uuid.UUID) *models.Bottle {
	t.Helper()
	bottle := &models.Bottle{
		ID:       uuid.New(),
		UserID:   userID,
		WineID:   wineID,
		Location: "rack A",
	}
	require.NoError(t, ts.CreateBottle(context.Background(), bottle))
	return bottle
}

func TestCreateBottleHandler(t *testing.T) {
	ts := newTestStore()
	wine := seedWine(t, ts)
	userID := uuid.New()
	h := NewCreateBottleHandler(ts)

	body := strings.NewReader(`{"wine_id": "` + wine.ID.String() + `", "location": "rack B", "notes": "gift"}`)
	req := decorate(httptest.NewRequest(http.MethodPost, "/api/v1/bottles", body), userID, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data models.Bottle `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.Data.UserID)
	assert.Equal(t, wine.ID, resp.Data.WineID)
	assert.Equal(t, "rack B", resp.Data.Location)
	// Readiness fields stay empty until the backfill engine scores the bottle.
	assert.Nil(t, resp.Data.ReadinessScore)
	assert.Nil(t, resp.Data.ReadinessStatus)
}

func TestCreateBottleHandler_UnknownWine(t *testing.T) {
	ts := newTestStore()
	h := NewCreateBottleHandler(ts)

	body := strings.NewReader(`{"wine_id": "` + uuid.NewString() + `"}`)
	req := decorate(httptest.NewRequest(http.MethodPost, "/api/v1/bottles", body), uuid.New(), nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestCreateBottleHandler_NoUser(t *testing.T) {
	h := NewCreateBottleHandler(newTestStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bottles", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListBottlesHandler_ScopedToUser(t *testing.T) {
	ts := newTestStore()
	wine := seedWine(t, ts)
	mine := uuid.New()
	seedBottle(t, ts, mine, wine.ID)
	seedBottle(t, ts, mine, wine.ID)
	seedBottle(t, ts, uuid.New(), wine.ID) // someone else's bottle

	h := NewListBottlesHandler(ts)
	req := decorate(httptest.NewRequest(http.MethodGet, "/api/v1/bottles", nil), mine, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Bottle `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Meta.Total)
}

func TestGetBottleHandler(t *testing.T) {
	ts := newTestStore()
	wine := seedWine(t, ts)
	userID := uuid.New()
	bottle := seedBottle(t, ts, userID, wine.ID)

	h := NewGetBottleHandler(ts)

	t.Run("owner sees the bottle", func(t *testing.T) {
		req := decorate(httptest.NewRequest(http.MethodGet, "/api/v1/bottles/"+bottle.ID.String(), nil),
			userID, map[string]string{"bottleID": bottle.ID.String()})
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), bottle.ID.String())
	})

	t.Run("another user gets 404", func(t *testing.T) {
		req := decorate(httptest.NewRequest(http.MethodGet, "/api/v1/bottles/"+bottle.ID.String(), nil),
			uuid.New(), map[string]string{"bottleID": bottle.ID.String()})
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := decorate(httptest.NewRequest(http.MethodGet, "/api/v1/bottles/nope", nil),
			userID, map[string]string{"bottleID": "nope"})
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateBottleHandler_PartialUpdate(t *testing.T) {
	ts := newTestStore()
	wine := seedWine(t, ts)
	userID := uuid.New()
	bottle := seedBottle(t, ts, userID, wine.ID)
	bottle.Notes = "original"

	h := NewUpdateBottleHandler(ts)
	body := strings.NewReader(`{"location": "cellar floor"}`)
	req := decorate(httptest.NewRequest(http.MethodPatch, "/api/v1/bottles/"+bottle.ID.String(), body),
		userID, map[string]string{"bottleID": bottle.ID.String()})
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.Bottle `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cellar floor", resp.Data.Location)
	// Fields absent from the PATCH body are untouched.
	assert.Equal(t, "original", resp.Data.Notes)
}

func TestDeleteBottleHandler(t *testing.T) {
	ts := newTestStore()
	wine := seedWine(t, ts)
	userID := uuid.New()
	bottle := seedBottle(t, ts, userID, wine.ID)

	h := NewDeleteBottleHandler(ts)
	req := decorate(httptest.NewRequest(http.MethodDelete, "/api/v1/bottles/"+bottle.ID.String(), nil),
		userID, map[string]string{"bottleID": bottle.ID.String()})
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := ts.GetBottle(context.Background(), bottle.ID, userID)
	assert.Error(t, err)
}
