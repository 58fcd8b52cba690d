package slot_controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamio/venue-booking/controllers/slot_controller"
	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/services/slotgen"
	"github.com/gamio/venue-booking/storage"
	"github.com/gamio/venue-booking/storage/memory"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setup(t *testing.T) (*gin.Engine, *memory.Store, *venue_models.Venue) {
	t.Helper()
	store := memory.New()

	opening, err := shared_models.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	closing, err := shared_models.ParseTimeOfDay("22:00")
	require.NoError(t, err)
	venue, err := venue_models.NewVenue("Gamio Arena", "Indiranagar", opening, closing, 60, 500)
	require.NoError(t, err)
	require.NoError(t, store.CreateVenue(t.Context(), venue))

	sc := slot_controller.NewSlotController(store, slotgen.NewGenerator(store))
	r := gin.New()
	r.POST("/venues/:id/slots", sc.GenerateSlots)
	r.GET("/venues/:id/slots", sc.ListSlots)
	r.GET("/admin/slots", sc.AdminListSlots)
	r.DELETE("/slots/:id", sc.DeleteSlot)
	return r, store, venue
}

func generate(t *testing.T, r *gin.Engine, venueID uuid.UUID, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/venues/%s/slots", venueID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateSlotsEndpoint(t *testing.T) {
	r, _, venue := setup(t)
	payload := map[string]interface{}{"dates": []string{"2026-09-01"}}

	w := generate(t, r, venue.ID, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Created int `json:"created"`
		Slots   []struct {
			StartTime string `json:"start_time"`
			IsBooked  bool   `json:"is_booked"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.Created)

	t.Run("rerun reports zero created", func(t *testing.T) {
		w := generate(t, r, venue.ID, payload)
		require.Equal(t, http.StatusCreated, w.Code)
		var again struct {
			Created int `json:"created"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
		assert.Zero(t, again.Created)
	})

	t.Run("unknown venue", func(t *testing.T) {
		w := generate(t, r, uuid.New(), payload)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad duration", func(t *testing.T) {
		w := generate(t, r, venue.ID, map[string]interface{}{
			"dates":            []string{"2026-09-02"},
			"duration_minutes": -15,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("close time without open time", func(t *testing.T) {
		w := generate(t, r, venue.ID, map[string]interface{}{
			"dates":      []string{"2026-09-02"},
			"close_time": "11:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}

func TestListSlotsRequiresDate(t *testing.T) {
	r, _, venue := setup(t)
	require.Equal(t, http.StatusCreated, generate(t, r, venue.ID, map[string]interface{}{"dates": []string{"2026-09-01"}}).Code)

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/venues/%s/slots", venue.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest(http.MethodGet, fmt.Sprintf("/venues/%s/slots?date=2026-09-01", venue.ID), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Slots []json.RawMessage `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Slots, 13)
}

func TestDeleteSlotEndpoint(t *testing.T) {
	r, store, venue := setup(t)
	require.Equal(t, http.StatusCreated, generate(t, r, venue.ID, map[string]interface{}{"dates": []string{"2026-09-01"}}).Code)

	date := shared_models.NewDate(2026, 9, 1)
	start, err := shared_models.ParseTimeOfDay("10:00")
	require.NoError(t, err)

	slots, err := store.ListSlots(t.Context(), storage.SlotFilter{VenueID: venue.ID, Date: &date})
	require.NoError(t, err)
	var target uuid.UUID
	for _, s := range slots {
		if s.StartTime == start {
			target = s.ID
		}
	}
	require.NotEqual(t, uuid.Nil, target)

	del := func(id uuid.UUID) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/slots/%s", id), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("booked slot is protected", func(t *testing.T) {
		booking, err := booking_models.NewBooking(venue.ID, date, start, 2, 500, "player", "a@example.com")
		require.NoError(t, err)
		require.NoError(t, store.ReserveSlot(t.Context(), booking))

		assert.Equal(t, http.StatusConflict, del(target).Code)
	})

	t.Run("unknown slot", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, del(uuid.New()).Code)
	})
}
