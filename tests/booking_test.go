package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking/http"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

// createdBookingEnvelope matches the 201 body of POST /v1/bookings.
type createdBookingEnvelope struct {
	Message string                      `json:"message"`
	Booking bookingHttp.BookingResponse `json:"booking"`
}

// conflictEnvelope matches the 409 body of POST /v1/bookings.
type conflictEnvelope struct {
	Error     string                     `json:"error"`
	Label     string                     `json:"label"`
	Details   string                     `json:"details"`
	Conflicts []bookingHttp.ConflictItem `json:"conflicts"`
}

// validationEnvelope matches the 400 body for interval validation failures.
type validationEnvelope struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Fields  []string `json:"fields"`
	Details string   `json:"details"`
}

func bookingPayload(start, end time.Time) map[string]any {
	return map[string]any{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
}

func createBooking(t *testing.T, token string, start, end time.Time) bookingHttp.BookingResponse {
	t.Helper()
	w := executeRequest("POST", "/v1/bookings", bookingPayload(start, end), token)
	require.Equal(t, http.StatusCreated, w.Code, "unexpected create response: %s", w.Body.String())

	var envelope createdBookingEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Booking
}

func TestBookingCreateAndValidation(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "Alice", "alice@booking.test", "password", user.RoleUser)
	aliceToken := generateToken(alice)

	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create succeeds with valid interval", func(t *testing.T) {
		b := createBooking(t, aliceToken, base, base.Add(time.Hour))
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, alice.ID, b.UserID)
		assert.Equal(t, 60, b.DurationMinutes)
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingPayload(base, base.Add(time.Hour)), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	validationCases := []struct {
		name    string
		payload map[string]any
		kind    string
	}{
		{
			name:    "missing end time",
			payload: map[string]any{"start_time": base.Format(time.RFC3339)},
			kind:    "missing_field",
		},
		{
			name:    "missing both times",
			payload: map[string]any{},
			kind:    "missing_field",
		},
		{
			name: "malformed start time",
			payload: map[string]any{
				"start_time": "first of may",
				"end_time":   base.Add(time.Hour).Format(time.RFC3339),
			},
			kind: "malformed_date",
		},
		{
			name:    "end before start",
			payload: bookingPayload(base.Add(time.Hour), base),
			kind:    "invalid_order",
		},
		{
			name:    "ten minutes is too short",
			payload: bookingPayload(base.Add(48*time.Hour), base.Add(48*time.Hour+10*time.Minute)),
			kind:    "too_short",
		},
		{
			name:    "twenty five hours is too long",
			payload: bookingPayload(base.Add(72*time.Hour), base.Add(72*time.Hour+25*time.Hour)),
			kind:    "too_long",
		},
	}

	for _, tc := range validationCases {
		t.Run(tc.name, func(t *testing.T) {
			w := executeRequest("POST", "/v1/bookings", tc.payload, aliceToken)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var v validationEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
			assert.Equal(t, tc.kind, v.Kind)
		})
	}

	t.Run("invalid input persists nothing", func(t *testing.T) {
		var count int
		err := testPool.QueryRow(context.Background(), "SELECT count(*) FROM public.bookings").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "only the one valid booking should exist")
	})
}

func TestBookingConflictClassification(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "Alice", "alice@conflict.test", "password", user.RoleUser)
	bob := createTestUser(t, "Bob", "bob@conflict.test", "password", user.RoleUser)
	aliceToken := generateToken(alice)
	bobToken := generateToken(bob)

	// Alice holds 10:00-11:00.
	base := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	createBooking(t, aliceToken, base, base.Add(time.Hour))

	conflictCases := []struct {
		name  string
		start time.Time
		end   time.Time
		label string
	}{
		{"identical interval", base, base.Add(time.Hour), "exact"},
		{"inside the existing booking", base.Add(15 * time.Minute), base.Add(45 * time.Minute), "within"},
		{"enclosing the existing booking", base.Add(-time.Hour), base.Add(2 * time.Hour), "contains"},
		{"straddling the start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), "overlaps"},
		{"straddling the end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), "overlaps"},
	}

	for _, tc := range conflictCases {
		t.Run(tc.name, func(t *testing.T) {
			w := executeRequest("POST", "/v1/bookings", bookingPayload(tc.start, tc.end), bobToken)
			require.Equal(t, http.StatusConflict, w.Code, "unexpected response: %s", w.Body.String())

			var envelope conflictEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, tc.label, envelope.Label)
			require.Len(t, envelope.Conflicts, 1)
			assert.Equal(t, "another user", envelope.Conflicts[0].BookedBy)
		})
	}

	t.Run("own booking is reported as yours", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingPayload(base, base.Add(time.Hour)), aliceToken)
		require.Equal(t, http.StatusConflict, w.Code)

		var envelope conflictEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.Len(t, envelope.Conflicts, 1)
		assert.Equal(t, "you", envelope.Conflicts[0].BookedBy)
	})

	t.Run("back to back bookings do not conflict", func(t *testing.T) {
		// Ends exactly when the existing one starts, and starts exactly when
		// it ends. Half-open intervals: neither is a conflict.
		createBooking(t, bobToken, base.Add(-time.Hour), base)
		createBooking(t, bobToken, base.Add(time.Hour), base.Add(2*time.Hour))
	})
}

func TestBookingConflictListOrderingAndAggregateLabel(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "Alice", "alice@order.test", "password", user.RoleUser)
	bob := createTestUser(t, "Bob", "bob@order.test", "password", user.RoleUser)
	aliceToken := generateToken(alice)
	bobToken := generateToken(bob)

	// Seed two disjoint bookings inserted out of chronological order: the
	// later one first, so result order cannot come from insertion order.
	base := time.Date(2030, 6, 15, 10, 0, 0, 0, time.UTC)
	late := createBooking(t, aliceToken, base.Add(2*time.Hour), base.Add(4*time.Hour))         // 12:00-14:00
	early := createBooking(t, aliceToken, base.Add(15*time.Minute), base.Add(45*time.Minute)) // 10:15-10:45

	// Bob asks for 10:00-13:00: it contains the early booking and straddles
	// the start of the late one. Contains outranks a plain overlap.
	w := executeRequest("POST", "/v1/bookings", bookingPayload(base, base.Add(3*time.Hour)), bobToken)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var envelope conflictEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "contains", envelope.Label)

	require.Len(t, envelope.Conflicts, 2)
	assert.Equal(t, early.ID, envelope.Conflicts[0].ID, "conflicts must be ordered by start time ascending")
	assert.Equal(t, late.ID, envelope.Conflicts[1].ID)
	assert.True(t, envelope.Conflicts[0].StartTime.Before(envelope.Conflicts[1].StartTime))
}

func TestBookingConcurrentCreateSingleWinner(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "Alice", "alice@race.test", "password", user.RoleUser)
	bob := createTestUser(t, "Bob", "bob@race.test", "password", user.RoleUser)
	tokens := []string{generateToken(alice), generateToken(bob)}

	base := time.Date(2030, 7, 1, 10, 0, 0, 0, time.UTC)
	payload := bookingPayload(base, base.Add(time.Hour))

	codes := make([]int, len(tokens))
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			codes[i] = executeRequest("POST", "/v1/bookings", payload, token).Code
		}(i, token)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict, http.StatusServiceUnavailable:
			// The loser either saw the conflict or lost the serializable
			// race and was told to retry. Both are acceptable.
		default:
			t.Fatalf("unexpected status code %d", code)
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent create must win")

	var count int
	err := testPool.QueryRow(context.Background(), "SELECT count(*) FROM public.bookings").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingDeletePermissions(t *testing.T) {
	clearTables()

	admin := createTestUser(t, "Root", "root@delete.test", "password", user.RoleAdmin)
	owner := createTestUser(t, "Boss", "boss@delete.test", "password", user.RoleOwner)
	alice := createTestUser(t, "Alice", "alice@delete.test", "password", user.RoleUser)
	bob := createTestUser(t, "Bob", "bob@delete.test", "password", user.RoleUser)

	adminToken := generateToken(admin)
	ownerToken := generateToken(owner)
	aliceToken := generateToken(alice)
	bobToken := generateToken(bob)

	base := time.Date(2030, 8, 1, 9, 0, 0, 0, time.UTC)
	next := func(n int) (time.Time, time.Time) {
		start := base.Add(time.Duration(n) * 2 * time.Hour)
		return start, start.Add(time.Hour)
	}

	t.Run("user deletes their own booking", func(t *testing.T) {
		start, end := next(0)
		b := createBooking(t, aliceToken, start, end)

		w := executeRequest("DELETE", "/v1/bookings/"+b.ID, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.DeletedBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, b.ID, resp.DeletedBooking.ID)
		assert.Equal(t, "Alice", resp.DeletedBooking.Owner)
		assert.Equal(t, "Alice", resp.DeletedBooking.DeletedBy)
	})

	t.Run("user cannot delete another user's booking", func(t *testing.T) {
		start, end := next(1)
		b := createBooking(t, aliceToken, start, end)

		w := executeRequest("DELETE", "/v1/bookings/"+b.ID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		// Still there: a forbidden delete must not remove the row.
		wGet := executeRequest("GET", "/v1/bookings/"+b.ID, nil, bobToken)
		assert.Equal(t, http.StatusOK, wGet.Code)
	})

	t.Run("admin deletes anyone's booking", func(t *testing.T) {
		start, end := next(2)
		b := createBooking(t, bobToken, start, end)

		w := executeRequest("DELETE", "/v1/bookings/"+b.ID, nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp bookingHttp.DeletedBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Bob", resp.DeletedBooking.Owner)
		assert.Equal(t, "Root", resp.DeletedBooking.DeletedBy)
	})

	t.Run("owner deletes anyone's booking", func(t *testing.T) {
		start, end := next(3)
		b := createBooking(t, bobToken, start, end)

		w := executeRequest("DELETE", "/v1/bookings/"+b.ID, nil, ownerToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete of a missing booking is 404", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/bookings/5f61c1a4-8caa-4287-a4e3-7e52a8d7a9a1", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete with a malformed id is 400", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/bookings/not-a-uuid", nil, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete requires authentication", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/bookings/5f61c1a4-8caa-4287-a4e3-7e52a8d7a9a1", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingAvailabilityProbe(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "Alice", "alice@avail.test", "password", user.RoleUser)
	aliceToken := generateToken(alice)

	base := time.Date(2030, 9, 1, 14, 0, 0, 0, time.UTC)
	createBooking(t, aliceToken, base, base.Add(time.Hour))

	probe := func(start, end time.Time) bookingHttp.AvailabilityResponse {
		path := fmt.Sprintf("/v1/bookings/availability?start_time=%s&end_time=%s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
		w := executeRequest("GET", path, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("free slot", func(t *testing.T) {
		resp := probe(base.Add(2*time.Hour), base.Add(3*time.Hour))
		assert.True(t, resp.Available)
		assert.Empty(t, resp.Conflicts)
	})

	t.Run("busy slot reports label and conflicts", func(t *testing.T) {
		resp := probe(base.Add(30*time.Minute), base.Add(90*time.Minute))
		assert.False(t, resp.Available)
		assert.Equal(t, "overlaps", resp.Label)
		require.Len(t, resp.Conflicts, 1)
		assert.Equal(t, "you", resp.Conflicts[0].BookedBy)
	})

	t.Run("probe does not persist anything", func(t *testing.T) {
		var count int
		err := testPool.QueryRow(context.Background(), "SELECT count(*) FROM public.bookings").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestBookingListAndReporting(t *testing.T) {
	clearTables()

	admin := createTestUser(t, "Root", "root@report.test", "password", user.RoleAdmin)
	alice := createTestUser(t, "Alice", "alice@report.test", "password", user.RoleUser)
	bob := createTestUser(t, "Bob", "bob@report.test", "password", user.RoleUser)

	adminToken := generateToken(admin)
	aliceToken := generateToken(alice)
	bobToken := generateToken(bob)

	base := time.Date(2030, 10, 1, 8, 0, 0, 0, time.UTC)
	createBooking(t, aliceToken, base, base.Add(time.Hour))
	createBooking(t, aliceToken, base.Add(2*time.Hour), base.Add(3*time.Hour))
	createBooking(t, bobToken, base.Add(4*time.Hour), base.Add(5*time.Hour))

	t.Run("list filters by user", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings?user_id="+alice.ID, nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Total int                           `json:"total"`
			Items []bookingHttp.BookingResponse `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		for _, b := range resp.Items {
			assert.Equal(t, alice.ID, b.UserID)
		}
	})

	t.Run("usage summary requires a manager role", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/usage-summary", nil, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("usage summary aggregates per user", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/usage-summary", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.UsageSummaryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "all", resp.Period)
		assert.Equal(t, 3, resp.TotalBookings)
		assert.Equal(t, 2, resp.ActiveUsers)

		byName := map[string]bookingHttp.UserUsageItem{}
		for _, u := range resp.Users {
			byName[u.UserName] = u
		}
		assert.Equal(t, 2, byName["Alice"].TotalBookings)
		assert.Equal(t, 120, byName["Alice"].TotalMinutes)
		assert.Equal(t, 1, byName["Bob"].TotalBookings)
	})

	t.Run("grouped listing requires a manager role", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/grouped-by-user", nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("grouped listing returns bookings per user", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/grouped-by-user", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.GroupedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.TotalUsers) // admin included, with zero bookings
		assert.Equal(t, 2, resp.UsersWithBookings)

		for _, g := range resp.Data {
			if g.UserName == "Alice" {
				assert.Len(t, g.Bookings, 2)
			}
		}
	})
}
