package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type bookingWorld struct {
	db           *gorm.DB
	client       model.User
	advocateUser model.User
	advocate     model.Advocate
}

// bookingFixture seeds a client and an advocate charging 500 per hour.
func bookingFixture(t *testing.T) bookingWorld {
	t.Helper()
	_, db := setupEndpointTest(t)
	client := seedUser(t, db, "John Client", "john@example.com", model.RoleUser)
	advUser, adv := seedAdvocate(t, db, "Jane Doe", "jane@example.com", model.Advocate{
		Specialization: "Family Law",
		Location:       "New Delhi",
		HourlyRate:     500,
	})
	return bookingWorld{db: db, client: client, advocateUser: advUser, advocate: adv}
}

func TestCreateBooking(t *testing.T) {
	w := bookingFixture(t)
	own := seedService(t, w.db, w.advocate.ID, "Divorce consultation", model.ServiceOnline, 1200)
	_, other := seedAdvocate(t, w.db, "Other Advocate", "other@example.com", model.Advocate{HourlyRate: 900})
	foreign := seedService(t, w.db, other.ID, "Tax filing", model.ServiceBoth, 300)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMsg    string
		wantAmount float64
	}{
		{
			name:       "hourly rate without service",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "2025-01-15", "booking_time": "14:30", "service_type": "online"},
			wantStatus: http.StatusCreated,
			wantAmount: 500,
		},
		{
			name:       "service price",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "service_id": own.ID, "booking_date": "2025-01-15", "booking_time": "14:30:00", "service_type": "offline"},
			wantStatus: http.StatusCreated,
			wantAmount: 1200,
		},
		{
			name:       "missing fields",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "2025-01-15"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    missingBookingFieldsMsg,
		},
		{
			name:       "bad date",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "15/01/2025", "booking_time": "14:30", "service_type": "online"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "booking_date must be formatted as YYYY-MM-DD",
		},
		{
			name:       "bad time",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "2025-01-15", "booking_time": "2pm", "service_type": "online"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "booking_time must be formatted as HH:MM or HH:MM:SS",
		},
		{
			name:       "both is not a booking type",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "2025-01-15", "booking_time": "14:30", "service_type": "both"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "service_type must be online or offline",
		},
		{
			name:       "unknown advocate",
			body:       map[string]interface{}{"advocate_id": 9999, "booking_date": "2025-01-15", "booking_time": "14:30", "service_type": "online"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Advocate not found",
		},
		{
			name:       "service of another advocate",
			body:       map[string]interface{}{"advocate_id": w.advocate.ID, "service_id": foreign.ID, "booking_date": "2025-01-15", "booking_time": "14:30", "service_type": "online"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Service does not belong to this advocate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before int64
			require.NoError(t, w.db.Model(&model.Booking{}).Count(&before).Error)

			rec, resp := callAs(t, w.db, w.client, requestSpec{
				method:       http.MethodPost,
				registerPath: "/bookings",
				requestPath:  "/bookings",
				handler:      CreateBooking,
				body:         tt.body,
			})
			assertStatus(t, rec, tt.wantStatus)

			var after int64
			require.NoError(t, w.db.Model(&model.Booking{}).Count(&after).Error)

			if tt.wantStatus != http.StatusCreated {
				assertErrorMessage(t, resp, tt.wantMsg)
				assert.Equal(t, before, after, "no row on failure")
				return
			}

			var data struct {
				BookingID   uint    `json:"bookingId"`
				TotalAmount float64 `json:"total_amount"`
			}
			dataOf(t, rec, &data)
			assert.Equal(t, tt.wantAmount, data.TotalAmount)

			stored := reloadBooking(t, w.db, data.BookingID)
			assert.Equal(t, model.BookingPending, stored.Status)
			assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
			assert.Equal(t, w.client.ID, stored.UserID)
			assert.Equal(t, tt.wantAmount, stored.TotalAmount)
		})
	}
}

func TestBookingAmountIsSnapshot(t *testing.T) {
	w := bookingFixture(t)

	rec, _ := callAs(t, w.db, w.client, requestSpec{
		method:       http.MethodPost,
		registerPath: "/bookings",
		requestPath:  "/bookings",
		handler:      CreateBooking,
		body:         map[string]interface{}{"advocate_id": w.advocate.ID, "booking_date": "2025-02-01", "booking_time": "10:00", "service_type": "online"},
	})
	assertStatus(t, rec, http.StatusCreated)
	var data struct {
		BookingID uint `json:"bookingId"`
	}
	dataOf(t, rec, &data)

	require.NoError(t, w.db.Model(&model.Advocate{}).Where("id = ?", w.advocate.ID).Update("hourly_rate", 800).Error)
	assert.Equal(t, float64(500), reloadBooking(t, w.db, data.BookingID).TotalAmount)
}

func TestUpdateBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from       model.BookingStatus
		to         model.BookingStatus
		wantStatus int
	}{
		{model.BookingPending, model.BookingConfirmed, http.StatusOK},
		{model.BookingPending, model.BookingCompleted, http.StatusOK},
		{model.BookingPending, model.BookingCancelled, http.StatusOK},
		{model.BookingConfirmed, model.BookingCompleted, http.StatusOK},
		{model.BookingConfirmed, model.BookingCancelled, http.StatusOK},
		{model.BookingConfirmed, model.BookingPending, http.StatusBadRequest},
		{model.BookingCompleted, model.BookingPending, http.StatusBadRequest},
		{model.BookingCompleted, model.BookingCancelled, http.StatusBadRequest},
		{model.BookingCancelled, model.BookingConfirmed, http.StatusBadRequest},
		{model.BookingCancelled, model.BookingCompleted, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			w := bookingFixture(t)
			booking := seedBooking(t, w.db, w.client.ID, w.advocate.ID, tt.from)

			rec, resp := callAs(t, w.db, w.advocateUser, requestSpec{
				method:       http.MethodPatch,
				registerPath: "/bookings/:id/status",
				requestPath:  fmt.Sprintf("/bookings/%d/status", booking.ID),
				handler:      UpdateBookingStatus,
				body:         map[string]string{"status": string(tt.to)},
			})
			assertStatus(t, rec, tt.wantStatus)

			stored := reloadBooking(t, w.db, booking.ID)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.to, stored.Status)
			} else {
				assertErrorMessage(t, resp, "Invalid status transition")
				assert.Equal(t, tt.from, stored.Status, "row must stay unchanged")
			}
			assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
		})
	}
}

func TestUpdateBookingStatusRejections(t *testing.T) {
	w := bookingFixture(t)
	booking := seedBooking(t, w.db, w.client.ID, w.advocate.ID, model.BookingPending)
	otherUser, _ := seedAdvocate(t, w.db, "Other Advocate", "other@example.com", model.Advocate{})
	noProfile := seedUser(t, w.db, "Bare Advocate", "bare@example.com", model.RoleAdvocate)

	t.Run("unknown status", func(t *testing.T) {
		rec, resp := callAs(t, w.db, w.advocateUser, requestSpec{
			method:       http.MethodPatch,
			registerPath: "/bookings/:id/status",
			requestPath:  fmt.Sprintf("/bookings/%d/status", booking.ID),
			handler:      UpdateBookingStatus,
			body:         map[string]string{"status": "archived"},
		})
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorMessage(t, resp, "Invalid status")
	})

	t.Run("another advocate", func(t *testing.T) {
		rec, resp := callAs(t, w.db, otherUser, requestSpec{
			method:       http.MethodPatch,
			registerPath: "/bookings/:id/status",
			requestPath:  fmt.Sprintf("/bookings/%d/status", booking.ID),
			handler:      UpdateBookingStatus,
			body:         map[string]string{"status": "confirmed"},
		})
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorMessage(t, resp, "Booking not found or unauthorized")
		assert.Equal(t, model.BookingPending, reloadBooking(t, w.db, booking.ID).Status)
	})

	t.Run("advocate without profile", func(t *testing.T) {
		rec, resp := callAs(t, w.db, noProfile, requestSpec{
			method:       http.MethodPatch,
			registerPath: "/bookings/:id/status",
			requestPath:  fmt.Sprintf("/bookings/%d/status", booking.ID),
			handler:      UpdateBookingStatus,
			body:         map[string]string{"status": "confirmed"},
		})
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorMessage(t, resp, "Advocate profile not found")
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, _ := callAs(t, w.db, w.advocateUser, requestSpec{
			method:       http.MethodPatch,
			registerPath: "/bookings/:id/status",
			requestPath:  "/bookings/abc/status",
			handler:      UpdateBookingStatus,
			body:         map[string]string{"status": "confirmed"},
		})
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestCancelBooking(t *testing.T) {
	tests := []struct {
		from       model.BookingStatus
		wantStatus int
	}{
		{model.BookingPending, http.StatusOK},
		{model.BookingConfirmed, http.StatusOK},
		{model.BookingCompleted, http.StatusBadRequest},
		{model.BookingCancelled, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			w := bookingFixture(t)
			booking := seedBooking(t, w.db, w.client.ID, w.advocate.ID, tt.from)

			rec, resp := callAs(t, w.db, w.client, requestSpec{
				method:       http.MethodPatch,
				registerPath: "/bookings/:id/cancel",
				requestPath:  fmt.Sprintf("/bookings/%d/cancel", booking.ID),
				handler:      CancelBooking,
			})
			assertStatus(t, rec, tt.wantStatus)

			stored := reloadBooking(t, w.db, booking.ID)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, model.BookingCancelled, stored.Status)
				return
			}
			assertErrorMessage(t, resp, "Booking can no longer be cancelled")
			assert.Equal(t, tt.from, stored.Status)
		})
	}

	t.Run("not the owner", func(t *testing.T) {
		w := bookingFixture(t)
		booking := seedBooking(t, w.db, w.client.ID, w.advocate.ID, model.BookingPending)
		stranger := seedUser(t, w.db, "Stranger", "stranger@example.com", model.RoleUser)

		rec, resp := callAs(t, w.db, stranger, requestSpec{
			method:       http.MethodPatch,
			registerPath: "/bookings/:id/cancel",
			requestPath:  fmt.Sprintf("/bookings/%d/cancel", booking.ID),
			handler:      CancelBooking,
		})
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorMessage(t, resp, "Booking not found or unauthorized")
		assert.Equal(t, model.BookingPending, reloadBooking(t, w.db, booking.ID).Status)
	})
}

func TestGetBookingVisibility(t *testing.T) {
	w := bookingFixture(t)
	service := seedService(t, w.db, w.advocate.ID, "Custody", model.ServiceBoth, 700)
	booking := seedBooking(t, w.db, w.client.ID, w.advocate.ID, model.BookingPending)
	require.NoError(t, w.db.Model(&booking).Update("service_id", service.ID).Error)

	stranger := seedUser(t, w.db, "Stranger", "stranger@example.com", model.RoleUser)
	otherAdvUser, _ := seedAdvocate(t, w.db, "Other Advocate", "other@example.com", model.Advocate{})
	admin := seedUser(t, w.db, "Admin User", "admin@example.com", model.RoleAdmin)

	tests := []struct {
		name       string
		caller     model.User
		path       string
		wantStatus int
	}{
		{"owner", w.client, fmt.Sprintf("/bookings/%d", booking.ID), http.StatusOK},
		{"advocate", w.advocateUser, fmt.Sprintf("/bookings/%d", booking.ID), http.StatusOK},
		{"admin", admin, fmt.Sprintf("/bookings/%d", booking.ID), http.StatusOK},
		{"other user", stranger, fmt.Sprintf("/bookings/%d", booking.ID), http.StatusForbidden},
		{"other advocate", otherAdvUser, fmt.Sprintf("/bookings/%d", booking.ID), http.StatusForbidden},
		{"missing", admin, "/bookings/9999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := callAs(t, w.db, tt.caller, requestSpec{
				method:       http.MethodGet,
				registerPath: "/bookings/:id",
				requestPath:  tt.path,
				handler:      GetBooking,
			})
			assertStatus(t, rec, tt.wantStatus)
			switch tt.wantStatus {
			case http.StatusForbidden:
				assertErrorMessage(t, resp, "Unauthorized")
			case http.StatusNotFound:
				assertErrorMessage(t, resp, "Booking not found")
			case http.StatusOK:
				var view model.BookingView
				dataOf(t, rec, &view)
				assert.Equal(t, "John Client", view.UserName)
				assert.Equal(t, "Jane Doe", view.AdvocateName)
				assert.Equal(t, "Custody", view.ServiceTitle)
				assert.Equal(t, "Family Law", view.Specialization)
			}
		})
	}
}

func TestListBookingsByRole(t *testing.T) {
	w := bookingFixture(t)
	stranger := seedUser(t, w.db, "Stranger", "stranger@example.com", model.RoleUser)
	_, otherAdv := seedAdvocate(t, w.db, "Other Advocate", "other@example.com", model.Advocate{})

	early := seedBooking(t, w.db, w.client.ID, w.advocate.ID, model.BookingPending)
	late := seedBooking(t, w.db, w.client.ID, w.advocate.ID, model.BookingPending)
	require.NoError(t, w.db.Model(&late).Update("booking_date", "2025-03-01").Error)
	seedBooking(t, w.db, stranger.ID, otherAdv.ID, model.BookingPending)

	t.Run("my bookings newest appointment first", func(t *testing.T) {
		rec, _ := callAs(t, w.db, w.client, requestSpec{
			method:       http.MethodGet,
			registerPath: "/bookings/my-bookings",
			requestPath:  "/bookings/my-bookings",
			handler:      ListMyBookings,
		})
		assertStatus(t, rec, http.StatusOK)
		var views []model.BookingView
		dataOf(t, rec, &views)
		require.Len(t, views, 2)
		assert.Equal(t, late.ID, views[0].ID)
		assert.Equal(t, early.ID, views[1].ID)
		assert.Equal(t, "Jane Doe", views[0].AdvocateName)
		assert.Equal(t, "New Delhi", views[0].Location)
	})

	t.Run("advocate bookings", func(t *testing.T) {
		rec, _ := callAs(t, w.db, w.advocateUser, requestSpec{
			method:       http.MethodGet,
			registerPath: "/bookings/advocate-bookings",
			requestPath:  "/bookings/advocate-bookings",
			handler:      ListAdvocateBookings,
		})
		assertStatus(t, rec, http.StatusOK)
		var views []model.BookingView
		dataOf(t, rec, &views)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, "John Client", v.UserName)
			assert.Equal(t, "john@example.com", v.UserEmail)
		}
	})

	t.Run("no bookings is an empty list", func(t *testing.T) {
		lonely := seedUser(t, w.db, "Lonely", "lonely@example.com", model.RoleUser)
		rec, _ := callAs(t, w.db, lonely, requestSpec{
			method:       http.MethodGet,
			registerPath: "/bookings/my-bookings",
			requestPath:  "/bookings/my-bookings",
			handler:      ListMyBookings,
		})
		assertStatus(t, rec, http.StatusOK)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})
}
