package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/book-my-advocate/metrics"
	"github.com/ariebrainware/book-my-advocate/middleware"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const missingBookingFieldsMsg = "Missing required fields: advocate_id, booking_date, booking_time, and service_type are required"

// validateBookingRequest normalizes req and checks the date, time and type.
func validateBookingRequest(req *model.CreateBookingRequest) error {
	req.BookingDate = strings.TrimSpace(req.BookingDate)
	req.BookingTime = strings.TrimSpace(req.BookingTime)
	req.ServiceType = model.ServiceType(strings.ToLower(strings.TrimSpace(string(req.ServiceType))))
	if req.ServiceID != nil && *req.ServiceID == 0 {
		req.ServiceID = nil
	}

	if _, err := time.Parse("2006-01-02", req.BookingDate); err != nil {
		return fmt.Errorf("booking_date must be formatted as YYYY-MM-DD")
	}
	if !validBookingTime(req.BookingTime) {
		return fmt.Errorf("booking_time must be formatted as HH:MM or HH:MM:SS")
	}
	if !req.ServiceType.ValidForBooking() {
		return fmt.Errorf("service_type must be online or offline")
	}
	return nil
}

func validBookingTime(s string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// createBooking resolves the amount and stores a pending booking in one
// transaction. The amount is the service price when a service is named, the
// advocate's hourly rate otherwise.
func createBooking(db *gorm.DB, userID uint, req model.CreateBookingRequest) (model.Booking, error) {
	booking := model.Booking{
		UserID:        userID,
		AdvocateID:    req.AdvocateID,
		ServiceID:     req.ServiceID,
		BookingDate:   req.BookingDate,
		BookingTime:   req.BookingTime,
		ServiceType:   req.ServiceType,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentPending,
		Notes:         req.Notes,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var advocate model.Advocate
		if err := tx.First(&advocate, req.AdvocateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdvocateNotFound
			}
			return fmt.Errorf("load advocate %d: %w", req.AdvocateID, err)
		}
		booking.TotalAmount = advocate.HourlyRate

		if req.ServiceID != nil {
			var service model.Service
			err := tx.Where("id = ? AND advocate_id = ?", *req.ServiceID, advocate.ID).First(&service).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotOwned
			}
			if err != nil {
				return fmt.Errorf("load service %d: %w", *req.ServiceID, err)
			}
			booking.TotalAmount = service.Price
		}

		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	return booking, err
}

// CreateBooking godoc
// @Summary      Create booking
// @Description  Book an advocate, optionally for one of their services. The amount is fixed at creation.
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.CreateBookingRequest true "Booking"
// @Success      201 {object} util.APIResponse{data=object} "Booking created successfully"
// @Failure      400 {object} util.APIResponse "Missing or invalid fields"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings [post]
func CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.AdvocateID == 0 || req.BookingDate == "" || req.BookingTime == "" || req.ServiceType == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: missingBookingFieldsMsg})
		return
	}
	if err := validateBookingRequest(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	booking, err := createBooking(db, userID, req)
	switch {
	case errors.Is(err, ErrAdvocateNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate not found", Err: err})
		return
	case errors.Is(err, ErrServiceNotOwned):
		util.CallUserError(c, util.APIErrorParams{Msg: "Service does not belong to this advocate", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create booking", Err: err})
		return
	}

	metrics.IncBookingCreated()
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Booking created successfully",
		Data: map[string]interface{}{"bookingId": booking.ID, "total_amount": booking.TotalAmount},
	})
}

// bookingDetailQuery joins a booking with both participants and its service.
func bookingDetailQuery(db *gorm.DB) *gorm.DB {
	return db.Table("bookings").
		Select(`bookings.*,
			cu.name AS user_name, cu.email AS user_email, cu.phone AS user_phone,
			au.name AS advocate_name, au.email AS advocate_email, au.phone AS advocate_phone,
			advocates.specialization, advocates.location,
			services.title AS service_title, services.description AS service_description`).
		Joins("JOIN users cu ON cu.id = bookings.user_id").
		Joins("JOIN advocates ON advocates.id = bookings.advocate_id").
		Joins("JOIN users au ON au.id = advocates.user_id").
		Joins("LEFT JOIN services ON services.id = bookings.service_id")
}

func bookingSchedule(query *gorm.DB) *gorm.DB {
	return query.Order("bookings.booking_date DESC").Order("bookings.booking_time DESC")
}

func scanBookings(query *gorm.DB) ([]model.BookingView, error) {
	views := []model.BookingView{}
	if err := query.Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// ListMyBookings godoc
// @Summary      Own bookings
// @Description  Bookings made by the caller with advocate and service details, latest appointment first
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.BookingView} "Bookings retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings/my-bookings [get]
func ListMyBookings(c *gin.Context) {
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Table("bookings").
		Select(`bookings.*, advocates.specialization, advocates.location,
			au.name AS advocate_name, au.phone AS advocate_phone, services.title AS service_title`).
		Joins("JOIN advocates ON advocates.id = bookings.advocate_id").
		Joins("JOIN users au ON au.id = advocates.user_id").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Where("bookings.user_id = ?", userID)

	views, err := scanBookings(bookingSchedule(query))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch bookings", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Bookings retrieved", Data: views})
}

// ListAdvocateBookings godoc
// @Summary      Bookings of the caller's practice
// @Description  Bookings addressed to the caller's advocate profile with client details
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.BookingView} "Bookings retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings/advocate-bookings [get]
func ListAdvocateBookings(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	advocate, ok := callerAdvocateOrRespond(c, db)
	if !ok {
		return
	}

	query := db.Table("bookings").
		Select(`bookings.*, cu.name AS user_name, cu.phone AS user_phone, cu.email AS user_email,
			services.title AS service_title`).
		Joins("JOIN users cu ON cu.id = bookings.user_id").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Where("bookings.advocate_id = ?", advocate.ID)

	views, err := scanBookings(bookingSchedule(query))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch bookings", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Bookings retrieved", Data: views})
}

// canViewBooking applies the per-role visibility rule: users see their own
// bookings, advocates the bookings addressed to them, admins everything.
func canViewBooking(db *gorm.DB, view model.BookingView, userID uint, role model.Role) (bool, error) {
	switch role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleUser:
		return view.UserID == userID, nil
	case model.RoleAdvocate:
		advocate, err := findAdvocateByUser(db, userID)
		if errors.Is(err, ErrAdvocateProfileMissing) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return view.AdvocateID == advocate.ID, nil
	}
	return false, nil
}

// GetBooking godoc
// @Summary      Booking detail
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Booking ID"
// @Success      200 {object} util.APIResponse{data=model.BookingView} "Booking retrieved"
// @Failure      400 {object} util.APIResponse "Invalid booking id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "Booking not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings/{id} [get]
func GetBooking(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	role, _ := middleware.GetRole(c)
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var view model.BookingView
	res := bookingDetailQuery(db).Where("bookings.id = ?", id).Limit(1).Scan(&view)
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch booking", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Booking not found", Err: gorm.ErrRecordNotFound})
		return
	}

	allowed, err := canViewBooking(db, view, userID, role)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch booking", Err: err})
		return
	}
	if !allowed {
		util.CallForbidden(c, util.APIErrorParams{Msg: "Unauthorized", Err: fmt.Errorf("booking %d is not visible to user %d", id, userID)})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Booking retrieved", Data: view})
}

// transitionBooking moves a booking owned through ownerColumn to next. The
// guard on the current status is part of the UPDATE so a concurrent change
// cannot slip between check and write. It returns ErrBookingNotFound when no
// owned booking has the id and ErrInvalidTransition when the booking exists
// but next is not reachable from its current state.
func transitionBooking(db *gorm.DB, bookingID uint, ownerColumn string, ownerID uint, next model.BookingStatus) error {
	owned := db.Model(&model.Booking{}).
		Where("id = ? AND "+ownerColumn+" = ?", bookingID, ownerID).
		Session(&gorm.Session{})

	res := owned.Where("status IN ?", model.StatesLeadingTo(next)).Update("status", next)
	if res.Error != nil {
		return fmt.Errorf("update booking %d: %w", bookingID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := owned.Count(&count).Error; err != nil {
		return fmt.Errorf("check booking %d: %w", bookingID, err)
	}
	if count == 0 {
		return ErrBookingNotFound
	}
	return ErrInvalidTransition
}

type BookingStatusRequest struct {
	Status model.BookingStatus `json:"status" binding:"required" example:"confirmed"`
}

// UpdateBookingStatus godoc
// @Summary      Update booking status
// @Description  Advance a booking addressed to the caller. completed and cancelled are final.
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Booking ID"
// @Param        request body BookingStatusRequest true "New status"
// @Success      200 {object} util.APIResponse "Booking status updated"
// @Failure      400 {object} util.APIResponse "Invalid status or transition"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Booking not found or unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings/{id}/status [patch]
func UpdateBookingStatus(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req BookingStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if !req.Status.Valid() {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid status",
			Err: fmt.Errorf("status must be one of pending, confirmed, completed, cancelled"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	advocate, ok := callerAdvocateOrRespond(c, db)
	if !ok {
		return
	}

	err := transitionBooking(db, id, "advocate_id", advocate.ID, req.Status)
	switch {
	case errors.Is(err, ErrBookingNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Booking not found or unauthorized", Err: err})
		return
	case errors.Is(err, ErrInvalidTransition):
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid status transition", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update booking", Err: err})
		return
	}

	metrics.IncBookingStatus(string(req.Status))
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Booking status updated",
		Data: map[string]interface{}{"id": id, "status": req.Status},
	})
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancel one of the caller's pending or confirmed bookings
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Booking ID"
// @Success      200 {object} util.APIResponse "Booking cancelled"
// @Failure      400 {object} util.APIResponse "Booking can no longer be cancelled"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Booking not found or unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /bookings/{id}/cancel [patch]
func CancelBooking(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	err := transitionBooking(db, id, "user_id", userID, model.BookingCancelled)
	switch {
	case errors.Is(err, ErrBookingNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Booking not found or unauthorized", Err: err})
		return
	case errors.Is(err, ErrInvalidTransition):
		util.CallUserError(c, util.APIErrorParams{Msg: "Booking can no longer be cancelled", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to cancel booking", Err: err})
		return
	}

	metrics.IncBookingStatus(string(model.BookingCancelled))
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Booking cancelled"})
}
