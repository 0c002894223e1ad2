package endpoint

import (
	"fmt"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	recentBookingsOnDashboard = 10
	defaultSecurityLogLimit   = 100
)

// DashboardStats is the admin overview
// @Description Platform totals for the admin dashboard
type DashboardStats struct {
	TotalUsers      int64               `json:"totalUsers" example:"120"`
	TotalAdvocates  int64               `json:"totalAdvocates" example:"15"`
	TotalBookings   int64               `json:"totalBookings" example:"340"`
	PendingBookings int64               `json:"pendingBookings" example:"12"`
	TotalRevenue    float64             `json:"totalRevenue" example:"125000"`
	RecentBookings  []model.BookingView `json:"recentBookings"`
}

// VerifyRequest toggles the verification badge of an advocate
// @Description Advocate verification request
type VerifyRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required" example:"true"`
}

func dashboardStats(db *gorm.DB) (DashboardStats, error) {
	var stats DashboardStats
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleUser).Count(&stats.TotalUsers).Error; err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdvocate).Count(&stats.TotalAdvocates).Error; err != nil {
		return stats, fmt.Errorf("count advocates: %w", err)
	}
	if err := db.Model(&model.Booking{}).Count(&stats.TotalBookings).Error; err != nil {
		return stats, fmt.Errorf("count bookings: %w", err)
	}
	if err := db.Model(&model.Booking{}).Where("status = ?", model.BookingPending).Count(&stats.PendingBookings).Error; err != nil {
		return stats, fmt.Errorf("count pending bookings: %w", err)
	}
	err := db.Model(&model.Booking{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", model.PaymentPaid).
		Row().Scan(&stats.TotalRevenue)
	if err != nil {
		return stats, fmt.Errorf("sum revenue: %w", err)
	}

	recent, err := scanBookings(bookingDetailQuery(db).
		Order("bookings.created_at DESC").
		Order("bookings.id DESC").
		Limit(recentBookingsOnDashboard))
	if err != nil {
		return stats, fmt.Errorf("recent bookings: %w", err)
	}
	stats.RecentBookings = recent
	return stats, nil
}

// Dashboard godoc
// @Summary      Admin dashboard
// @Description  Totals of users, advocates, bookings and paid revenue plus the latest bookings
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=DashboardStats} "Dashboard retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/dashboard [get]
func Dashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	stats, err := dashboardStats(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Dashboard retrieved", Data: stats})
}

// ListUsers godoc
// @Summary      List users
// @Description  Every account, newest first
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size"
// @Param        offset query int false "Rows to skip"
// @Success      200 {object} util.APIResponse{data=object} "Users retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/users [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count users", Err: err})
		return
	}
	users := []model.User{}
	query := applyPagination(db.Order("created_at DESC").Order("id DESC"), limit, offset)
	if err := query.Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Users retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(users), "users": users},
	})
}

// ListAdvocates godoc
// @Summary      List advocates
// @Description  Every advocate profile with its owner's contact details, newest account first
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size"
// @Param        offset query int false "Rows to skip"
// @Success      200 {object} util.APIResponse{data=object} "Advocates retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/advocates [get]
func ListAdvocates(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	var total int64
	if err := db.Model(&model.Advocate{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count advocates", Err: err})
		return
	}
	advocates := []model.AdvocateListing{}
	query := applyPagination(advocateListingQuery(db).Order("users.created_at DESC").Order("advocates.id DESC"), limit, offset)
	if err := query.Scan(&advocates).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch advocates", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Advocates retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(advocates), "advocates": advocates},
	})
}

// ListBookings godoc
// @Summary      List bookings
// @Description  Every booking with both participants, newest first
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size"
// @Param        offset query int false "Rows to skip"
// @Success      200 {object} util.APIResponse{data=object} "Bookings retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/bookings [get]
func ListBookings(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	var total int64
	if err := db.Model(&model.Booking{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count bookings", Err: err})
		return
	}
	query := bookingDetailQuery(db).Order("bookings.created_at DESC").Order("bookings.id DESC")
	bookings, err := scanBookings(applyPagination(query, limit, offset))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch bookings", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Bookings retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(bookings), "bookings": bookings},
	})
}

// VerifyAdvocate godoc
// @Summary      Verify advocate
// @Description  Set or clear the verification badge of an advocate
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Advocate ID"
// @Param        request body VerifyRequest true "Verification flag"
// @Success      200 {object} util.APIResponse{data=object} "Advocate verification updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/advocates/{id}/verify [patch]
func VerifyAdvocate(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req VerifyRequest
	if !bindJSONOrRespond(c, &req, "is_verified is required") {
		return
	}
	adminID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	res := db.Model(&model.Advocate{}).Where("id = ?", id).Update("is_verified", *req.IsVerified)
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update advocate", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate not found", Err: ErrAdvocateNotFound})
		return
	}

	util.LogAdminAction(adminID, c.ClientIP(), "verify_advocate", map[string]interface{}{
		"advocate_id": id,
		"is_verified": *req.IsVerified,
	})
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Advocate verification updated",
		Data: map[string]interface{}{"id": id, "is_verified": *req.IsVerified},
	})
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Delete an account with its advocate profile, services, bookings, reviews and sessions
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted successfully"
// @Failure      400 {object} util.APIResponse "Invalid user id or own account"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/users/{id} [delete]
func DeleteUser(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	if id == adminID {
		util.CallUserError(c, util.APIErrorParams{Msg: "Cannot delete your own account", Err: fmt.Errorf("admin %d tried to delete itself", adminID)})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	res := db.Delete(&model.User{}, id)
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: gorm.ErrRecordNotFound})
		return
	}

	if err := util.InvalidateUserSessions(c.Request.Context(), id); err != nil {
		util.Logger(c).Warn().Err(err).Uint("user_id", id).Msg("failed to invalidate cached sessions")
	}
	util.UserEmailCacheDelete(id)
	util.LogAdminAction(adminID, c.ClientIP(), "delete_user", map[string]interface{}{"user_id": id})
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User deleted successfully"})
}

// ListSecurityLogs godoc
// @Summary      Security log
// @Description  Latest security events, newest first
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size (default 100)"
// @Param        offset query int false "Rows to skip"
// @Success      200 {object} util.APIResponse{data=object} "Security logs retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/security-logs [get]
func ListSecurityLogs(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	limit := parsePositiveInt(c.Query("limit"), defaultSecurityLogLimit, maxPageSize)
	offset := parsePositiveInt(c.Query("offset"), 0, 0)

	var total int64
	if err := db.Model(&model.SecurityLog{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count security logs", Err: err})
		return
	}
	logs := []model.SecurityLog{}
	if err := applyPagination(db.Order("id DESC"), limit, offset).Find(&logs).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch security logs", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Security logs retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(logs), "logs": logs},
	})
}
