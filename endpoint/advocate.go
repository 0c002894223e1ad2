package endpoint

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentReviewsOnProfile = 10

// advocateSearchQuery holds the public directory filters.
type advocateSearchQuery struct {
	Search         string
	Specialization string
	Location       string
	MinRating      *float64
	ServiceType    model.ServiceType
}

func parseAdvocateSearch(c *gin.Context) (advocateSearchQuery, error) {
	q := advocateSearchQuery{
		Search:         strings.TrimSpace(c.Query("search")),
		Specialization: strings.TrimSpace(c.Query("specialization")),
		Location:       strings.TrimSpace(c.Query("location")),
		ServiceType:    model.ServiceType(strings.ToLower(strings.TrimSpace(c.Query("serviceType")))),
	}
	if raw := strings.TrimSpace(c.Query("minRating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return q, fmt.Errorf("minRating must be a number")
		}
		q.MinRating = &v
	}
	if q.ServiceType != "" && !q.ServiceType.ValidForService() {
		return q, fmt.Errorf("serviceType must be one of online, offline, both")
	}
	return q, nil
}

// advocateListingQuery selects advocates joined with their owner's contact details.
func advocateListingQuery(db *gorm.DB) *gorm.DB {
	return db.Table("advocates").
		Select("advocates.*, users.name, users.email, users.phone").
		Joins("JOIN users ON users.id = advocates.user_id")
}

// searchAdvocates lists available advocates matching q, best rated first.
// The service type filter runs as a second pass over the candidates.
func searchAdvocates(db *gorm.DB, q advocateSearchQuery) ([]model.AdvocateListing, error) {
	query := advocateListingQuery(db).Where("advocates.is_available = ?", true)
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where("("+likeClause("users.name")+" OR "+likeClause("advocates.specialization")+" OR "+likeClause("advocates.location")+")", p, p, p)
	}
	if q.Specialization != "" {
		query = query.Where(likeClause("advocates.specialization"), likePattern(q.Specialization))
	}
	if q.Location != "" {
		query = query.Where(likeClause("advocates.location"), likePattern(q.Location))
	}
	if q.MinRating != nil {
		query = query.Where("advocates.rating >= ?", *q.MinRating)
	}

	var listings []model.AdvocateListing
	if err := query.Order("advocates.rating DESC, advocates.total_reviews DESC").Scan(&listings).Error; err != nil {
		return nil, fmt.Errorf("search advocates: %w", err)
	}
	if q.ServiceType == "" || len(listings) == 0 {
		return listings, nil
	}

	ids := make([]uint, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	var offering []uint
	err := db.Model(&model.Service{}).
		Where("advocate_id IN ? AND is_active = ? AND service_type IN ?", ids, true, []model.ServiceType{q.ServiceType, model.ServiceBoth}).
		Distinct().
		Pluck("advocate_id", &offering).Error
	if err != nil {
		return nil, fmt.Errorf("filter advocates by service type: %w", err)
	}

	keep := make(map[uint]struct{}, len(offering))
	for _, id := range offering {
		keep[id] = struct{}{}
	}
	filtered := listings[:0]
	for _, l := range listings {
		if _, ok := keep[l.ID]; ok {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// SearchAdvocates godoc
// @Summary      Search advocates
// @Description  List available advocates ordered by rating. All filters are optional.
// @Tags         Advocates
// @Produce      json
// @Param        search          query  string  false  "Substring of name, specialization or location"
// @Param        specialization  query  string  false  "Substring of specialization"
// @Param        location        query  string  false  "Substring of location"
// @Param        minRating       query  number  false  "Minimum rating"
// @Param        serviceType     query  string  false  "online, offline or both"
// @Success      200 {object} util.APIResponse{data=[]model.AdvocateListing} "Advocates retrieved"
// @Failure      400 {object} util.APIResponse "Invalid filter"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /advocates [get]
func SearchAdvocates(c *gin.Context) {
	q, err := parseAdvocateSearch(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	listings, err := searchAdvocates(db, q)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch advocates", Err: err})
		return
	}
	if listings == nil {
		listings = []model.AdvocateListing{}
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Advocates retrieved", Data: listings})
}

func loadAdvocateListing(db *gorm.DB, where string, arg interface{}) (model.AdvocateListing, error) {
	var listing model.AdvocateListing
	res := advocateListingQuery(db).Where(where, arg).Limit(1).Scan(&listing)
	if res.Error != nil {
		return listing, res.Error
	}
	if res.RowsAffected == 0 {
		return listing, gorm.ErrRecordNotFound
	}
	return listing, nil
}

// GetAdvocate godoc
// @Summary      Advocate detail
// @Description  Advocate profile with active services and the latest reviews
// @Tags         Advocates
// @Produce      json
// @Param        id path int true "Advocate ID"
// @Success      200 {object} util.APIResponse{data=model.AdvocateDetail} "Advocate retrieved"
// @Failure      400 {object} util.APIResponse "Invalid advocate id"
// @Failure      404 {object} util.APIResponse "Advocate not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /advocates/{id} [get]
func GetAdvocate(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	listing, err := loadAdvocateListing(db, "advocates.id = ?", id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate not found", Err: ErrAdvocateNotFound})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch advocate", Err: err})
		return
	}

	services, err := activeServices(db, id)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch advocate services", Err: err})
		return
	}
	reviews, err := advocateReviews(db, id, recentReviewsOnProfile)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch advocate reviews", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Advocate retrieved",
		Data: model.AdvocateDetail{AdvocateListing: listing, Services: services, Reviews: reviews},
	})
}

// GetMyProfile godoc
// @Summary      Own advocate profile
// @Tags         Advocates
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=model.AdvocateListing} "Profile retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /advocates/me/profile [get]
func GetMyProfile(c *gin.Context) {
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	listing, err := loadAdvocateListing(db, "advocates.user_id = ?", userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate profile not found", Err: ErrAdvocateProfileMissing})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch profile", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: listing})
}

// UpdateProfile godoc
// @Summary      Update advocate profile
// @Description  Replace the editable attributes of the caller's advocate profile
// @Tags         Advocates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.AdvocateProfileRequest true "Profile attributes"
// @Success      200 {object} util.APIResponse{data=model.Advocate} "Profile updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /advocates/profile [put]
func UpdateProfile(c *gin.Context) {
	var req model.AdvocateProfileRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	var advocate model.Advocate
	err := db.Transaction(func(tx *gorm.DB) error {
		current, err := findAdvocateByUser(tx, userID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"specialization":     strings.TrimSpace(req.Specialization),
			"experience_years":   req.ExperienceYears,
			"bar_council_number": optionalString(req.BarCouncilNumber),
			"license_number":     strings.TrimSpace(req.LicenseNumber),
			"location":           strings.TrimSpace(req.Location),
			"bio":                req.Bio,
			"hourly_rate":        req.HourlyRate,
		}
		if err := tx.Model(&current).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrBarCouncilTaken
			}
			return fmt.Errorf("update advocate %d: %w", current.ID, err)
		}
		return tx.First(&advocate, current.ID).Error
	})
	switch {
	case errors.Is(err, ErrAdvocateProfileMissing):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate profile not found", Err: err})
		return
	case errors.Is(err, ErrBarCouncilTaken):
		util.CallUserError(c, util.APIErrorParams{Msg: "Bar council number already registered", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile updated successfully", Data: advocate})
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required" example:"true"`
}

// UpdateAvailability godoc
// @Summary      Toggle availability
// @Description  Show or hide the caller in the public directory
// @Tags         Advocates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AvailabilityRequest true "Availability"
// @Success      200 {object} util.APIResponse{data=object} "Availability updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /advocates/availability [patch]
func UpdateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	res := db.Model(&model.Advocate{}).Where("user_id = ?", userID).Update("is_available", *req.IsAvailable)
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update availability", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate profile not found", Err: ErrAdvocateProfileMissing})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Availability updated",
		Data: map[string]bool{"is_available": *req.IsAvailable},
	})
}
