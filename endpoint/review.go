package endpoint

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/book-my-advocate/metrics"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// advocateReviews lists reviews of an advocate with the reviewer's name,
// newest first. A limit of zero returns all of them.
func advocateReviews(db *gorm.DB, advocateID uint, limit int) ([]model.ReviewWithAuthor, error) {
	reviews := []model.ReviewWithAuthor{}
	query := db.Table("reviews").
		Select("reviews.*, users.name AS user_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.advocate_id = ?", advocateID).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews of advocate %d: %w", advocateID, err)
	}
	return reviews, nil
}

// recomputeRating rewrites the advocate's rating and review count from the
// full review set.
func recomputeRating(tx *gorm.DB, advocateID uint) (model.RatingSummary, error) {
	var summary model.RatingSummary
	err := tx.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("advocate_id = ?", advocateID).
		Scan(&summary).Error
	if err != nil {
		return summary, fmt.Errorf("aggregate reviews of advocate %d: %w", advocateID, err)
	}
	err = tx.Model(&model.Advocate{}).Where("id = ?", advocateID).Updates(map[string]interface{}{
		"rating":        summary.Rounded(),
		"total_reviews": summary.Count,
	}).Error
	if err != nil {
		return summary, fmt.Errorf("store rating of advocate %d: %w", advocateID, err)
	}
	return summary, nil
}

// lockCompletedBooking loads a completed booking of userID under a row lock.
func lockCompletedBooking(tx *gorm.DB, bookingID, userID uint) (model.Booking, error) {
	var booking model.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ? AND status = ?", bookingID, userID, model.BookingCompleted).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking, ErrInvalidBooking
	}
	if err != nil {
		return booking, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	return booking, nil
}

// lockAdvocate takes the advocate row lock that serializes rating updates.
func lockAdvocate(tx *gorm.DB, advocateID uint) error {
	var advocate model.Advocate
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&advocate, advocateID).Error
	if err != nil {
		return fmt.Errorf("lock advocate %d: %w", advocateID, err)
	}
	return nil
}

// submitReview stores a review for a completed booking of userID and
// refreshes the advocate's aggregate in the same transaction.
func submitReview(db *gorm.DB, userID uint, req model.CreateReviewRequest) (model.Review, model.RatingSummary, error) {
	var (
		review  model.Review
		summary model.RatingSummary
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		// Both reads lock and come before any plain read: on InnoDB the
		// snapshot used by the aggregate below is taken only once the
		// advocate row is held, so it sees every review committed before.
		booking, err := lockCompletedBooking(tx, req.BookingID, userID)
		if err != nil {
			return err
		}
		if err := lockAdvocate(tx, booking.AdvocateID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&model.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check review of booking %d: %w", booking.ID, err)
		}
		if existing > 0 {
			return ErrReviewExists
		}

		review = model.Review{
			BookingID:  booking.ID,
			UserID:     userID,
			AdvocateID: booking.AdvocateID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("insert review: %w", err)
		}

		summary, err = recomputeRating(tx, booking.AdvocateID)
		return err
	})
	return review, summary, err
}

// CreateReview godoc
// @Summary      Review a booking
// @Description  Rate a completed booking once. The advocate's rating is recomputed from all reviews.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.CreateReviewRequest true "Review"
// @Success      201 {object} util.APIResponse{data=object} "Review submitted successfully"
// @Failure      400 {object} util.APIResponse "Invalid rating, booking not completed or already reviewed"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /reviews [post]
func CreateReview(c *gin.Context) {
	var req model.CreateReviewRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.Rating < model.MinRating || req.Rating > model.MaxRating {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Rating must be between 1 and 5",
			Err: fmt.Errorf("rating %d out of range", req.Rating),
		})
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

	review, summary, err := submitReview(db, userID, req)
	switch {
	case errors.Is(err, ErrInvalidBooking):
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid booking or booking not completed", Err: err})
		return
	case errors.Is(err, ErrReviewExists):
		util.CallUserError(c, util.APIErrorParams{Msg: "Review already exists for this booking", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to submit review", Err: err})
		return
	}

	metrics.IncReviewSubmitted()
	util.CallCreated(c, util.APISuccessParams{
		Msg: "Review submitted successfully",
		Data: map[string]interface{}{
			"reviewId":      review.ID,
			"rating":        summary.Rounded(),
			"total_reviews": summary.Count,
		},
	})
}

// ListAdvocateReviews godoc
// @Summary      Reviews of an advocate
// @Tags         Reviews
// @Produce      json
// @Param        advocateId path int true "Advocate ID"
// @Success      200 {object} util.APIResponse{data=[]model.ReviewWithAuthor} "Reviews retrieved"
// @Failure      400 {object} util.APIResponse "Invalid advocate id"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /reviews/advocate/{advocateId} [get]
func ListAdvocateReviews(c *gin.Context) {
	advocateID, ok := idParamOrRespond(c, "advocateId")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	reviews, err := advocateReviews(db, advocateID, 0)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch reviews", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Reviews retrieved", Data: reviews})
}
