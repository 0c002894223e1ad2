package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func activeServices(db *gorm.DB, advocateID uint) ([]model.Service, error) {
	services := []model.Service{}
	err := db.Where("advocate_id = ? AND is_active = ?", advocateID, true).
		Order("created_at DESC").
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("list services of advocate %d: %w", advocateID, err)
	}
	return services, nil
}

// validateNewService checks a creation request and fills the defaults.
func validateNewService(req *model.ServiceRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" || req.Price == nil || req.DurationMinutes == nil {
		return fmt.Errorf("missing required fields: title, description, price, and duration_minutes are required")
	}
	if req.ServiceType == "" {
		req.ServiceType = model.ServiceBoth
	}
	return validateServiceValues(*req)
}

func validateServiceValues(req model.ServiceRequest) error {
	if req.ServiceType != "" && !req.ServiceType.ValidForService() {
		return fmt.Errorf("service_type must be one of online, offline, both")
	}
	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	return nil
}

// serviceUpdates maps the fields present in req to columns.
func serviceUpdates(req model.ServiceRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if t := strings.TrimSpace(req.Title); t != "" {
		updates["title"] = t
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		updates["description"] = d
	}
	if req.ServiceType != "" {
		updates["service_type"] = req.ServiceType
	}
	if req.Category != "" {
		updates["category"] = strings.TrimSpace(req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	return updates
}

// ListAdvocateServices godoc
// @Summary      Services of an advocate
// @Description  Active services published by the advocate
// @Tags         Services
// @Produce      json
// @Param        advocateId path int true "Advocate ID"
// @Success      200 {object} util.APIResponse{data=[]model.Service} "Services retrieved"
// @Failure      400 {object} util.APIResponse "Invalid advocate id"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services/advocate/{advocateId} [get]
func ListAdvocateServices(c *gin.Context) {
	advocateID, ok := idParamOrRespond(c, "advocateId")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	services, err := activeServices(db, advocateID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch services", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Services retrieved", Data: services})
}

// ListMyServices godoc
// @Summary      Own services
// @Description  Every service of the caller, active or not, newest first
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.Service} "Services retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services/my-services [get]
func ListMyServices(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	advocate, ok := callerAdvocateOrRespond(c, db)
	if !ok {
		return
	}

	services := []model.Service{}
	if err := db.Where("advocate_id = ?", advocate.ID).Order("created_at DESC").Order("id DESC").Find(&services).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch services", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Services retrieved", Data: services})
}

// CreateService godoc
// @Summary      Create service
// @Tags         Services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.ServiceRequest true "Service"
// @Success      201 {object} util.APIResponse{data=object} "Service created successfully"
// @Failure      400 {object} util.APIResponse "Missing or invalid fields"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Advocate profile not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services [post]
func CreateService(c *gin.Context) {
	var req model.ServiceRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if err := validateNewService(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Missing required fields", Err: err})
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

	service := model.Service{
		AdvocateID:      advocate.ID,
		Title:           req.Title,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		Category:        strings.TrimSpace(req.Category),
		Price:           *req.Price,
		DurationMinutes: *req.DurationMinutes,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&service).Error; err != nil {
			return err
		}
		// A false is_active is the zero value and would take the column default.
		if req.IsActive != nil && !*req.IsActive {
			return tx.Model(&service).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create service", Err: err})
		return
	}

	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Service created successfully",
		Data: map[string]uint{"serviceId": service.ID},
	})
}

// UpdateService godoc
// @Summary      Update service
// @Description  Update the provided fields of an owned service
// @Tags         Services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Service ID"
// @Param        request body model.ServiceRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.Service} "Service updated successfully"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Service not found or unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services/{id} [put]
func UpdateService(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req model.ServiceRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if err := validateServiceValues(req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	updates := serviceUpdates(req)
	if len(updates) == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "No fields to update", Err: fmt.Errorf("empty update")})
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

	var service model.Service
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Service{}).Where("id = ? AND advocate_id = ?", id, advocate.ID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update service %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&service, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Service not found or unauthorized", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update service", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Service updated successfully", Data: service})
}

// DeleteService godoc
// @Summary      Delete service
// @Description  Delete an owned service. Bookings that used it keep their amount.
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Service ID"
// @Success      200 {object} util.APIResponse "Service deleted successfully"
// @Failure      400 {object} util.APIResponse "Invalid service id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Service not found or unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services/{id} [delete]
func DeleteService(c *gin.Context) {
	id, ok := idParamOrRespond(c, "id")
	if !ok {
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

	res := db.Where("id = ? AND advocate_id = ?", id, advocate.ID).Delete(&model.Service{})
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete service", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Service not found or unauthorized", Err: gorm.ErrRecordNotFound})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Service deleted successfully"})
}
