package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xamuel98/ZoneFlow-sub001/internal/http/middleware"
	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
	"github.com/xamuel98/ZoneFlow-sub001/internal/service"
)

type Handler struct {
	driverService   *service.DriverService
	locationService *service.LocationService
	geofenceService *service.GeofenceService
	orderService    *service.OrderService
	log             zerolog.Logger
}

func NewHandler(
	driverService *service.DriverService,
	locationService *service.LocationService,
	geofenceService *service.GeofenceService,
	orderService *service.OrderService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		driverService:   driverService,
		locationService: locationService,
		geofenceService: geofenceService,
		orderService:    orderService,
		log:             log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	drivers := protected.Group("/drivers")
	{
		drivers.POST("", h.createDriver)
		drivers.GET("", h.listDrivers)
		drivers.POST("/:id/location", h.recordPosition)
		drivers.GET("/:id/location", h.currentLocation)
		drivers.GET("/:id/location/history", h.locationHistory)
		drivers.GET("/:id/geofence-events", h.driverGeofenceEvents)
	}

	geofences := protected.Group("/geofences")
	{
		geofences.POST("", h.createGeofence)
		geofences.GET("", h.listGeofences)
		geofences.PUT("/:id/deactivate", h.deactivateGeofence)
		geofences.POST("/evaluate", h.evaluateGeofences)
	}

	orders := protected.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id/status", h.updateOrderStatus)
		orders.PUT("/:id/assign", h.assignDriver)
		orders.PUT("/:id/cancel", h.cancelOrder)
	}
}

// requireDispatch rejects driver tokens; management endpoints are for
// admins and dispatchers.
func requireDispatch(c *gin.Context, principal model.Principal) bool {
	if principal.IsDriver() {
		c.JSON(http.StatusForbidden, errorResponse("permission denied"))
		return false
	}
	return true
}

func (h *Handler) createDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	if !requireDispatch(c, principal) {
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.driverService.Create(c.Request.Context(), principal.BusinessID, service.CreateDriverInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	drivers, err := h.driverService.List(c.Request.Context(), principal.BusinessID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(drivers))
}

func (h *Handler) recordPosition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	driverID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver id"))
		return
	}

	// A driver token may only report its own position.
	if principal.IsDriver() && (principal.DriverID == nil || *principal.DriverID != driverID) {
		c.JSON(http.StatusForbidden, errorResponse("permission denied"))
		return
	}

	// Pointer coordinate fields so a legitimate zero survives
	// required-binding.
	var req struct {
		Latitude   *float64 `json:"latitude" binding:"required"`
		Longitude  *float64 `json:"longitude" binding:"required"`
		Accuracy   *float64 `json:"accuracy"`
		Speed      *float64 `json:"speed"`
		Heading    *float64 `json:"heading"`
		ObservedAt *string  `json:"observed_at"`
		OrderID    *string  `json:"order_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.RecordPositionInput{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Heading:   req.Heading,
	}

	if req.ObservedAt != nil {
		observedAt, err := time.Parse(time.RFC3339, *req.ObservedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid observed_at"))
			return
		}
		input.ObservedAt = &observedAt
	}

	if req.OrderID != nil {
		orderID, err := uuid.Parse(*req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid order_id"))
			return
		}
		input.OrderID = &orderID
	}

	result, err := h.locationService.RecordPosition(c.Request.Context(), principal.BusinessID, driverID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) currentLocation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	driverID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver id"))
		return
	}

	loc, err := h.locationService.CurrentLocation(c.Request.Context(), principal.BusinessID, driverID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(loc))
}

func (h *Handler) locationHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	driverID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver id"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
	}

	history, err := h.locationService.History(c.Request.Context(), principal.BusinessID, driverID, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(history))
}

func (h *Handler) driverGeofenceEvents(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	driverID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver id"))
		return
	}

	// Driver lookup scopes the read to the caller's business.
	if _, err := h.driverService.Get(c.Request.Context(), principal.BusinessID, driverID); err != nil {
		h.handleError(c, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
	}

	events, err := h.geofenceService.EventsForDriver(c.Request.Context(), driverID, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(events))
}

func (h *Handler) createGeofence(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	if !requireDispatch(c, principal) {
		return
	}

	var req struct {
		Name         string   `json:"name" binding:"required"`
		Type         string   `json:"type"`
		Latitude     *float64 `json:"latitude" binding:"required"`
		Longitude    *float64 `json:"longitude" binding:"required"`
		RadiusMeters float64  `json:"radius_meters" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	geofence, err := h.geofenceService.Create(c.Request.Context(), principal.BusinessID, service.CreateGeofenceInput{
		Name:         req.Name,
		Type:         model.GeofenceType(req.Type),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(geofence))
}

func (h *Handler) listGeofences(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	activeOnly := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")

	geofences, err := h.geofenceService.List(c.Request.Context(), principal.BusinessID, activeOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(geofences))
}

func (h *Handler) deactivateGeofence(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	if !requireDispatch(c, principal) {
		return
	}

	geofenceID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid geofence id"))
		return
	}

	geofence, err := h.geofenceService.Deactivate(c.Request.Context(), principal.BusinessID, geofenceID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(geofence))
}

func (h *Handler) evaluateGeofences(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		DriverID  string   `json:"driver_id" binding:"required"`
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
		OrderID   *string  `json:"order_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	var orderID *uuid.UUID
	if req.OrderID != nil {
		parsed, err := uuid.Parse(*req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid order_id"))
			return
		}
		orderID = &parsed
	}

	events, err := h.geofenceService.Evaluate(c.Request.Context(), principal.BusinessID, driverID, *req.Latitude, *req.Longitude, orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"triggered_events": events}))
}

func (h *Handler) createOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Priority          string   `json:"priority"`
		PickupLatitude    *float64 `json:"pickup_latitude" binding:"required"`
		PickupLongitude   *float64 `json:"pickup_longitude" binding:"required"`
		DeliveryLatitude  *float64 `json:"delivery_latitude" binding:"required"`
		DeliveryLongitude *float64 `json:"delivery_longitude" binding:"required"`
		EstimatedDelivery *string  `json:"estimated_delivery"`
		Notes             string   `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CreateOrderInput{
		Priority:          model.OrderPriority(req.Priority),
		PickupLatitude:    *req.PickupLatitude,
		PickupLongitude:   *req.PickupLongitude,
		DeliveryLatitude:  *req.DeliveryLatitude,
		DeliveryLongitude: *req.DeliveryLongitude,
		Notes:             req.Notes,
	}

	if req.EstimatedDelivery != nil {
		estimated, err := time.Parse(time.RFC3339, *req.EstimatedDelivery)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid estimated_delivery"))
			return
		}
		input.EstimatedDelivery = &estimated
	}

	order, err := h.orderService.Create(c.Request.Context(), principal.BusinessID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var status *model.OrderStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := model.OrderStatus(strings.ToLower(raw))
		status = &s
	}

	orders, err := h.orderService.List(c.Request.Context(), principal.BusinessID, status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(orders))
}

func (h *Handler) getOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	orderID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid order id"))
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), principal.BusinessID, orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(order))
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	orderID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), principal.BusinessID, orderID, model.OrderStatus(strings.ToLower(req.Status)), req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(order))
}

func (h *Handler) assignDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	if !requireDispatch(c, principal) {
		return
	}

	orderID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid order id"))
		return
	}

	var req struct {
		DriverID string `json:"driver_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}

	order, err := h.orderService.AssignDriver(c.Request.Context(), principal.BusinessID, orderID, driverID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(order))
}

func (h *Handler) cancelOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	orderID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid order id"))
		return
	}

	// A cancellation body is optional.
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), principal.BusinessID, orderID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(order))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
