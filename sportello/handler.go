package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/taldoflemis/tiffin/ordine"
	_ "github.com/taldoflemis/tiffin/sportello/docs"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("sportello")
	meter  = otel.Meter("sportello")
)

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type MainHandler struct {
	orderPubSubber OrderPubSubber
	table          *OrderTable
	health         *healthgo.Health
	upgrader       websocket.Upgrader
	acceptedOrders metric.Int64Counter
	rejectedFields metric.Int64Counter
	orderTotal     metric.Int64Histogram
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	orderPubSubber OrderPubSubber,
	table *OrderTable,
	health *healthgo.Health,
) (*MainHandler, error) {
	acceptedOrders, err := meter.Int64Counter(
		"sportello.order.accepted",
		metric.WithDescription("Number of orders accepted at the counter"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedFields, err := meter.Int64Counter(
		"sportello.order.rejected",
		metric.WithDescription("Number of failing fields on rejected orders"),
		metric.WithUnit("{field}"),
	)
	if err != nil {
		return nil, err
	}

	orderTotal, err := meter.Int64Histogram(
		"sportello.order.total",
		metric.WithDescription("Total price of accepted orders"),
		metric.WithExplicitBucketBoundaries(15, 25, 40, 45, 60),
	)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware("sportello",
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	handler := &MainHandler{
		orderPubSubber: orderPubSubber,
		table:          table,
		health:         health,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		acceptedOrders: acceptedOrders,
		rejectedFields: rejectedFields,
		orderTotal:     orderTotal,
	}

	e.GET("/healthz", handler.HealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	v1 := e.Group(settings.HTTP.Prefix)

	v1.GET("/menu", handler.GetMenu)
	v1.GET("/locations/:location/meals", handler.GetLocationMeals)
	v1.POST("/order/reconcile", handler.ReconcileMeals)
	v1.POST("/order/validate", handler.ValidateOrder)
	v1.POST("/order/validate/:field", handler.ValidateOrderField)
	v1.POST("/order", handler.SubmitOrder)
	v1.GET("/orders", handler.ListOrders)
	v1.GET("/order/sse", handler.GetLiveOrdersSSE)
	v1.GET("/order/ws", handler.GetLiveOrdersWS)

	return handler, nil
}

func bindAndValidate[T any, P interface {
	*T
	normalize()
}](c echo.Context) (*T, error) {
	ctx := c.Request().Context()

	var req T
	err := c.Bind(&req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	P(&req).normalize()

	err = c.Validate(&req)
	if err != nil {
		slog.WarnContext(ctx, "request failed validation", slog.Any("err", err))
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	return &req, nil
}

// GetMenu godoc
//
// @Summary List locations, the meals they serve and unit prices
// @Tags menu
// @Produce json
// @Success 200 {object} MenuResponse
// @Router /v1/menu [get]
func (h *MainHandler) GetMenu(c echo.Context) error {
	resp := MenuResponse{
		Locations: make([]LocationMealsResponse, 0, len(ordine.Locations)),
		Prices:    make(map[ordine.Meal]int, len(ordine.Meals)),
	}
	for _, location := range ordine.Locations {
		resp.Locations = append(resp.Locations, LocationMealsResponse{
			Location: location,
			Meals:    ordine.AvailableMeals(location),
		})
	}
	for _, meal := range ordine.Meals {
		resp.Prices[meal] = ordine.UnitPrice(meal)
	}

	return c.JSON(http.StatusOK, resp)
}

// GetLocationMeals godoc
//
// @Summary Meals available at a location
// @Tags menu
// @Produce json
// @Param location path string true "Location"
// @Success 200 {object} LocationMealsResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/locations/{location}/meals [get]
func (h *MainHandler) GetLocationMeals(c echo.Context) error {
	location := ordine.ParseLocation(c.Param("location"))
	if !location.Known() {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown location"})
	}

	return c.JSON(http.StatusOK, LocationMealsResponse{
		Location: location,
		Meals:    ordine.AvailableMeals(location),
	})
}

// ReconcileMeals godoc
//
// @Summary Drop selected meals that the location does not serve
// @Tags order
// @Accept json
// @Produce json
// @Param selection body ReconcileRequest true "Location and selected meals"
// @Success 200 {object} LocationMealsResponse
// @Failure 400 {object} ErrorResponse
// @Router /v1/order/reconcile [post]
func (h *MainHandler) ReconcileMeals(c echo.Context) error {
	req, err := bindAndValidate[ReconcileRequest](c)
	if req == nil {
		return err
	}

	location := ordine.ParseLocation(req.Location)
	return c.JSON(http.StatusOK, LocationMealsResponse{
		Location: location,
		Meals:    ordine.ReconcileSelection(toMealSet(req.Meals), ordine.AvailableMeals(location)),
	})
}

// ValidateOrder godoc
//
// @Summary Validate every field of a draft without submitting it
// @Tags order
// @Accept json
// @Produce json
// @Param draft body OrderDraftRequest true "Order draft"
// @Success 200 {object} ValidationResponse
// @Failure 400 {object} ErrorResponse
// @Router /v1/order/validate [post]
func (h *MainHandler) ValidateOrder(c echo.Context) error {
	req, err := bindAndValidate[OrderDraftRequest](c)
	if req == nil {
		return err
	}

	result := ordine.Validate(req.toDraft())
	return c.JSON(http.StatusOK, ValidationResponse{Valid: result.Valid(), Fields: result})
}

// ValidateOrderField godoc
//
// @Summary Validate a single field of a draft
// @Tags order
// @Accept json
// @Produce json
// @Param field path string true "Field name"
// @Param draft body OrderDraftRequest true "Order draft"
// @Success 200 {object} FieldValidationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/order/validate/{field} [post]
func (h *MainHandler) ValidateOrderField(c echo.Context) error {
	req, err := bindAndValidate[OrderDraftRequest](c)
	if req == nil {
		return err
	}

	field := ordine.Field(c.Param("field"))
	res, err := ordine.ValidateField(field, req.toDraft())
	if errors.Is(err, ordine.ErrUnknownField) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, FieldValidationResponse{
		Field:   field,
		Valid:   res.Valid,
		Message: res.Message,
	})
}

// SubmitOrder godoc
//
// @Summary Submit a meal order
// @Tags order
// @Accept json
// @Produce json
// @Param draft body OrderDraftRequest true "Order draft"
// @Success 201 {object} ordine.Entry
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/order [post]
func (h *MainHandler) SubmitOrder(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.SubmitOrder")
	defer span.End()

	req, err := bindAndValidate[OrderDraftRequest](c)
	if req == nil {
		return err
	}

	order, err := ordine.Submit(req.toDraft())
	var rejected *ordine.RejectedError
	if errors.As(err, &rejected) {
		for field := range rejected.Result.Errors() {
			h.rejectedFields.Add(ctx, 1, metric.WithAttributes(attribute.String("order.field", string(field))))
		}
		slog.InfoContext(ctx, "order rejected", slog.Any("fields", rejected.Result.Errors()))
		return c.JSON(http.StatusUnprocessableEntity, ValidationResponse{Valid: false, Fields: rejected.Result})
	}

	entry := ordine.NewEntry(order, uuid.New().String(), time.Now())
	span.SetAttributes(
		attribute.String("tiffin.orderid", entry.ID),
		attribute.String("order.location", string(entry.Location)),
		attribute.Int("order.total_price", entry.TotalPrice),
	)

	err = h.orderPubSubber.PubOrder(ctx, entry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("order_id", entry.ID), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "order could not be placed"})
	}

	h.table.Append(entry)
	h.acceptedOrders.Add(ctx, 1, metric.WithAttributes(attribute.String("order.location", string(entry.Location))))
	h.orderTotal.Record(ctx, int64(entry.TotalPrice))

	slog.InfoContext(ctx, "order accepted", slog.String("order_id", entry.ID), slog.Int("total_price", entry.TotalPrice))
	return c.JSON(http.StatusCreated, entry)
}

// ListOrders godoc
//
// @Summary List accepted orders, oldest first
// @Tags order
// @Produce json
// @Success 200 {array} ordine.Entry
// @Router /v1/orders [get]
func (h *MainHandler) ListOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.table.Rows())
}

// GetLiveOrdersSSE godoc
//
// @Summary Get live orders via Server-Sent Events (SSE)
// @Tags order
// @Produce  text/event-stream
// @Success 200 {object} ordine.Entry
// @Router /v1/order/sse [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	subscriberID := uuid.New().String()
	ch, err := h.orderPubSubber.SubLiveOrders(ctx, subscriberID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		return err
	}
	defer h.orderPubSubber.UnsubLiveOrders(context.WithoutCancel(ctx), subscriberID)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed connection")
			return nil
		case entry := <-ch:
			data, err := json.Marshal(entry)
			if err != nil {
				slog.ErrorContext(ctx, "marshal order for SSE", slog.Any("err", err))
				continue
			}
			_, err = c.Response().Writer.Write([]byte("data: " + string(data) + "\n\n"))
			if err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return err
			}
			flusher.Flush()
		}
	}
}

// GetLiveOrdersWS godoc
//
// @Summary Get live orders over a WebSocket
// @Tags order
// @Success 101 {object} ordine.Entry
// @Router /v1/order/ws [get]
func (h *MainHandler) GetLiveOrdersWS(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Subscribe before the handshake so no order slips in between.
	subscriberID := uuid.New().String()
	ch, err := h.orderPubSubber.SubLiveOrders(ctx, subscriberID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		return err
	}
	defer h.orderPubSubber.UnsubLiveOrders(context.WithoutCancel(ctx), subscriberID)

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade to websocket", slog.Any("err", err))
		return err
	}
	defer ws.Close()

	// Reads only detect the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "websocket client closed connection")
			return nil
		case entry := <-ch:
			err := ws.WriteJSON(entry)
			if err != nil {
				slog.ErrorContext(ctx, "write websocket", slog.Any("err", err))
				return nil
			}
		}
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}
