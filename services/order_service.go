package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// EventPublisher publishes domain events, best-effort. A nil publisher
// disables event publishing.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// transition is one edge of the order status state machine.
type transition struct {
	From models.OrderStatus
	To   models.OrderStatus
	Role models.Role
}

// allowedTransitions is the complete role-gated state machine, queried once
// per request. Customers may only cancel their own non-terminal orders.
// Sellers advance exactly one step along pending->processing->shipped.
// Admins may move forward any number of steps (delivered is admin-only) and
// force-cancel anything non-terminal. delivered and canceled are terminal.
var allowedTransitions = map[transition]bool{
	{models.OrderStatusPending, models.OrderStatusCanceled, models.RoleCustomer}:    true,
	{models.OrderStatusProcessing, models.OrderStatusCanceled, models.RoleCustomer}: true,
	{models.OrderStatusShipped, models.OrderStatusCanceled, models.RoleCustomer}:    true,

	{models.OrderStatusPending, models.OrderStatusProcessing, models.RoleSeller}: true,
	{models.OrderStatusProcessing, models.OrderStatusShipped, models.RoleSeller}: true,

	{models.OrderStatusPending, models.OrderStatusProcessing, models.RoleAdmin}:   true,
	{models.OrderStatusPending, models.OrderStatusShipped, models.RoleAdmin}:      true,
	{models.OrderStatusPending, models.OrderStatusDelivered, models.RoleAdmin}:    true,
	{models.OrderStatusPending, models.OrderStatusCanceled, models.RoleAdmin}:     true,
	{models.OrderStatusProcessing, models.OrderStatusShipped, models.RoleAdmin}:   true,
	{models.OrderStatusProcessing, models.OrderStatusDelivered, models.RoleAdmin}: true,
	{models.OrderStatusProcessing, models.OrderStatusCanceled, models.RoleAdmin}:  true,
	{models.OrderStatusShipped, models.OrderStatusDelivered, models.RoleAdmin}:    true,
	{models.OrderStatusShipped, models.OrderStatusCanceled, models.RoleAdmin}:     true,
}

func isTerminal(status models.OrderStatus) bool {
	return status == models.OrderStatusDelivered || status == models.OrderStatusCanceled
}

// OrderListResponse is a paginated page of orders.
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// MetaData carries pagination details in list responses.
type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderService owns order creation and the status state machine.
type OrderService interface {
	CreateOrder(ctx context.Context, actor Actor, req *models.CreateOrderRequest) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, requested models.OrderStatus) (*models.Order, *ServiceError)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, *ServiceError)
	ListOrders(ctx context.Context, actor Actor, page, limit int) (*OrderListResponse, *ServiceError)
	ListAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError)

	// SettleOrderForPayment applies a payment outcome to the order: a
	// completed payment moves pending->processing, a failed one cancels the
	// order and restores its stock. Invoked by the payment service only.
	SettleOrderForPayment(ctx context.Context, orderID uuid.UUID, to models.OrderStatus) *ServiceError
}

type orderServiceImpl struct {
	store       repository.Store
	pricing     PricingService
	publisher   EventPublisher
	homeCountry string
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService. homeCountry is recorded on
// orders submitted without a destination country.
func NewOrderService(store repository.Store, pricing PricingService, publisher EventPublisher, homeCountry string, logger *zap.Logger) OrderService {
	return &orderServiceImpl{
		store:       store,
		pricing:     pricing,
		publisher:   publisher,
		homeCountry: homeCountry,
		logger:      logger,
	}
}

// CreateOrder places an order inside one transaction: stock is checked and
// decremented per line, prices are snapshotted, the coupon (if any) is
// validated against the realized subtotal and redeemed, totals are computed
// and the order plus items persisted. Any failure rolls everything back.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, actor Actor, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, validationError("at least one item is required")
	}

	var created *models.Order

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		lines := make([]PricingLine, 0, len(req.Items))
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, item := range req.Items {
			sku, err := tx.Catalog().GetSKU(ctx, item.SKUID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError(fmt.Sprintf("unknown sku %s", item.SKUID))
				}
				return err
			}

			if err := tx.Catalog().DecrementStock(ctx, sku.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return validationError(fmt.Sprintf("insufficient stock for %s", sku.SKUCode))
				}
				return err
			}

			lines = append(lines, PricingLine{UnitPrice: sku.Price, Quantity: item.Quantity})
			items = append(items, models.OrderItem{
				SKUID:              sku.ID,
				PriceAtPurchase:    sku.Price,
				QuantityAtPurchase: item.Quantity,
			})
		}

		var coupon *models.Coupon
		if req.CouponCode != "" {
			subtotal := decimalSum(lines)

			found, err := tx.Coupons().FindByCode(ctx, strings.ToUpper(req.CouponCode))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError(CouponReasonNotFound)
				}
				return err
			}
			if reason := CouponRejection(found, subtotal, time.Now()); reason != "" {
				return validationError(reason)
			}
			// redeemed here so a rollback also rolls the redemption back
			if err := tx.Coupons().IncrementUsedCount(ctx, found.ID); err != nil {
				if errors.Is(err, repository.ErrCouponExhausted) {
					return validationError(CouponReasonExhausted)
				}
				return err
			}
			coupon = found
		}

		totals, svcErr := s.pricing.ComputeTotals(ctx, lines, req.Country, coupon)
		if svcErr != nil {
			return svcErr
		}

		order := &models.Order{
			CustomerID:     actor.UserID,
			FullName:       req.FullName,
			Email:          req.Email,
			Contact:        req.Contact,
			Address:        req.Address,
			City:           req.City,
			PostalCode:     req.PostalCode,
			Country:        req.Country,
			Tax:            totals.Tax,
			ShippingCost:   totals.ShippingCost,
			DiscountAmount: totals.DiscountAmount,
			TotalAmount:    totals.Total,
			Status:         models.OrderStatusPending,
			OrderItems:     items,
		}
		if order.Country == "" {
			order.Country = s.homeCountry
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		s.logger.Error("Order creation failed", zap.String("customer_id", actor.UserID.String()), zap.Error(err))
		return nil, internalError("Failed to create order")
	}

	s.logger.Info("Order created",
		zap.String("order_id", created.ID.String()),
		zap.String("customer_id", actor.UserID.String()),
		zap.String("total_amount", created.TotalAmount.String()),
	)
	s.publishOrderCreated(ctx, created)

	return created, nil
}

// UpdateStatus performs one role-gated status transition. A transition into
// canceled restores the stock the order had deducted, exactly once.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, requested models.OrderStatus) (*models.Order, *ServiceError) {
	var updated *models.Order
	var from models.OrderStatus

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("Order not found")
			}
			return err
		}

		switch actor.Role {
		case models.RoleCustomer:
			if order.CustomerID != actor.UserID {
				return authorizationError("this is not your order")
			}
		case models.RoleSeller:
			owns, err := s.sellerOwnsLineItem(ctx, tx, order, actor.UserID)
			if err != nil {
				return err
			}
			if !owns {
				return authorizationError("seller has no items in this order")
			}
		case models.RoleAdmin:
			// no ownership requirement
		default:
			return authorizationError("unknown role")
		}

		if order.Status == requested || isTerminal(order.Status) {
			return conflictError(fmt.Sprintf("order is already %s", order.Status))
		}
		if !allowedTransitions[transition{order.Status, requested, actor.Role}] {
			return authorizationError(fmt.Sprintf("%s may not move order from %s to %s", actor.Role, order.Status, requested))
		}

		ok, err := tx.Orders().UpdateStatusIf(ctx, order.ID, order.Status, requested)
		if err != nil {
			return err
		}
		if !ok {
			// a concurrent transition won the race
			return conflictError("order status changed concurrently")
		}

		if requested == models.OrderStatusCanceled {
			if err := restoreOrderStock(ctx, tx, order); err != nil {
				return err
			}
		}

		from = order.Status
		order.Status = requested
		updated = order
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		s.logger.Error("Status transition failed",
			zap.String("order_id", orderID.String()),
			zap.String("requested", string(requested)),
			zap.Error(err),
		)
		return nil, internalError("Failed to update order status")
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(requested)),
		zap.String("actor_role", string(actor.Role)),
	)
	s.publishStatusChanged(ctx, updated, from, requested, actor.Role)

	return updated, nil
}

func (s *orderServiceImpl) SettleOrderForPayment(ctx context.Context, orderID uuid.UUID, to models.OrderStatus) *ServiceError {
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("Order not found")
			}
			return err
		}

		if order.Status == to || isTerminal(order.Status) {
			// payment outcome already reflected; nothing to re-apply
			return nil
		}

		ok, err := tx.Orders().UpdateStatusIf(ctx, order.ID, order.Status, to)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if to == models.OrderStatusCanceled {
			return restoreOrderStock(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return svcErr
		}
		s.logger.Error("Payment-driven order transition failed",
			zap.String("order_id", orderID.String()),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return internalError("Failed to apply payment outcome to order")
	}
	return nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, *ServiceError) {
	var order *models.Order
	var err error

	if actor.Role == models.RoleAdmin {
		order, err = s.store.Orders().FindByID(ctx, orderID)
	} else {
		order, err = s.store.Orders().FindByIDAndCustomer(ctx, orderID, actor.UserID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, actor Actor, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.store.Orders().FindByCustomerID(ctx, actor.UserID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.String("customer_id", actor.UserID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch orders")
	}
	return listResponse(orders, total, page, limit), nil
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.store.Orders().FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list all orders", zap.Error(err))
		return nil, internalError("Failed to fetch orders")
	}
	return listResponse(orders, total, page, limit), nil
}

// sellerOwnsLineItem reports whether at least one SKU in the order belongs
// to the seller.
func (s *orderServiceImpl) sellerOwnsLineItem(ctx context.Context, tx repository.Store, order *models.Order, sellerID uuid.UUID) (bool, error) {
	for _, item := range order.OrderItems {
		sku, err := tx.Catalog().GetSKU(ctx, item.SKUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return false, err
		}
		if sku.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

// restoreOrderStock gives each line item's quantity back to its SKU. Callers
// guarantee single application by transitioning the order status first via
// compare-and-swap.
func restoreOrderStock(ctx context.Context, tx repository.Store, order *models.Order) error {
	for _, item := range order.OrderItems {
		if err := tx.Catalog().RestoreStock(ctx, item.SKUID, item.QuantityAtPurchase); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// SKU deleted since purchase; nothing left to restore to
				continue
			}
			return err
		}
	}
	return nil
}

func (s *orderServiceImpl) publishOrderCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.OrderCreatedEvent{
		EventType:   "order_created",
		OrderID:     order.ID.String(),
		CustomerID:  order.CustomerID.String(),
		TotalAmount: order.TotalAmount.String(),
		ItemCount:   len(order.OrderItems),
		Timestamp:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.OrderID, payload); err != nil {
		// best-effort; never fail the request over event delivery
		s.logger.Warn("Failed to publish order_created event", zap.String("order_id", event.OrderID), zap.Error(err))
	}
}

func (s *orderServiceImpl) publishStatusChanged(ctx context.Context, order *models.Order, from, to models.OrderStatus, role models.Role) {
	if s.publisher == nil {
		return
	}
	event := models.OrderStatusChangedEvent{
		EventType:  "order_status_changed",
		OrderID:    order.ID.String(),
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorRole:  string(role),
		Timestamp:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.OrderID, payload); err != nil {
		s.logger.Warn("Failed to publish order_status_changed event", zap.String("order_id", event.OrderID), zap.Error(err))
	}
}

func listResponse(orders []models.Order, total int64, page, limit int) *OrderListResponse {
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
