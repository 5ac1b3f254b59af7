package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// VerificationResult reports the outcome of reconciling a gateway
// transaction. Settled is false while the gateway still reports the
// transaction as in flight.
type VerificationResult struct {
	Payment *models.Payment `json:"payment"`
	Settled bool            `json:"settled"`
	Message string          `json:"message"`
}

// PaymentListResponse is a paginated page of payments.
type PaymentListResponse struct {
	Payments []models.Payment `json:"payments"`
	Meta     MetaData         `json:"meta"`
}

// PaymentService creates payment records and reconciles gateway outcomes
// against them.
type PaymentService interface {
	InitiatePayment(ctx context.Context, actor Actor, req *models.InitiatePaymentRequest) (*models.Payment, *ServiceError)
	VerifyPayment(ctx context.Context, transactionUUID string) (*VerificationResult, *ServiceError)
	ListPayments(ctx context.Context, actor Actor, page, limit int) (*PaymentListResponse, *ServiceError)
}

type paymentServiceImpl struct {
	store     repository.Store
	gateway   GatewayClient
	orders    OrderService
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store repository.Store, gateway GatewayClient, orders OrderService, publisher EventPublisher, logger *zap.Logger) PaymentService {
	return &paymentServiceImpl{
		store:     store,
		gateway:   gateway,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// InitiatePayment starts a payment attempt for an order the actor owns. The
// amount is snapshotted from the order total at this instant; a second
// completed payment for the same order is refused.
func (s *paymentServiceImpl) InitiatePayment(ctx context.Context, actor Actor, req *models.InitiatePaymentRequest) (*models.Payment, *ServiceError) {
	order, err := s.store.Orders().FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Order not found")
		}
		s.logger.Error("Failed to fetch order for payment", zap.String("order_id", req.OrderID.String()), zap.Error(err))
		return nil, internalError("Failed to initiate payment")
	}

	if order.CustomerID != actor.UserID {
		return nil, authorizationError("this is not your order")
	}

	paid, err := s.store.Payments().HasCompletedForOrder(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to check existing payments", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, internalError("Failed to initiate payment")
	}
	if paid {
		return nil, conflictError("order is already paid")
	}

	payment := &models.Payment{
		OrderID:         order.ID,
		UserID:          actor.UserID,
		Method:          req.Method,
		Amount:          order.TotalAmount,
		Status:          models.PaymentStatusPending,
		TransactionUUID: uuid.NewString(),
	}

	if err := s.store.Payments().Create(ctx, payment); err != nil {
		s.logger.Error("Failed to create payment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, internalError("Failed to initiate payment")
	}

	s.logger.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("method", string(payment.Method)),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

// VerifyPayment reconciles a gateway transaction against its local payment
// record. The gateway call happens outside any database transaction; the
// settle itself is a compare-and-swap keyed on the pending status, so a
// duplicate confirmation finds nothing left to mutate and gets the
// already-settled record back. The order transition is re-driven on every
// delivery for a settled payment, so a failure between the payment write
// and the order write heals on the next retry.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, transactionUUID string) (*VerificationResult, *ServiceError) {
	payment, err := s.store.Payments().FindByTransactionUUID(ctx, transactionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("no pending payment found for this transaction")
		}
		s.logger.Error("Failed to fetch payment", zap.String("transaction_uuid", transactionUUID), zap.Error(err))
		return nil, internalError("Failed to verify payment")
	}

	if payment.Status != models.PaymentStatusPending {
		// re-drive the order side effect: an earlier attempt may have
		// settled the payment and then failed before the order transition
		if svcErr := s.applyOrderOutcome(ctx, payment); svcErr != nil {
			return nil, svcErr
		}
		return &VerificationResult{
			Payment: payment,
			Settled: true,
			Message: "payment already settled",
		}, nil
	}

	if payment.Method != models.PaymentMethodEsewa {
		return nil, validationError("payment method does not use the gateway")
	}

	result, err := s.gateway.CheckTransaction(ctx, payment.TransactionUUID, payment.Amount)
	if err != nil {
		// payment stays pending; the caller may retry
		s.logger.Warn("Gateway status check failed",
			zap.String("transaction_uuid", payment.TransactionUUID),
			zap.Error(err),
		)
		return nil, externalServiceError("payment gateway unavailable")
	}

	switch result.Status {
	case GatewayStatusComplete:
		return s.settle(ctx, payment, models.PaymentStatusCompleted, models.OrderStatusProcessing, result)

	case GatewayStatusCanceled, GatewayStatusFailed, GatewayStatusExpired:
		return s.settle(ctx, payment, models.PaymentStatusFailed, models.OrderStatusCanceled, result)

	case GatewayStatusPending:
		return &VerificationResult{
			Payment: payment,
			Settled: false,
			Message: "payment still processing",
		}, nil

	case GatewayStatusNotFound:
		return nil, externalServiceError("gateway has no record of this transaction")

	default:
		s.logger.Warn("Unrecognized gateway status",
			zap.String("transaction_uuid", payment.TransactionUUID),
			zap.String("raw_status", result.RawStatus),
		)
		return nil, externalServiceError("unrecognized gateway status: " + result.RawStatus)
	}
}

// applyOrderOutcome drives the order transition implied by a settled
// payment. SettleOrderForPayment is idempotent, so re-applying it for an
// already-consistent order is a no-op; a retry after a crash between the
// payment write and the order write repairs the order here.
func (s *paymentServiceImpl) applyOrderOutcome(ctx context.Context, payment *models.Payment) *ServiceError {
	switch payment.Status {
	case models.PaymentStatusCompleted:
		return s.orders.SettleOrderForPayment(ctx, payment.OrderID, models.OrderStatusProcessing)
	case models.PaymentStatusFailed:
		return s.orders.SettleOrderForPayment(ctx, payment.OrderID, models.OrderStatusCanceled)
	}
	return nil
}

// settle applies a terminal gateway outcome exactly once and carries the
// matching order-status side effect.
func (s *paymentServiceImpl) settle(ctx context.Context, payment *models.Payment, to models.PaymentStatus, orderStatus models.OrderStatus, result *GatewayResult) (*VerificationResult, *ServiceError) {
	var refID *string
	if result.RefID != "" {
		refID = &result.RefID
	}
	var raw *string
	if result.RawJSON != "" {
		raw = &result.RawJSON
	}

	now := time.Now()
	won, err := s.store.Payments().SettleIfPending(ctx, payment.ID, to, refID, raw, now)
	if err != nil {
		s.logger.Error("Failed to settle payment", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return nil, internalError("Failed to settle payment")
	}
	if !won {
		// a concurrent confirmation settled first; report its outcome
		settled, err := s.store.Payments().FindByTransactionUUID(ctx, payment.TransactionUUID)
		if err != nil {
			return nil, internalError("Failed to settle payment")
		}
		if svcErr := s.applyOrderOutcome(ctx, settled); svcErr != nil {
			return nil, svcErr
		}
		return &VerificationResult{
			Payment: settled,
			Settled: true,
			Message: "payment already settled",
		}, nil
	}

	if svcErr := s.orders.SettleOrderForPayment(ctx, payment.OrderID, orderStatus); svcErr != nil {
		return nil, svcErr
	}

	payment.Status = to
	payment.GatewayTransactionID = refID
	payment.RawJSON = raw
	switch to {
	case models.PaymentStatusCompleted:
		payment.SucceededAt = &now
	case models.PaymentStatusFailed:
		payment.FailedAt = &now
	}

	s.logger.Info("Payment settled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", payment.OrderID.String()),
		zap.String("status", string(to)),
	)
	s.publishSettled(ctx, payment)

	return &VerificationResult{
		Payment: payment,
		Settled: true,
		Message: "payment " + string(to),
	}, nil
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context, actor Actor, page, limit int) (*PaymentListResponse, *ServiceError) {
	payments, total, err := s.store.Payments().FindByUserID(ctx, actor.UserID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.String("user_id", actor.UserID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch payments")
	}
	return &PaymentListResponse{
		Payments: payments,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

func (s *paymentServiceImpl) publishSettled(ctx context.Context, payment *models.Payment) {
	if s.publisher == nil {
		return
	}
	event := models.PaymentSettledEvent{
		EventType: "payment_settled",
		PaymentID: payment.ID.String(),
		OrderID:   payment.OrderID.String(),
		UserID:    payment.UserID.String(),
		Status:    string(payment.Status),
		Amount:    payment.Amount.String(),
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.OrderID, payload); err != nil {
		s.logger.Warn("Failed to publish payment_settled event", zap.String("payment_id", event.PaymentID), zap.Error(err))
	}
}
