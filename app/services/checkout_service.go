package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shopspring/decimal"
)

// priceTolerance is the largest accepted gap between a claimed and a
// catalogue amount, in dollars.
var priceTolerance = decimal.New(1, -2)

// CheckoutItem is one claimed cart line. Price is in cents.
type CheckoutItem struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutInput is the checkout request. Amount, when present, is the
// charged total in cents.
type CheckoutInput struct {
	UserID          uint                   `json:"userId" validate:"required"`
	PaymentIntentID string                 `json:"paymentIntentId" validate:"required"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	CartItems       []CheckoutItem         `json:"cartItems" validate:"required,min=1"`
	Amount          *decimal.Decimal       `json:"amount,omitempty"`
}

// PaymentIntentInput asks for a new payment intent. Amount and item
// prices are in cents.
type PaymentIntentInput struct {
	UserID   uint            `json:"userId" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Items    []CheckoutItem  `json:"items"`
}

// CheckoutService reconciles a settled payment intent with the claimed
// cart and turns it into an order.
type CheckoutService struct {
	store    *repositories.Store
	gateway  payment.Gateway
	notifier Notifier
	pool     *workerpool.Pool

	attempts int
	interval time.Duration
	now      func() time.Time
}

// NewCheckoutService polls the intent 3 times, 1s apart. pool may be nil;
// confirmation mail is then sent on the request goroutine.
func NewCheckoutService(store *repositories.Store, gateway payment.Gateway, notifier Notifier, pool *workerpool.Pool) *CheckoutService {
	return &CheckoutService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		pool:     pool,
		attempts: 3,
		interval: time.Second,
		now:      time.Now,
	}
}

// WithPolling overrides the settlement poll budget.
func (s *CheckoutService) WithPolling(attempts int, interval time.Duration) *CheckoutService {
	if attempts < 1 {
		attempts = 1
	}
	s.attempts = attempts
	s.interval = interval
	return s
}

// ── Checkout ─────────────────────────────────────────────────────────────────

// Checkout places, or on a repeated intent id updates, the order for a
// settled payment and empties the user's cart.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (models.CustomerOrder, error) {
	log := logger.WithCtx(ctx)

	order, err := s.checkout(ctx, in)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		log.Warn("checkout: rejected", "user_id", in.UserID, "payment_intent", in.PaymentIntentID, "error", err)
		return models.CustomerOrder{}, err
	}

	metrics.OrdersPlaced.Inc()
	log.Info("checkout: order processed",
		"order_id", order.ID, "user_id", order.UserID, "items", len(order.Items), "total", order.Total.StringFixed(2))

	event.Fire(ctx, event.OrderPlaced, order)
	return order, nil
}

func (s *CheckoutService) checkout(ctx context.Context, in CheckoutInput) (models.CustomerOrder, error) {
	if in.UserID == 0 {
		return models.CustomerOrder{}, validation("User ID is required")
	}
	if strings.TrimSpace(in.PaymentIntentID) == "" {
		return models.CustomerOrder{}, validation("Payment intent ID is required")
	}
	if len(in.CartItems) == 0 {
		return models.CustomerOrder{}, validation("Cart items are required")
	}

	user, err := s.store.Users.FindByID(ctx, in.UserID)
	if err != nil {
		return models.CustomerOrder{}, lookup(err, "User not found with ID: %d", in.UserID)
	}

	intent, err := s.awaitSettlement(ctx, in.PaymentIntentID)
	if err != nil {
		return models.CustomerOrder{}, err
	}
	if !openedBy(intent, user.ID) {
		return models.CustomerOrder{}, forbidden("Payment intent belongs to another user")
	}

	items, claimed, err := s.priceLines(ctx, in.CartItems)
	if err != nil {
		return models.CustomerOrder{}, err
	}
	if in.Amount != nil {
		if err := checkAmount(claimed, in.Amount.Shift(-2)); err != nil {
			return models.CustomerOrder{}, err
		}
	}

	order, err := s.persist(ctx, user, in, items)
	if err != nil {
		return models.CustomerOrder{}, err
	}

	s.sendConfirmation(ctx, user, order)
	return order, nil
}

// awaitSettlement polls the intent until it succeeds or the attempts run
// out. No sleep follows the last attempt.
func (s *CheckoutService) awaitSettlement(ctx context.Context, intentID string) (payment.Intent, error) {
	if s.gateway == nil {
		return payment.Intent{}, &Error{Kind: KindPaymentRequired, Message: "Payment error: " + payment.ErrNotConfigured.Error()}
	}

	var intent payment.Intent
	for attempt := 1; attempt <= s.attempts; attempt++ {
		var err error
		intent, err = s.gateway.RetrieveIntent(ctx, intentID)
		if err != nil {
			return payment.Intent{}, &Error{Kind: KindPaymentRequired, Message: "Payment error: " + err.Error(), Err: err}
		}
		if intent.Succeeded() {
			return intent, nil
		}

		logger.WithCtx(ctx).Warn("checkout: payment not settled yet",
			"payment_intent", intentID, "status", intent.Status, "attempt", attempt, "of", s.attempts)

		if attempt < s.attempts {
			select {
			case <-time.After(s.interval):
			case <-ctx.Done():
				return payment.Intent{}, internal("Checkout failed", ctx.Err())
			}
		}
	}
	return intent, &Error{Kind: KindPaymentRequired, Message: "Payment failed: " + intent.Status}
}

// priceLines checks every claimed line against the catalogue. It returns
// the order items at catalogue prices and the claimed total in dollars.
func (s *CheckoutService) priceLines(ctx context.Context, lines []CheckoutItem) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	claimedTotal := decimal.Zero

	for _, line := range lines {
		if line.ProductID == 0 {
			return nil, decimal.Zero, validation("Product ID is required for every cart item")
		}
		if line.Quantity < 1 {
			return nil, decimal.Zero, validation("Quantity must be at least 1 for product ID %d", line.ProductID)
		}

		product, err := s.store.Products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, lookup(err, "Product not found with ID: %d", line.ProductID)
		}

		claimed := line.Price.Shift(-2)
		if product.Price.Sub(claimed).Abs().GreaterThan(priceTolerance) {
			return nil, decimal.Zero, validation("Price mismatch for product ID %d: expected $%s, got $%s",
				line.ProductID, product.Price.StringFixed(2), claimed.StringFixed(2))
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		claimedTotal = claimedTotal.Add(claimed.Mul(qty))
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Product:   product,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, claimedTotal, nil
}

func checkAmount(expected, got decimal.Decimal) error {
	if expected.Sub(got).Abs().GreaterThan(priceTolerance) {
		return validation("Amount mismatch: expected $%s, got $%s", expected.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

// persist writes the order and clears the cart in one transaction. A
// concurrent checkout for the same intent loses the insert race on the
// unique intent id; it then retries once as an update.
func (s *CheckoutService) persist(ctx context.Context, user models.User, in CheckoutInput, items []models.OrderItem) (models.CustomerOrder, error) {
	var order models.CustomerOrder

	write := func(tx *repositories.Store) error {
		existing, err := tx.Orders.FindByPaymentIntent(ctx, in.PaymentIntentID)
		switch {
		case err == nil:
			if existing.UserID != user.ID {
				return forbidden("Payment intent belongs to another user")
			}
			order = existing
		case errors.Is(err, repositories.ErrNotFound):
			order = models.CustomerOrder{
				UserID:          user.ID,
				OrderDate:       s.now(),
				PaymentIntentID: in.PaymentIntentID,
			}
		default:
			return err
		}

		order.ShippingAddress = in.ShippingAddress
		order.Status = models.OrderStatusPaid
		order.ShipmentStatus = models.ShipmentPacking
		order.Items = append([]models.OrderItem(nil), items...)
		order.Total = decimal.Zero
		for _, it := range order.Items {
			order.Total = order.Total.Add(it.LineTotal())
		}

		if err := tx.Orders.Save(ctx, &order); err != nil {
			return err
		}
		_, err = tx.Carts.Clear(ctx, user.ID)
		return err
	}

	err := s.store.Transaction(ctx, write)
	if errors.Is(err, repositories.ErrDuplicate) {
		err = s.store.Transaction(ctx, write)
	}
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return models.CustomerOrder{}, err
		}
		return models.CustomerOrder{}, internal("Checkout failed", err)
	}

	return order, nil
}

// sendConfirmation mails the customer. It prefers the worker pool and
// falls back to sending inline when the pool is missing or saturated.
// Failures are logged and never undo the order.
func (s *CheckoutService) sendConfirmation(ctx context.Context, user models.User, order models.CustomerOrder) {
	if s.notifier == nil {
		return
	}
	send := func(ctx context.Context) error {
		return s.notifier.OrderConfirmation(ctx, user, order)
	}

	if s.pool != nil {
		err := s.pool.Submit("order-confirmation", send)
		if err == nil {
			return
		}
		logger.WithCtx(ctx).Warn("checkout: pool unavailable, mailing inline", "error", err)
	}

	if err := send(ctx); err != nil {
		logger.WithCtx(ctx).Error("checkout: confirmation email failed", "order_id", order.ID, "error", err)
	}
}

func failureReason(err error) string {
	msg := MessageOf(err)
	switch {
	case strings.HasPrefix(msg, "Price mismatch"):
		return "price_mismatch"
	case strings.HasPrefix(msg, "Amount mismatch"):
		return "amount_mismatch"
	}
	switch KindOf(err) {
	case KindPaymentRequired:
		return "payment"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// ── Payment intents ──────────────────────────────────────────────────────────

// CreatePaymentIntent prices the claimed items against the catalogue and,
// when the claimed amount matches, opens a payment intent for it.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (payment.Intent, error) {
	if in.UserID == 0 {
		return payment.Intent{}, validation("User ID is required")
	}
	if in.Amount.LessThan(decimal.NewFromInt(1)) {
		return payment.Intent{}, validation("Amount must be at least 1")
	}
	if _, err := s.store.Users.FindByID(ctx, in.UserID); err != nil {
		return payment.Intent{}, lookup(err, "User not found with ID: %d", in.UserID)
	}

	items, _, err := s.priceLines(ctx, in.Items)
	if err != nil {
		return payment.Intent{}, err
	}
	catalogTotal := decimal.Zero
	for _, it := range items {
		catalogTotal = catalogTotal.Add(it.LineTotal())
	}
	if err := checkAmount(catalogTotal, in.Amount.Shift(-2)); err != nil {
		return payment.Intent{}, err
	}

	if s.gateway == nil {
		return payment.Intent{}, internal("Stripe error", payment.ErrNotConfigured)
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = config.StripeCurrency()
	}

	meta := map[string]string{payment.MetaUserID: strconv.FormatUint(uint64(in.UserID), 10)}
	intent, err := s.gateway.CreateIntent(ctx, in.Amount.Round(0).IntPart(), currency, meta)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("create", "error").Inc()
		return payment.Intent{}, internal("Stripe error", err)
	}
	metrics.PaymentIntents.WithLabelValues("create", "ok").Inc()

	logger.WithCtx(ctx).Info("payment: intent created", "payment_intent", intent.ID, "user_id", in.UserID, "amount", intent.Amount)
	return intent, nil
}

// ConfirmPaymentIntent confirms userID's intent when it still needs
// confirmation or action. A succeeded intent is returned unchanged; any other
// status is refused. Intents opened by, or already ordered by, someone else
// are forbidden.
func (s *CheckoutService) ConfirmPaymentIntent(ctx context.Context, userID uint, intentID string) (payment.Intent, error) {
	if userID == 0 {
		return payment.Intent{}, validation("User ID is required")
	}
	if strings.TrimSpace(intentID) == "" {
		return payment.Intent{}, validation("Payment intent ID is required")
	}
	if s.gateway == nil {
		return payment.Intent{}, internal("Stripe error", payment.ErrNotConfigured)
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("confirm", "error").Inc()
		return payment.Intent{}, internal("Stripe error", err)
	}
	if err := s.checkIntentOwner(ctx, userID, intent); err != nil {
		return payment.Intent{}, err
	}

	switch intent.Status {
	case payment.StatusSucceeded:
	case payment.StatusRequiresConfirmation, payment.StatusRequiresAction:
		intent, err = s.gateway.ConfirmIntent(ctx, intentID)
		if err != nil {
			metrics.PaymentIntents.WithLabelValues("confirm", "error").Inc()
			return payment.Intent{}, internal("Stripe error", err)
		}
	default:
		metrics.PaymentIntents.WithLabelValues("confirm", "rejected").Inc()
		return payment.Intent{}, validation("Payment intent status invalid: %s", intent.Status)
	}

	metrics.PaymentIntents.WithLabelValues("confirm", "ok").Inc()
	return intent, nil
}

// checkIntentOwner refuses an intent tagged for another user or already
// backing another user's order.
func (s *CheckoutService) checkIntentOwner(ctx context.Context, userID uint, intent payment.Intent) error {
	if !openedBy(intent, userID) {
		return forbidden("Payment intent belongs to another user")
	}
	order, err := s.store.Orders.FindByPaymentIntent(ctx, intent.ID)
	switch {
	case err == nil:
		if order.UserID != userID {
			return forbidden("Payment intent belongs to another user")
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return internal("Database error", err)
	}
	return nil
}

// openedBy reports whether intent was opened by userID. Untagged intents
// pass.
func openedBy(intent payment.Intent, userID uint) bool {
	owner := intent.Metadata[payment.MetaUserID]
	return owner == "" || owner == strconv.FormatUint(uint64(userID), 10)
}
