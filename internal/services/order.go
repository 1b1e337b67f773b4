package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/commerce-app/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promo codes are a fixed flat-discount format: PROMO- followed by exactly
// four uppercase alphanumerics.
var promoCodePattern = regexp.MustCompile(`^PROMO-[A-Z0-9]{4}$`)

var promoRate = decimal.RequireFromString("0.05")

// Loyalty discount brackets: a tier only earns its rate once the order
// subtotal reaches the tier threshold.
var loyaltyBrackets = map[models.CustomerTier]struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}{
	models.TierSilver:   {decimal.NewFromInt(500), decimal.RequireFromString("0.05")},
	models.TierGold:     {decimal.NewFromInt(800), decimal.RequireFromString("0.10")},
	models.TierPlatinum: {decimal.NewFromInt(1200), decimal.RequireFromString("0.15")},
}

// OrderService builds orders from catalog and loyalty state and drives the
// order status state machine. All monetary steps round half-up to 2 decimals
// as they happen, never deferred.
type OrderService struct {
	DB      *gorm.DB
	VATRate decimal.Decimal
}

func NewOrderService(db *gorm.DB, vatRate decimal.Decimal) *OrderService {
	return &OrderService{DB: db, VATRate: vatRate}
}

type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type CreateOrderInput struct {
	ClientID  uint
	Items     []OrderItemInput
	PromoCode string
}

// CreateOrder prices the requested items against current stock and the
// client's stored tier, decrements stock, and persists a PENDING order.
//
// On the first stock shortfall the order is still persisted, as REJECTED with
// all amounts zeroed, and CreateOrder returns that artifact together with an
// InsufficientStockError. Callers must treat a non-nil order alongside a
// non-nil error as that deliberate audit write, not as success.
func (s *OrderService) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	if in.ClientID == 0 {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidOrder)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}

	now := time.Now()
	var order *models.Order
	var stockErr *InsufficientStockError

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: client with id %d", ErrNotFound, in.ClientID)
			}
			return err
		}

		o := models.Order{
			ClientID:  client.ID,
			OrderDate: now,
			PromoCode: in.PromoCode,
		}

		// Products are loaded once and their stock decremented as items are
		// validated, so an order listing the same product twice cannot
		// reserve more than is actually there.
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(in.Items))
		loaded := map[uint]*models.Product{}
		var productIDs []uint
		for _, it := range in.Items {
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: item quantity must be positive", ErrInvalidOrder)
			}
			product, ok := loaded[it.ProductID]
			if !ok {
				var p models.Product
				if err := lockForUpdate(tx).First(&p, it.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: product with id %d", ErrNotFound, it.ProductID)
					}
					return err
				}
				product = &p
				loaded[it.ProductID] = product
				productIDs = append(productIDs, it.ProductID)
			}
			if product.IsDeleted {
				return fmt.Errorf("%w: product %s is no longer available", ErrInvalidOrder, product.Name)
			}
			if product.StockQuantity < it.Quantity {
				stockErr = &InsufficientStockError{
					ProductName: product.Name,
					Available:   product.StockQuantity,
					Requested:   it.Quantity,
				}
				return stockErr
			}
			product.StockQuantity -= it.Quantity
			lineTotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
			items = append(items, models.OrderItem{
				ProductID:  product.ID,
				Quantity:   it.Quantity,
				UnitPrice:  product.UnitPrice,
				TotalPrice: lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		o.Subtotal = subtotal.Round(2)

		discount := loyaltyDiscount(client.FidelityLevel, o.Subtotal)
		if in.PromoCode != "" {
			if !promoCodePattern.MatchString(in.PromoCode) {
				return fmt.Errorf("%w: invalid promo code format, must be PROMO-XXXX", ErrInvalidOrder)
			}
			discount = discount.Add(o.Subtotal.Mul(promoRate).Round(2))
		}
		o.Discount = discount.Round(2)

		discounted := o.Subtotal.Sub(o.Discount).Round(2)
		o.VAT = discounted.Mul(s.VATRate).Round(2)
		o.Total = discounted.Add(o.VAT).Round(2)
		o.Status = models.OrderStatusPending
		o.RemainingAmount = o.Total
		o.Items = items

		for _, id := range productIDs {
			if err := tx.Save(loaded[id]).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		order = &o
		return nil
	})
	if err != nil {
		if stockErr != nil {
			// The shortfall rollback is followed by one deliberate write: the
			// zeroed REJECTED order stays behind for auditability.
			rejected := models.Order{
				ClientID:        in.ClientID,
				OrderDate:       now,
				PromoCode:       in.PromoCode,
				Status:          models.OrderStatusRejected,
				Subtotal:        decimal.Zero,
				Discount:        decimal.Zero,
				VAT:             decimal.Zero,
				Total:           decimal.Zero,
				RemainingAmount: decimal.Zero,
			}
			if saveErr := s.DB.Create(&rejected).Error; saveErr != nil {
				return nil, saveErr
			}
			return &rejected, stockErr
		}
		return nil, err
	}
	return order, nil
}

func loyaltyDiscount(tier models.CustomerTier, subtotal decimal.Decimal) decimal.Decimal {
	bracket, ok := loyaltyBrackets[tier]
	if !ok || subtotal.LessThan(bracket.Threshold) {
		return decimal.Zero
	}
	return subtotal.Mul(bracket.Rate).Round(2)
}

// CancelOrder moves a PENDING order to CANCELED and restores the stock it
// had reserved.
func (s *OrderService) CancelOrder(orderID uint) (*models.Order, error) {
	return s.closeOrder(orderID, models.OrderStatusCanceled)
}

// RejectOrder moves a PENDING order to REJECTED and restores the stock it
// had reserved.
func (s *OrderService) RejectOrder(orderID uint) (*models.Order, error) {
	return s.closeOrder(orderID, models.OrderStatusRejected)
}

func (s *OrderService) closeOrder(orderID uint, target models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order with id %d", ErrNotFound, orderID)
			}
			return err
		}
		if !order.Status.CanTransition(target) {
			return fmt.Errorf("%w: cannot move order from %s to %s", ErrOrderStatus, order.Status, target)
		}
		for _, item := range order.Items {
			var product models.Product
			if err := lockForUpdate(tx).First(&product, item.ProductID).Error; err != nil {
				return err
			}
			product.StockQuantity += item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
		}
		order.Status = target
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", target).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder moves a PENDING order to CONFIRMED and folds its total into
// the client's loyalty statistics, recomputing the tier. The discount the
// order itself received was based on the tier before this update.
func (s *OrderService) ConfirmOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order with id %d", ErrNotFound, orderID)
			}
			return err
		}
		if !order.Status.CanTransition(models.OrderStatusConfirmed) {
			return fmt.Errorf("%w: cannot confirm order, current status %s", ErrOrderStatus, order.Status)
		}
		order.Status = models.OrderStatusConfirmed
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", models.OrderStatusConfirmed).Error; err != nil {
			return err
		}

		var client models.Client
		if err := lockForUpdate(tx).First(&client, order.ClientID).Error; err != nil {
			return err
		}
		client.TotalOrders++
		client.TotalSpent = client.TotalSpent.Add(order.Total)
		if client.FirstOrderAt == nil {
			orderDate := order.OrderDate
			client.FirstOrderAt = &orderDate
		}
		lastOrder := order.OrderDate
		client.LastOrderAt = &lastOrder
		client.FidelityLevel = models.TierFor(client.TotalOrders, client.TotalSpent)
		return tx.Save(&client).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByClient returns the client's orders, newest order date first.
func (s *OrderService) GetOrdersByClient(clientID uint) ([]models.Order, error) {
	var client models.Client
	if err := s.DB.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client with id %d", ErrNotFound, clientID)
		}
		return nil, err
	}
	var orders []models.Order
	if err := s.DB.Preload("Items").
		Where("client_id = ?", client.ID).
		Order("order_date desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
