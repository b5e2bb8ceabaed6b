package orders

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
	"github.com/restolive/backend/utils"
)

// Local mobile numbers: +62 / 62 / 08 prefix followed by 8-12 digits.
var phonePattern = regexp.MustCompile(`^(\+62|62|08)[0-9]{8,12}$`)

// BuildInput is everything the customer submits to place an order, plus the
// delivery price already quoted by the distance service (zero and ignored for
// pickup).
type BuildInput struct {
	CustomerName   string                `json:"customer_name"`
	CustomerPhone  string                `json:"customer_phone"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method"`

	DeliveryArea    string   `json:"delivery_area"`
	DeliveryAddress string   `json:"delivery_address"`
	DeliveryNotes   string   `json:"delivery_notes"`
	CustomerLat     *float64 `json:"customer_lat"`
	CustomerLng     *float64 `json:"customer_lng"`

	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Cart          []models.CartItem    `json:"cart"`
	DeliveryPrice float64              `json:"delivery_price"`
}

// Builder assembles a validated Order draft (items attached) from a cart.
// Totals are computed here from the cart snapshot; prices are honored as the
// customer saw them at cart-build time.
type Builder struct {
	Store store.Store
}

func NewBuilder(s store.Store) *Builder {
	return &Builder{Store: s}
}

// Validate runs the field checks without building anything, so the caller
// can fail fast before availability reconciliation burns an order number.
func (b *Builder) Validate(in BuildInput) error {
	if verr := validate(in); len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validate(in BuildInput) *ValidationError {
	verr := newValidationError()

	if len(in.Cart) == 0 {
		verr.add("cart", "cart must not be empty")
	}
	for _, ci := range in.Cart {
		if ci.Quantity < 1 {
			verr.add("cart", fmt.Sprintf("item %q: quantity must be at least 1", ci.Name))
		}
	}
	if in.CustomerName == "" {
		verr.add("customer_name", "customer name is required")
	}
	if !phonePattern.MatchString(in.CustomerPhone) {
		verr.add("customer_phone", "not a valid local mobile number")
	}

	switch in.DeliveryMethod {
	case models.DeliveryMethodDelivery:
		if in.DeliveryArea == "" {
			verr.add("delivery_area", "delivery area is required for delivery orders")
		}
		if in.CustomerLat == nil || in.CustomerLng == nil {
			verr.add("customer_location", "a captured location is required for delivery orders")
		}
	case models.DeliveryMethodPickup:
	default:
		verr.add("delivery_method", "must be 'delivery' or 'pickup'")
	}

	switch in.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodCard:
	default:
		verr.add("payment_method", "must be 'cash' or 'card'")
	}

	return verr
}

// Build validates the input and produces the order draft with server-side
// totals and a freshly assigned order number.
func (b *Builder) Build(branch *models.Branch, in BuildInput) (*models.Order, error) {
	if verr := validate(in); len(verr.Fields) > 0 {
		return nil, verr
	}

	now := time.Now()
	order := &models.Order{
		OrderNumber:    b.nextOrderNumber(),
		BranchID:       branch.ID,
		RestaurantName: branch.RestaurantName,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		DeliveryMethod: in.DeliveryMethod,
		PaymentMethod:  in.PaymentMethod,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.DeliveryMethod == models.DeliveryMethodDelivery {
		order.DeliveryArea = in.DeliveryArea
		order.DeliveryAddress = in.DeliveryAddress
		order.DeliveryNotes = in.DeliveryNotes
		order.CustomerLat = in.CustomerLat
		order.CustomerLng = in.CustomerLng
		order.DeliveryPrice = in.DeliveryPrice
	}

	order.Items = make([]models.OrderItem, 0, len(in.Cart))
	for _, ci := range in.Cart {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: ci.MenuItemID,
			ItemName:   ci.Name,
			ItemPrice:  ci.Price,
			Quantity:   ci.Quantity,
			Subtotal:   ci.Subtotal(),
		})
		order.ItemsTotal += ci.Subtotal()
	}
	order.TotalAmount = order.ItemsTotal + order.DeliveryPrice

	return order, nil
}

// nextOrderNumber asks the store's generator and falls back to a time-derived
// unique string, so order placement never blocks on generator trouble. The
// fallback keeps a distinct ORD-F- prefix so these stand out operationally.
func (b *Builder) nextOrderNumber() string {
	number, err := b.Store.GenerateOrderNumber()
	if err != nil {
		utils.ErrorLogger.Printf("order number generator unavailable, using fallback: %v", err)
		return "ORD-F-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return number
}
