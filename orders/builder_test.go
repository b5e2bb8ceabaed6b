package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restolive/backend/models"
)

func floatPtr(v float64) *float64 { return &v }

func deliveryInput() BuildInput {
	return BuildInput{
		CustomerName:    "Budi",
		CustomerPhone:   "081234567890",
		DeliveryMethod:  models.DeliveryMethodDelivery,
		DeliveryArea:    "Kemang",
		DeliveryAddress: "Jl. Kemang Raya 12",
		CustomerLat:     floatPtr(-6.26),
		CustomerLng:     floatPtr(106.81),
		PaymentMethod:   models.PaymentMethodCash,
		Cart: []models.CartItem{
			{MenuItemID: 1, Name: "Nasi Goreng", Price: 25.50, Quantity: 2},
			{MenuItemID: 2, Name: "Es Teh", Price: 8.00, Quantity: 1},
		},
		DeliveryPrice: 5,
	}
}

func TestBuildComputesTotals(t *testing.T) {
	s := newStubStore()
	b := NewBuilder(s)

	order, err := b.Build(s.branch, deliveryInput())
	require.NoError(t, err)

	assert.Equal(t, 59.00, order.ItemsTotal)
	assert.Equal(t, 5.00, order.DeliveryPrice)
	assert.Equal(t, 64.00, order.TotalAmount)

	require.Len(t, order.Items, 2)
	assert.Equal(t, 51.00, order.Items[0].Subtotal)
	assert.Equal(t, 8.00, order.Items[1].Subtotal)
	assert.Equal(t, "Nasi Goreng", order.Items[0].ItemName)
	assert.Equal(t, uint(1), order.Items[0].MenuItemID)

	assert.Equal(t, "Warung Sedap", order.RestaurantName)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "ORD-20260828-0001", order.OrderNumber)
}

func TestBuildPickupDropsDeliveryFields(t *testing.T) {
	s := newStubStore()
	b := NewBuilder(s)

	in := deliveryInput()
	in.DeliveryMethod = models.DeliveryMethodPickup
	in.DeliveryPrice = 5

	order, err := b.Build(s.branch, in)
	require.NoError(t, err)

	assert.Equal(t, 0.00, order.DeliveryPrice)
	assert.Equal(t, order.ItemsTotal, order.TotalAmount)
	assert.Empty(t, order.DeliveryArea)
	assert.Nil(t, order.CustomerLat)
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuildInput)
		field  string
	}{
		{"empty cart", func(in *BuildInput) { in.Cart = nil }, "cart"},
		{"zero quantity", func(in *BuildInput) { in.Cart[0].Quantity = 0 }, "cart"},
		{"missing name", func(in *BuildInput) { in.CustomerName = "" }, "customer_name"},
		{"bad phone", func(in *BuildInput) { in.CustomerPhone = "12345" }, "customer_phone"},
		{"delivery without area", func(in *BuildInput) { in.DeliveryArea = "" }, "delivery_area"},
		{"delivery without location", func(in *BuildInput) { in.CustomerLat = nil }, "customer_location"},
		{"bad delivery method", func(in *BuildInput) { in.DeliveryMethod = "drone" }, "delivery_method"},
		{"bad payment method", func(in *BuildInput) { in.PaymentMethod = "gold" }, "payment_method"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStubStore()
			b := NewBuilder(s)

			in := deliveryInput()
			tc.mutate(&in)

			_, err := b.Build(s.branch, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestPickupNeedsNoAreaOrLocation(t *testing.T) {
	s := newStubStore()
	b := NewBuilder(s)

	in := deliveryInput()
	in.DeliveryMethod = models.DeliveryMethodPickup
	in.DeliveryArea = ""
	in.CustomerLat = nil
	in.CustomerLng = nil

	_, err := b.Build(s.branch, in)
	assert.NoError(t, err)
}

func TestOrderNumberFallback(t *testing.T) {
	s := newStubStore()
	s.orderNumberErr = errBoom
	b := NewBuilder(s)

	order, err := b.Build(s.branch, deliveryInput())
	require.NoError(t, err)

	// The fallback has to stay distinguishable from generator numbers.
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-F-"), order.OrderNumber)
	assert.NotEmpty(t, strings.TrimPrefix(order.OrderNumber, "ORD-F-"))
}
