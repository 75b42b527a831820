package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
)

func TestCheckoutComputesTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Bougie parfumée", "BG-001", 25.50, 10)

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, 51.00, order.Subtotal)
	assert.Equal(t, 5.90, order.ShippingTotal)
	assert.Equal(t, 10.71, order.TaxTotal) // 51.00 × 0.21
	assert.Equal(t, 67.61, order.Total)
	assert.Equal(t, "eur", order.Currency)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.FulfillmentUnfulfilled, order.FulfillmentStatus)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "BG-001", order.Items[0].SKU)
	assert.Equal(t, 25.50, order.Items[0].UnitPrice)
	assert.Equal(t, 51.00, order.Items[0].LineTotal)

	require.Len(t, order.Payments, 1)
	assert.Equal(t, "stripe", order.Payments[0].Provider)
	assert.Equal(t, order.Total, order.Payments[0].Amount)

	// Le stock est décrémenté dans la même transaction
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)
}

func TestCheckoutFreeShippingThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Plaid en laine", "PL-001", 40.00, 5)

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, 80.00, order.Subtotal)
	assert.Equal(t, 0.00, order.ShippingTotal) // franco dès 80 €
	assert.Equal(t, 16.80, order.TaxTotal)
	assert.Equal(t, 96.80, order.Total)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Vase", "VA-001", 30.00, 1)

	_, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 2},
	))

	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 422, pb.Status)
	assert.Contains(t, pb.Type, "insufficient-stock")

	// Rollback : rien n'est créé, le stock ne bouge pas
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)
}

func TestCheckoutRollsBackAllLinesOnFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	ok := seedProduct(t, db, "Tasse", "TA-001", 12.00, 10)
	empty := seedProduct(t, db, "Théière", "TH-001", 45.00, 0)

	_, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: ok.ID, Quantity: 3},
		CheckoutItemInput{ProductID: empty.ID, Quantity: 1},
	))
	require.Error(t, err)

	// La première ligne avait décrémenté : la transaction doit tout annuler
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", ok.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)
}

func TestCheckoutValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Savon", "SA-001", 6.50, 10)

	tests := []struct {
		name  string
		input CheckoutInput
	}{
		{"panier vide", validCheckout()},
		{"email manquant", CheckoutInput{
			Name:  "Jean Dupont",
			Items: []CheckoutItemInput{{ProductID: p.ID, Quantity: 1}},
		}},
		{"email invalide", CheckoutInput{
			Email: "pas-un-email",
			Name:  "Jean Dupont",
			Items: []CheckoutItemInput{{ProductID: p.ID, Quantity: 1}},
		}},
		{"nom manquant", CheckoutInput{
			Email: "client@example.com",
			Items: []CheckoutItemInput{{ProductID: p.ID, Quantity: 1}},
		}},
		{"quantité nulle", validCheckout(CheckoutItemInput{ProductID: p.ID, Quantity: 0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), tt.input)

			var pb *problem.Problem
			require.ErrorAs(t, err, &pb)
			assert.Equal(t, 400, pb.Status)
		})
	}
}

func TestCheckoutUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)

	_, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: "inconnu", Quantity: 1},
	))

	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 404, pb.Status)
}

func TestOrderNumberSequence(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Carnet", "CA-001", 9.90, 100)

	first, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)
	second, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	format := regexp.MustCompile(`^\d{6}-\d{5}$`)
	assert.Regexp(t, format, first.Number)
	assert.Regexp(t, format, second.Number)

	assert.Equal(t, first.Number[:7]+"00001", first.Number)
	assert.Equal(t, first.Number[:7]+"00002", second.Number)
}

func TestCheckoutDuplicateOrderNumberConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Carafe", "CF-001", 18.00, 10)

	// Une commande du jour porte déjà le numéro que la séquence du jour
	// (count+1) va produire : l'index unique doit refuser la collision
	prefix := time.Now().Format("060102")
	seedOrder(t, db, prefix+"-00002", models.OrderStatusPending, models.PaymentStatusPending, 18)

	_, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))

	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 409, pb.Status)
	assert.Contains(t, pb.Type, "duplicate-order-number")

	// La transaction est annulée : le stock n'a pas bougé
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)
}

func TestCheckoutResolvesVariantByOptions(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "T-shirt", "TS-000", 19.90, 0)
	redL := seedVariant(t, db, p.ID, "Rouge / L", "TS-RED-L", 21.90, 3, models.VariantOptions{
		{Name: "color", Value: "red"}, {Name: "size", Value: "L"},
	})
	seedVariant(t, db, p.ID, "Bleu / M", "TS-BLU-M", 19.90, 5, models.VariantOptions{
		{Name: "color", Value: "blue"}, {Name: "size", Value: "M"},
	})

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{
			ProductID: p.ID,
			Options:   map[string]string{"color": "red", "size": "L"},
			Quantity:  2,
		},
	))
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "TS-RED-L", order.Items[0].SKU)
	assert.Equal(t, redL.ID, order.Items[0].VariantID)
	assert.Equal(t, "T-shirt — Rouge / L", order.Items[0].Title)
	assert.Equal(t, 21.90, order.Items[0].UnitPrice)

	var reloaded models.ProductVariant
	require.NoError(t, db.First(&reloaded, "id = ?", redL.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)
}

func TestCheckoutVariantInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "T-shirt", "TS-100", 19.90, 0)
	v := seedVariant(t, db, p.ID, "Rouge / S", "TS-RED-S", 19.90, 1, models.VariantOptions{
		{Name: "color", Value: "red"}, {Name: "size", Value: "S"},
	})

	_, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, VariantID: v.ID, Quantity: 5},
	))

	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 422, pb.Status)
}

func TestOrderSnapshotSurvivesCatalogChanges(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Lampe", "LA-001", 59.00, 4)

	in := validCheckout(CheckoutItemInput{ProductID: p.ID, Quantity: 1})
	in.UserID = "user-1"
	order, err := svc.Checkout(context.Background(), in)
	require.NoError(t, err)

	// Le catalogue évolue après la commande
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"title": "Lampe v2", "price": 79.00}).Error)

	got, err := svc.GetUserOrder(context.Background(), "user-1", order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Lampe", got.Items[0].Title)
	assert.Equal(t, 59.00, got.Items[0].UnitPrice)
}

func TestGetUserOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Miroir", "MI-001", 35.00, 3)

	in := validCheckout(CheckoutItemInput{ProductID: p.ID, Quantity: 1})
	in.UserID = "user-1"
	order, err := svc.Checkout(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.GetUserOrder(context.Background(), "user-2", order.ID)
	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 404, pb.Status)
}

func TestTrackOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Coussin", "CO-001", 22.00, 6)

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	got, err := svc.TrackOrder(context.Background(), order.Number, "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// Le suivi invité exige le bon couple numéro + e-mail
	_, err = svc.TrackOrder(context.Background(), order.Number, "autre@example.com")
	var pb *problem.Problem
	require.ErrorAs(t, err, &pb)
	assert.Equal(t, 404, pb.Status)
}

func TestPaymentLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Horloge", "HO-001", 48.00, 2)

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	require.NoError(t, svc.AttachPaymentIntent(context.Background(), order.ID, "pi_test_123"))

	confirmed, err := svc.MarkPaymentSucceeded(context.Background(), "pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "provider_id = ?", "pi_test_123").Error)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
}

func TestMarkPaymentFailedKeepsOrderPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Cadre", "CD-001", 15.00, 2)

	order, err := svc.Checkout(context.Background(), validCheckout(
		CheckoutItemInput{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	require.NoError(t, svc.AttachPaymentIntent(context.Background(), order.ID, "pi_test_456"))
	require.NoError(t, svc.MarkPaymentFailed(context.Background(), "pi_test_456"))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "provider_id = ?", "pi_test_456").Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestListUserOrders(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrdersService(db, testPricing)
	p := seedProduct(t, db, "Bol", "BO-001", 8.00, 20)

	for i := 0; i < 3; i++ {
		in := validCheckout(CheckoutItemInput{ProductID: p.ID, Quantity: 1})
		in.UserID = "user-1"
		_, err := svc.Checkout(context.Background(), in)
		require.NoError(t, err)
	}
	guest := validCheckout(CheckoutItemInput{ProductID: p.ID, Quantity: 1})
	_, err := svc.Checkout(context.Background(), guest)
	require.NoError(t, err)

	orders, err := svc.ListUserOrders(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
