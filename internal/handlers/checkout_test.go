package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCheckoutRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	pricing := services.Pricing{
		Currency:         "eur",
		ShippingFlatRate: 5.90,
		FreeShippingOver: 80,
		TaxRate:          0.21,
	}
	h := NewCheckoutHandler(services.NewOrdersService(db, pricing), nil)

	stripe.Key = "" // pas de PaymentIntent en test

	r := gin.New()
	r.POST("/checkout", h.Checkout)
	return r, db
}

func TestCheckoutHandlerGuestFlow(t *testing.T) {
	r, db := newCheckoutRouter(t)

	product := models.Product{
		ID: uuid.NewString(), Title: "Bougie", SKU: "BG-WEB-1", Price: 25.50, Stock: 10, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"email": "invite@example.com",
		"name":  "Marie Curie",
		"address": map[string]string{
			"street": "1 rue Haute", "city": "Bruxelles", "postalCode": "1000", "country": "BE",
		},
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 2},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order        models.Order `json:"order"`
		ClientSecret string       `json:"client_secret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Regexp(t, `^\d{6}-\d{5}$`, resp.Order.Number)
	assert.Equal(t, 67.61, resp.Order.Total)
	assert.Empty(t, resp.Order.UserID) // invité
	assert.Empty(t, resp.ClientSecret) // Stripe désactivé

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)
}

func TestCheckoutHandlerMissingEmail(t *testing.T) {
	r, db := newCheckoutRouter(t)

	product := models.Product{
		ID: uuid.NewString(), Title: "Vase", SKU: "VA-WEB-1", Price: 30, Stock: 5, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Marie Curie",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, problem.ContentType, w.Header().Get("Content-Type"))

	var pb problem.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pb))
	assert.Equal(t, http.StatusBadRequest, pb.Status)
}

// Un échec Stripe après la création de la commande ne doit pas la faire
// disparaître : le client reçoit sa commande (201) sans client_secret,
// en paiement hors ligne.
func TestCheckoutHandlerStripeFailureFallsBackToOffline(t *testing.T) {
	r, db := newCheckoutRouter(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"type": "api_error", "message": "indisponible"}}`))
	}))
	defer srv.Close()

	stripe.Key = "sk_test_indisponible"
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend,
		&stripe.BackendConfig{URL: stripe.String(srv.URL)}))
	defer func() {
		stripe.Key = ""
		stripe.SetBackend(stripe.APIBackend, nil)
	}()

	product := models.Product{
		ID: uuid.NewString(), Title: "Tasse", SKU: "TA-WEB-1", Price: 12, Stock: 5, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"email": "invite@example.com",
		"name":  "Marie Curie",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order        models.Order `json:"order"`
		ClientSecret string       `json:"client_secret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^\d{6}-\d{5}$`, resp.Order.Number)
	assert.Empty(t, resp.ClientSecret)

	// Une seule commande, un seul décrément : rien à re-soumettre
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 4, reloaded.Stock)
}

func TestCheckoutHandlerInsufficientStock(t *testing.T) {
	r, db := newCheckoutRouter(t)

	product := models.Product{
		ID: uuid.NewString(), Title: "Plaid", SKU: "PL-WEB-1", Price: 40, Stock: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"email": "invite@example.com",
		"name":  "Marie Curie",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 3},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var pb problem.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pb))
	assert.Contains(t, pb.Type, "insufficient-stock")
	assert.Contains(t, pb.Detail, "PL-WEB-1")
}
