package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
)

// Pricing regroupe les règles de calcul du checkout
type Pricing struct {
	Currency         string
	ShippingFlatRate float64
	FreeShippingOver float64
	TaxRate          float64
}

func PricingFromConfig() Pricing {
	return Pricing{
		Currency:         config.C.Currency,
		ShippingFlatRate: config.C.ShippingFlatRate,
		FreeShippingOver: config.C.FreeShippingOver,
		TaxRate:          config.C.TaxRate,
	}
}

// OrdersService orchestre le checkout et l'historique de commandes
type OrdersService struct {
	db      *gorm.DB
	pricing Pricing
}

func NewOrdersService(db *gorm.DB, pricing Pricing) *OrdersService {
	return &OrdersService{db: db, pricing: pricing}
}

// CheckoutItemInput : ligne soumise au checkout. Pour un produit à variantes,
// soit variant_id est fourni, soit les options sélectionnées (la meilleure
// variante est alors résolue côté serveur).
type CheckoutItemInput struct {
	ProductID string            `json:"product_id"`
	VariantID string            `json:"variant_id,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Quantity  int               `json:"quantity"`
}

type CheckoutInput struct {
	UserID  string              `json:"-"`
	Email   string              `json:"email"`
	Name    string              `json:"name"`
	Phone   string              `json:"phone"`
	Address models.Address      `json:"address"`
	Items   []CheckoutItemInput `json:"items"`
}

// Checkout valide le contact et le stock, calcule les totaux, génère le
// numéro de commande et crée commande + lignes + paiement en décrémentant
// le stock, le tout dans UNE transaction (isolation par la base, aucun
// verrou applicatif).
func (s *OrdersService) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if err := validateContact(in); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, problem.BadRequest("le panier est vide")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, problem.BadRequest("quantité invalide pour " + item.ProductID)
		}
	}

	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []models.OrderItem
		var subtotal float64

		for _, item := range in.Items {
			line, err := s.buildLine(tx, item)
			if err != nil {
				return err
			}
			lines = append(lines, *line)
			subtotal += line.LineTotal
		}

		subtotal = round2(subtotal)
		shipping := s.pricing.ShippingFlatRate
		if s.pricing.FreeShippingOver > 0 && subtotal >= s.pricing.FreeShippingOver {
			shipping = 0
		}
		tax := round2(subtotal * s.pricing.TaxRate)
		total := round2(subtotal + shipping + tax)

		number, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			ID:                uuid.NewString(),
			Number:            number,
			UserID:            in.UserID,
			Email:             in.Email,
			Name:              in.Name,
			Phone:             in.Phone,
			Status:            models.OrderStatusPending,
			PaymentStatus:     models.PaymentStatusPending,
			FulfillmentStatus: models.FulfillmentUnfulfilled,
			Subtotal:          subtotal,
			ShippingTotal:     shipping,
			TaxTotal:          tax,
			Total:             total,
			Currency:          s.pricing.Currency,
			ShippingAddress:   in.Address,
			Items:             lines,
			Payments: []models.Payment{{
				ID:       uuid.NewString(),
				Provider: "stripe",
				Amount:   total,
				Currency: s.pricing.Currency,
				Status:   models.PaymentStatusPending,
			}},
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, translateOrderErr(err)
	}

	return &order, nil
}

// buildLine résout produit/variante, vérifie et décrémente le stock,
// et fige l'instantané de la ligne (titre, SKU, prix unitaire).
func (s *OrdersService) buildLine(tx *gorm.DB, item CheckoutItemInput) (*models.OrderItem, error) {
	var product models.Product
	if err := tx.Where("id = ? AND is_active = ?", item.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, problem.NotFound("produit introuvable: " + item.ProductID)
		}
		return nil, err
	}

	title := product.Title
	sku := product.SKU
	price := product.Price
	variantID := ""

	if product.HasVariants {
		variant, err := s.resolveCheckoutVariant(tx, product.ID, item)
		if err != nil {
			return nil, err
		}

		// Décrément garanti : échoue si le stock est devenu insuffisant
		res := tx.Model(&models.ProductVariant{}).
			Where("id = ? AND stock >= ?", variant.ID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, problem.InsufficientStock(variant.SKU, variant.Stock, item.Quantity)
		}

		if variant.Title != "" {
			title = fmt.Sprintf("%s — %s", product.Title, variant.Title)
		}
		sku = variant.SKU
		price = variant.Price
		variantID = variant.ID
	} else {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, problem.InsufficientStock(sku, product.Stock, item.Quantity)
		}
	}

	return &models.OrderItem{
		ProductID: product.ID,
		VariantID: variantID,
		Title:     title,
		SKU:       sku,
		UnitPrice: price,
		Quantity:  item.Quantity,
		LineTotal: round2(price * float64(item.Quantity)),
	}, nil
}

func (s *OrdersService) resolveCheckoutVariant(tx *gorm.DB, productID string, item CheckoutItemInput) (*models.ProductVariant, error) {
	if item.VariantID != "" {
		var variant models.ProductVariant
		err := tx.Where("id = ? AND product_id = ? AND is_active = ?", item.VariantID, productID, true).
			First(&variant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, problem.NotFound("variante introuvable: " + item.VariantID)
			}
			return nil, err
		}
		return &variant, nil
	}

	var variants []models.ProductVariant
	if err := tx.Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at").Find(&variants).Error; err != nil {
		return nil, err
	}

	variant := MatchVariant(variants, item.Options)
	if variant == nil {
		return nil, problem.Unprocessable("no-matching-variant", "Aucune variante disponible",
			"aucune variante ne correspond à la sélection pour "+productID)
	}
	return variant, nil
}

// nextOrderNumber génère un numéro lisible YYMMDD-NNNNN (séquence du jour).
// L'index unique sur number attrape les collisions concurrentes : le client
// reçoit un 409 et re-soumet, pas de retry automatique côté serveur.
func nextOrderNumber(tx *gorm.DB) (string, error) {
	prefix := time.Now().Format("060102")

	var count int64
	if err := tx.Model(&models.Order{}).
		Where("number LIKE ?", prefix+"-%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%05d", prefix, count+1), nil
}

// AttachPaymentIntent enregistre l'ID du PaymentIntent Stripe sur le paiement
func (s *OrdersService) AttachPaymentIntent(ctx context.Context, orderID, intentID string) error {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
		Update("provider_id", intentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return problem.NotFound("paiement en attente introuvable pour la commande " + orderID)
	}
	return nil
}

// MarkPaymentSucceeded confirme la commande à réception du webhook Stripe
func (s *OrdersService) MarkPaymentSucceeded(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("provider_id = ?", intentID).First(&payment).Error; err != nil {
			return err
		}

		if err := tx.Model(&payment).Update("status", models.PaymentStatusPaid).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"status":         models.OrderStatusConfirmed,
			}).Error; err != nil {
			return err
		}

		return tx.Preload("Items").Where("id = ?", payment.OrderID).First(&order).Error
	})
	if err != nil {
		return nil, translateOrderErr(err)
	}

	return &order, nil
}

// MarkPaymentFailed marque le paiement échoué (la commande reste pending)
func (s *OrdersService) MarkPaymentFailed(ctx context.Context, intentID string) error {
	return s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("provider_id = ?", intentID).
		Update("status", models.PaymentStatusFailed).Error
}

// ListUserOrders retourne l'historique de commandes de l'utilisateur
func (s *OrdersService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *OrdersService) GetUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Payments").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, translateOrderErr(err)
	}
	return &order, nil
}

// TrackOrder : suivi invité par numéro + email (les invités n'ont pas de compte)
func (s *OrdersService) TrackOrder(ctx context.Context, number, email string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("number = ? AND email = ?", number, email).
		First(&order).Error
	if err != nil {
		return nil, translateOrderErr(err)
	}
	return &order, nil
}

func validateContact(in CheckoutInput) error {
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return problem.BadRequest("adresse e-mail manquante ou invalide")
	}
	if strings.TrimSpace(in.Name) == "" {
		return problem.BadRequest("nom manquant")
	}
	return nil
}

func translateOrderErr(err error) error {
	var p *problem.Problem
	if errors.As(err, &p) {
		return p
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return problem.NotFound("commande introuvable")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return problem.Conflict("duplicate-order-number",
			"numéro de commande déjà utilisé, veuillez re-soumettre la commande")
	}
	return err
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
