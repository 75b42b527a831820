package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
)

// Seuil d'alerte stock bas du tableau de bord
const lowStockThreshold = 5

// AdminService : requêtes du back-office (commandes, stats, messages)
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
	Page          int
	PerPage       int
}

func (s *AdminService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 25
	}

	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&orders).Error

	return orders, total, err
}

func (s *AdminService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Payments").
		Where("id = ? OR number = ?", id, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, problem.NotFound("commande introuvable: " + id)
		}
		return nil, err
	}
	return &order, nil
}

// Transitions autorisées par champ de statut
var orderTransitions = map[string]map[string][]string{
	"status": {
		models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
		models.OrderStatusConfirmed: {models.OrderStatusCompleted, models.OrderStatusCancelled},
	},
	"payment_status": {
		models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusFailed},
		models.PaymentStatusPaid:    {models.PaymentStatusRefunded},
	},
	"fulfillment_status": {
		models.FulfillmentUnfulfilled: {models.FulfillmentShipped},
		models.FulfillmentShipped:     {models.FulfillmentDelivered},
	},
}

// UpdateOrderStatus change un des trois statuts en validant la transition
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID, field, value string) (*models.Order, error) {
	transitions, ok := orderTransitions[field]
	if !ok {
		return nil, problem.BadRequest("champ de statut inconnu: " + field)
	}

	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return problem.NotFound("commande introuvable: " + orderID)
			}
			return err
		}

		current := map[string]string{
			"status":             order.Status,
			"payment_status":     order.PaymentStatus,
			"fulfillment_status": order.FulfillmentStatus,
		}[field]

		if !contains(transitions[current], value) {
			return problem.Conflict("invalid-transition",
				fmt.Sprintf("transition interdite: %s %q → %q", field, current, value))
		}

		if err := tx.Model(&order).Update(field, value).Error; err != nil {
			return err
		}

		return tx.Preload("Items").Where("id = ?", orderID).First(&order).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

type DayRevenue struct {
	Day     string  `json:"day"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type DashboardStats struct {
	TotalOrders      int64                   `json:"total_orders"`
	PendingOrders    int64                   `json:"pending_orders"`
	Revenue          float64                 `json:"revenue"` // commandes payées
	RevenueByDay     []DayRevenue            `json:"revenue_by_day"`
	LowStockVariants []models.ProductVariant `json:"low_stock_variants"`
	UnhandledContact int64                   `json:"unhandled_contact"`
}

func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		return nil, err
	}

	// Chiffre d'affaires des 7 derniers jours
	since := time.Now().AddDate(0, 0, -6).Truncate(24 * time.Hour)
	rows := []struct {
		Day     string
		Orders  int64
		Revenue float64
	}{}
	if err := db.Model(&models.Order{}).
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusPaid, since).
		Select("DATE(created_at) AS day, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Group("DATE(created_at)").
		Order("day").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.RevenueByDay = append(stats.RevenueByDay, DayRevenue(r))
	}

	if err := db.Where("is_active = ? AND stock < ?", true, lowStockThreshold).
		Order("stock").
		Limit(20).
		Find(&stats.LowStockVariants).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.ContactMessage{}).
		Where("handled = ?", false).
		Count(&stats.UnhandledContact).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *AdminService) ListContactMessages(ctx context.Context, onlyUnhandled bool) ([]models.ContactMessage, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if onlyUnhandled {
		q = q.Where("handled = ?", false)
	}

	var messages []models.ContactMessage
	err := q.Find(&messages).Error
	return messages, err
}

func (s *AdminService) MarkContactHandled(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("handled", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return problem.NotFound("message introuvable")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
