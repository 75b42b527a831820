package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neetrino/whiteshop/internal/models"
)

// Le panier vit 30 jours sans activité
const cartTTL = 30 * 24 * time.Hour

// CartStore garde les paniers des utilisateurs connectés dans Redis
// (clé cart:<user_id>, JSON). Les invités gardent le leur côté client
// et le soumettent au checkout. Chaque mutation publie un événement
// sur le canal du panier pour la synchro WebSocket.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (s *CartStore) Get(ctx context.Context, userID string) (models.Cart, error) {
	cart := models.Cart{UserID: userID, Items: []models.CartItem{}}

	data, err := s.rdb.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil || data == "" {
		return cart, nil // panier vide
	}
	if err != nil {
		return cart, err
	}

	if err := json.Unmarshal([]byte(data), &cart.Items); err != nil {
		return cart, err
	}
	return cart, nil
}

func (s *CartStore) save(ctx context.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return err
	}
	return s.publish(ctx, userID, "updated")
}

// Add fusionne l'article avec une ligne existante (même produit + variante)
func (s *CartStore) Add(ctx context.Context, userID string, item models.CartItem) (models.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return cart, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID && cart.Items[i].VariantID == item.VariantID {
			cart.Items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}

	return cart, s.save(ctx, userID, cart.Items)
}

// UpdateQuantity fixe la quantité d'une ligne ; 0 la retire
func (s *CartStore) UpdateQuantity(ctx context.Context, userID, productID, variantID string, quantity int) (models.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return cart, err
	}

	items := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID == productID && it.VariantID == variantID {
			if quantity <= 0 {
				continue
			}
			it.Quantity = quantity
		}
		items = append(items, it)
	}
	cart.Items = items

	return cart, s.save(ctx, userID, cart.Items)
}

func (s *CartStore) Remove(ctx context.Context, userID, productID, variantID string) (models.Cart, error) {
	return s.UpdateQuantity(ctx, userID, productID, variantID, 0)
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return err
	}
	return s.publish(ctx, userID, "cleared")
}

func (s *CartStore) publish(ctx context.Context, userID, event string) error {
	return s.rdb.Publish(ctx, cartKey(userID), event).Err()
}

// Subscribe ouvre l'abonnement pub/sub du panier (synchro temps réel)
func (s *CartStore) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, cartKey(userID))
}
