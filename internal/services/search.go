package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/models"
)

const productsIndex = "products"

// SearchService indexe les produits dans Elasticsearch et sert la recherche.
// Sans client Elastic (non configuré ou injoignable), il retombe sur un
// LIKE SQL — le storefront reste cherchable en mode dégradé.
type SearchService struct {
	es *elasticsearch.Client
	db *gorm.DB
}

func NewSearchService(es *elasticsearch.Client, db *gorm.DB) *SearchService {
	return &SearchService{es: es, db: db}
}

// IndexProduct indexe un produit (appelé en goroutine après chaque écriture catalogue)
func (s *SearchService) IndexProduct(p models.Product) {
	if s.es == nil {
		return
	}

	doc := map[string]interface{}{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"tags":        p.Tags,
		"price":       p.Price,
		"is_active":   p.IsActive,
	}
	data, _ := json.Marshal(doc)

	req := esapi.IndexRequest{
		Index:      productsIndex,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), s.es)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Title, res.String())
	}
}

// DeleteProduct retire un produit de l'index
func (s *SearchService) DeleteProduct(id string) {
	if s.es == nil {
		return
	}

	req := esapi.DeleteRequest{Index: productsIndex, DocumentID: id}
	res, err := req.Do(context.Background(), s.es)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	res.Body.Close()
}

// Search cherche des produits par nom, description ou tags
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	if s.es == nil {
		return s.sqlFallback(ctx, query, limit)
	}

	ids, err := s.elasticSearch(ctx, query, limit)
	if err != nil {
		log.Println("⚠️ Recherche Elastic en échec, repli SQL:", err)
		return s.sqlFallback(ctx, query, limit)
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, err
	}

	// Réordonne selon la pertinence Elastic
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *SearchService) elasticSearch(ctx context.Context, query string, limit int) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "description", "tags"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_active": true},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{productsIndex},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errFromResponse(res)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (s *SearchService) sqlFallback(ctx context.Context, query string, limit int) ([]models.Product, error) {
	like := "%" + query + "%"
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like).
		Limit(limit).
		Find(&products).Error
	return products, err
}

type elasticError struct {
	status string
}

func (e *elasticError) Error() string {
	return "elasticsearch: " + e.status
}

func errFromResponse(res *esapi.Response) error {
	return &elasticError{status: res.Status()}
}
