package services

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/utils"
)

// ContactService enregistre les messages de contact et notifie la boîte du shop
type ContactService struct {
	db *gorm.DB

	// notify est remplaçable dans les tests (pas de SMTP)
	notify func(models.ContactMessage) error
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db, notify: utils.SendContactNotification}
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, problem.BadRequest("nom manquant")
	}
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return nil, problem.BadRequest("adresse e-mail manquante ou invalide")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, problem.BadRequest("message vide")
	}

	msg := models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}

	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	// Notification hors du chemin de requête
	if s.notify != nil {
		go func(m models.ContactMessage) {
			if err := s.notify(m); err != nil {
				log.Printf("⚠️ Erreur notification contact #%d: %v", m.ID, err)
			}
		}(msg)
	}

	return &msg, nil
}
