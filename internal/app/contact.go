package app

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// ContactRequest is the validated contact-form payload. Delivery is handled
// elsewhere; this service only records the message.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

type ContactService struct {
	repo     domain.PropertyRepository
	validate *validator.Validate
}

func NewContactService(r domain.PropertyRepository) *ContactService {
	return &ContactService{repo: r, validate: validator.New()}
}

func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", asValidationError(err)
	}
	m := domain.ContactMessage{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.repo.InsertContactMessage(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}
