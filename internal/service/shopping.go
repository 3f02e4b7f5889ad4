package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/repository"
)

// ShoppingService contém as regras da lista de compras
type ShoppingService struct {
	items *repository.ShoppingRepository
}

// NewShoppingService cria um novo serviço de compras
func NewShoppingService(db *sql.DB) *ShoppingService {
	return &ShoppingService{items: repository.NewShoppingRepository(db)}
}

// List retorna os itens do usuário
func (s *ShoppingService) List(ctx context.Context, userID int, completed *bool) ([]model.ShoppingItem, error) {
	return s.items.List(ctx, userID, completed)
}

// Create adiciona um item
func (s *ShoppingService) Create(ctx context.Context, userID int, req model.ShoppingItemCreateRequest) (*model.ShoppingItem, error) {
	description, err := requireText(middleware.SanitizeDescription(req.Description))
	if err != nil {
		return nil, err
	}
	raw := middleware.SanitizeText(req.RawInput, middleware.DefaultSanitizeConfig())

	item, err := s.items.Create(ctx, userID, description, raw)
	if err != nil {
		return nil, err
	}

	metrics.Get().IncrementShoppingItemCreated()
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionShoppingCreate,
		Resource:   "shopping_item",
		ResourceID: fmt.Sprint(item.ID),
		Success:    true,
	})
	return item, nil
}

// Update aplica uma atualização parcial
func (s *ShoppingService) Update(ctx context.Context, userID, itemID int, req model.ShoppingItemUpdateRequest) (*model.ShoppingItem, error) {
	if req.Description != nil {
		d, err := requireText(middleware.SanitizeDescription(*req.Description))
		if err != nil {
			return nil, err
		}
		req.Description = &d
	}

	item, err := s.items.Update(ctx, userID, itemID, req)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionShoppingUpdate,
		Resource:   "shopping_item",
		ResourceID: fmt.Sprint(itemID),
		Success:    true,
	})
	return item, nil
}

// Delete remove um item
func (s *ShoppingService) Delete(ctx context.Context, userID, itemID int) error {
	ok, err := s.items.Delete(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionShoppingDelete,
		Resource:   "shopping_item",
		ResourceID: fmt.Sprint(itemID),
		Success:    true,
	})
	return nil
}
