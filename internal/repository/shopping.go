package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/diane-api/internal/model"
)

// ShoppingRepository gerencia a lista de compras
type ShoppingRepository struct {
	db DBTX
}

// NewShoppingRepository cria um novo repositório de compras
func NewShoppingRepository(db DBTX) *ShoppingRepository {
	return &ShoppingRepository{db: db}
}

// WithTx devolve uma cópia do repositório que opera dentro de tx
func (r *ShoppingRepository) WithTx(tx *sql.Tx) *ShoppingRepository {
	return &ShoppingRepository{db: tx}
}

const shoppingColumns = `id, user_id, description, completed, raw_input, created_at`

func scanShoppingItem(row rowScanner) (model.ShoppingItem, error) {
	var item model.ShoppingItem
	err := row.Scan(&item.ID, &item.UserID, &item.Description, &item.Completed, &item.RawInput, &item.CreatedAt)
	return item, err
}

// Create insere um item
func (r *ShoppingRepository) Create(ctx context.Context, userID int, description, rawInput string) (*model.ShoppingItem, error) {
	query := `
		INSERT INTO shopping_items (user_id, description, raw_input, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + shoppingColumns
	item, err := scanShoppingItem(r.db.QueryRowContext(ctx, query, userID, description, rawInput))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar item de compra: %w", err)
	}
	return &item, nil
}

// List retorna os itens do usuário, mais recentes primeiro
func (r *ShoppingRepository) List(ctx context.Context, userID int, completed *bool) ([]model.ShoppingItem, error) {
	query := `SELECT ` + shoppingColumns + ` FROM shopping_items WHERE user_id = $1`
	args := []interface{}{userID}
	if completed != nil {
		args = append(args, *completed)
		query += " AND completed = $2"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar itens de compra: %w", err)
	}
	defer rows.Close()

	items := []model.ShoppingItem{}
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler item de compra: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update aplica uma atualização parcial; retorna nil se não existir
func (r *ShoppingRepository) Update(ctx context.Context, userID, itemID int, req model.ShoppingItemUpdateRequest) (*model.ShoppingItem, error) {
	b := &updateBuilder{}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.Completed != nil {
		b.set("completed", *req.Completed)
	}
	if b.empty() {
		b.set("id", itemID)
	}

	query, args := b.build("shopping_items", "id = $%d AND user_id = $%d", itemID, userID)
	item, err := scanShoppingItem(r.db.QueryRowContext(ctx, query+" RETURNING "+shoppingColumns, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao atualizar item de compra: %w", err)
	}
	return &item, nil
}

// Delete remove um item do usuário
func (r *ShoppingRepository) Delete(ctx context.Context, userID, itemID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("erro ao remover item de compra: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
