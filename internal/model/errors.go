package model

import "errors"

var (
	// ErrNotFound indica recurso inexistente ou de outro usuário
	ErrNotFound = errors.New("recurso não encontrado")

	// ErrUnauthorized indica sessão ausente, inválida ou expirada
	ErrUnauthorized = errors.New("sessão inválida ou expirada")

	// ErrRateLimited indica que a API retornou 429
	ErrRateLimited = errors.New("limite de requisições excedido")

	// ErrConflict indica que o formulário de captura está ocupado
	ErrConflict = errors.New("operação em andamento")

	// ErrTimeout indica timeout na requisição
	ErrTimeout = errors.New("timeout na requisição")

	// ErrInvalidResponse indica resposta inválida da API
	ErrInvalidResponse = errors.New("resposta inválida da API")
)
