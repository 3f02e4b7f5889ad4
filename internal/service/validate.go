package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cleberrangel/diane-api/internal/model"
)

var (
	ErrInvalidDate  = errors.New("data inválida, use YYYY-MM-DD")
	ErrInvalidTime  = errors.New("horário inválido, use HH:MM ou HH:MM:SS")
	ErrInvalidRange = errors.New("start_date posterior a end_date")
	ErrEmptyInput   = errors.New("descrição vazia")
	ErrInvalidSort  = errors.New("sort_by inválido, use created_at ou due_date")
	ErrInvalidInput = errors.New("texto de captura inválido")
)

// MaxCaptureRunes é o tamanho máximo de um texto de captura
const MaxCaptureRunes = 10000

// checkCaptureText recusa texto que não pode ser guardado como digitado.
// O texto nunca é alterado, a classificação vê exatamente o que o usuário enviou.
func checkCaptureText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: UTF-8 inválido", ErrInvalidInput)
	}
	if strings.IndexByte(text, 0) >= 0 {
		return fmt.Errorf("%w: contém byte nulo", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(text); n > MaxCaptureRunes {
		return fmt.Errorf("%w: %d caracteres, máximo %d", ErrInvalidInput, n, MaxCaptureRunes)
	}
	return nil
}

// normalizeDate valida uma data opcional. Nil é mantido e "" significa remover.
func normalizeDate(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return &s, nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &s, nil
}

// requireDate valida uma data obrigatória
func requireDate(s string) (string, error) {
	d, err := normalizeDate(&s)
	if err != nil {
		return "", err
	}
	if *d == "" {
		return "", fmt.Errorf("%w: vazia", ErrInvalidDate)
	}
	return *d, nil
}

// normalizeTime aceita HH:MM ou HH:MM:SS e devolve HH:MM:SS.
// Nil é mantido e "" significa remover.
func normalizeTime(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return &s, nil
	}
	for _, layout := range []string{model.TimeLayout, model.ShortTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format(model.TimeLayout)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// requireText rejeita descrições em branco
func requireText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// emptyToNil converte "" em nil para campos opcionais de criação
func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
