package cart

import (
	"context"
	"sync"

	"github.com/linemk/tallow-shop/internal/domain/models"
)

// Store описывает хранилище корзин, ключ — опаковый идентификатор сессии.
// Корзина принадлежит ровно одной сессии и между сессиями не разделяется
type Store interface {
	// Get возвращает корзину сессии; для новой сессии — пустую корзину
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	// Save сохраняет корзину после каждой мутации
	Save(ctx context.Context, sessionID string, cart *models.Cart) error
	// Delete удаляет корзину вместе с сессией
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore — хранилище корзин в памяти процесса.
// Используется в тестах и в локальной разработке без Redis
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]models.Cart)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return &models.Cart{}, nil
	}
	// Копия, чтобы вызывающий не менял хранимое состояние напрямую
	cp := models.Cart{Lines: append([]models.CartLine(nil), cart.Lines...)}
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = models.Cart{Lines: append([]models.CartLine(nil), cart.Lines...)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
