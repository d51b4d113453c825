package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

const defaultKeyPrefix = "almacen:undo:"

var _ repository.UndoStore = (*UndoStore)(nil)

// Config conexión a Redis para la ranura de deshacer.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// UndoStore ranura de deshacer por sesión en Redis: una clave JSON por sesión con TTL.
// Permite que varias instancias de la API compartan la ranura.
type UndoStore struct {
	client    *goredis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewUndoStore conecta y verifica con PING.
func NewUndoStore(cfg Config, ttl time.Duration) (*UndoStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewUndoStoreWithClient(client, "", ttl), nil
}

// NewUndoStoreWithClient usa un cliente existente. keyPrefix vacío = "almacen:undo:"; ttl <= 0 = sin expiración.
func NewUndoStoreWithClient(client *goredis.Client, keyPrefix string, ttl time.Duration) *UndoStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &UndoStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get devuelve el registro de la sesión o (nil, nil) si no existe o expiró.
func (s *UndoStore) Get(ctx context.Context, sessionID string) (*entity.CompactionUndo, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer registro de deshacer: %w", err)
	}
	var record entity.CompactionUndo
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decodificar registro de deshacer: %w", err)
	}
	return &record, nil
}

// Put reemplaza el registro de la sesión y renueva el TTL.
func (s *UndoStore) Put(ctx context.Context, sessionID string, record *entity.CompactionUndo) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("codificar registro de deshacer: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("guardar registro de deshacer: %w", err)
	}
	return nil
}

// Delete vacía la ranura de la sesión.
func (s *UndoStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("borrar registro de deshacer: %w", err)
	}
	return nil
}

// Close cierra el cliente.
func (s *UndoStore) Close() error {
	return s.client.Close()
}

func (s *UndoStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}
