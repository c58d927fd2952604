package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/techgadgets/support-chat/internal/model"
)

// MySQLStore persists conversations and messages in MySQL via GORM.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore opens a connection pool against the given DSN and
// migrates the schema.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// CreateConversation allocates a new conversation record.
func (s *MySQLStore) CreateConversation(ctx context.Context) (string, error) {
	conv := &model.Conversation{ID: uuid.New().String()}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv.ID, nil
}

// ConversationExists reports whether the conversation is persisted.
func (s *MySQLStore) ConversationExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up conversation: %w", err)
	}
	return count > 0, nil
}

// AppendMessage persists one message and bumps the conversation's
// updated_at in a single transaction.
func (s *MySQLStore) AppendMessage(ctx context.Context, conversationID string, sender model.Sender, text string) (string, error) {
	msg := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		if err := tx.First(&conv, "id = ?", conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to append message: %w", err)
	}
	return msg.ID, nil
}

// ListMessages returns the conversation's messages in timestamp order,
// insertion order breaking ties.
func (s *MySQLStore) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	exists, err := s.ConversationExists(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	var messages []model.Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Ping checks database connectivity.
func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
