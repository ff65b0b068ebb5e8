package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// conversationRecord is the SQLite row shape. Messages and the council model
// list are stored as JSON columns, mirroring the file backend's document.
type conversationRecord struct {
	ID            string    `gorm:"primaryKey"`
	UserID        string    `gorm:"index"`
	CreatedAt     time.Time
	Title         string
	Framework     string
	CouncilModels datatypes.JSON
	ChairmanModel string
	Messages      datatypes.JSON
}

// TableName keeps the table name aligned with the domain
func (conversationRecord) TableName() string { return "conversations" }

// GormStore persists conversations in SQLite via GORM. Message appends and
// title updates are load-modify-save over JSON columns, so mu serializes
// them the same way the file backend does.
type GormStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// NewGormStore opens (or creates) the SQLite database and migrates the schema
func NewGormStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&conversationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Create inserts an empty conversation row
func (s *GormStore) Create(conversationID, userID, framework string, councilModels []string, chairmanModel string) (*Conversation, error) {
	conversation := &Conversation{
		ID:            conversationID,
		UserID:        userID,
		CreatedAt:     time.Now().UTC(),
		Title:         fallbackTitle,
		Framework:     framework,
		CouncilModels: councilModels,
		ChairmanModel: chairmanModel,
		Messages:      []Message{},
	}

	record, err := toRecord(conversation)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conversation, nil
}

// Get loads a conversation row and verifies ownership
func (s *GormStore) Get(conversationID, userID string) (*Conversation, error) {
	var record conversationRecord
	err := s.db.First(&record, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrNotFound
	}

	return fromRecord(&record)
}

// List returns metadata for the user's conversations, newest first
func (s *GormStore) List(userID string) ([]ConversationMetadata, error) {
	var records []conversationRecord
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]ConversationMetadata, 0, len(records))
	for _, record := range records {
		conv, err := fromRecord(&record)
		if err != nil {
			continue // Skip rows with unreadable JSON
		}
		conversations = append(conversations, ConversationMetadata{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			Title:        conv.Title,
			Framework:    conv.Framework,
			MessageCount: len(conv.Messages),
		})
	}

	return conversations, nil
}

// appendMessage loads, appends, and re-saves the messages JSON column
func (s *GormStore) appendMessage(conversationID, userID string, message Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, err := s.Get(conversationID, userID)
	if err != nil {
		return err
	}

	conversation.Messages = append(conversation.Messages, message)
	data, err := json.Marshal(conversation.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	return s.db.Model(&conversationRecord{}).
		Where("id = ?", conversationID).
		Update("messages", datatypes.JSON(data)).Error
}

// AddUserMessage appends a user message to a conversation
func (s *GormStore) AddUserMessage(conversationID, userID, content string) error {
	return s.appendMessage(conversationID, userID, Message{Role: "user", Content: content})
}

// AddAssistantMessage appends the complete council results as one message
func (s *GormStore) AddAssistantMessage(conversationID, userID string, stage1 []Stage1Response, stage2 []Stage2Ranking, stage3 Stage3Response) error {
	return s.appendMessage(conversationID, userID, Message{
		Role:   "assistant",
		Stage1: stage1,
		Stage2: stage2,
		Stage3: &stage3,
	})
}

// UpdateTitle updates the title of a conversation
func (s *GormStore) UpdateTitle(conversationID, userID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Get(conversationID, userID); err != nil {
		return err
	}
	return s.db.Model(&conversationRecord{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
}

// Delete removes a conversation after verifying ownership
func (s *GormStore) Delete(conversationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Get(conversationID, userID); err != nil {
		return err
	}
	return s.db.Delete(&conversationRecord{}, "id = ?", conversationID).Error
}

// toRecord converts a conversation into its row shape
func toRecord(conversation *Conversation) (*conversationRecord, error) {
	messages, err := json.Marshal(conversation.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}
	models, err := json.Marshal(conversation.CouncilModels)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal council models: %w", err)
	}

	return &conversationRecord{
		ID:            conversation.ID,
		UserID:        conversation.UserID,
		CreatedAt:     conversation.CreatedAt,
		Title:         conversation.Title,
		Framework:     conversation.Framework,
		CouncilModels: datatypes.JSON(models),
		ChairmanModel: conversation.ChairmanModel,
		Messages:      datatypes.JSON(messages),
	}, nil
}

// fromRecord converts a row back into a conversation
func fromRecord(record *conversationRecord) (*Conversation, error) {
	conversation := &Conversation{
		ID:            record.ID,
		UserID:        record.UserID,
		CreatedAt:     record.CreatedAt,
		Title:         record.Title,
		Framework:     record.Framework,
		ChairmanModel: record.ChairmanModel,
		Messages:      []Message{},
	}

	if len(record.Messages) > 0 {
		if err := json.Unmarshal(record.Messages, &conversation.Messages); err != nil {
			return nil, fmt.Errorf("failed to parse messages JSON: %w", err)
		}
	}
	if len(record.CouncilModels) > 0 {
		if err := json.Unmarshal(record.CouncilModels, &conversation.CouncilModels); err != nil {
			return nil, fmt.Errorf("failed to parse council models JSON: %w", err)
		}
	}

	return conversation, nil
}
