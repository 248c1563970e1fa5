//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"batepapo/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messagePrefix = "message:"

type IMessageRepository interface {
	Append(message domain.Message) error
	List() ([]domain.Message, error)
	Close() error
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewMessageRepository(db *badger.DB) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:message"), 100)
	if err != nil {
		return nil, err
	}
	return &MessageRepository{db: db, seq: seq}, nil
}

type diskMessage struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	AtNano int64  `json:"at"`
}

// Append persists a message under "message:{seq_padded}".
// The key is the insertion sequence zero-padded to 20 digits so that the
// lexicographical key order of a prefix scan is exactly creation order.
// Messages are never updated or deleted.
func (r *MessageRepository) Append(message domain.Message) error {
	seq, err := r.seq.Next()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d", messagePrefix, seq)

	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// List returns every message, oldest first. Thanks to the padded sequence
// in the key, the iterator already yields insertion order.
func (r *MessageRepository) List() ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var disk diskMessage
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				message, err := toMessage(disk)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) Close() error {
	return r.seq.Release()
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:     message.ID.String(),
		From:   message.From,
		To:     message.To,
		Text:   message.Text,
		Type:   string(message.Type),
		AtNano: message.At.UnixNano(),
	}
}

func toMessage(disk diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   parsedID,
		From: disk.From,
		To:   disk.To,
		Text: disk.Text,
		Type: domain.MessageType(disk.Type),
		At:   time.Unix(0, disk.AtNano).UTC(),
	}, nil
}
