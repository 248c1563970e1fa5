//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"batepapo/domain"
	"batepapo/errors"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	Create(participant domain.Participant) (domain.Participant, error)
	Get(name string) (domain.Participant, error)
	Touch(name string, at time.Time) error
	List() ([]domain.Participant, error)
	Delete(name string) error
	Close() error
}

type ParticipantRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewParticipantRepository opens the participant collection. The badger
// sequence hands out the insertion order used by List.
func NewParticipantRepository(db *badger.DB) (*ParticipantRepository, error) {
	seq, err := db.GetSequence([]byte("seq:participant"), 100)
	if err != nil {
		return nil, err
	}
	return &ParticipantRepository{db: db, seq: seq}, nil
}

// diskParticipant is the stored form. Timestamps are epoch milliseconds so
// staleness comparisons never depend on a formatted string.
type diskParticipant struct {
	Name         string `json:"name"`
	LastStatusMs int64  `json:"lastStatus"`
	Seq          uint64 `json:"seq"`
}

// Create inserts the participant if and only if no record with the same
// name exists. The existence check and the insert run in one transaction,
// so two racing joins for the same name cannot both succeed.
func (r *ParticipantRepository) Create(participant domain.Participant) (domain.Participant, error) {
	seq, err := r.seq.Next()
	if err != nil {
		return domain.Participant{}, err
	}
	participant.Seq = seq

	data, err := json.Marshal(fromParticipant(participant))
	if err != nil {
		return domain.Participant{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := []byte(participantPrefix + participant.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrParticipantExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

func (r *ParticipantRepository) Get(name string) (domain.Participant, error) {
	var disk diskParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(participantPrefix + name))
		if err == badger.ErrKeyNotFound {
			return errors.ErrParticipantNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return toParticipant(disk), nil
}

// Touch refreshes LastStatus for an existing participant. The read and the
// write share a transaction; concurrent touches resolve last-write-wins.
func (r *ParticipantRepository) Touch(name string, at time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := []byte(participantPrefix + name)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return errors.ErrParticipantNotFound
		}
		if err != nil {
			return err
		}
		var disk diskParticipant
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		}); err != nil {
			return err
		}
		disk.LastStatusMs = at.UnixMilli()
		data, err := json.Marshal(disk)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// List returns every participant in insertion order. Keys are sorted by
// name, so the stored sequence decides the ordering, not the prefix scan.
func (r *ParticipantRepository) List() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(participantPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var disk diskParticipant
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				participants = append(participants, toParticipant(disk))
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
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Seq < participants[j].Seq
	})
	return participants, nil
}

func (r *ParticipantRepository) Delete(name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(participantPrefix + name))
	})
}

// Close releases the unused tail of the sequence lease.
func (r *ParticipantRepository) Close() error {
	return r.seq.Release()
}

func fromParticipant(participant domain.Participant) diskParticipant {
	return diskParticipant{
		Name:         participant.Name,
		LastStatusMs: participant.LastStatus.UnixMilli(),
		Seq:          participant.Seq,
	}
}

func toParticipant(disk diskParticipant) domain.Participant {
	return domain.Participant{
		Name:       disk.Name,
		LastStatus: time.UnixMilli(disk.LastStatusMs).UTC(),
		Seq:        disk.Seq,
	}
}
