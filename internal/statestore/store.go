// Package statestore is the durable client-side state: generated palettes
// (with a 24h shelf life), the favorites set, the last business profile,
// the chat transcript, and a stable session id. Five independent records
// under namespaced keys; every mutation writes through before returning.
package statestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/chromabiz/palette-api/internal/palette"
)

const (
	keyPalettes     = "chromabiz/palettes"
	keyFavorites    = "chromabiz/favorites"
	keyBusinessInfo = "chromabiz/business_info"
	keyChatHistory  = "chromabiz/chat_history"
	keySessionID    = "chromabiz/session_id"
)

// PaletteTTL is how long a cached palette set stays valid. This is an
// advisory cache on a client-controlled clock; the server-side quota is
// the real enforcement.
const PaletteTTL = 24 * time.Hour

// cachedPalettes is the stored shape of the palette record.
type cachedPalettes struct {
	Data      []palette.Palette `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

// State is the in-memory snapshot produced by Load.
type State struct {
	Palettes     []palette.Palette
	Favorites    []string
	BusinessInfo *palette.BusinessProfile
	ChatHistory  []palette.ChatMessage
	SessionID    string
}

// Store persists client state in a local Badger database.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads all five records. Corrupt records are treated as absent and
// logged, never fatal. An expired palette cache loads as empty without
// touching the stored bytes. A missing session id is minted and persisted
// immediately, the only write Load performs.
func (s *Store) Load() (State, error) {
	var st State

	err := s.db.View(func(txn *badger.Txn) error {
		var cached cachedPalettes
		if readJSON(txn, keyPalettes, &cached) {
			if s.now().Sub(cached.Timestamp) < PaletteTTL {
				st.Palettes = cached.Data
			} else {
				slog.Info("cached palettes expired", "age", s.now().Sub(cached.Timestamp))
			}
		}
		readJSON(txn, keyFavorites, &st.Favorites)
		readJSON(txn, keyBusinessInfo, &st.BusinessInfo)
		readJSON(txn, keyChatHistory, &st.ChatHistory)
		readJSON(txn, keySessionID, &st.SessionID)
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}

	if st.SessionID == "" {
		id, err := s.mintSessionID()
		if err != nil {
			return State{}, err
		}
		st.SessionID = id
	}
	return st, nil
}

// SavePalettes overwrites the palette record with a fresh timestamp.
func (s *Store) SavePalettes(ps []palette.Palette) error {
	return s.writeJSON(keyPalettes, cachedPalettes{Data: ps, Timestamp: s.now()})
}

// SaveBusinessInfo overwrites the stored profile.
func (s *Store) SaveBusinessInfo(p palette.BusinessProfile) error {
	return s.writeJSON(keyBusinessInfo, p)
}

// ToggleFavorite adds the id if absent, removes it if present, and
// returns the resulting set. Two toggles in a row are a no-op.
func (s *Store) ToggleFavorite(id string) ([]string, error) {
	var result []string
	err := s.db.Update(func(txn *badger.Txn) error {
		var favorites []string
		readJSON(txn, keyFavorites, &favorites)

		found := false
		result = result[:0]
		for _, f := range favorites {
			if f == id {
				found = true
				continue
			}
			result = append(result, f)
		}
		if !found {
			result = append(result, id)
		}

		return setJSON(txn, keyFavorites, result)
	})
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return result, nil
}

// AppendChatMessage appends a timestamped message and persists the whole
// transcript.
func (s *Store) AppendChatMessage(role, content string) (palette.ChatMessage, error) {
	msg := palette.ChatMessage{Role: role, Content: content, Timestamp: s.now()}
	err := s.db.Update(func(txn *badger.Txn) error {
		var history []palette.ChatMessage
		readJSON(txn, keyChatHistory, &history)
		history = append(history, msg)
		return setJSON(txn, keyChatHistory, history)
	})
	if err != nil {
		return palette.ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}
	return msg, nil
}

// ChatHistory reads the current transcript.
func (s *Store) ChatHistory() ([]palette.ChatMessage, error) {
	var history []palette.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		readJSON(txn, keyChatHistory, &history)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	return history, nil
}

// ClearChatHistory empties the transcript in storage.
func (s *Store) ClearChatHistory() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyChatHistory))
	})
	if err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

// ClearAll deletes every record and mints a fresh session id. Old chat,
// favorites, and profile context are unrecoverable afterwards.
func (s *Store) ClearAll() (string, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{keyPalettes, keyFavorites, keyBusinessInfo, keyChatHistory, keySessionID} {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("clear state: %w", err)
	}
	return s.mintSessionID()
}

func (s *Store) mintSessionID() (string, error) {
	id := uuid.NewString()
	if err := s.writeJSON(keySessionID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) writeJSON(key string, v interface{}) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key, v)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// readJSON loads and parses one record into dest, reporting whether a
// valid value was found. Missing keys and corrupt payloads both read as
// absent; corruption is logged and the stored bytes are left in place.
func readJSON(txn *badger.Txn, key string, dest interface{}) bool {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return false
	}
	if err != nil {
		slog.Warn("state record unreadable", "key", key, "error", err)
		return false
	}

	ok := false
	item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dest); err != nil {
			slog.Warn("state record corrupt, treating as absent", "key", key, "error", err)
			return nil
		}
		ok = true
		return nil
	})
	return ok
}
