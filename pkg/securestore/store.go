// Package securestore provides an encrypted key-value file store for
// session material such as auth tokens and user profiles.
package securestore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

var (
	// ErrKeyNotFound indicates the requested key is not in the store
	ErrKeyNotFound = errors.New("securestore: key not found")

	// ErrCorruptStore indicates the store file could not be decrypted or parsed
	ErrCorruptStore = errors.New("securestore: store file is corrupt")
)

// scrypt parameters (interactive profile)
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	saltSize     = 16
	storeVersion = 1
)

// Store is a file-backed key-value store. Values are sealed with
// ChaCha20-Poly1305 under a key derived from the passphrase via scrypt.
// Safe for concurrent use.
type Store struct {
	path       string
	passphrase []byte

	mu     sync.Mutex
	values map[string][]byte
	loaded bool
}

// envelope is the on-disk layout. Salt and nonce are stored in the clear;
// Sealed holds the encrypted JSON map of values.
type envelope struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Sealed  string `json:"sealed"`
}

// New creates a store backed by the file at path. The file is created on
// the first Set; a missing file reads as an empty store.
func New(path, passphrase string) *Store {
	return &Store{
		path:       path,
		passphrase: []byte(passphrase),
		values:     make(map[string][]byte),
	}
}

// Set stores a value under key and persists the store atomically.
func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	s.values[key] = append([]byte(nil), value...)
	return s.saveLocked()
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Delete removes key from the store. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.saveLocked()
}

// loadLocked reads and decrypts the store file once. Caller holds mu.
func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ErrCorruptStore
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return ErrCorruptStore
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return ErrCorruptStore
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil {
		return ErrCorruptStore
	}

	aead, err := s.aead(salt)
	if err != nil {
		return err
	}
	if len(nonce) != aead.NonceSize() {
		return ErrCorruptStore
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ErrCorruptStore
	}

	values := make(map[string][]byte)
	if err := json.Unmarshal(plain, &values); err != nil {
		return ErrCorruptStore
	}

	s.values = values
	s.loaded = true
	return nil
}

// saveLocked encrypts the values and writes them via temp file + rename.
// Caller holds mu.
func (s *Store) saveLocked() error {
	plain, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to marshal store values: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := envelope{
		Version: storeVersion,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Sealed:  base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, nil)),
	}

	raw, err := json.Marshal(&env)
	if err != nil {
		return fmt.Errorf("failed to marshal store envelope: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

func (s *Store) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}
	return chacha20poly1305.New(key)
}
