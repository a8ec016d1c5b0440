package localcart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/storefront/internal/domain"
)

const (
	cartFile    = "cart.json"
	sessionFile = "session.json"
)

// ErrNotStored is returned when nothing is saved under a key
var ErrNotStored = errors.New("nothing stored")

// Storage persists the guest cart and the session on the client
type Storage interface {
	LoadCart() (*Cart, error)
	SaveCart(c *Cart) error
	DeleteCart() error
	LoadSession() (*Session, error)
	SaveSession(s *Session) error
	DeleteSession() error
}

// FileStorage keeps cart.json and session.json in one directory
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates the state directory if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the state directory
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) LoadCart() (*Cart, error) {
	var c Cart
	if err := s.read(cartFile, &c); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []domain.CartLine{}
	}
	if c.Status == "" {
		c.Status = StatusIdle
	}
	return &c, nil
}

func (s *FileStorage) SaveCart(c *Cart) error {
	return s.write(cartFile, c)
}

func (s *FileStorage) DeleteCart() error {
	return s.remove(cartFile)
}

func (s *FileStorage) LoadSession() (*Session, error) {
	var sess Session
	if err := s.read(sessionFile, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *FileStorage) SaveSession(sess *Session) error {
	return s.write(sessionFile, sess)
}

func (s *FileStorage) DeleteSession() error {
	return s.remove(sessionFile)
}

func (s *FileStorage) read(name string, dst any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotStored
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the file atomically through a temp file and rename
func (s *FileStorage) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *FileStorage) remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// MemoryStorage keeps everything in process memory
type MemoryStorage struct {
	mu      sync.Mutex
	cart    *Cart
	session *Session
}

// NewMemoryStorage returns an empty store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) LoadCart() (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		return nil, ErrNotStored
	}
	return m.cart.Clone(), nil
}

func (m *MemoryStorage) SaveCart(c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = c.Clone()
	return nil
}

func (m *MemoryStorage) DeleteCart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = nil
	return nil
}

func (m *MemoryStorage) LoadSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNotStored
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryStorage) SaveSession(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemoryStorage) DeleteSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
