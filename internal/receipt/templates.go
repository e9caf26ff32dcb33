package receipt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/google/uuid"
)

const MaxTemplates = 4

var (
	ErrTemplateNotFound = errors.New("receipt template not found")
	ErrTemplateLimit    = fmt.Errorf("at most %d receipt templates are allowed", MaxTemplates)
	ErrLastTemplate     = errors.New("at least one receipt template must remain")
)

// Default returns the template a store starts with.
func Default() domain.ReceiptTemplate {
	return domain.ReceiptTemplate{
		ID:         uuid.NewString(),
		Name:       "Default Template",
		BrandColor: "#4f46e5",
		HeaderText: "Thank you for your business!",
		FooterText: "Please contact us if you have any questions.",
	}
}

// Store keeps receipt templates in creation order.
type Store struct {
	mu        sync.RWMutex
	templates []domain.ReceiptTemplate
}

// NewStore returns a store seeded with the default template.
func NewStore() *Store {
	return &Store{templates: []domain.ReceiptTemplate{Default()}}
}

func (s *Store) List() []domain.ReceiptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ReceiptTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

func (s *Store) Get(id string) (domain.ReceiptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return domain.ReceiptTemplate{}, ErrTemplateNotFound
	}
	return s.templates[i], nil
}

// Add creates a template from the default branding, named after its
// position.
func (s *Store) Add() (domain.ReceiptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.templates) >= MaxTemplates {
		return domain.ReceiptTemplate{}, ErrTemplateLimit
	}
	t := Default()
	t.Name = fmt.Sprintf("Template %d", len(s.templates)+1)
	s.templates = append(s.templates, t)
	return t, nil
}

// Update replaces a template, keeping its id.
func (s *Store) Update(id string, t domain.ReceiptTemplate) (domain.ReceiptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return domain.ReceiptTemplate{}, ErrTemplateNotFound
	}
	t.ID = id
	s.templates[i] = t
	return t, nil
}

func (s *Store) Delete(id string) (domain.ReceiptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return domain.ReceiptTemplate{}, ErrTemplateNotFound
	}
	if len(s.templates) <= 1 {
		return domain.ReceiptTemplate{}, ErrLastTemplate
	}
	removed := s.templates[i]
	s.templates = append(s.templates[:i], s.templates[i+1:]...)
	return removed, nil
}

// Put inserts or replaces t by id, ignoring the limit. Used to undo a
// failed delete or update.
func (s *Store) Put(t domain.ReceiptTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(t.ID); i >= 0 {
		s.templates[i] = t
		return
	}
	s.templates = append(s.templates, t)
}

// Restore replaces the content with persisted templates. An empty list
// reseeds the default and reports true.
func (s *Store) Restore(templates []domain.ReceiptTemplate) (seeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(templates) == 0 {
		s.templates = []domain.ReceiptTemplate{Default()}
		return true
	}
	s.templates = make([]domain.ReceiptTemplate, len(templates))
	copy(s.templates, templates)
	return false
}

func (s *Store) index(id string) int {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return i
		}
	}
	return -1
}
