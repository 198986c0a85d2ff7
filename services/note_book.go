package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"routeerp_go/models"
	"routeerp_go/utils"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteInput is an ad hoc calendar note.
type NoteInput struct {
	Title   string    `json:"title" validate:"required,max=255"`
	Start   time.Time `json:"start" validate:"required"`
	Content string    `json:"content" validate:"max=5000"`
}

// NoteBook keeps calendar notes per user in process memory. Notes do not
// survive a restart.
type NoteBook struct {
	mu    sync.RWMutex
	notes map[string][]models.Note
}

func NewNoteBook() *NoteBook {
	return &NoteBook{notes: make(map[string][]models.Note)}
}

// Add stores a note for userID.
func (b *NoteBook) Add(userID string, input NoteInput) (models.Note, error) {
	if err := utils.Validate(input); err != nil {
		return models.Note{}, err
	}
	note := models.Note{
		ID:      models.NewID(),
		Title:   utils.SanitizeString(input.Title),
		Start:   input.Start,
		Content: strings.TrimSpace(input.Content),
	}

	b.mu.Lock()
	b.notes[userID] = append(b.notes[userID], note)
	b.mu.Unlock()
	return note, nil
}

// List returns a copy of userID's notes ordered by start.
func (b *NoteBook) List(userID string) []models.Note {
	b.mu.RLock()
	notes := make([]models.Note, len(b.notes[userID]))
	copy(notes, b.notes[userID])
	b.mu.RUnlock()

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start.Before(notes[j].Start)
	})
	return notes
}

// Delete removes one of userID's notes.
func (b *NoteBook) Delete(userID, noteID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	notes := b.notes[userID]
	for i, n := range notes {
		if n.ID != noteID {
			continue
		}
		b.notes[userID] = append(notes[:i:i], notes[i+1:]...)
		if len(b.notes[userID]) == 0 {
			delete(b.notes, userID)
		}
		return nil
	}
	return ErrNoteNotFound
}

// Forget drops every note of userID.
func (b *NoteBook) Forget(userID string) {
	b.mu.Lock()
	delete(b.notes, userID)
	b.mu.Unlock()
}
