package service

import (
	"context"
	"strings"

	"ruangpulih/internal/models"
	"ruangpulih/internal/store"
)

type PsychologistService struct {
	store *store.Store[models.Psychologist]
}

func NewPsychologistService(s *store.Store[models.Psychologist]) *PsychologistService {
	return &PsychologistService{store: s}
}

// Store exposes the underlying psychologists store.
func (s *PsychologistService) Store() *store.Store[models.Psychologist] {
	return s.store
}

// Fetch lists psychologists that have open slots.
func (s *PsychologistService) Fetch(ctx context.Context) store.Result[models.Psychologist] {
	return s.store.List(ctx)
}

// Detail loads one psychologist with their rating summary.
func (s *PsychologistService) Detail(ctx context.Context, id string) store.Result[models.Psychologist] {
	if strings.TrimSpace(id) == "" {
		return store.Failure[models.Psychologist](invalid("id", "Psychologist id is required."))
	}
	return s.store.Detail(ctx, id)
}

// Ensure fetches the list only if it has never been loaded.
func (s *PsychologistService) Ensure(ctx context.Context) store.Result[models.Psychologist] {
	if s.store.Loaded() {
		return store.Result[models.Psychologist]{Success: true, Items: s.store.Items()}
	}
	return s.Fetch(ctx)
}
