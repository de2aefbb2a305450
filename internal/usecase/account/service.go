package account

import (
	"context"
	"fmt"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

// Service отдаёт учётную запись и анкету пользователя.
type Service struct {
	accounts domain.AccountRepo
	profiles domain.ProfileRepo
}

// NewService создаёт сервис.
func NewService(accounts domain.AccountRepo, profiles domain.ProfileRepo) *Service {
	return &Service{accounts: accounts, profiles: profiles}
}

// Me возвращает учётную запись.
func (s *Service) Me(ctx context.Context, userID string) (domain.Account, error) {
	return s.accounts.GetAccount(ctx, userID)
}

// Profile возвращает анкету, при первом обращении заполняя имя и почту из учётной записи.
func (s *Service) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("получение анкеты: %w", err)
	}
	if p.FullName != "" || p.Email != "" {
		return p, nil
	}
	acc, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("получение учётной записи: %w", err)
	}
	if acc.FullName == "" && acc.Email == "" {
		return p, nil
	}
	p.FullName, p.Email = acc.FullName, acc.Email
	return s.profiles.SaveProfile(ctx, p)
}

// UpdateProfile применяет переданные поля анкеты.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.Profile, error) {
	p, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("получение анкеты: %w", err)
	}
	saved, err := s.profiles.SaveProfile(ctx, upd.Apply(p))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("сохранение анкеты: %w", err)
	}
	return saved, nil
}

// Scores возвращает оценки из анкеты в порядке прохождения.
func (s *Service) Scores(ctx context.Context, userID string) ([]int, error) {
	p, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение анкеты: %w", err)
	}
	if p.Scores == nil {
		return []int{}, nil
	}
	return p.Scores, nil
}
