package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

var ErrOperatorName = errors.New("operator name is required")

// OperatorService manages the roster of people allowed to appear in the
// "added by" field. There is no authentication; the roster exists so
// every write can still be attributed to a person.
type OperatorService interface {
	List(ctx context.Context) ([]model.Operator, error)
	Add(ctx context.Context, name string) (*model.Operator, error)
	Remove(ctx context.Context, id uuid.UUID, operator string) error
	SeedDefaults(ctx context.Context, names []string) error
}

type operatorService struct {
	operatorRepo repository.OperatorRepository
	auditRepo    repository.AuditRepository
}

func NewOperatorService(operatorRepo repository.OperatorRepository, auditRepo repository.AuditRepository) OperatorService {
	return &operatorService{operatorRepo: operatorRepo, auditRepo: auditRepo}
}

func (s *operatorService) List(ctx context.Context) ([]model.Operator, error) {
	return s.operatorRepo.List(ctx)
}

func (s *operatorService) Add(ctx context.Context, name string) (*model.Operator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOperatorName
	}
	operator := &model.Operator{Name: name}
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to add operator: %w", err)
	}
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		Operator:   name,
		Action:     model.ActionAddOperator,
		EntityID:   operator.ID.String(),
		EntityName: name,
	})
	return operator, nil
}

func (s *operatorService) Remove(ctx context.Context, id uuid.UUID, operator string) error {
	if err := s.operatorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove operator: %w", err)
	}
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		Operator: operator,
		Action:   model.ActionRemoveOperator,
		EntityID: id.String(),
	})
	return nil
}

// SeedDefaults inserts the configured names when the roster is empty,
// so a fresh deployment starts usable.
func (s *operatorService) SeedDefaults(ctx context.Context, names []string) error {
	count, err := s.operatorRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.operatorRepo.Create(ctx, &model.Operator{Name: name}); err != nil {
			return fmt.Errorf("failed to seed operator %q: %w", name, err)
		}
	}
	return nil
}
