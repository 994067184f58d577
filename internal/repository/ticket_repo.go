package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

type TicketRepo struct {
	db *gorm.DB
}

func NewTicketRepo(db *gorm.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// Create inserts t; ticket_number is filled from the database sequence.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepo) ListForOwner(ctx context.Context, ownerID string) ([]model.Ticket, error) {
	var items []model.Ticket
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TicketRepo) ListAll(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error) {
	var items []model.Ticket
	tx := r.db.WithContext(ctx).Model(&model.Ticket{})
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TicketRepo) Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepo) AssignIfAvailable(ctx context.Context, id uuid.UUID, technician string) (bool, error) {
	closed := statusStrings([]model.TicketStatus{model.TicketStatusResolved, model.TicketStatusCancelled})
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", id).
		Where("status NOT IN ?", closed).
		Where("(tecnico_responsavel IS NULL OR tecnico_responsavel = '' OR tecnico_responsavel = ?)", technician).
		Updates(map[string]interface{}{
			"tecnico_responsavel": technician,
			"status":              string(model.TicketStatusInProgress),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TicketRepo) CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	cancelled := string(model.TicketStatusCancelled)
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status <> ?", id, cancelled).
		Update("status", cancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TicketRepo) ListByTechnician(ctx context.Context, technician string, statuses ...model.TicketStatus) ([]model.Ticket, error) {
	var items []model.Ticket
	tx := r.db.WithContext(ctx).Where("tecnico_responsavel = ?", technician)
	if len(statuses) > 0 {
		tx = tx.Where("status IN ?", statusStrings(statuses))
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TicketRepo) ListByTechnicianSince(ctx context.Context, technician string, since time.Time) ([]model.Ticket, error) {
	var items []model.Ticket
	err := r.db.WithContext(ctx).
		Where("tecnico_responsavel = ? AND created_at >= ?", technician, since).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TicketRepo) TechnicianNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("tecnico_responsavel IS NOT NULL AND tecnico_responsavel <> ''").
		Distinct("tecnico_responsavel").
		Order("tecnico_responsavel").
		Pluck("tecnico_responsavel", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
