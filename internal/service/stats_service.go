package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
	"github.com/crte-ams/ticket-service/internal/repository"
)

// monthlyWindow is how far back the monthly breakdown looks.
const monthlyWindow = 6

var monthLabels = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

type StatsServicer interface {
	TechnicianStats(ctx context.Context, name string) (*model.TechnicianStats, error)
	AllTechniciansStats(ctx context.Context) ([]model.TechnicianStats, error)
	MonthlyStatsForTechnician(ctx context.Context, name string) ([]model.MonthlyStats, error)
}

type StatsService struct {
	tickets repository.TechnicianTicketReader
	log     *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

func NewStatsService(tickets repository.TechnicianTicketReader, log *zap.Logger) *StatsService {
	return &StatsService{tickets: tickets, log: log, now: time.Now, loc: time.UTC}
}

// WithLocation sets the zone used to place tickets into calendar months.
func (s *StatsService) WithLocation(loc *time.Location) *StatsService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// TechnicianStats counts the technician's tickets. AvgResolutionDays is
// now minus created_at averaged over resolved tickets, since no resolution
// timestamp is stored; it drifts upward as time passes.
func (s *StatsService) TechnicianStats(ctx context.Context, name string) (*model.TechnicianStats, error) {
	assigned, err := s.tickets.ListByTechnician(ctx, name)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamados do técnico", err)
	}
	resolved, err := s.tickets.ListByTechnician(ctx, name, model.TicketStatusResolved)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamados resolvidos", err)
	}
	inProgress, err := s.tickets.ListByTechnician(ctx, name, model.TicketStatusInProgress)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamados em atendimento", err)
	}

	st := &model.TechnicianStats{
		TechnicianName:    name,
		AssignedTickets:   len(assigned),
		ResolvedTickets:   len(resolved),
		InProgressTickets: len(inProgress),
	}
	if len(resolved) > 0 {
		now := s.now()
		var days float64
		for _, t := range resolved {
			days += now.Sub(t.CreatedAt).Hours() / 24
		}
		avg := int(math.Round(days / float64(len(resolved))))
		st.AvgResolutionDays = &avg
	}
	if len(assigned) > 0 {
		st.EfficiencyPercent = int(math.Round(float64(len(resolved)) * 100 / float64(len(assigned))))
	}
	return st, nil
}

// AllTechniciansStats computes TechnicianStats for every technician that holds
// at least one ticket, concurrently. The result is sorted by name.
func (s *StatsService) AllTechniciansStats(ctx context.Context) ([]model.TechnicianStats, error) {
	names, err := s.tickets.TechnicianNames(ctx)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar técnicos", err)
	}
	sort.Strings(names)

	out := make([]model.TechnicianStats, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names {
		g.Go(func() error {
			st, err := s.TechnicianStats(gctx, name)
			if err != nil {
				return fmt.Errorf("stats for %q: %w", name, err)
			}
			out[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Debug("technician stats computed", zap.Int("technicians", len(names)))
	return out, nil
}

// MonthlyStatsForTechnician buckets the technician's tickets created in the last
// six months by calendar month. Empty months are omitted; buckets are in
// chronological order.
func (s *StatsService) MonthlyStatsForTechnician(ctx context.Context, name string) ([]model.MonthlyStats, error) {
	since := s.now().AddDate(0, -monthlyWindow, 0)
	tickets, err := s.tickets.ListByTechnicianSince(ctx, name, since)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar estatísticas mensais", err)
	}

	buckets := map[string]*model.MonthlyStats{}
	for _, t := range tickets {
		if t.CreatedAt.Before(since) {
			continue
		}
		created := t.CreatedAt.In(s.loc)
		key := fmt.Sprintf("%04d-%02d", created.Year(), int(created.Month()))
		b, ok := buckets[key]
		if !ok {
			b = &model.MonthlyStats{
				Key:   key,
				Year:  created.Year(),
				Month: int(created.Month()),
				Label: fmt.Sprintf("%s/%d", monthLabels[created.Month()-1], created.Year()),
			}
			buckets[key] = b
		}
		b.Assigned++
		if t.Status == model.TicketStatusResolved {
			b.Resolved++
		}
	}

	out := make([]model.MonthlyStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
