package service

import (
	"context"
	"time"

	"oxbow-be/internal/dto"
	"oxbow-be/internal/entity"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/repository/memory"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultPageSize = 20

type IJournalService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateJournalEntryRequest) (*dto.CreateJournalEntryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowJournalEntryResponse, error)
	List(ctx context.Context, userId uuid.UUID, req *dto.ListJournalEntriesRequest) (*dto.ListJournalEntriesResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateJournalEntryRequest) (*dto.UpdateJournalEntryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type journalService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.StatusCache
}

func NewJournalService(uowFactory unitofwork.RepositoryFactory, cache *memory.StatusCache) IJournalService {
	return &journalService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func (s *journalService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateJournalEntryRequest) (*dto.CreateJournalEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	source := entity.EntrySource(req.Source)
	if source == "" {
		source = entity.EntrySourceText
	}
	entry := entity.JournalEntry{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		Content:   req.Content,
		Source:    source,
		Mood:      req.Mood,
		CreatedAt: time.Now(),
	}
	if err := uow.JournalEntryRepository().Create(ctx, &entry); err != nil {
		return nil, err
	}
	s.cache.Invalidate(userId)

	return &dto.CreateJournalEntryResponse{Id: entry.Id}, nil
}

func (s *journalService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.JournalEntry, error) {
	entry, err := uow.JournalEntryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, serverutils.NotFound("Journal entry not found")
	}
	return entry, nil
}

func (s *journalService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowJournalEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toJournalEntryResponse(entry), nil
}

func (s *journalService) List(ctx context.Context, userId uuid.UUID, req *dto.ListJournalEntriesRequest) (*dto.ListJournalEntriesResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	specs := []specification.Specification{specification.UserOwnedBy{UserID: userId}}
	if req.Unassigned {
		specs = append(specs, specification.Unassigned{})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.JournalEntryRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	entries, err := uow.JournalEntryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ListJournalEntriesResponse{
		Entries: make([]*dto.ShowJournalEntryResponse, 0, len(entries)),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}
	for _, e := range entries {
		res.Entries = append(res.Entries, toJournalEntryResponse(e))
	}
	return res, nil
}

func (s *journalService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateJournalEntryRequest) (*dto.UpdateJournalEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := s.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}
	if entry.Assigned() {
		return nil, serverutils.NewAppError(fiber.StatusConflict, "entry_locked", "This entry is part of a mirror and can no longer be edited")
	}

	now := time.Now()
	entry.Title = req.Title
	entry.Content = req.Content
	entry.Mood = req.Mood
	entry.UpdatedAt = &now
	if err := uow.JournalEntryRepository().Update(ctx, entry); err != nil {
		return nil, err
	}

	return &dto.UpdateJournalEntryResponse{Id: entry.Id}, nil
}

func (s *journalService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if err := uow.JournalEntryRepository().Delete(ctx, entry.Id); err != nil {
		return err
	}
	s.cache.Invalidate(userId)
	return nil
}

func toJournalEntryResponse(e *entity.JournalEntry) *dto.ShowJournalEntryResponse {
	return &dto.ShowJournalEntryResponse{
		Id:        e.Id,
		Title:     e.Title,
		Content:   e.Content,
		Source:    string(e.Source),
		Mood:      e.Mood,
		MirrorId:  e.MirrorId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
