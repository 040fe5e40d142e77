package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"oxbow-be/internal/dto"
	"oxbow-be/internal/entity"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/repository/memory"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientEntries = errors.New("not enough unassigned journal entries")
	ErrRateLimited         = errors.New("mirror generation rate limited")
	ErrAlreadyGenerating   = errors.New("a mirror is already being generated")
	ErrGenerationFailed    = errors.New("mirror generation failed")
)

// Eligibility reasons, also used as error_code on the wire.
const (
	ReasonInsufficientEntries = "insufficient_entries"
	ReasonRateLimited         = "rate_limited"
	ReasonAlreadyGenerating   = "already_generating"
)

const (
	statusNone      = "none"
	syncPollDefault = 250 * time.Millisecond
)

type MirrorSettings struct {
	Threshold  int
	RateWindow time.Duration
	// SyncWait lets RequestGeneration block for the worker and return the
	// finished mirror inline. Zero disables it.
	SyncWait time.Duration
	SyncPoll time.Duration
}

type IMirrorService interface {
	UnassignedCount(ctx context.Context, userId uuid.UUID) (*dto.UnassignedCountResponse, error)
	CheckStatus(ctx context.Context, userId uuid.UUID) (*dto.MirrorStatusResponse, error)
	CheckEligibility(ctx context.Context, userId uuid.UUID) (*dto.EligibilityResponse, error)
	RequestGeneration(ctx context.Context, userId uuid.UUID) (*dto.GenerateMirrorResponse, error)
	MarkViewed(ctx context.Context, userId uuid.UUID, mirrorId uuid.UUID) error
	ListMirrors(ctx context.Context, userId uuid.UUID) ([]*dto.MirrorSummaryResponse, error)
	ShowMirror(ctx context.Context, userId uuid.UUID, mirrorId uuid.UUID) (*dto.MirrorResponse, error)
	ShareMirror(ctx context.Context, userId uuid.UUID, req *dto.ShareMirrorRequest) (*dto.ShareMirrorResponse, error)
	ListSharedWithMe(ctx context.Context, userId uuid.UUID) ([]*dto.SharedMirrorResponse, error)
}

type mirrorService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   EventPublisher
	cache            *memory.StatusCache
	settings         MirrorSettings
	logger           logger.ILogger
	now              func() time.Time
}

func NewMirrorService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	cache *memory.StatusCache,
	settings MirrorSettings,
	log logger.ILogger,
) IMirrorService {
	if settings.SyncPoll <= 0 {
		settings.SyncPoll = syncPollDefault
	}
	return &mirrorService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		cache:            cache,
		settings:         settings,
		logger:           log,
		now:              time.Now,
	}
}

func (s *mirrorService) unassignedCount(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (int64, error) {
	if n, ok := s.cache.GetCount(userId); ok {
		return n, nil
	}
	n, err := uow.JournalEntryRepository().Count(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Unassigned{},
	)
	if err != nil {
		return 0, err
	}
	s.cache.SetCount(userId, n)
	return n, nil
}

func (s *mirrorService) UnassignedCount(ctx context.Context, userId uuid.UUID) (*dto.UnassignedCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := s.unassignedCount(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	return &dto.UnassignedCountResponse{Count: n, Threshold: s.settings.Threshold}, nil
}

func (s *mirrorService) CheckStatus(ctx context.Context, userId uuid.UUID) (*dto.MirrorStatusResponse, error) {
	if v, ok := s.cache.GetStatus(userId); ok {
		return v.(*dto.MirrorStatusResponse), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res, err := s.loadStatus(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	s.cache.SetStatus(userId, res)
	return res, nil
}

func (s *mirrorService) loadStatus(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*dto.MirrorStatusResponse, error) {
	req, err := uow.MirrorRequestRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.LatestRequested{},
	)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return &dto.MirrorStatusResponse{Status: statusNone}, nil
	}
	return s.statusOf(ctx, uow, req)
}

func (s *mirrorService) statusOf(ctx context.Context, uow unitofwork.UnitOfWork, req *entity.MirrorRequest) (*dto.MirrorStatusResponse, error) {
	requestId := req.Id
	requestedAt := req.RequestedAt
	res := &dto.MirrorStatusResponse{
		Status:      string(req.Status),
		RequestId:   &requestId,
		RequestedAt: &requestedAt,
	}

	switch req.Status {
	case entity.MirrorRequestCompleted:
		spec := specification.Specification(specification.ByRequestID{RequestID: req.Id})
		if req.MirrorId != nil {
			spec = specification.ByID{ID: *req.MirrorId}
		}
		mirror, err := uow.MirrorRepository().FindOne(ctx, spec)
		if err != nil {
			return nil, err
		}
		if mirror == nil {
			return nil, fmt.Errorf("request %s completed without a mirror", req.Id)
		}
		res.Mirror = toMirrorResponse(mirror)
	case entity.MirrorRequestFailed:
		res.ErrorCode = req.ErrorCode
		res.ErrorMessage = req.ErrorMessage
	}
	return res, nil
}

func (s *mirrorService) CheckEligibility(ctx context.Context, userId uuid.UUID) (*dto.EligibilityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.eligibility(ctx, uow, userId)
}

func (s *mirrorService) eligibility(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*dto.EligibilityResponse, error) {
	count, err := s.unassignedCount(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	res := &dto.EligibilityResponse{Count: count, Threshold: s.settings.Threshold}

	inFlight, err := uow.MirrorRequestRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.InFlight{},
	)
	if err != nil {
		return nil, err
	}
	if inFlight != nil {
		res.Reason = ReasonAlreadyGenerating
		res.Message = "Your mirror is already being prepared."
		return res, nil
	}

	if count < int64(s.settings.Threshold) {
		res.Reason = ReasonInsufficientEntries
		res.Message = fmt.Sprintf("Write %d more %s to unlock your next mirror.",
			int64(s.settings.Threshold)-count, plural(int64(s.settings.Threshold)-count, "entry", "entries"))
		return res, nil
	}

	if s.settings.RateWindow > 0 {
		// Failed requests do not count against the window.
		last, err := uow.MirrorRequestRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByStatus{Statuses: []string{string(entity.MirrorRequestCompleted)}},
			specification.RequestedAfter{Since: s.now().Add(-s.settings.RateWindow)},
			specification.LatestRequested{},
		)
		if err != nil {
			return nil, err
		}
		if last != nil {
			retryAt := last.RequestedAt.Add(s.settings.RateWindow)
			res.Reason = ReasonRateLimited
			res.Message = fmt.Sprintf("You can request another mirror after %s.", retryAt.UTC().Format(time.Kitchen+" MST"))
			res.RetryAt = &retryAt
			return res, nil
		}
	}

	res.CanGenerate = true
	return res, nil
}

func eligibilityError(res *dto.EligibilityResponse) error {
	switch res.Reason {
	case ReasonInsufficientEntries:
		return &serverutils.AppError{Status: fiber.StatusUnprocessableEntity, ErrorCode: res.Reason, Message: res.Message, Err: ErrInsufficientEntries}
	case ReasonRateLimited:
		return &serverutils.AppError{Status: fiber.StatusTooManyRequests, ErrorCode: res.Reason, Message: res.Message, Err: ErrRateLimited}
	default:
		return &serverutils.AppError{Status: fiber.StatusConflict, ErrorCode: ReasonAlreadyGenerating, Message: "Your mirror is already being prepared.", Err: ErrAlreadyGenerating}
	}
}

func (s *mirrorService) RequestGeneration(ctx context.Context, userId uuid.UUID) (*dto.GenerateMirrorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Counts must be fresh for the gate.
	s.cache.Invalidate(userId)
	elig, err := s.eligibility(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if !elig.CanGenerate {
		return nil, eligibilityError(elig)
	}

	req := entity.MirrorRequest{
		Id:          uuid.New(),
		UserId:      userId,
		Status:      entity.MirrorRequestPending,
		RequestedAt: s.now(),
	}
	if err := uow.MirrorRequestRepository().Create(ctx, &req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, eligibilityError(&dto.EligibilityResponse{Reason: ReasonAlreadyGenerating})
		}
		return nil, err
	}
	s.cache.Invalidate(userId)

	payload, err := json.Marshal(dto.GenerateMirrorMessage{RequestId: req.Id, UserId: userId})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		req.Status = entity.MirrorRequestFailed
		req.ErrorCode = entity.MirrorErrorLLM
		req.ErrorMessage = "could not queue generation"
		completedAt := s.now()
		req.CompletedAt = &completedAt
		if uerr := uow.MirrorRequestRepository().Update(ctx, &req); uerr != nil {
			s.logger.Error("MirrorService", "Failed to mark unqueued request failed", map[string]interface{}{"request_id": req.Id, "error": uerr.Error()})
		}
		s.cache.Invalidate(userId)
		return nil, fmt.Errorf("queue mirror generation: %w", err)
	}

	s.logger.Info("MirrorService", "Mirror generation queued", map[string]interface{}{"request_id": req.Id, "user_id": userId})

	res := &dto.GenerateMirrorResponse{RequestId: req.Id, Status: string(entity.MirrorRequestPending)}
	if s.settings.SyncWait <= 0 {
		return res, nil
	}
	return s.waitForWorker(ctx, uow, &req, res)
}

// waitForWorker polls the request row until the worker settles it or the
// sync window closes. A timeout is not an error: the caller polls status.
func (s *mirrorService) waitForWorker(ctx context.Context, uow unitofwork.UnitOfWork, req *entity.MirrorRequest, res *dto.GenerateMirrorResponse) (*dto.GenerateMirrorResponse, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.settings.SyncWait)
	defer cancel()

	ticker := time.NewTicker(s.settings.SyncPoll)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return res, nil
		case <-ticker.C:
		}

		current, err := uow.MirrorRequestRepository().FindOne(waitCtx, specification.ByID{ID: req.Id})
		if err != nil {
			if waitCtx.Err() != nil {
				return res, nil
			}
			return nil, err
		}
		if current == nil {
			return res, nil
		}
		res.Status = string(current.Status)

		switch current.Status {
		case entity.MirrorRequestCompleted:
			status, err := s.statusOf(ctx, uow, current)
			if err != nil {
				return nil, err
			}
			res.Mirror = status.Mirror
			return res, nil
		case entity.MirrorRequestFailed:
			return nil, generationFailedError(current)
		}
	}
}

func generationFailedError(req *entity.MirrorRequest) error {
	msg := req.ErrorMessage
	if msg == "" {
		msg = "We couldn't create your mirror this time."
	}
	switch req.ErrorCode {
	case entity.MirrorErrorContentPolicy, entity.MirrorErrorParse, entity.MirrorErrorNoEntries:
		return &serverutils.AppError{Status: fiber.StatusUnprocessableEntity, ErrorCode: req.ErrorCode, Message: msg, Err: ErrGenerationFailed}
	default:
		return &serverutils.AppError{Status: fiber.StatusInternalServerError, ErrorCode: "generation_failed", Message: msg, Err: ErrGenerationFailed}
	}
}

func (s *mirrorService) MarkViewed(ctx context.Context, userId uuid.UUID, mirrorId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	mirror, err := uow.MirrorRepository().FindOne(ctx,
		specification.ByID{ID: mirrorId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if mirror == nil {
		return serverutils.NotFound("Mirror not found")
	}
	if mirror.HasBeenViewed {
		return nil
	}
	if err := uow.MirrorRepository().MarkViewed(ctx, mirror.Id, s.now()); err != nil {
		return err
	}
	s.cache.Invalidate(userId)
	return nil
}

func (s *mirrorService) ListMirrors(ctx context.Context, userId uuid.UUID) ([]*dto.MirrorSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	mirrors, err := uow.MirrorRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.MirrorSummaryResponse, 0, len(mirrors))
	for _, m := range mirrors {
		res = append(res, toMirrorSummary(m))
	}
	return res, nil
}

func (s *mirrorService) ShowMirror(ctx context.Context, userId uuid.UUID, mirrorId uuid.UUID) (*dto.MirrorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	mirror, err := uow.MirrorRepository().FindOne(ctx, specification.ByID{ID: mirrorId})
	if err != nil {
		return nil, err
	}
	if mirror == nil {
		return nil, serverutils.NotFound("Mirror not found")
	}
	if mirror.UserId != userId {
		share, err := uow.MirrorShareRepository().FindOne(ctx,
			specification.Filter("mirror_id", mirrorId),
			specification.ByRecipientID{RecipientID: userId},
		)
		if err != nil {
			return nil, err
		}
		if share == nil {
			return nil, serverutils.NotFound("Mirror not found")
		}
	}
	return toMirrorResponse(mirror), nil
}

func (s *mirrorService) ShareMirror(ctx context.Context, userId uuid.UUID, req *dto.ShareMirrorRequest) (*dto.ShareMirrorResponse, error) {
	if req.RecipientId == userId {
		return nil, serverutils.BadRequest("You cannot share a mirror with yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	mirror, err := uow.MirrorRepository().FindOne(ctx,
		specification.ByID{ID: req.MirrorId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if mirror == nil {
		return nil, serverutils.NotFound("Mirror not found")
	}

	friendship, err := uow.FriendshipRepository().FindOne(ctx,
		specification.BetweenUsers{A: userId, B: req.RecipientId},
		specification.Filter("status", string(entity.FriendshipAccepted)),
	)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return nil, serverutils.Forbidden("Mirrors can only be shared with friends")
	}

	existing, err := uow.MirrorShareRepository().FindOne(ctx,
		specification.Filter("mirror_id", mirror.Id),
		specification.ByRecipientID{RecipientID: req.RecipientId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.ShareMirrorResponse{Id: existing.Id}, nil
	}

	share := entity.MirrorShare{
		Id:          uuid.New(),
		MirrorId:    mirror.Id,
		OwnerId:     userId,
		RecipientId: req.RecipientId,
		Note:        req.Note,
		CreatedAt:   s.now(),
	}
	if err := uow.MirrorShareRepository().Create(ctx, &share); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, "MirrorService", events.MirrorShared, map[string]interface{}{
		"user_id":     req.RecipientId.String(),
		"actor_id":    userId.String(),
		"entity_type": "mirror",
		"entity_id":   mirror.Id.String(),
		"title":       mirror.Title,
	})

	return &dto.ShareMirrorResponse{Id: share.Id}, nil
}

func (s *mirrorService) ListSharedWithMe(ctx context.Context, userId uuid.UUID) ([]*dto.SharedMirrorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shares, err := uow.MirrorShareRepository().FindAll(ctx,
		specification.ByRecipientID{RecipientID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return []*dto.SharedMirrorResponse{}, nil
	}

	ids := make([]uuid.UUID, len(shares))
	for i, sh := range shares {
		ids[i] = sh.MirrorId
	}
	mirrors, err := uow.MirrorRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Mirror, len(mirrors))
	for _, m := range mirrors {
		byId[m.Id] = m
	}

	res := make([]*dto.SharedMirrorResponse, 0, len(shares))
	for _, sh := range shares {
		m, ok := byId[sh.MirrorId]
		if !ok {
			continue
		}
		res = append(res, &dto.SharedMirrorResponse{
			ShareId:  sh.Id,
			Note:     sh.Note,
			SharedAt: sh.CreatedAt,
			Mirror:   *toMirrorSummary(m),
		})
	}
	return res, nil
}

func toMirrorResponse(m *entity.Mirror) *dto.MirrorResponse {
	return &dto.MirrorResponse{
		Id:            m.Id,
		OwnerId:       m.UserId,
		Title:         m.Title,
		Content:       m.Content,
		EntryCount:    m.EntryCount,
		HasBeenViewed: m.HasBeenViewed,
		ViewedAt:      m.ViewedAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toMirrorSummary(m *entity.Mirror) *dto.MirrorSummaryResponse {
	return &dto.MirrorSummaryResponse{
		Id:            m.Id,
		OwnerId:       m.UserId,
		Title:         m.Title,
		EntryCount:    m.EntryCount,
		HasBeenViewed: m.HasBeenViewed,
		CreatedAt:     m.CreatedAt,
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
