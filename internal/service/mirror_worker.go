package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"oxbow-be/internal/dto"
	"oxbow-be/internal/entity"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/repository/memory"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/pkg/events"
	"oxbow-be/pkg/llm"
	"oxbow-be/pkg/mirror"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mirrorJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oxbow_mirror_jobs_total",
			Help: "Mirror generation jobs processed, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	mirrorGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oxbow_mirror_generation_seconds",
			Help:    "Time spent waiting for the LLM to produce a mirror.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1s .. 128s
		},
	)
	mirrorPromptTokens = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oxbow_mirror_prompt_tokens",
			Help:    "Estimated prompt size sent to the LLM.",
			Buckets: prometheus.LinearBuckets(500, 500, 16), // 500 .. 8000
		},
	)
)

const outcomeCompleted = "completed"

type WorkerSettings struct {
	MaxEntries int
	LLMTimeout time.Duration
}

type IMirrorWorker interface {
	Consume(ctx context.Context) error
}

type mirrorWorker struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	prompts        *mirror.PromptBuilder
	eventPublisher EventPublisher
	cache          *memory.StatusCache
	settings       WorkerSettings
	logger         logger.ILogger
	now            func() time.Time
}

func NewMirrorWorker(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	prompts *mirror.PromptBuilder,
	eventPublisher EventPublisher,
	cache *memory.StatusCache,
	settings WorkerSettings,
	log logger.ILogger,
) IMirrorWorker {
	return &mirrorWorker{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		prompts:        prompts,
		eventPublisher: eventPublisher,
		cache:          cache,
		settings:       settings,
		logger:         log,
		now:            time.Now,
	}
}

func (w *mirrorWorker) Consume(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, w.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			w.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (w *mirrorWorker) processMessage(ctx context.Context, msg *message.Message) {
	var job dto.GenerateMirrorMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		w.logger.Error("MirrorWorker", "Failed to unmarshal job", map[string]interface{}{"error": err.Error()})
		msg.Ack() // poison message, never retry
		return
	}

	if err := w.process(ctx, job); err != nil {
		w.logger.Error("MirrorWorker", "Job failed before it was claimed, retrying", map[string]interface{}{
			"request_id": job.RequestId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// process returns an error only when the job should be redelivered. Once a
// request is claimed every outcome is persisted on the request row.
func (w *mirrorWorker) process(ctx context.Context, job dto.GenerateMirrorMessage) error {
	uow := w.uowFactory.NewUnitOfWork(ctx)

	claimed, err := uow.MirrorRequestRepository().MarkProcessing(ctx, job.RequestId, w.now())
	if err != nil {
		return err
	}
	if !claimed {
		w.logger.Warn("MirrorWorker", "Request is not pending, skipping", map[string]interface{}{"request_id": job.RequestId})
		return nil
	}
	w.cache.Invalidate(job.UserId)

	w.logger.Info("MirrorWorker", "Generating mirror", map[string]interface{}{"request_id": job.RequestId, "user_id": job.UserId})

	entries, err := uow.JournalEntryRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: job.UserId},
		specification.Unassigned{},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: w.settings.MaxEntries},
	)
	if err != nil {
		w.fail(ctx, uow, job, entity.MirrorErrorLLM, "We couldn't read your journal right now.", err)
		return nil
	}
	if len(entries) == 0 {
		w.fail(ctx, uow, job, entity.MirrorErrorNoEntries, "There are no new journal entries to reflect on.", mirror.ErrNoEntries)
		return nil
	}

	promptEntries := make([]mirror.Entry, len(entries))
	for i, e := range entries {
		promptEntries[i] = mirror.Entry{Title: e.Title, Content: e.Content, Mood: e.Mood, CreatedAt: e.CreatedAt}
	}
	prompt, err := w.prompts.Build(promptEntries)
	if err != nil {
		w.fail(ctx, uow, job, entity.MirrorErrorNoEntries, "There are no new journal entries to reflect on.", err)
		return nil
	}
	mirrorPromptTokens.Observe(float64(prompt.Tokens))

	doc, code, err := w.generate(ctx, prompt)
	if err != nil {
		w.fail(ctx, uow, job, code, failureMessage(code), err)
		return nil
	}

	content, err := json.Marshal(doc)
	if err != nil {
		w.fail(ctx, uow, job, entity.MirrorErrorParse, failureMessage(entity.MirrorErrorParse), err)
		return nil
	}

	consumed := make([]uuid.UUID, prompt.Used)
	for i := 0; i < prompt.Used; i++ {
		consumed[i] = entries[i].Id
	}

	m, err := w.persist(ctx, uow, job, doc.Title, content, consumed)
	if err != nil {
		w.fail(ctx, uow, job, entity.MirrorErrorLLM, "We couldn't save your mirror.", err)
		return nil
	}

	w.cache.Invalidate(job.UserId)
	mirrorJobsTotal.WithLabelValues(outcomeCompleted).Inc()
	w.logger.Info("MirrorWorker", "Mirror completed", map[string]interface{}{
		"request_id": job.RequestId,
		"mirror_id":  m.Id,
		"entries":    m.EntryCount,
	})

	publishEvent(ctx, w.eventPublisher, w.logger, "MirrorWorker", events.MirrorCompleted, map[string]interface{}{
		"user_id":     job.UserId.String(),
		"entity_type": "mirror",
		"entity_id":   m.Id.String(),
		"title":       m.Title,
		"entry_count": m.EntryCount,
	})
	return nil
}

// generate calls the model and maps every failure to a stored error code.
func (w *mirrorWorker) generate(ctx context.Context, prompt *mirror.Prompt) (*mirror.Document, string, error) {
	llmCtx := ctx
	if w.settings.LLMTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, w.settings.LLMTimeout)
		defer cancel()
	}

	started := w.now()
	reply, err := w.llmProvider.Chat(llmCtx, []llm.Message{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}, llm.WithJSONMode(), llm.WithTemperature(0.8))
	mirrorGenerationDuration.Observe(w.now().Sub(started).Seconds())

	if err != nil {
		if errors.Is(err, llm.ErrContentPolicy) {
			return nil, entity.MirrorErrorContentPolicy, err
		}
		return nil, entity.MirrorErrorLLM, err
	}

	doc, err := mirror.Parse(reply)
	if err != nil {
		if errors.Is(err, mirror.ErrRefused) {
			return nil, entity.MirrorErrorContentPolicy, err
		}
		return nil, entity.MirrorErrorParse, err
	}
	return doc, "", nil
}

func (w *mirrorWorker) persist(ctx context.Context, uow unitofwork.UnitOfWork, job dto.GenerateMirrorMessage, title string, content []byte, consumed []uuid.UUID) (*entity.Mirror, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	m := entity.Mirror{
		Id:         uuid.New(),
		UserId:     job.UserId,
		RequestId:  job.RequestId,
		Title:      title,
		Content:    content,
		EntryCount: len(consumed),
		CreatedAt:  w.now(),
	}
	if err := uow.MirrorRepository().Create(ctx, &m); err != nil {
		return nil, err
	}

	bound, err := uow.JournalEntryRepository().BindToMirror(ctx, consumed, m.Id)
	if err != nil {
		return nil, err
	}
	if int(bound) != len(consumed) {
		w.logger.Warn("MirrorWorker", "Some entries changed during generation", map[string]interface{}{
			"request_id": job.RequestId,
			"expected":   len(consumed),
			"bound":      bound,
		})
	}

	req, err := uow.MirrorRequestRepository().FindOne(ctx, specification.ByID{ID: job.RequestId})
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("mirror request disappeared during generation")
	}
	completedAt := w.now()
	req.Status = entity.MirrorRequestCompleted
	req.MirrorId = &m.Id
	req.CompletedAt = &completedAt
	if err := uow.MirrorRequestRepository().Update(ctx, req); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (w *mirrorWorker) fail(ctx context.Context, uow unitofwork.UnitOfWork, job dto.GenerateMirrorMessage, code, message string, cause error) {
	mirrorJobsTotal.WithLabelValues(code).Inc()
	w.logger.Warn("MirrorWorker", "Mirror generation failed", map[string]interface{}{
		"request_id": job.RequestId,
		"error_code": code,
		"error":      cause.Error(),
	})

	req, err := uow.MirrorRequestRepository().FindOne(ctx, specification.ByID{ID: job.RequestId})
	if err != nil || req == nil {
		w.logger.Error("MirrorWorker", "Could not load request to mark it failed", map[string]interface{}{"request_id": job.RequestId})
		return
	}
	completedAt := w.now()
	req.Status = entity.MirrorRequestFailed
	req.ErrorCode = code
	req.ErrorMessage = message
	req.CompletedAt = &completedAt
	if err := uow.MirrorRequestRepository().Update(ctx, req); err != nil {
		w.logger.Error("MirrorWorker", "Could not mark request failed", map[string]interface{}{"request_id": job.RequestId, "error": err.Error()})
		return
	}
	w.cache.Invalidate(job.UserId)

	publishEvent(ctx, w.eventPublisher, w.logger, "MirrorWorker", events.MirrorFailed, map[string]interface{}{
		"user_id":     job.UserId.String(),
		"entity_type": "mirror_request",
		"entity_id":   job.RequestId.String(),
		"error_code":  code,
		"message":     message,
	})
}

func failureMessage(code string) string {
	switch code {
	case entity.MirrorErrorContentPolicy:
		return "Some of what you wrote needs more care than a mirror can offer. If you are struggling, please reach out to someone you trust."
	case entity.MirrorErrorParse:
		return "We couldn't put your mirror together this time. Please try again."
	default:
		return "Something went wrong while creating your mirror. Please try again."
	}
}
