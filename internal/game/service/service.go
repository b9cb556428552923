// Package service orchestrates crafting game sessions over a shared
// recipe book and store. Mutating operations on the same session are
// serialized behind a per-session lock so a round increment, inventory
// append, and log append land as one unit; reads operate on snapshots.
package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	"github.com/louisbranch/synthesis.garden/internal/game/analytics"
	"github.com/louisbranch/synthesis.garden/internal/game/domain"
	"github.com/louisbranch/synthesis.garden/internal/platform/id"
	"github.com/louisbranch/synthesis.garden/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/synthesis.garden/internal/platform/errors"
)

// tracerName identifies this package's tracer.
const tracerName = "github.com/louisbranch/synthesis.garden/internal/game/service"

// Options configures optional GameService dependencies.
type Options struct {
	// PlateauWindow overrides the summary plateau window.
	PlateauWindow int
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
	// IDGenerator overrides the session id generator.
	IDGenerator func() (string, error)
}

// GameService exposes the core game operations consumed by the
// surrounding protocol layer.
type GameService struct {
	book        *recipe.Book
	store       storage.GameStore
	clock       func() time.Time
	idGenerator func() (string, error)
	window      int
	tracer      trace.Tracer
	locks       sync.Map // session id -> *sync.Mutex
}

// New creates a GameService over a recipe book and store.
func New(book *recipe.Book, store storage.GameStore, opts Options) *GameService {
	service := &GameService{
		book:        book,
		store:       store,
		clock:       opts.Clock,
		idGenerator: opts.IDGenerator,
		window:      opts.PlateauWindow,
		tracer:      otel.Tracer(tracerName),
	}
	if service.clock == nil {
		service.clock = time.Now
	}
	if service.idGenerator == nil {
		service.idGenerator = id.NewID
	}
	if service.window <= 0 {
		service.window = analytics.DefaultPlateauWindow
	}
	return service
}

// GameState is a read-only snapshot of a session.
type GameState struct {
	SessionID     string
	Mode          domain.Mode
	Target        recipe.Element
	TargetReached bool
	Inventory     []recipe.Element
	RoundsUsed    int
	RoundsMax     int
	Status        domain.Status
	StartedAt     time.Time
	EndedAt       *time.Time
}

// MoveResult reports the outcome of one combination attempt.
type MoveResult struct {
	SessionID     string
	AttemptNumber int
	First         recipe.Element
	Second        recipe.Element
	Success       bool
	Novel         bool
	Created       []recipe.Element
	AlreadyKnown  []recipe.Element
	// FinalFlags marks which result elements can never be used as
	// ingredients again.
	FinalFlags    map[recipe.Element]bool
	RoundsUsed    int
	RoundsMax     int
	TargetReached bool
}

// SessionInfo is a one-line listing entry for a session.
type SessionInfo struct {
	SessionID  string
	Mode       domain.Mode
	Status     domain.Status
	RoundsUsed int
	RoundsMax  int
}

// CreateSession creates and stores a new session.
func (s *GameService) CreateSession(ctx context.Context, input domain.CreateSessionInput) (GameState, error) {
	ctx, span := s.tracer.Start(ctx, "game.create_session")
	defer span.End()

	session, err := domain.CreateSession(input, s.book, s.clock, s.idGenerator)
	if err != nil {
		return GameState{}, s.mapError(err, input.ID)
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return GameState{}, s.mapError(err, session.ID)
	}

	span.SetAttributes(attribute.String("session.id", session.ID))
	log.Printf("game session created session_id=%s mode=%s max_rounds=%d inventory=%d",
		session.ID, session.Mode, session.MaxRounds, len(session.Inventory))

	return stateOf(session), nil
}

// Attempt combines two inventory items within a session. The whole
// read-modify-write, including both store writes, runs under the
// session's exclusive lock.
func (s *GameService) Attempt(ctx context.Context, sessionID, item1, item2, reasoning string) (MoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "game.attempt",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	first := recipe.Normalize(item1)
	second := recipe.Normalize(item2)

	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return MoveResult{}, s.mapError(err, sessionID)
	}

	record, err := session.Attempt(s.book, first, second, reasoning, s.clock())
	if err != nil {
		return MoveResult{}, s.attemptError(err, session)
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return MoveResult{}, s.mapError(err, sessionID)
	}
	if err := s.store.AppendAttempt(ctx, record); err != nil {
		return MoveResult{}, s.mapError(err, sessionID)
	}

	span.SetAttributes(
		attribute.Bool("attempt.success", record.Success),
		attribute.Int("attempt.number", record.Number),
	)
	log.Printf("attempt session_id=%s pair=%q success=%t created=%d rounds=%d/%d",
		sessionID, recipe.NewPair(first, second), record.Success,
		len(record.Created), session.RoundsUsed, session.MaxRounds)

	finalFlags := make(map[recipe.Element]bool, len(record.Created)+len(record.AlreadyKnown))
	for _, element := range record.Created {
		finalFlags[element] = s.book.IsFinal(element)
	}
	for _, element := range record.AlreadyKnown {
		finalFlags[element] = s.book.IsFinal(element)
	}

	return MoveResult{
		SessionID:     sessionID,
		AttemptNumber: record.Number,
		First:         first,
		Second:        second,
		Success:       record.Success,
		Novel:         record.Novel,
		Created:       record.Created,
		AlreadyKnown:  record.AlreadyKnown,
		FinalFlags:    finalFlags,
		RoundsUsed:    session.RoundsUsed,
		RoundsMax:     session.MaxRounds,
		TargetReached: session.TargetReached,
	}, nil
}

// GetState returns a read-only snapshot of a session.
func (s *GameService) GetState(ctx context.Context, sessionID string) (GameState, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return GameState{}, s.mapError(err, sessionID)
	}
	return stateOf(session), nil
}

// EndSession freezes a session and returns its final summary.
func (s *GameService) EndSession(ctx context.Context, sessionID string) (analytics.SessionSummary, error) {
	ctx, span := s.tracer.Start(ctx, "game.end_session",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}

	if err := session.End(s.clock()); err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}

	records, err := s.store.ListAttempts(ctx, sessionID)
	if err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}

	summary := analytics.Summarize(session, records, s.window)
	log.Printf("game session ended session_id=%s attempts=%d discovered=%d",
		sessionID, summary.TotalAttempts, summary.ElementsDiscovered)
	return summary, nil
}

// SessionSummary computes the current summary for a session without
// ending it. It is idempotent and callable at any time.
func (s *GameService) SessionSummary(ctx context.Context, sessionID string) (analytics.SessionSummary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}
	records, err := s.store.ListAttempts(ctx, sessionID)
	if err != nil {
		return analytics.SessionSummary{}, s.mapError(err, sessionID)
	}
	return analytics.Summarize(session, records, s.window), nil
}

// SessionSummaries computes summaries for every session in creation order.
func (s *GameService) SessionSummaries(ctx context.Context) ([]analytics.SessionSummary, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, s.mapError(err, "")
	}

	summaries := make([]analytics.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		records, err := s.store.ListAttempts(ctx, session.ID)
		if err != nil {
			return nil, s.mapError(err, session.ID)
		}
		summaries = append(summaries, analytics.Summarize(session, records, s.window))
	}
	return summaries, nil
}

// AttemptLog returns a session's attempt records in append order.
func (s *GameService) AttemptLog(ctx context.Context, sessionID string) ([]domain.AttemptRecord, error) {
	records, err := s.store.ListAttempts(ctx, sessionID)
	if err != nil {
		return nil, s.mapError(err, sessionID)
	}
	return records, nil
}

// ListSessions returns listing entries for all sessions in creation order.
func (s *GameService) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, s.mapError(err, "")
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			SessionID:  session.ID,
			Mode:       session.Mode,
			Status:     session.Status,
			RoundsUsed: session.RoundsUsed,
			RoundsMax:  session.MaxRounds,
		})
	}
	return infos, nil
}

// Book exposes the shared read-only recipe book.
func (s *GameService) Book() *recipe.Book {
	return s.book
}

// PlateauWindow returns the configured summary plateau window.
func (s *GameService) PlateauWindow() int {
	return s.window
}

// lockSession acquires the per-session mutex and returns its unlock.
// Locks are never removed; sessions live for the process lifetime.
func (s *GameService) lockSession(sessionID string) func() {
	value, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// stateOf converts a session snapshot into a GameState.
func stateOf(session domain.Session) GameState {
	return GameState{
		SessionID:     session.ID,
		Mode:          session.Mode,
		Target:        session.Target,
		TargetReached: session.TargetReached,
		Inventory:     session.Inventory,
		RoundsUsed:    session.RoundsUsed,
		RoundsMax:     session.MaxRounds,
		Status:        session.Status,
		StartedAt:     session.StartedAt,
		EndedAt:       session.EndedAt,
	}
}

// attemptError maps attempt failures, enriching round-budget errors
// with the session's counters and inventory misses with the current
// inventory so the caller can see what is available.
func (s *GameService) attemptError(err error, session domain.Session) error {
	if errors.Is(err, domain.ErrRoundsExhausted) {
		return apperrors.WithMetadata(apperrors.CodeRoundsExhausted, err.Error(), map[string]string{
			"session_id":  session.ID,
			"rounds_used": strconv.Itoa(session.RoundsUsed),
			"rounds_max":  strconv.Itoa(session.MaxRounds),
		})
	}

	var notInInventory *domain.ItemNotInInventoryError
	if errors.As(err, &notInInventory) {
		items := make([]string, len(session.Inventory))
		for i, element := range session.Inventory {
			items[i] = string(element)
		}
		return apperrors.WithMetadata(apperrors.CodeItemNotInInventory, err.Error(), map[string]string{
			"session_id": session.ID,
			"item":       string(notInInventory.Item),
			"inventory":  strings.Join(items, ", "),
		})
	}

	return s.mapError(err, session.ID)
}

// mapError translates domain and storage errors into coded errors for
// the protocol layer. Unrecognized errors map to CodeUnknown.
func (s *GameService) mapError(err error, sessionID string) error {
	if err == nil {
		return nil
	}

	sessionMeta := map[string]string{"session_id": sessionID}

	var notInInventory *domain.ItemNotInInventoryError
	if errors.As(err, &notInInventory) {
		return apperrors.WithMetadata(apperrors.CodeItemNotInInventory, err.Error(), map[string]string{
			"session_id": sessionID,
			"item":       string(notInInventory.Item),
		})
	}

	var unknownElement *recipe.UnknownElementError
	if errors.As(err, &unknownElement) {
		return apperrors.WithMetadata(apperrors.CodeUnknownElement, err.Error(), map[string]string{
			"element": string(unknownElement.Element),
		})
	}

	switch {
	case errors.Is(err, domain.ErrSessionEnded):
		return apperrors.WithMetadata(apperrors.CodeSessionEnded, err.Error(), sessionMeta)
	case errors.Is(err, domain.ErrRoundsExhausted):
		return apperrors.WithMetadata(apperrors.CodeRoundsExhausted, err.Error(), sessionMeta)
	case errors.Is(err, domain.ErrInvalidMode):
		return apperrors.New(apperrors.CodeInvalidMode, err.Error())
	case errors.Is(err, domain.ErrInvalidMaxRounds):
		return apperrors.New(apperrors.CodeInvalidMaxRounds, err.Error())
	case errors.Is(err, domain.ErrMissingTarget):
		return apperrors.New(apperrors.CodeMissingTarget, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WithMetadata(apperrors.CodeUnknownSession, err.Error(), sessionMeta)
	case errors.Is(err, storage.ErrSessionExists):
		return apperrors.WithMetadata(apperrors.CodeSessionExists, err.Error(), sessionMeta)
	default:
		return apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
	}
}
