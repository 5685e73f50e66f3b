// Package service wires history ingestion, roster building, the split
// search and the tie break into the operations the CLI and HTTP API expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teamsplit/internal/adapters/history"
	"github.com/okian/teamsplit/internal/domain/model"
	"github.com/okian/teamsplit/internal/domain/roster"
	"github.com/okian/teamsplit/internal/domain/scoring"
	"github.com/okian/teamsplit/internal/domain/search"
	"github.com/okian/teamsplit/internal/domain/tiebreak"
	"github.com/okian/teamsplit/pkg/logger"
	"github.com/okian/teamsplit/pkg/metrics"
)

// HistoryLoader reads the results history stored at path.
type HistoryLoader func(ctx context.Context, path string, opts ...history.Option) (*history.History, error)

// Request asks for a proposal for one game.
type Request struct {
	// Online lists the players present tonight.
	Online []string `json:"online"`
	// GameNumber is appended to the date to seed the tie break. May be empty.
	GameNumber string `json:"game_number"`
	// HistoryPath overrides the configured history file.
	HistoryPath string `json:"-"`
}

// PlayerView is a ranked player as reported to callers.
type PlayerView struct {
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Rank        int    `json:"rank"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	WinPercent  int    `json:"win_percent"`
	Description string `json:"-"`
}

// Split is a scored partition with team members resolved to names.
type Split struct {
	Score  int      `json:"score"`
	Labels string   `json:"labels"`
	Team1  []string `json:"team1"`
	Team2  []string `json:"team2"`
}

// Proposal is the answer to a Request.
type Proposal struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	GameNumber   string       `json:"game_number"`
	Players      []PlayerView `json:"players"`
	Canonical    Split        `json:"canonical"`
	Combinations int          `json:"combinations"`
	Best         []Split      `json:"best"`
	BestScore    int          `json:"best_score"`
	Ties         int          `json:"ties"`
	Seed         string       `json:"seed"`
	Index        int          `json:"index"`
	Selected     Split        `json:"selected"`
}

// Service builds proposals from a results history.
type Service struct {
	historyPath string
	historyOpts []history.Option
	order       roster.Order
	loader      HistoryLoader
	now         func() time.Time
	loc         *time.Location
	breaker     *tiebreak.Breaker
	logger      logger.Logger

	mu        sync.RWMutex
	proposals int
	last      time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHistoryPath sets the default history file.
func WithHistoryPath(path string) Option {
	return func(s *Service) {
		s.historyPath = path
	}
}

// WithSheet selects the XLSX worksheet.
func WithSheet(sheet string) Option {
	return func(s *Service) {
		if sheet != "" {
			s.historyOpts = append(s.historyOpts, history.WithSheet(sheet))
		}
	}
}

// WithMarkers sets the win, loss and end-of-data cell values.
func WithMarkers(win, loss, end string) Option {
	return func(s *Service) {
		s.historyOpts = append(s.historyOpts, history.WithMarkers(win, loss), history.WithEndMarker(end))
	}
}

// WithRosterOrder decides how positions are assigned.
func WithRosterOrder(o roster.Order) Option {
	return func(s *Service) {
		if o != "" {
			s.order = o
		}
	}
}

// WithHistoryLoader replaces the file loader.
func WithHistoryLoader(l HistoryLoader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithClock overrides the time source used for seeds and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone that decides the seed date.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		order:  roster.OrderHistory,
		loader: history.Load,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.breaker = tiebreak.New(tiebreak.WithClock(s.now), tiebreak.WithLocation(s.loc))
	return s
}

// Propose ranks the online players, searches for the most balanced split
// and breaks ties for the requested game.
func (s *Service) Propose(ctx context.Context, req Request) (Proposal, error) {
	p, err := s.propose(ctx, req)
	if err != nil {
		metrics.RecordProposal(metrics.OutcomeError)
		s.logger.Warn(ctx, "proposal failed",
			logger.Strings("online", req.Online),
			logger.String("game", req.GameNumber),
			logger.Error(err),
		)
		return Proposal{}, err
	}
	metrics.RecordProposal(metrics.OutcomeOK)

	s.mu.Lock()
	s.proposals++
	s.last = p.CreatedAt
	s.mu.Unlock()

	s.logger.Info(ctx, "proposal ready",
		logger.String("id", p.ID),
		logger.Int("players", len(p.Players)),
		logger.Int("combinations", p.Combinations),
		logger.Int("bestScore", p.BestScore),
		logger.Int("ties", p.Ties),
		logger.String("seed", p.Seed),
		logger.Int("index", p.Index),
	)
	return p, nil
}

func (s *Service) propose(ctx context.Context, req Request) (Proposal, error) {
	if _, err := tiebreak.Seed(time.Time{}, req.GameNumber); err != nil {
		return Proposal{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	players, err := s.roster(ctx, req.HistoryPath, req.Online)
	if err != nil {
		return Proposal{}, err
	}
	if err := ctx.Err(); err != nil {
		return Proposal{}, err
	}

	start := time.Now()
	res, err := search.RunPlayers(ctx, players)
	if err != nil {
		return Proposal{}, err
	}
	metrics.RecordSearch(len(players), res.Combinations, res.BestScore, res.Ties,
		float64(time.Since(start).Microseconds())/1000)

	sel, err := s.breaker.Break(req.GameNumber, res.Ties)
	if err != nil {
		return Proposal{}, err
	}
	if res.Ties > 1 {
		metrics.RecordTieBreak()
	}

	names := make([]string, len(players))
	for _, p := range players {
		names[p.Position()] = p.Name()
	}
	best := make([]Split, len(res.Best))
	for i, sp := range res.Best {
		best[i] = split(sp, names)
	}
	canonical := model.ScoredPartition{
		Score:     scoring.Imbalance(res.Canonical, roster.Ranks(players)),
		Partition: res.Canonical,
	}

	return Proposal{
		ID:           uuid.NewString(),
		CreatedAt:    s.now(),
		GameNumber:   strings.TrimSpace(req.GameNumber),
		Players:      views(roster.ByRank(players)),
		Canonical:    split(canonical, names),
		Combinations: res.Combinations,
		Best:         best,
		BestScore:    res.BestScore,
		Ties:         res.Ties,
		Seed:         sel.Seed,
		Index:        sel.Index,
		Selected:     best[sel.Index],
	}, nil
}

// Players returns the online players ranked from their history, highest
// rank first.
func (s *Service) Players(ctx context.Context, online []string) ([]PlayerView, error) {
	players, err := s.roster(ctx, "", online)
	if err != nil {
		return nil, err
	}
	return views(roster.ByRank(players)), nil
}

func (s *Service) roster(ctx context.Context, path string, online []string) ([]model.Player, error) {
	if len(online) == 0 {
		return nil, ErrNoPlayers
	}
	trimmed := make([]string, len(online))
	for i, name := range online {
		trimmed[i] = strings.TrimSpace(name)
	}
	online = trimmed
	if path == "" {
		path = s.historyPath
	}
	if path == "" {
		return nil, ErrNoHistory
	}

	opts := append([]history.Option{history.WithPlayers(online...)}, s.historyOpts...)
	start := time.Now()
	hist, err := s.loader(ctx, path, opts...)
	if err != nil {
		metrics.RecordIngestionError(ingestionKind(err))
		return nil, err
	}
	metrics.RecordHistoryLoad(len(hist.Columns()), float64(time.Since(start).Microseconds())/1000)
	s.logger.Debug(ctx, "history loaded",
		logger.String("path", path),
		logger.Int("columns", len(hist.Columns())),
		logger.Int("rows", hist.Rows),
	)

	return roster.Build(online, hist, roster.WithOrder(s.order))
}

// Stats reports how many proposals were served and when the last one was.
func (s *Service) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]any{
		"proposals":   s.proposals,
		"historyPath": s.historyPath,
		"rosterOrder": string(s.order),
	}
	if !s.last.IsZero() {
		stats["lastProposal"] = s.last
	}
	return stats
}

func ingestionKind(err error) string {
	var tokenErr *history.InvalidResultTokenError
	var dupErr *history.DuplicateColumnError
	switch {
	case errors.As(err, &tokenErr):
		return "bad_token"
	case errors.As(err, &dupErr):
		return "duplicate_column"
	case errors.Is(err, history.ErrEmptyHistory):
		return "empty"
	case errors.Is(err, history.ErrUnsupportedFormat):
		return "format"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "read"
	}
}

func split(sp model.ScoredPartition, names []string) Split {
	return Split{
		Score:  sp.Score,
		Labels: sp.Partition.Key(),
		Team1:  pick(names, sp.Partition.Members(model.Team1)),
		Team2:  pick(names, sp.Partition.Members(model.Team2)),
	}
}

func pick(names []string, positions []int) []string {
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = names[pos]
	}
	return out
}

func views(players []model.Player) []PlayerView {
	out := make([]PlayerView, len(players))
	for i, p := range players {
		out[i] = PlayerView{
			Name:        p.Name(),
			Position:    p.Position(),
			Rank:        p.Rank,
			Wins:        p.Wins,
			Losses:      p.Losses,
			WinPercent:  p.WinPercent(),
			Description: p.Description(),
		}
	}
	return out
}
