package engine

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/gameid"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

// maxAutoplayTurns bounds strategy-driven turns per command. Stacks are
// finite so real hands settle long before this.
const maxAutoplayTurns = 4096

// session is the per-game unit of isolation: one context, one machine, one
// snapshot history, one RNG stream. All mutation is serialized by mu.
type session struct {
	mu         sync.Mutex
	ctx        *GameContext
	machine    *StateMachine
	snapshots  *SnapshotManager
	strategies map[string]AIStrategy
	rng        *rand.Rand
	subs       []string
}

// CommandService is the sole mutator of game state. Every operation runs
// inside an atomic scope: snapshot, execute, validate invariants, then
// commit and publish, or roll back and publish a rollback event.
type CommandService struct {
	cfg    Config
	bus    *EventBus
	eval   Evaluator
	clock  quartz.Clock
	ids    *gameid.Generator
	logger *log.Logger
	deps   *handlerDeps

	mu       sync.Mutex
	sessions map[string]*session
	streams  int64
}

// ServiceOption configures a CommandService.
type ServiceOption func(*CommandService)

// WithBus attaches a shared event bus instead of an owned one.
func WithBus(bus *EventBus) ServiceOption {
	return func(s *CommandService) { s.bus = bus }
}

// WithEvaluator substitutes the hand evaluator.
func WithEvaluator(eval Evaluator) ServiceOption {
	return func(s *CommandService) { s.eval = eval }
}

// WithClock injects the clock used across bus, snapshots, and machines.
func WithClock(clock quartz.Clock) ServiceOption {
	return func(s *CommandService) { s.clock = clock }
}

// NewCommandService creates the service with validated configuration.
func NewCommandService(cfg Config, logger *log.Logger, opts ...ServiceOption) (*CommandService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &CommandService{
		cfg:      cfg,
		clock:    quartz.NewReal(),
		logger:   logger,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = gameid.NewGenerator(randutil.New(cfg.Seed), s.clock)
	}
	if s.bus == nil {
		s.bus = NewEventBus(logger.WithPrefix("bus"),
			WithBusClock(s.clock),
			WithHistoryLimit(cfg.EventHistory),
			WithBusIDGenerator(s.ids))
	}
	if s.eval == nil {
		s.eval = NewEvaluator()
	}
	s.deps = &handlerDeps{eval: s.eval, logger: logger}
	return s, nil
}

// Bus returns the event bus the service publishes to.
func (s *CommandService) Bus() *EventBus {
	return s.bus
}

// Config returns the service configuration.
func (s *CommandService) Config() Config {
	return s.cfg
}

// CreateGameParams describes one new game. Zero-valued chip and blind
// fields fall back to the service configuration.
type CreateGameParams struct {
	// GameID is the caller-chosen id; empty generates one.
	GameID    string
	PlayerIDs []string
	// PlayerNames maps ids to display names; missing entries use the id.
	PlayerNames map[string]string
	// Chips overrides the starting stack per player id.
	Chips        map[string]int
	InitialChips int
	SmallBlind   int
	BigBlind     int
	// Seed fixes this session's RNG stream; zero derives one from the
	// service seed.
	Seed int64
}

// CreateGame creates a session in the Init phase and publishes GameStarted.
func (s *CommandService) CreateGame(params CreateGameParams) Result {
	cfg := s.cfg
	if params.InitialChips > 0 {
		cfg.InitialChips = params.InitialChips
	}
	if params.SmallBlind > 0 {
		cfg.SmallBlind = params.SmallBlind
	}
	if params.BigBlind > 0 {
		cfg.BigBlind = params.BigBlind
	}
	if err := cfg.Validate(); err != nil {
		return failureResult(wrapError(CodeInvalidInput, err, "game parameters"))
	}

	if len(params.PlayerIDs) < 2 {
		return failureResult(newError(CodeInvalidInput, "need at least 2 players, got %d", len(params.PlayerIDs)))
	}
	if len(params.PlayerIDs) > cfg.MaxPlayers {
		return failureResult(newError(CodeInvalidInput, "%d players exceeds the table limit of %d", len(params.PlayerIDs), cfg.MaxPlayers))
	}

	seen := make(map[string]bool, len(params.PlayerIDs))
	players := make([]*PlayerState, 0, len(params.PlayerIDs))
	total := 0
	for i, id := range params.PlayerIDs {
		if id == "" {
			return failureResult(newError(CodeInvalidInput, "player id at seat %d is empty", i))
		}
		if seen[id] {
			return failureResult(newError(CodeInvalidInput, "duplicate player id %s", id))
		}
		seen[id] = true

		chips := cfg.InitialChips
		if override, ok := params.Chips[id]; ok {
			if override <= 0 {
				return failureResult(newError(CodeInvalidInput, "player %s chips must be positive, got %d", id, override))
			}
			chips = override
		}
		name := id
		if n, ok := params.PlayerNames[id]; ok && n != "" {
			name = n
		}
		players = append(players, &PlayerState{
			ID:       id,
			Name:     name,
			Chips:    chips,
			Status:   StatusActive,
			Active:   true,
			Position: i,
		})
		total += chips
	}

	gameID := params.GameID
	if gameID == "" {
		gameID = s.ids.Generate(gameid.KindGame)
	}

	s.mu.Lock()
	if _, exists := s.sessions[gameID]; exists {
		s.mu.Unlock()
		return failureResult(newError(CodeInvalidInput, "game %s already exists", gameID))
	}
	s.streams++
	stream := s.streams
	seed := params.Seed
	if seed == 0 {
		seed = randutil.Derive(s.cfg.Seed, stream)
	}

	sess := &session{
		ctx: &GameContext{
			GameID:        gameID,
			CurrentPhase:  PhaseInit,
			Players:       players,
			SmallBlind:    cfg.SmallBlind,
			BigBlind:      cfg.BigBlind,
			Seed:          seed,
			StartingTotal: total,
		},
		machine: NewStateMachine(WithMachineClock(s.clock)),
		snapshots: NewSnapshotManager(
			WithSnapshotClock(s.clock),
			WithSnapshotLimit(cfg.SnapshotHistory),
			WithSnapshotIDGenerator(s.ids)),
		strategies: make(map[string]AIStrategy),
		rng:        randutil.New(seed),
	}
	s.sessions[gameID] = sess
	s.mu.Unlock()

	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	started := NewEvent(EventGameStarted, PhaseInit, map[string]any{
		"players":       ids,
		"initial_chips": cfg.InitialChips,
		"small_blind":   cfg.SmallBlind,
		"big_blind":     cfg.BigBlind,
	})
	s.publish(gameID, s.ids.Generate(gameid.KindCommand), []Event{started})
	sess.snapshots.Create(sess.ctx, "game created")

	s.logger.Info("game created", "game", gameID, "players", len(players))
	return successResult(fmt.Sprintf("game %s created with %d players", gameID, len(players)), []Event{started}).
		withData("game_id", gameID)
}

// StartNewHand posts blinds, deals, and opens the pre-flop betting round.
func (s *CommandService) StartNewHand(gameID string) Result {
	return s.execute(gameID, "start_new_hand", func(sess *session) ([]Event, error) {
		return s.startHand(sess)
	}, nil)
}

func (s *CommandService) startHand(sess *session) ([]Event, error) {
	ctx := sess.ctx
	if ctx.CurrentPhase != PhaseInit && ctx.CurrentPhase != PhaseFinished {
		return nil, newError(CodePhaseError, "cannot start a hand during %s", ctx.CurrentPhase)
	}
	if ctx.PotTotal != 0 {
		return nil, newError(CodeStateCorruption, "pot holds %d chips before hand start", ctx.PotTotal)
	}

	funded := 0
	for _, p := range ctx.Players {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		return nil, newError(CodePhaseError, "need at least 2 funded players to start a hand, have %d", funded)
	}

	ctx.HandNumber++
	ctx.CommunityCards = nil
	ctx.Winners = nil
	ctx.ShowdownComplete = false
	ctx.CurrentBet = 0
	ctx.MinRaise = ctx.BigBlind
	ctx.ActedSinceRaise = make(map[string]bool)
	for _, p := range ctx.Players {
		p.resetForHand()
	}
	s.assignSeatFlags(ctx)

	ctx.Deck = poker.NewDeck(sess.rng)
	ctx.StartingTotal = ctx.TotalChips()

	events := []Event{NewEvent(EventHandStarted, PhaseInit, map[string]any{
		"hand_number": ctx.HandNumber,
		"small_blind": ctx.SmallBlind,
		"big_blind":   ctx.BigBlind,
		"players":     funded,
	})}

	// Fixed seat order: seat 0 posts the small blind, seat 1 the big
	// blind. Short stacks post all-in for less; the table bet stays at
	// the full big blind either way.
	events = append(events, postBlind(ctx, ctx.Players[0], ctx.SmallBlind, "small_blind"))
	events = append(events, postBlind(ctx, ctx.Players[1], ctx.BigBlind, "big_blind"))
	ctx.CurrentBet = ctx.BigBlind
	events = append(events, newPotUpdatedEvent(PhaseInit, ctx.PotTotal))

	moved, err := sess.machine.Transition(ctx, s.deps, PhasePreFlop, "hand started")
	if err != nil {
		return nil, err
	}
	events = append(events, moved...)

	// Blinds can leave nobody able to act when both seats are short.
	if s.cfg.AutoAdvance {
		return s.settle(sess, events)
	}
	return events, nil
}

// assignSeatFlags marks the blind seats and the dealer for the new hand.
// Seats do not rotate: seat 0 is the small blind, seat 1 the big blind,
// and the last seat carries the button; heads-up the small blind has it.
func (s *CommandService) assignSeatFlags(ctx *GameContext) {
	for _, p := range ctx.Players {
		p.Dealer = false
		p.SmallBlind = false
		p.BigBlind = false
	}
	ctx.Players[0].SmallBlind = true
	ctx.Players[1].BigBlind = true
	if len(ctx.Players) == 2 {
		ctx.Players[0].Dealer = true
	} else {
		ctx.Players[len(ctx.Players)-1].Dealer = true
	}
}

func postBlind(ctx *GameContext, p *PlayerState, amount int, kind string) Event {
	paid := commitChips(ctx, p, amount)
	data := map[string]any{
		"blind":      kind,
		"amount":     paid,
		"player_bet": p.CurrentBet,
	}
	if p.AllIn {
		data["all_in"] = true
	}
	return newPlayerEvent(EventBetPlaced, PhaseInit, p.ID, data)
}

// ExecutePlayerAction validates turn ownership, applies the action through
// the current phase handler, and advances the phase when the round settles.
func (s *CommandService) ExecutePlayerAction(gameID, playerID string, action PlayerAction) Result {
	sess, err := s.lookup(gameID)
	if err != nil {
		return failureResult(err)
	}
	res := s.executeActionOn(sess, playerID, action)
	if res.Success && s.cfg.AutoPlayAI {
		s.autoplay(sess)
	}
	return res
}

func (s *CommandService) executeActionOn(sess *session, playerID string, action PlayerAction) Result {
	onFailure := func(err error) []Event {
		return []Event{newPlayerEvent(EventInvalidAction, sess.ctx.CurrentPhase, playerID, map[string]any{
			"action": string(action.Type),
			"amount": action.Amount,
			"reason": err.Error(),
		})}
	}
	return s.executeOn(sess, "execute_player_action", func(sess *session) ([]Event, error) {
		return s.applyAction(sess, playerID, action)
	}, onFailure)
}

func (s *CommandService) applyAction(sess *session, playerID string, action PlayerAction) ([]Event, error) {
	ctx := sess.ctx
	if err := action.validateShape(); err != nil {
		return nil, err
	}
	if !ctx.CurrentPhase.Betting() {
		return nil, newError(CodePhaseError, "no actions allowed during %s", ctx.CurrentPhase)
	}
	if ctx.Player(playerID) == nil {
		return nil, newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	if ctx.ActivePlayerID == "" {
		return nil, newError(CodePhaseError, "no player may act; the phase is waiting to advance")
	}
	if playerID != ctx.ActivePlayerID {
		return nil, newError(CodeNotYourTurn, "it is %s's turn, not %s's", ctx.ActivePlayerID, playerID)
	}
	if !s.cfg.AutoAdvance && bettingRoundComplete(ctx) {
		return nil, newError(CodePhaseError, "betting round is complete; advance the phase first")
	}

	events, err := sess.machine.HandleAction(ctx, s.deps, playerID, action)
	if err != nil {
		return nil, err
	}

	if containsEvent(events, EventHandAutoFinish) {
		moved, err := sess.machine.Transition(ctx, s.deps, PhaseFinished, "hand auto finish")
		if err != nil {
			return nil, err
		}
		return append(events, moved...), nil
	}
	if s.cfg.AutoAdvance {
		return s.settle(sess, events)
	}
	return events, nil
}

// settle advances through settled betting rounds until a player can act or
// the hand closes. A showdown cascades straight into Finished so callers
// never observe the context at rest mid-award.
func (s *CommandService) settle(sess *session, events []Event) ([]Event, error) {
	ctx := sess.ctx
	for ctx.CurrentPhase.Betting() && bettingRoundComplete(ctx) {
		to, reason := nextPhase(ctx)
		moved, err := sess.machine.Transition(ctx, s.deps, to, reason)
		if err != nil {
			return nil, err
		}
		events = append(events, moved...)

		switch to {
		case PhaseShowdown:
			moved, err = sess.machine.Transition(ctx, s.deps, PhaseFinished, "showdown complete")
			if err != nil {
				return nil, err
			}
			return append(events, moved...), nil
		case PhaseFinished:
			return events, nil
		}
	}
	return events, nil
}

// AdvancePhase explicitly advances a settled betting round one phase. It is
// the manual counterpart of the automatic progression and applies the same
// transitions.
func (s *CommandService) AdvancePhase(gameID string) Result {
	return s.execute(gameID, "advance_phase", func(sess *session) ([]Event, error) {
		ctx := sess.ctx
		if !ctx.CurrentPhase.Betting() {
			return nil, newError(CodePhaseError, "nothing to advance during %s", ctx.CurrentPhase)
		}
		if !bettingRoundComplete(ctx) {
			return nil, newError(CodePhaseError, "betting round in %s is not complete", ctx.CurrentPhase)
		}

		to, reason := nextPhase(ctx)
		events, err := sess.machine.Transition(ctx, s.deps, to, reason)
		if err != nil {
			return nil, err
		}
		if to == PhaseShowdown {
			moved, err := sess.machine.Transition(ctx, s.deps, PhaseFinished, "showdown complete")
			if err != nil {
				return nil, err
			}
			events = append(events, moved...)
		}
		return events, nil
	}, nil)
}

// ResetGame performs the Finished to Init full reset, clearing hand state
// while keeping chip counts.
func (s *CommandService) ResetGame(gameID string) Result {
	return s.execute(gameID, "reset_game", func(sess *session) ([]Event, error) {
		return sess.machine.Transition(sess.ctx, s.deps, PhaseInit, "reset")
	}, nil)
}

// RemoveGame destroys the session with its snapshots and scoped
// subscriptions.
func (s *CommandService) RemoveGame(gameID string) Result {
	s.mu.Lock()
	sess, ok := s.sessions[gameID]
	if ok {
		delete(s.sessions, gameID)
	}
	s.mu.Unlock()
	if !ok {
		return failureResult(newError(CodeInvalidInput, "unknown game %s", gameID))
	}

	sess.mu.Lock()
	subs := sess.subs
	sess.subs = nil
	sess.snapshots.ClearOld(0)
	phase := sess.ctx.CurrentPhase
	sess.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}

	removed := NewEvent(EventGameRemoved, phase, nil)
	s.publish(gameID, s.ids.Generate(gameid.KindCommand), []Event{removed})
	s.logger.Info("game removed", "game", gameID)
	return successResult(fmt.Sprintf("game %s removed", gameID), []Event{removed})
}

// RegisterStrategy maps a seat to a strategy the service will call when
// that seat is active. A nil strategy unregisters the seat.
func (s *CommandService) RegisterStrategy(gameID, playerID string, strategy AIStrategy) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ctx.Player(playerID) == nil {
		return newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	if strategy == nil {
		delete(sess.strategies, playerID)
		return nil
	}
	sess.strategies[playerID] = strategy
	return nil
}

// SubscribeGame subscribes a handler to this game's events only. The
// subscription is removed with the game.
func (s *CommandService) SubscribeGame(gameID string, t EventType, handler EventHandler, opts ...SubscribeOption) (string, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return "", err
	}

	opts = append(opts, WithFilter(func(e Event) bool {
		id, _ := e.Data["game_id"].(string)
		return id == gameID
	}))
	id := s.bus.Subscribe(t, handler, opts...)

	sess.mu.Lock()
	sess.subs = append(sess.subs, id)
	sess.mu.Unlock()
	return id, nil
}

// PlayAITurn executes one decision from the active seat's registered
// strategy. An invalid decision falls back to a fold so the hand always
// makes progress.
func (s *CommandService) PlayAITurn(gameID string) Result {
	sess, err := s.lookup(gameID)
	if err != nil {
		return failureResult(err)
	}
	res := s.aiStep(sess)
	if res.Success && s.cfg.AutoPlayAI {
		s.autoplay(sess)
	}
	return res
}

// autoplay keeps playing strategy turns until a seat without a strategy is
// active or the hand closes.
func (s *CommandService) autoplay(sess *session) {
	for i := 0; i < maxAutoplayTurns; i++ {
		if !s.aiTurnPending(sess) {
			return
		}
		if res := s.aiStep(sess); !res.Success {
			s.logger.Error("autoplay stopped on failed turn",
				"game", sess.ctx.GameID, "error", res.Message)
			return
		}
	}
	s.logger.Error("autoplay stopped at turn limit", "game", sess.ctx.GameID)
}

func (s *CommandService) aiTurnPending(sess *session) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ctx := sess.ctx
	return ctx.CurrentPhase.Betting() && ctx.ActivePlayerID != "" && sess.strategies[ctx.ActivePlayerID] != nil
}

func (s *CommandService) aiStep(sess *session) Result {
	sess.mu.Lock()
	ctx := sess.ctx
	if !ctx.CurrentPhase.Betting() {
		sess.mu.Unlock()
		return failureResult(newError(CodePhaseError, "no betting round in progress during %s", ctx.CurrentPhase))
	}
	playerID := ctx.ActivePlayerID
	if playerID == "" {
		sess.mu.Unlock()
		return failureResult(newError(CodePhaseError, "no player may act"))
	}
	strategy := sess.strategies[playerID]
	if strategy == nil {
		sess.mu.Unlock()
		return failureResult(newError(CodeInvalidInput, "no strategy registered for active player %s", playerID))
	}
	view := sess.snapshots.Create(ctx, "strategy view for "+playerID).Redacted(playerID)
	gameID := ctx.GameID
	sess.mu.Unlock()

	// The strategy runs outside the session lock so it may use the query
	// service freely.
	action, ok := s.callStrategy(strategy, view, playerID)
	if !ok {
		s.logger.Warn("strategy panicked, folding", "game", gameID, "player", playerID)
		action = Fold()
	}

	res := s.executeActionOn(sess, playerID, action)
	if !res.Success && res.ErrorCode != CodeNotYourTurn && action.Type != ActionFold {
		s.logger.Warn("strategy decision rejected, folding instead",
			"game", gameID, "player", playerID, "action", action.Type, "error", res.Message)
		res = s.executeActionOn(sess, playerID, Fold())
	}
	return res
}

func (s *CommandService) callStrategy(strategy AIStrategy, view *Snapshot, playerID string) (action PlayerAction, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return strategy.Decide(view, playerID), true
}

// lookup resolves a session by game id.
func (s *CommandService) lookup(gameID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[gameID]
	if !ok {
		return nil, newError(CodeInvalidInput, "unknown game %s", gameID)
	}
	return sess, nil
}

// ListGames returns the ids of live sessions, sorted.
func (s *CommandService) ListGames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// execute wraps a mutating operation in the session's atomic scope and
// runs strategy autoplay after a successful commit.
func (s *CommandService) execute(gameID, op string, fn func(*session) ([]Event, error), onFailure func(error) []Event) Result {
	sess, err := s.lookup(gameID)
	if err != nil {
		return failureResult(err)
	}
	res := s.executeOn(sess, op, fn, onFailure)
	if res.Success && s.cfg.AutoPlayAI {
		s.autoplay(sess)
	}
	return res
}

// executeOn is the atomic scope: baseline snapshot, execute, validate,
// then commit and publish, or restore and publish the rollback trail.
func (s *CommandService) executeOn(sess *session, op string, fn func(*session) ([]Event, error), onFailure func(error) []Event) Result {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	correlation := s.ids.Generate(gameid.KindCommand)
	baseline := sess.snapshots.Create(sess.ctx, "baseline before "+op)

	events, err := s.runOp(sess, fn)
	if err == nil {
		err = ValidateContext(sess.ctx)
	}

	if err != nil {
		// Restore from a fresh clone so the baseline snapshot itself
		// stays untouched by later mutations.
		sess.ctx.restoreFrom(baseline.State.Clone())

		code := CodeOf(err)
		if code == "" {
			code = CodeStateCorruption
		}
		trail := []Event{}
		if onFailure != nil {
			trail = append(trail, onFailure(err)...)
		}
		trail = append(trail, newRolledBackEvent(sess.ctx.CurrentPhase, op, code, err.Error()))
		s.publish(sess.ctx.GameID, correlation, trail)

		if code.Fatal() {
			s.logger.Error("command rolled back", "game", sess.ctx.GameID, "op", op, "code", code, "error", err)
		} else {
			s.logger.Debug("command rejected", "game", sess.ctx.GameID, "op", op, "code", code)
		}
		return failureResult(err)
	}

	s.publish(sess.ctx.GameID, correlation, events)
	return successResult(fmt.Sprintf("%s ok in %s", op, sess.ctx.CurrentPhase), events)
}

// runOp executes the operation, converting handler panics into the
// state-corruption defect class so they roll back like any other failure.
func (s *CommandService) runOp(sess *session, fn func(*session) ([]Event, error)) (events []Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(CodeStateCorruption, "handler panicked: %v", r)
		}
	}()
	return fn(sess)
}

// publish stamps identity and time onto each event and delivers them in
// order. The slice is stamped in place so callers return the same values
// the bus observed.
func (s *CommandService) publish(gameID, correlationID string, events []Event) {
	for i := range events {
		if events[i].Data == nil {
			events[i].Data = make(map[string]any, 2)
		}
		events[i].Data["game_id"] = gameID
		events[i].CorrelationID = correlationID
		events[i].Timestamp = s.clock.Now()
		s.bus.Publish(events[i])
	}
}

func containsEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
