package engine

import (
	"reflect"
	"testing"
)

func TestCommitChipsClampsToStack(t *testing.T) {
	t.Parallel()

	p := seatedPlayer("p0", 30)
	ctx := testContext(p)

	paid := commitChips(ctx, p, 100)
	if paid != 30 {
		t.Errorf("paid = %d, want 30", paid)
	}
	if p.Chips != 0 || !p.AllIn || p.Status != StatusAllIn {
		t.Errorf("player = %+v, want empty stack flagged all-in", p)
	}
	if ctx.PotTotal != 30 || p.CurrentBet != 30 || p.TotalBetThisHand != 30 {
		t.Errorf("pot=%d bet=%d total=%d, want 30 everywhere", ctx.PotTotal, p.CurrentBet, p.TotalBetThisHand)
	}
}

func TestCheckFacingBetIsIllegal(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 1000)
	p1 := seatedPlayer("p1", 1000)
	ctx := testContext(p0, p1)
	ctx.CurrentBet = 100
	ctx.ActivePlayerID = "p0"

	_, err := applyCheck(ctx, p0)
	if CodeOf(err) != CodeIllegalAction {
		t.Fatalf("error code = %s, want %s", CodeOf(err), CodeIllegalAction)
	}
	if ctx.PotTotal != 0 || p0.CurrentBet != 0 {
		t.Error("failed check must not move chips")
	}
}

func TestCallWithNothingOwedConvertsToCheck(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 1000)
	p1 := seatedPlayer("p1", 1000)
	ctx := testContext(p0, p1)
	ctx.ActivePlayerID = "p0"

	events := applyCall(ctx, p0)
	if len(events) != 1 || events[0].Type != EventPlayerChecked {
		t.Fatalf("events = %v, want a single PlayerChecked", eventTypes(events))
	}
	if ctx.PotTotal != 0 {
		t.Errorf("pot = %d, want 0", ctx.PotTotal)
	}
	if ctx.ActivePlayerID != "p1" {
		t.Errorf("active = %s, want p1", ctx.ActivePlayerID)
	}
}

func TestCallForLessGoesAllIn(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 60)
	p1 := seatedPlayer("p1", 1000)
	ctx := testContext(p0, p1)
	ctx.CurrentBet = 100
	p1.CurrentBet = 100
	p1.TotalBetThisHand = 100
	ctx.PotTotal = 100
	ctx.ActivePlayerID = "p0"

	events := applyCall(ctx, p0)
	if !hasEventType(events, EventPlayerAllIn) {
		t.Errorf("events = %v, want PlayerAllIn for a call that empties the stack", eventTypes(events))
	}
	if p0.Chips != 0 || p0.CurrentBet != 60 || !p0.AllIn {
		t.Errorf("p0 = %+v, want all-in for 60", p0)
	}
	if ctx.PotTotal != 160 {
		t.Errorf("pot = %d, want 160", ctx.PotTotal)
	}
}

func TestRaiseRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chips    int
		target   int
		wantCode ErrorCode
		wantBet  int // table bet after a legal raise
	}{
		{name: "raise below current bet", chips: 1000, target: 80, wantCode: CodeIllegalAction},
		{name: "raise equal to current bet", chips: 1000, target: 100, wantCode: CodeIllegalAction},
		{name: "raise below minimum increment", chips: 1000, target: 120, wantCode: CodeIllegalAction},
		{name: "minimum raise", chips: 1000, target: 200, wantBet: 200},
		{name: "oversized raise", chips: 1000, target: 500, wantBet: 500},
		{name: "short all-in below minimum allowed", chips: 150, target: 150, wantBet: 150},
		{name: "target beyond stack commits the stack", chips: 300, target: 900, wantBet: 300},
		{name: "stack cannot exceed current bet", chips: 90, target: 200, wantCode: CodeInsufficientChips},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p0 := seatedPlayer("p0", tt.chips)
			p1 := seatedPlayer("p1", 1000)
			ctx := testContext(p0, p1)
			ctx.CurrentBet = 100
			p1.CurrentBet = 100
			p1.TotalBetThisHand = 100
			ctx.PotTotal = 100
			ctx.ActivePlayerID = "p0"

			_, err := applyRaise(ctx, p0, tt.target)
			if tt.wantCode != "" {
				if CodeOf(err) != tt.wantCode {
					t.Fatalf("error code = %s, want %s", CodeOf(err), tt.wantCode)
				}
				if ctx.CurrentBet != 100 || ctx.PotTotal != 100 {
					t.Error("rejected raise must not move chips")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyRaise: %v", err)
			}
			if ctx.CurrentBet != tt.wantBet {
				t.Errorf("table bet = %d, want %d", ctx.CurrentBet, tt.wantBet)
			}
		})
	}
}

func TestFullRaiseReopensBettingAndShortAllInDoesNot(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 1000)
	p1 := seatedPlayer("p1", 1000)
	p2 := seatedPlayer("p2", 130)
	ctx := testContext(p0, p1, p2)
	ctx.CurrentBet = 100
	ctx.ActivePlayerID = "p0"

	for _, p := range ctx.Players {
		p.CurrentBet = 100
		p.TotalBetThisHand = 100
		ctx.PotTotal += 100
		markActed(ctx, p)
	}

	// A full raise to 200 resets everyone else's acted flag and doubles as
	// the next minimum increment.
	if _, err := applyRaise(ctx, p0, 200); err != nil {
		t.Fatalf("applyRaise: %v", err)
	}
	if ctx.MinRaise != 100 {
		t.Errorf("min raise = %d, want 100", ctx.MinRaise)
	}
	want := map[string]bool{"p0": true}
	if !reflect.DeepEqual(ctx.ActedSinceRaise, want) {
		t.Errorf("acted = %v, want %v", ctx.ActedSinceRaise, want)
	}

	// p2's all-in to 230 is 30 over the bet, under the 100 minimum: allowed,
	// but it neither moves the minimum nor re-opens the action.
	markActed(ctx, p1)
	events := applyAllIn(ctx, p2)
	if !hasEventType(events, EventPlayerAllIn) {
		t.Fatalf("events = %v, want PlayerAllIn", eventTypes(events))
	}
	if ctx.CurrentBet != 230 {
		t.Errorf("table bet = %d, want 230", ctx.CurrentBet)
	}
	if ctx.MinRaise != 100 {
		t.Errorf("min raise = %d, want 100 after a short all-in", ctx.MinRaise)
	}
	if !ctx.ActedSinceRaise["p1"] {
		t.Error("short all-in must not clear acted flags")
	}
}

func TestFoldLeavesHandAndAutoFinishes(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 1000)
	p1 := seatedPlayer("p1", 1000)
	p2 := seatedPlayer("p2", 1000)
	ctx := testContext(p0, p1, p2)
	ctx.ActivePlayerID = "p0"

	events := applyFold(ctx, p0)
	if !hasEventType(events, EventPlayerFolded) || hasEventType(events, EventHandAutoFinish) {
		t.Fatalf("events = %v, want a plain fold with two players left", eventTypes(events))
	}
	if p0.Status != StatusFolded || p0.Active {
		t.Errorf("p0 = %+v, want folded and inactive", p0)
	}
	if ctx.ActivePlayerID != "p1" {
		t.Errorf("active = %s, want p1", ctx.ActivePlayerID)
	}

	events = applyFold(ctx, p1)
	if !hasEventType(events, EventHandAutoFinish) {
		t.Fatalf("events = %v, want HandAutoFinish with one player left", eventTypes(events))
	}
}

func TestBettingRoundComplete(t *testing.T) {
	t.Parallel()

	t.Run("unmatched bet keeps the round open", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 900)
		p1 := seatedPlayer("p1", 1000)
		ctx := testContext(p0, p1)
		ctx.CurrentBet = 100
		p0.CurrentBet = 100
		markActed(ctx, p0)
		if bettingRoundComplete(ctx) {
			t.Error("round must stay open while p1 faces a bet")
		}
	})

	t.Run("matched bets need everyone to have acted", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 900)
		p1 := seatedPlayer("p1", 900)
		ctx := testContext(p0, p1)
		ctx.CurrentBet = 100
		p0.CurrentBet = 100
		p1.CurrentBet = 100
		markActed(ctx, p0)
		if bettingRoundComplete(ctx) {
			t.Error("round must stay open until the big blind takes its option")
		}
		markActed(ctx, p1)
		if !bettingRoundComplete(ctx) {
			t.Error("round must settle once all actionable players matched and acted")
		}
	})

	t.Run("single actionable player facing an all-in bet", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 0)
		p0.Status = StatusAllIn
		p0.AllIn = true
		p0.CurrentBet = 200
		p1 := seatedPlayer("p1", 800)
		p1.CurrentBet = 100
		ctx := testContext(p0, p1)
		ctx.CurrentBet = 200
		if bettingRoundComplete(ctx) {
			t.Error("last actionable player still owes chips")
		}
		p1.CurrentBet = 200
		if !bettingRoundComplete(ctx) {
			t.Error("round settles once the last actionable player matches")
		}
	})

	t.Run("nobody actionable settles immediately", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 0)
		p0.Status = StatusAllIn
		p0.AllIn = true
		p1 := seatedPlayer("p1", 0)
		p1.Status = StatusAllIn
		p1.AllIn = true
		ctx := testContext(p0, p1)
		if !bettingRoundComplete(ctx) {
			t.Error("round with no actionable players is complete")
		}
	})
}

func TestAvailableActions(t *testing.T) {
	t.Parallel()

	t.Run("facing a bet", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 950)
		p0.CurrentBet = 50
		p1 := seatedPlayer("p1", 900)
		p1.CurrentBet = 100
		ctx := testContext(p0, p1)
		ctx.CurrentBet = 100
		ctx.PotTotal = 150
		ctx.ActivePlayerID = "p0"

		got := availableActions(ctx, "p0")
		want := []AvailableAction{
			{Type: ActionFold},
			{Type: ActionCall, MinAmount: 50, MaxAmount: 50},
			{Type: ActionRaise, MinAmount: 200, MaxAmount: 1000},
			{Type: ActionAllIn, MinAmount: 1000, MaxAmount: 1000},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("actions = %+v, want %+v", got, want)
		}
	})

	t.Run("no bet to match offers check", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 1000)
		p1 := seatedPlayer("p1", 1000)
		ctx := testContext(p0, p1)
		ctx.CurrentPhase = PhaseFlop
		ctx.CurrentBet = 0
		ctx.MinRaise = 100
		ctx.ActivePlayerID = "p0"

		got := availableActions(ctx, "p0")
		want := []AvailableAction{
			{Type: ActionFold},
			{Type: ActionCheck},
			{Type: ActionRaise, MinAmount: 100, MaxAmount: 1000},
			{Type: ActionAllIn, MinAmount: 1000, MaxAmount: 1000},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("actions = %+v, want %+v", got, want)
		}
	})

	t.Run("short stack raise bounds collapse to all-in", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 150)
		p1 := seatedPlayer("p1", 900)
		p1.CurrentBet = 100
		ctx := testContext(p0, p1)
		ctx.CurrentBet = 100
		ctx.ActivePlayerID = "p0"

		got := availableActions(ctx, "p0")
		want := []AvailableAction{
			{Type: ActionFold},
			{Type: ActionCall, MinAmount: 100, MaxAmount: 100},
			{Type: ActionRaise, MinAmount: 150, MaxAmount: 150},
			{Type: ActionAllIn, MinAmount: 150, MaxAmount: 150},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("actions = %+v, want %+v", got, want)
		}
	})

	t.Run("out of turn yields nothing", func(t *testing.T) {
		t.Parallel()
		p0 := seatedPlayer("p0", 1000)
		p1 := seatedPlayer("p1", 1000)
		ctx := testContext(p0, p1)
		ctx.ActivePlayerID = "p1"
		if got := availableActions(ctx, "p0"); got != nil {
			t.Errorf("actions = %+v, want none out of turn", got)
		}
	})
}

func TestAdvanceActivePlayerSkipsAllInAndFolded(t *testing.T) {
	t.Parallel()

	p0 := seatedPlayer("p0", 1000)
	p1 := seatedPlayer("p1", 0)
	p1.Status = StatusAllIn
	p1.AllIn = true
	p2 := seatedPlayer("p2", 1000)
	p2.Status = StatusFolded
	p2.Active = false
	p3 := seatedPlayer("p3", 1000)
	ctx := testContext(p0, p1, p2, p3)

	ctx.advanceActivePlayer(0)
	if ctx.ActivePlayerID != "p3" {
		t.Errorf("active = %s, want p3", ctx.ActivePlayerID)
	}

	// Wrap-around back to the only actionable seat.
	ctx.advanceActivePlayer(3)
	if ctx.ActivePlayerID != "p0" {
		t.Errorf("active = %s, want p0 after wrapping", ctx.ActivePlayerID)
	}

	p0.Status = StatusFolded
	p0.Active = false
	p3.Status = StatusFolded
	p3.Active = false
	ctx.advanceActivePlayer(0)
	if ctx.ActivePlayerID != "" {
		t.Errorf("active = %s, want empty with nobody actionable", ctx.ActivePlayerID)
	}
}
