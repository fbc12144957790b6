package team

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildRosterComposition(t *testing.T) {
	players := BuildRoster(1, "dhruv")

	if len(players) != 20 {
		t.Fatalf("expected 20 players, got %d", len(players))
	}

	counts := make(map[Position]int)
	for _, p := range players {
		counts[p.Position]++
		if p.OwnerID != 1 {
			t.Errorf("player %s assigned to team %d, want 1", p.Name, p.OwnerID)
		}
		if !p.Value.Equal(DefaultPlayerValue) {
			t.Errorf("player %s starts with value %s, want %s", p.Name, p.Value, DefaultPlayerValue)
		}
	}

	want := map[Position]int{Goalkeeper: 2, Defender: 6, Midfielder: 6, Attacker: 6}
	for pos, n := range want {
		if counts[pos] != n {
			t.Errorf("expected %d %s players, got %d", n, pos, counts[pos])
		}
	}
}

func TestBuildRosterPlayerNames(t *testing.T) {
	players := BuildRoster(1, "dhruv")

	if players[0].Name != "GK-dhruv-1" {
		t.Errorf("unexpected first player name %q", players[0].Name)
	}
	if players[len(players)-1].Name != "ATT-dhruv-6" {
		t.Errorf("unexpected last player name %q", players[len(players)-1].Name)
	}
}

func TestBuildRosterTruncatesLongUsername(t *testing.T) {
	players := BuildRoster(1, "extraordinarily_long_name")

	for _, p := range players {
		if !strings.Contains(p.Name, "-extrao-") {
			t.Errorf("expected username truncated to 6 chars in %q", p.Name)
		}
	}
}

func TestTeamTotalValue(t *testing.T) {
	tm := Team{
		Players: BuildRoster(1, "dhruv"),
	}

	want := DefaultPlayerValue.Mul(decimal.NewFromInt(20))
	if got := tm.TotalValue(); !got.Equal(want) {
		t.Errorf("expected total value %s, got %s", want, got)
	}

	empty := Team{}
	if !empty.TotalValue().IsZero() {
		t.Errorf("expected zero total value for empty roster, got %s", empty.TotalValue())
	}
}
