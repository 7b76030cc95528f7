package persistence

import (
	"path/filepath"
	"testing"

	"github.com/vitadek/piratecrew/internal/peer"
)

func TestRankingStoreIngestAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.db")
	store, err := OpenRankingStore(path)
	if err != nil {
		t.Fatalf("OpenRankingStore: %v", err)
	}
	defer store.Close()

	info := peer.SeedInfo{
		TeamRanking: []peer.RankingEntry{
			{Id: "team-a", Name: "Scallywags", Score: 42.0},
			{Id: "team-b", Name: "Blackguards", Score: 99.5},
		},
		PlayerRanking: []peer.RankingEntry{
			{Id: "player-a", Name: "One Eye", Score: 7.0},
		},
	}
	if err := store.IngestSeedInfo(info); err != nil {
		t.Fatalf("IngestSeedInfo: %v", err)
	}

	teams, err := store.TeamLadder(10)
	if err != nil {
		t.Fatalf("TeamLadder: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 team rows, got %d", len(teams))
	}
	if teams[0].Id != "team-b" {
		t.Fatalf("expected the higher-scoring team first, got %s", teams[0].Id)
	}

	players, err := store.PlayerLadder(10)
	if err != nil {
		t.Fatalf("PlayerLadder: %v", err)
	}
	if len(players) != 1 || players[0].Id != "player-a" {
		t.Fatalf("expected 1 player row for player-a, got %v", players)
	}
}

func TestRankingStoreIngestReplacesPreviousLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.db")
	store, err := OpenRankingStore(path)
	if err != nil {
		t.Fatalf("OpenRankingStore: %v", err)
	}
	defer store.Close()

	first := peer.SeedInfo{TeamRanking: []peer.RankingEntry{{Id: "team-a", Name: "Scallywags", Score: 1}}}
	if err := store.IngestSeedInfo(first); err != nil {
		t.Fatalf("first IngestSeedInfo: %v", err)
	}

	second := peer.SeedInfo{TeamRanking: []peer.RankingEntry{{Id: "team-c", Name: "Doldrums", Score: 2}}}
	if err := store.IngestSeedInfo(second); err != nil {
		t.Fatalf("second IngestSeedInfo: %v", err)
	}

	teams, err := store.TeamLadder(10)
	if err != nil {
		t.Fatalf("TeamLadder: %v", err)
	}
	if len(teams) != 1 || teams[0].Id != "team-c" {
		t.Fatalf("expected the ladder to hold only the latest ingest, got %v", teams)
	}
}

func TestRankingLadderRespectsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.db")
	store, err := OpenRankingStore(path)
	if err != nil {
		t.Fatalf("OpenRankingStore: %v", err)
	}
	defer store.Close()

	info := peer.SeedInfo{TeamRanking: []peer.RankingEntry{
		{Id: "team-a", Name: "A", Score: 1},
		{Id: "team-b", Name: "B", Score: 2},
		{Id: "team-c", Name: "C", Score: 3},
	}}
	if err := store.IngestSeedInfo(info); err != nil {
		t.Fatalf("IngestSeedInfo: %v", err)
	}

	teams, err := store.TeamLadder(1)
	if err != nil {
		t.Fatalf("TeamLadder: %v", err)
	}
	if len(teams) != 1 || teams[0].Id != "team-c" {
		t.Fatalf("expected exactly the top-scoring row, got %v", teams)
	}
}
