package app

import (
	"context"
	"log"

	"quizpro/internal/domain"

	"golang.org/x/sync/errgroup"
)

// LobbySource fetches the data shown around a quiz.
type LobbySource interface {
	Categories(ctx context.Context) ([]string, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	History(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Profile(ctx context.Context) (domain.Profile, error)
}

// LoadLobby fetches every lobby section concurrently. A failed section is
// logged and left empty; LoadLobby itself never fails.
func LoadLobby(ctx context.Context, src LobbySource, leaderboardLimit, historyLimit int) domain.Lobby {
	lobby := domain.Lobby{
		Categories:  []string{},
		Leaderboard: []domain.LeaderboardEntry{},
		History:     []domain.HistoryEntry{},
	}

	var g errgroup.Group
	g.Go(func() error {
		categories, err := src.Categories(ctx)
		if err != nil {
			log.Printf("lobby categories: %v", err)
			return nil
		}
		lobby.Categories = categories
		return nil
	})
	g.Go(func() error {
		entries, err := src.Leaderboard(ctx, leaderboardLimit)
		if err != nil {
			log.Printf("lobby leaderboard: %v", err)
			return nil
		}
		lobby.Leaderboard = entries
		return nil
	})
	g.Go(func() error {
		history, err := src.History(ctx, historyLimit)
		if err != nil {
			log.Printf("lobby history: %v", err)
			return nil
		}
		lobby.History = history
		return nil
	})
	g.Go(func() error {
		profile, err := src.Profile(ctx)
		if err != nil {
			log.Printf("lobby profile: %v", err)
			return nil
		}
		lobby.Profile = &profile
		return nil
	})
	_ = g.Wait()
	return lobby
}
