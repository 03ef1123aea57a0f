// internal/game/leaderboard.go
package game

import "sort"

// Leaderboard returns the players ranked by best score descending, ties broken
// by fewer moves first. The input slice is not modified.
func Leaderboard(players []*BattlePlayer) []*BattlePlayer {
	ranked := make([]*BattlePlayer, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].BestScore != ranked[j].BestScore {
			return ranked[i].BestScore > ranked[j].BestScore
		}
		return ranked[i].Moves < ranked[j].Moves
	})
	return ranked
}
