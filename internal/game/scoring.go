// internal/game/scoring.go
package game

// SecretLength is the fixed length of every secret and guess code.
const SecretLength = 4

// ScoreResult is the feedback for a single guess: Bulls counts digits in the
// correct position, Cows counts digits present in the secret but misplaced.
type ScoreResult struct {
	Bulls int
	Cows  int
}

// Cracked reports whether the guess matched the secret exactly.
func (r ScoreResult) Cracked() bool {
	return r.Bulls == SecretLength
}

// Value converts the feedback into the battle-royale ranking score.
// It is a leaderboard heuristic only; winning is always Cracked().
func (r ScoreResult) Value() int {
	return r.Bulls*10 + r.Cows
}

// Sentinels marking consumed digits during the two-pass scan. Both are outside
// the '0'..'9' range so a consumed secret digit can never match a guess digit.
const (
	consumedSecret = rune(-1)
	consumedGuess  = rune(-2)
)

// Score computes cows-and-bulls feedback for guess against secret.
//
// First pass: exact position matches are counted as bulls and both digits are
// consumed. Second pass: each remaining guess digit that appears among the
// remaining secret digits counts as a cow and consumes one matching secret
// digit, so repeated digits are never double-counted in either argument.
func Score(secret, guess string) ScoreResult {
	s := []rune(secret)
	g := []rune(guess)

	var res ScoreResult
	for i := range g {
		if i < len(s) && g[i] == s[i] {
			res.Bulls++
			s[i] = consumedSecret
			g[i] = consumedGuess
		}
	}
	for _, gd := range g {
		if gd == consumedGuess {
			continue
		}
		for j, sd := range s {
			if sd == gd {
				res.Cows++
				s[j] = consumedSecret
				break
			}
		}
	}
	return res
}

// ValidCode reports whether code is exactly SecretLength ASCII digits.
func ValidCode(code string) bool {
	if len(code) != SecretLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
