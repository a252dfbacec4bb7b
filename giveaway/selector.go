package giveaway

import "math/rand"

// DrawInitial draws min(winnerCount, |entries|) distinct winners uniformly at
// random from the record's entries. An empty entry set yields an empty draw;
// the giveaway still ends, with no winners. Pure: no I/O, no mutation of rec.
func DrawInitial(rec *Record, rng *rand.Rand) []string {
	return sample(rec.Entries, rec.WinnerCount, rng)
}

// DrawReplacement draws replacement winners from entries minus the current
// winner set. An empty pool yields an empty draw; the caller decides what
// that means (forfeit on claim expiry, rejection on manual reroll). Only the
// current winners are excluded, not everyone who has ever won this giveaway.
func DrawReplacement(rec *Record, rng *rand.Rand) []string {
	pool := make([]string, 0, len(rec.Entries))
	for _, id := range rec.Entries {
		if !rec.IsWinner(id) {
			pool = append(pool, id)
		}
	}
	return sample(pool, rec.WinnerCount, rng)
}

// sample draws min(k, len(pool)) elements without replacement via a partial
// Fisher-Yates shuffle of a copy.
func sample(pool []string, k int, rng *rand.Rand) []string {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return []string{}
	}
	shuffled := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k]
}
