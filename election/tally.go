package election

// Winner is the tally projection over the current vote counts. Index is the
// lowest index achieving the maximum count. HasTie is set only when another
// choice matches that maximum, never for ties elsewhere in the distribution.
// HasWinner is false, with the remaining fields zero, when no choices are
// configured.
type Winner struct {
	HasWinner bool   `json:"hasWinner"`
	HasTie    bool   `json:"hasTie"`
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Votes     uint64 `json:"votes"`
}

// Winner computes the current standings in a single pass over the choices in
// index order. It is pure and can be called in any lifecycle state, for live
// or final results.
func (e *Election) Winner() Winner {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.choices) == 0 {
		return Winner{}
	}
	w := Winner{
		HasWinner: true,
		Label:     e.choices[0].Label,
		Votes:     e.choices[0].Votes,
	}
	for i := 1; i < len(e.choices); i++ {
		switch {
		case e.choices[i].Votes > w.Votes:
			w.Index = i
			w.Label = e.choices[i].Label
			w.Votes = e.choices[i].Votes
			w.HasTie = false
		case e.choices[i].Votes == w.Votes:
			w.HasTie = true
		}
	}
	return w
}
