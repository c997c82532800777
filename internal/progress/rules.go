package progress

// Rules holds the tunable scoring constants.
type Rules struct {
	BaseXP int
	HintXP int
	// RetryXP is awarded for a correct answer after at least one wrong one.
	RetryXP int

	HeartsEnabled bool
	MaxHearts     int
}

func DefaultRules() Rules {
	return Rules{
		BaseXP:    10,
		HintXP:    5,
		RetryXP:   0,
		MaxHearts: 5,
	}
}

func (r Rules) award(a Attempt) int {
	switch {
	case a.RetryCount > 0:
		return r.RetryXP
	case a.HintUsed:
		return r.HintXP
	default:
		return r.BaseXP
	}
}
