package hands

// HandClass is a coarse made-hand category for showdown hands.
type HandClass string

const (
	ClassHighCard      HandClass = "high_card"
	ClassPair          HandClass = "pair"
	ClassTwoPair       HandClass = "two_pair"
	ClassTrips         HandClass = "three_of_a_kind"
	ClassStraight      HandClass = "straight"
	ClassFlush         HandClass = "flush"
	ClassFullHouse     HandClass = "full_house"
	ClassQuads         HandClass = "four_of_a_kind"
	ClassStraightFlush HandClass = "straight_flush"
)

// LogParams describes a hand being logged against a session.
type LogParams struct {
	SessionID      string  `json:"session_id"`
	HoleCards      string  `json:"hole_cards"`
	BoardCards     string  `json:"board_cards,omitempty"`
	Position       string  `json:"position"`
	PreflopAction  string  `json:"preflop_action"`
	Opponent       string  `json:"opponent,omitempty"`
	PotBB          float64 `json:"pot_bb"`
	NetBB          float64 `json:"net_bb"`
	VPIP           bool    `json:"vpip"`
	PFR            bool    `json:"pfr"`
	Aggressive     bool    `json:"aggressive"`
	WentToShowdown bool    `json:"went_to_showdown"`
}

// Stats holds the hero's aggregate frequencies over a hand set.
type Stats struct {
	Hands    int     `json:"hands"`
	VPIP     float64 `json:"vpip"` // percent, 0-100
	PFR      float64 `json:"pfr"`
	AF       float64 `json:"af"`   // aggressive hands / passive VPIP hands
	WTSD     float64 `json:"wtsd"` // percent of VPIP hands
	NetBB    float64 `json:"net_bb"`
	WinRate  float64 `json:"win_rate_bb100"`
}

// ShowdownInfo is the evaluator-derived read on a showdown hand.
type ShowdownInfo struct {
	HandID      string    `json:"hand_id"`
	Class       HandClass `json:"class"`
	Score       int16     `json:"score"` // evaluator rank, lower is stronger
	Description string    `json:"description"`
}
