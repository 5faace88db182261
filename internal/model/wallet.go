package model

import "time"

// Side is the direction of a position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is a holding in one ticker with its weighted-average cost.
type Position struct {
	Ticker        string    `json:"ticker"`
	Side          Side      `json:"side"`
	Shares        float64   `json:"shares"`
	AvgCost       float64   `json:"avg_cost"`
	UnrealizedPnl float64   `json:"unrealized_pnl"`
	OpenedAt      time.Time `json:"opened_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Wallet tracks a user's cash and trade statistics.
type Wallet struct {
	UserID           string    `json:"user_id"`
	Balance          float64   `json:"balance"`
	TotalTrades      int       `json:"total_trades"`
	WinningTrades    int       `json:"winning_trades"`
	TotalRealizedPnl float64   `json:"total_realized_pnl"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TxType is the kind of a ledger transaction.
type TxType string

const (
	TxBuy        TxType = "buy"
	TxSell       TxType = "sell"
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
)

// Transaction is an append-only ledger entry. Amount is the absolute cash
// moved: the full cost of a buy, the net proceeds of a sell, or the
// deposited/withdrawn sum.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Ticker      string    `json:"ticker,omitempty"`
	Type        TxType    `json:"type"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Amount      float64   `json:"amount"`
	Fee         float64   `json:"fee"`
	RealizedPnl *float64  `json:"realized_pnl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Account is the in-memory state of one user: the wallet plus open positions.
type Account struct {
	Wallet    Wallet              `json:"wallet"`
	Positions map[string]Position `json:"positions"`
}

// NewAccount returns an empty account for the user.
func NewAccount(userID string, at time.Time) Account {
	return Account{
		Wallet:    Wallet{UserID: userID, CreatedAt: at, UpdatedAt: at},
		Positions: make(map[string]Position),
	}
}

// Clone returns a deep copy so that transitions never alias stored state.
func (a Account) Clone() Account {
	positions := make(map[string]Position, len(a.Positions))
	for k, v := range a.Positions {
		positions[k] = v
	}
	return Account{Wallet: a.Wallet, Positions: positions}
}
