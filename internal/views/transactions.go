package views

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardsense/cardsense/internal/client"
)

// unknownDayKey groups transactions whose timestamp cannot be parsed, it sorts after every real day
const unknownDayKey = ""

type TransactionView struct {
	ID            int64
	Merchant      string
	Category      string
	CategoryLabel string
	Amount        string
	Earned        string
	CardName      string
	Date          string
}

// TransactionDetail is the full view of a single transaction
type TransactionDetail struct {
	TransactionView
	RecommendedCard string
	OptimalReward   string
	MissedReward    string
	RewardRate      string // actual reward as a percentage of the amount
	UsedOptimalCard bool
	Notes           string
}

// TransactionGroup holds the transactions of one calendar day
type TransactionGroup struct {
	Key          string // YYYY-MM-DD in the display location, empty for unparseable timestamps
	Date         string
	Transactions []TransactionView
}

func NewTransactionView(tx client.Transaction, loc *time.Location) TransactionView {
	return TransactionView{
		ID:            tx.ID,
		Merchant:      tx.Merchant,
		Category:      tx.Category,
		CategoryLabel: CategoryLabel(tx.Category),
		Amount:        FormatCurrency(tx.Amount),
		Earned:        FormatCurrency(tx.ActualReward),
		CardName:      cardName(tx.CardActuallyUsedDetails, tx.CardActuallyUsed),
		Date:          FormatDisplayDate(tx.CreatedAt, loc),
	}
}

func NewTransactionDetail(tx client.Transaction, loc *time.Location) TransactionDetail {
	d := TransactionDetail{
		TransactionView: NewTransactionView(tx, loc),
		RecommendedCard: cardName(tx.RecommendedCardDetails, tx.RecommendedCard),
		OptimalReward:   FormatCurrency(tx.OptimalReward),
		MissedReward:    FormatCurrency(tx.MissedReward),
		RewardRate:      FormatPercent(percentOf(tx.ActualReward, tx.Amount)),
		UsedOptimalCard: tx.UsedOptimalCard,
	}
	if tx.Notes != nil {
		d.Notes = *tx.Notes
	}
	return d
}

// GroupTransactionsByDay groups transactions by the calendar day of created_at in loc.
// Groups are ordered newest first; transactions keep their input order inside a group.
func GroupTransactionsByDay(txs []client.Transaction, loc *time.Location) []TransactionGroup {
	if loc == nil {
		loc = time.Local
	}

	index := map[string]int{}
	var groups []TransactionGroup
	for _, tx := range txs {
		key := dayKey(tx.CreatedAt, loc)
		i, ok := index[key]
		if !ok {
			date := "Unknown date"
			if key != unknownDayKey {
				date = FormatDisplayDate(key, loc)
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, TransactionGroup{Key: key, Date: date})
		}
		groups[i].Transactions = append(groups[i].Transactions, NewTransactionView(tx, loc))
	}

	// YYYY-MM-DD keys sort lexically in date order
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key > groups[b].Key
	})
	return groups
}

func dayKey(createdAt string, loc *time.Location) string {
	t, ok := parseTimestamp(createdAt, loc)
	if !ok {
		return unknownDayKey
	}
	return t.In(loc).Format(time.DateOnly)
}

func cardName(details *client.CardSummary, id *int64) string {
	switch {
	case details != nil && details.Name != "":
		return details.Name
	case id != nil:
		return "Card " + strconv.FormatInt(*id, 10)
	default:
		return "Unknown card"
	}
}

// percentOf returns part / whole * 100, or 0 when whole is 0
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
