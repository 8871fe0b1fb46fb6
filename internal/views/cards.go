package views

import (
	"strconv"

	"github.com/cardsense/cardsense/internal/client"
)

// CardOption is an entry of the card picker used when recording a transaction
type CardOption struct {
	Value int64 // catalogue card id
	Label string
}

// NewCardOptions lists the user's active cards, labelled by name or "Card <id>" when the name is missing
func NewCardOptions(cards []client.UserCard) []CardOption {
	var options []CardOption
	for _, c := range cards {
		if !c.IsActive {
			continue
		}
		id := c.CatalogueID()
		label := c.CardName
		if label == "" && c.CardDetails != nil {
			label = c.CardDetails.Name
		}
		if label == "" {
			label = "Card " + strconv.FormatInt(id, 10)
		}
		options = append(options, CardOption{Value: id, Label: label})
	}
	return options
}
