package menu

const (
	AdaptiveCardSchema      = "http://adaptivecards.io/schemas/adaptive-card.json"
	AdaptiveCardVersion     = "1.4"
	AdaptiveCardContentType = "application/vnd.microsoft.card.adaptive"
)

// AdaptiveCard is the subset of the Adaptive Card schema the bot emits.
type AdaptiveCard struct {
	Schema  string        `json:"$schema"`
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Body    []CardElement `json:"body"`
}

// CardElement is either a TextBlock or a FactSet.
type CardElement struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Weight    string     `json:"weight,omitempty"`
	Size      string     `json:"size,omitempty"`
	Wrap      bool       `json:"wrap,omitempty"`
	Separator bool       `json:"separator,omitempty"`
	Spacing   string     `json:"spacing,omitempty"`
	Facts     []CardFact `json:"facts,omitempty"`
}

type CardFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// CardRenderer renders documents as adaptive cards. Empty documents stay plain text.
// Text always carries the plain rendering as a fallback.
type CardRenderer struct{}

func (CardRenderer) Render(doc Document) Reply {
	reply := Reply{Text: renderText(doc)}
	if doc.Empty {
		return reply
	}

	card := &AdaptiveCard{
		Schema:  AdaptiveCardSchema,
		Type:    "AdaptiveCard",
		Version: AdaptiveCardVersion,
		Body: []CardElement{
			{Type: "TextBlock", Text: doc.Title, Weight: "Bolder", Size: "Medium", Wrap: true},
		},
	}

	for _, b := range doc.Blocks {
		card.Body = append(card.Body, CardElement{
			Type: "TextBlock", Text: b.Heading, Weight: "Bolder", Wrap: true, Separator: true, Spacing: "Medium",
		})

		var facts []CardFact
		flush := func() {
			if len(facts) > 0 {
				card.Body = append(card.Body, CardElement{Type: "FactSet", Facts: facts})
				facts = nil
			}
		}
		for _, r := range b.Rows {
			if r.Label != "" {
				facts = append(facts, CardFact{Title: r.Label, Value: r.Value})
				continue
			}
			flush()
			card.Body = append(card.Body, CardElement{Type: "TextBlock", Text: r.Value, Wrap: true, Spacing: "Small"})
		}
		flush()
	}

	reply.Card = card
	return reply
}
