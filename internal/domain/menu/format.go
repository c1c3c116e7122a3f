package menu

import (
	"fmt"
	"time"

	"soup_menu_bot/internal/domain/soup"
)

// CurrencyPrefix precedes every rendered price.
const CurrencyPrefix = "€"

// Listing is the result of one soup query.
type Listing struct {
	Date     time.Time
	Location string // Empty for an all-locations query
	Today    bool   // Aggregate listing for today (daily broadcast, "vandaag" without location)
	Soups    []*soup.Soup
}

// Reply is what a bot shell sends back. Card is nil for plain-text replies.
type Reply struct {
	Text string
	Card *AdaptiveCard
}

// Document is the rendering-neutral form of a reply.
type Document struct {
	Title  string
	Empty  bool
	Blocks []Block
}

// Block describes one soup.
type Block struct {
	Heading string
	Rows    []Row
}

// Row is a plain line when Label is empty, otherwise a "Label: Value" pair.
type Row struct {
	Label string
	Value string
}

// Renderer turns a Document into a platform reply.
type Renderer interface {
	Render(doc Document) Reply
}

// Formatter builds localized soup listings and hands them to a Renderer.
type Formatter struct {
	locale   Locale
	renderer Renderer
}

func NewFormatter(locale Locale, renderer Renderer) *Formatter {
	return &Formatter{locale: locale, renderer: renderer}
}

// Locale returns the locale the formatter writes in.
func (f *Formatter) Locale() Locale {
	return f.locale
}

// FormatPrice renders cents as "€2.50".
func FormatPrice(c soup.Cents) string {
	return CurrencyPrefix + c.String()
}

// Document builds the neutral document for a listing without rendering it.
func (f *Formatter) Document(l Listing) Document {
	msgs := f.locale.Messages
	date := f.locale.FormatDate(l.Date)

	if len(l.Soups) == 0 {
		var title string
		switch {
		case l.Location != "":
			title = fmt.Sprintf(msgs.NoSoupAt, l.Location, date)
		case l.Today:
			title = fmt.Sprintf(msgs.NoSoupToday, date)
		default:
			title = fmt.Sprintf(msgs.NoSoup, date)
		}
		return Document{Title: title, Empty: true}
	}

	doc := Document{}
	switch {
	case l.Location != "":
		doc.Title = fmt.Sprintf(msgs.TitleAt, l.Location, date)
	case l.Today:
		doc.Title = fmt.Sprintf(msgs.TitleToday, date)
	default:
		doc.Title = fmt.Sprintf(msgs.TitleDay, date)
	}

	for _, s := range l.Soups {
		doc.Blocks = append(doc.Blocks, f.block(s, l.Location))
	}
	return doc
}

func (f *Formatter) block(s *soup.Soup, location string) Block {
	msgs := f.locale.Messages
	marker := msgs.NotVegetarian
	if s.Vegetarian {
		marker = msgs.Vegetarian
	}

	b := Block{Heading: s.Name}
	if location != "" {
		if offer, ok := s.OfferAt(location); ok {
			b.Rows = append(b.Rows, Row{Label: msgs.PriceLabel, Value: FormatPrice(offer.Price)})
		}
		b.Rows = append(b.Rows, Row{Value: marker})
		return b
	}

	b.Rows = append(b.Rows, Row{Value: marker}, Row{Value: msgs.AvailableAt})
	for _, o := range s.Offers {
		b.Rows = append(b.Rows, Row{Label: o.LocationName, Value: FormatPrice(o.Price)})
	}
	return b
}

// Format renders a listing.
func (f *Formatter) Format(l Listing) Reply {
	return f.renderer.Render(f.Document(l))
}

// Message renders a single line of text such as a prompt or an apology.
func (f *Formatter) Message(text string) Reply {
	return f.renderer.Render(Document{Title: text, Empty: true})
}
