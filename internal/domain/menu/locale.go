package menu

import (
	"time"

	"golang.org/x/text/language"
)

// Messages holds the user-facing strings of one locale.
type Messages struct {
	Start             string
	Help              string
	LocationPrompt    string
	Apology           string
	NoSoup            string // date
	NoSoupAt          string // location, date
	NoSoupToday       string // date
	TitleAt           string // location, date
	TitleDay          string // date
	TitleToday        string // date
	PriceLabel        string
	AvailableAt       string
	Vegetarian        string
	NotVegetarian     string
	Subscribed        string
	AlreadySubscribed string
	Unsubscribed      string
	NotSubscribed     string
	SubscribeFailed   string
	UnsubscribeFailed string
}

// Locale bundles the vocabulary used to read messages and the strings used to answer them.
type Locale struct {
	Tag           language.Tag
	Weekdays      [5]string // Monday through Friday, lowercase
	SoupKeywords  []string
	TodayKeywords []string
	DateLayout    string
	Messages      Messages
}

var Dutch = Locale{
	Tag:           language.Dutch,
	Weekdays:      [5]string{"maandag", "dinsdag", "woensdag", "donderdag", "vrijdag"},
	SoupKeywords:  []string{"soep"},
	TodayKeywords: []string{"vandaag"},
	DateLayout:    "2-1-2006",
	Messages: Messages{
		Start: "Hallo! Ik kan je helpen met het soep menu. Probeer te vragen:\n" +
			"- 'Wat is de soep vandaag bij HQ?'\n" +
			"- 'Toon me de soep voor maandag bij HSL'\n" +
			"- 'Welke soep is er bij LD?'\n\n" +
			"Of gebruik deze commands:\n" +
			"- /subscribe - Ontvang dagelijks om 12:00 het soepmenu\n" +
			"- /unsubscribe - Schrijf je uit voor dagelijkse meldingen",
		Help: "Hallo! Ik kan je helpen met het soepmenu. Probeer te vragen:\n" +
			"- 'Wat is de soep vandaag bij HQ?'\n" +
			"- 'Toon me de soep voor maandag bij HSL'\n" +
			"- 'Welke soep is er maandag?'\n" +
			"- 'Welke soep is er bij LD?'",
		LocationPrompt:    "Bij welke locatie wil je de soep weten? (HQ, HSL, of LD)",
		Apology:           "Sorry, er is een fout opgetreden bij het verwerken van je verzoek.",
		NoSoup:            "Sorry, er zijn geen soepen beschikbaar op %s.",
		NoSoupAt:          "Sorry, er zijn geen soepen beschikbaar bij %s op %s.",
		NoSoupToday:       "Sorry, ik heb geen soep informatie voor %s.",
		TitleAt:           "🍜 Soepen bij %s - %s",
		TitleDay:          "🍜 Soepen voor %s",
		TitleToday:        "🍜 Alle soepen voor %s",
		PriceLabel:        "Prijs",
		AvailableAt:       "Beschikbaar bij:",
		Vegetarian:        "🌱 Vegetarisch",
		NotVegetarian:     "🥩 Niet vegetarisch",
		Subscribed:        "Je bent nu geabonneerd op dagelijkse soepmeldingen om 12:00! 🔔\nGebruik /unsubscribe om je uit te schrijven.",
		AlreadySubscribed: "Je bent al geabonneerd op dagelijkse soepmeldingen. 🔔\nGebruik /unsubscribe om je uit te schrijven.",
		Unsubscribed:      "Je bent uitgeschreven van de dagelijkse soepmeldingen! 🔕\nGebruik /subscribe om je weer in te schrijven.",
		NotSubscribed:     "Je was niet geabonneerd op dagelijkse soepmeldingen.\nGebruik /subscribe om je in te schrijven.",
		SubscribeFailed:   "Sorry, er ging iets mis bij het aanmelden voor notificaties. Probeer het later opnieuw.",
		UnsubscribeFailed: "Sorry, er ging iets mis bij het afmelden voor notificaties. Probeer het later opnieuw.",
	},
}

var English = Locale{
	Tag:           language.English,
	Weekdays:      [5]string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	SoupKeywords:  []string{"soup"},
	TodayKeywords: []string{"today"},
	DateLayout:    "2/1/2006",
	Messages: Messages{
		Start: "Hi! I can help you with the soup menu. Try asking:\n" +
			"- 'What is the soup today at HQ?'\n" +
			"- 'Show me the soup for monday at HSL'\n" +
			"- 'Which soup is there at LD?'\n\n" +
			"Or use these commands:\n" +
			"- /subscribe - Get the soup menu every weekday at 12:00\n" +
			"- /unsubscribe - Stop the daily notifications",
		Help: "Hi! I can help you with the soup menu. Try asking:\n" +
			"- 'What is the soup today at HQ?'\n" +
			"- 'Show me the soup for monday at HSL'\n" +
			"- 'Which soup is there on monday?'\n" +
			"- 'Which soup is there at LD?'",
		LocationPrompt:    "For which location do you want to know the soup? (HQ, HSL, or LD)",
		Apology:           "Sorry, something went wrong while processing your request.",
		NoSoup:            "Sorry, there is no soup available on %s.",
		NoSoupAt:          "Sorry, there is no soup available at %s on %s.",
		NoSoupToday:       "Sorry, I have no soup information for %s.",
		TitleAt:           "🍜 Soups at %s - %s",
		TitleDay:          "🍜 Soups for %s",
		TitleToday:        "🍜 All soups for %s",
		PriceLabel:        "Price",
		AvailableAt:       "Available at:",
		Vegetarian:        "🌱 Vegetarian",
		NotVegetarian:     "🥩 Not vegetarian",
		Subscribed:        "You are now subscribed to the daily soup notification at 12:00! 🔔\nUse /unsubscribe to stop.",
		AlreadySubscribed: "You are already subscribed to the daily soup notification. 🔔\nUse /unsubscribe to stop.",
		Unsubscribed:      "You are unsubscribed from the daily soup notification! 🔕\nUse /subscribe to subscribe again.",
		NotSubscribed:     "You were not subscribed to the daily soup notification.\nUse /subscribe to subscribe.",
		SubscribeFailed:   "Sorry, subscribing to notifications failed. Please try again later.",
		UnsubscribeFailed: "Sorry, unsubscribing from notifications failed. Please try again later.",
	},
}

var supported = []Locale{Dutch, English}

var matcher = language.NewMatcher([]language.Tag{Dutch.Tag, English.Tag})

// LocaleFor picks the supported locale closest to the given BCP 47 tag
// ("nl", "nl-BE", "en-GB", ...). Unknown or malformed tags fall back to Dutch.
func LocaleFor(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return Dutch
	}
	_, index, confidence := matcher.Match(t)
	if confidence == language.No {
		return Dutch
	}
	return supported[index]
}

// FormatDate renders date the way the locale writes calendar days.
func (l Locale) FormatDate(date time.Time) string {
	return date.Format(l.DateLayout)
}
