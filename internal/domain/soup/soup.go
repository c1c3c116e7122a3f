package soup

import (
	"time"
)

// Location is a cafeteria site where soups are served (e.g. HQ, HSL, LD).
type Location struct {
	ID   int64
	Name string
}

// Offer is the price of a soup at one location.
// Corresponds to a row of the 'soup_locations' table.
type Offer struct {
	LocationID   int64
	LocationName string
	Price        Cents
}

// Soup is a single day's menu item.
type Soup struct {
	ID         int64
	Name       string
	Vegetarian bool
	Date       time.Time // Local midnight of the day the soup is served
	Offers     []Offer
	CreatedAt  time.Time
}

// OfferAt returns the offer for the named location, if any.
func (s *Soup) OfferAt(locationName string) (Offer, bool) {
	for _, o := range s.Offers {
		if o.LocationName == locationName {
			return o, true
		}
	}
	return Offer{}, false
}

// LocationPrice is an input pair for creating a soup.
type LocationPrice struct {
	LocationName string
	Price        Cents
}

// NewSoup carries everything needed to create a soup together with its offers.
type NewSoup struct {
	Name       string
	Vegetarian bool
	Date       time.Time
	Prices     []LocationPrice
}
