package web

import (
	"net/http"
	"strings"
	"time"

	"soup_menu_bot/internal/domain/soup"

	"github.com/gin-gonic/gin"
)

const isoDateLayout = "2006-01-02"

type offerResponse struct {
	LocationID int64  `json:"location_id"`
	Location   string `json:"location"`
	Price      string `json:"price"`
	PriceCents int64  `json:"price_cents"`
}

type soupResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Vegetarian bool            `json:"vegetarian"`
	Date       string          `json:"date"`
	Locations  []offerResponse `json:"locations"`
}

func toSoupResponse(s *soup.Soup, loc *time.Location) soupResponse {
	resp := soupResponse{
		ID:         s.ID,
		Name:       s.Name,
		Vegetarian: s.Vegetarian,
		Date:       s.Date.In(loc).Format(isoDateLayout),
		Locations:  make([]offerResponse, 0, len(s.Offers)),
	}
	for _, o := range s.Offers {
		resp.Locations = append(resp.Locations, offerResponse{
			LocationID: o.LocationID,
			Location:   o.LocationName,
			Price:      o.Price.String(),
			PriceCents: int64(o.Price),
		})
	}
	return resp
}

func (h *handlers) apiTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Soup backend is working!"})
}

// apiSoupsForDate lists the soups of one calendar day, optionally filtered with ?location=HQ.
func (h *handlers) apiSoupsForDate(c *gin.Context) {
	loc := h.queries.Now().Location()
	date, err := time.ParseInLocation(isoDateLayout, c.Param("date"), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return
	}
	location := strings.ToUpper(strings.TrimSpace(c.Query("location")))

	listing, err := h.queries.Listing(c.Request.Context(), date, location)
	if err != nil {
		h.logger.WithError(err).WithField("date", c.Param("date")).Error("Failed to list soups for API")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load soups"})
		return
	}

	resp := make([]soupResponse, 0, len(listing.Soups))
	for _, s := range listing.Soups {
		resp = append(resp, toSoupResponse(s, loc))
	}
	c.JSON(http.StatusOK, resp)
}
