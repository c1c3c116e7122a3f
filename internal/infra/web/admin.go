package web

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"soup_menu_bot/internal/app"
	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/soup"

	"github.com/gin-gonic/gin"
)

type publicPageData struct {
	Doc menu.Document
}

type adminPageData struct {
	Soups     []*soup.Soup
	Locations []*soup.Location
	Today     string
	Error     string
	Notice    string
}

// publicPage shows today's soups at every location.
func (h *handlers) publicPage(c *gin.Context) {
	listing, err := h.queries.Listing(c.Request.Context(), h.queries.Now(), "")
	if err != nil {
		h.logger.WithError(err).Error("Failed to load today's soups")
		c.HTML(http.StatusInternalServerError, "index.html", publicPageData{
			Doc: menu.Document{Title: h.queries.Locale().Messages.Apology, Empty: true},
		})
		return
	}
	listing.Today = true
	c.HTML(http.StatusOK, "index.html", publicPageData{Doc: h.queries.Document(listing)})
}

func (h *handlers) adminPage(c *gin.Context) {
	h.renderAdmin(c, http.StatusOK, "", c.Query("notice"))
}

func (h *handlers) renderAdmin(c *gin.Context, status int, errMsg, notice string) {
	data := adminPageData{
		Today:  time.Now().In(h.admin.Location()).Format(isoDateLayout),
		Error:  errMsg,
		Notice: notice,
	}
	var err error
	if data.Soups, err = h.admin.ListSoups(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to list soups for admin page")
		data.Error = "Soepen konden niet geladen worden."
		status = http.StatusInternalServerError
	}
	if data.Locations, err = h.admin.ListLocations(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to list locations for admin page")
		data.Error = "Locaties konden niet geladen worden."
		status = http.StatusInternalServerError
	}
	c.HTML(status, "admin.html", data)
}

// adminFailure maps an admin service error onto a status and re-renders the page.
func (h *handlers) adminFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidSoup), errors.Is(err, app.ErrInvalidLocation),
		errors.Is(err, soup.ErrLocationNotFound), errors.Is(err, soup.ErrInvalidPrice):
		h.renderAdmin(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, soup.ErrSoupNotFound), errors.Is(err, soup.ErrOfferNotFound):
		h.renderAdmin(c, http.StatusNotFound, err.Error(), "")
	default:
		_ = c.Error(err)
		h.renderAdmin(c, http.StatusInternalServerError, "Er is een fout opgetreden.", "")
	}
}

func (h *handlers) redirectAdmin(c *gin.Context, notice string) {
	c.Redirect(http.StatusSeeOther, "/admin?notice="+notice)
}

// createSoup reads name, date (YYYY-MM-DD), vegetarian and one price_<LOCATION> field
// per location. Locations with an empty price do not serve the soup.
func (h *handlers) createSoup(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.renderAdmin(c, http.StatusBadRequest, "Ongeldig formulier.", "")
		return
	}

	draft := soup.NewSoup{
		Name:       c.PostForm("name"),
		Vegetarian: c.PostForm("vegetarian") != "",
	}
	if raw := c.PostForm("date"); raw != "" {
		date, err := time.ParseInLocation(isoDateLayout, raw, h.admin.Location())
		if err != nil {
			h.renderAdmin(c, http.StatusBadRequest, "Ongeldige datum: "+raw, "")
			return
		}
		draft.Date = date
	}

	prices, err := formPrices(c.Request.PostForm)
	if err != nil {
		h.adminFailure(c, err)
		return
	}
	draft.Prices = prices

	if _, err := h.admin.AddSoup(c.Request.Context(), draft); err != nil {
		h.adminFailure(c, err)
		return
	}
	h.redirectAdmin(c, "created")
}

func formPrices(form map[string][]string) ([]soup.LocationPrice, error) {
	var prices []soup.LocationPrice
	for _, key := range slices.Sorted(maps.Keys(form)) {
		values := form[key]
		location, ok := strings.CutPrefix(key, "price_")
		if !ok || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		price, err := soup.ParseCents(values[0])
		if err != nil {
			return nil, err
		}
		prices = append(prices, soup.LocationPrice{LocationName: location, Price: price})
	}
	return prices, nil
}

func (h *handlers) deleteSoup(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderAdmin(c, http.StatusBadRequest, "Ongeldig soep ID.", "")
		return
	}
	if err := h.admin.DeleteSoup(c.Request.Context(), id); err != nil {
		h.adminFailure(c, err)
		return
	}
	h.redirectAdmin(c, "deleted")
}

func (h *handlers) updatePrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderAdmin(c, http.StatusBadRequest, "Ongeldig soep ID.", "")
		return
	}
	price, err := soup.ParseCents(c.PostForm("price"))
	if err != nil {
		h.adminFailure(c, err)
		return
	}
	if err := h.admin.UpdateSoupPrice(c.Request.Context(), id, c.PostForm("location"), price); err != nil {
		h.adminFailure(c, err)
		return
	}
	h.redirectAdmin(c, "price_updated")
}

func (h *handlers) createLocation(c *gin.Context) {
	if _, err := h.admin.AddLocation(c.Request.Context(), c.PostForm("name")); err != nil {
		h.adminFailure(c, err)
		return
	}
	h.redirectAdmin(c, "location_created")
}
