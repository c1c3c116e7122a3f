package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"soup_menu_bot/internal/app"
	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/soup"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgUnauthorized  = "Fout: je hebt geen rechten voor dit commando."
	usageAddSoup     = "Gebruik: /add_soup <JJJJ-MM-DD> <veg|vlees> <LOC=prijs,...> <naam>\nVoorbeeld: /add_soup 2024-03-18 veg HQ=2.50,LD=2,75 Groentesoep"
	usageDeleteSoup  = "Gebruik: /delete_soup <id>"
	usageSetPrice    = "Gebruik: /set_price <id> <LOC> <prijs>"
	usageAddLocation = "Gebruik: /add_location <LOC>"
	adminDateLayout  = "2006-01-02"
	adminReplyLayout = "02-01-2006"
)

var errUsage = errors.New("invalid command format")

type adminCommands struct {
	ctx    context.Context
	admin  *app.AdminService
	logger *logrus.Entry
}

// RegisterAdminHandlers registers the soup management commands. Every handler checks the
// sender against the configured admin before doing anything.
func RegisterAdminHandlers(ctx context.Context, b Registrar, adminService *app.AdminService, baseLogger *logrus.Entry) {
	h := &adminCommands{ctx: ctx, admin: adminService, logger: baseLogger.WithField("handler_group", "admin")}
	b.Handle("/add_soup", h.authorized("/add_soup", h.addSoup))
	b.Handle("/delete_soup", h.authorized("/delete_soup", h.deleteSoup))
	b.Handle("/set_price", h.authorized("/set_price", h.setPrice))
	b.Handle("/soups", h.authorized("/soups", h.listSoups))
	b.Handle("/locations", h.authorized("/locations", h.listLocations))
	b.Handle("/add_location", h.authorized("/add_location", h.addLocation))
}

type adminHandlerFunc func(c telebot.Context, logCtx *logrus.Entry) error

func (h *adminCommands) authorized(command string, next adminHandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		var senderID int64
		if c.Sender() != nil {
			senderID = c.Sender().ID
		}
		logCtx := h.logger.WithFields(logrus.Fields{
			"handler":   command,
			"sender_id": senderID,
		})
		logCtx.Info("Command received")

		if err := h.admin.Authorize(senderID); err != nil {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}
		return next(c, logCtx)
	}
}

func (h *adminCommands) addSoup(c telebot.Context, logCtx *logrus.Entry) error {
	draft, err := parseAddSoupArgs(c.Args(), h.admin.Location())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid command format")
		return c.Send(fmt.Sprintf("Fout: %v\n%s", err, usageAddSoup))
	}

	created, err := h.admin.AddSoup(h.ctx, draft)
	if err != nil {
		return c.Send(adminErrorText(logCtx, "Failed to add soup", err))
	}

	var offers []string
	for _, o := range created.Offers {
		offers = append(offers, fmt.Sprintf("%s %s", o.LocationName, menu.FormatPrice(o.Price)))
	}
	return c.Send(fmt.Sprintf("Soep %q (ID: %d) toegevoegd voor %s: %s",
		created.Name, created.ID, created.Date.Format(adminReplyLayout), strings.Join(offers, ", ")))
}

func (h *adminCommands) deleteSoup(c telebot.Context, logCtx *logrus.Entry) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send(usageDeleteSoup)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logCtx.WithField("arg", args[0]).Warn("Invalid soup ID format")
		return c.Send("Fout: ID moet een getal zijn.\n" + usageDeleteSoup)
	}

	if err := h.admin.DeleteSoup(h.ctx, id); err != nil {
		return c.Send(adminErrorText(logCtx.WithField("soup_id", id), "Failed to delete soup", err))
	}
	return c.Send(fmt.Sprintf("Soep met ID %d verwijderd.", id))
}

func (h *adminCommands) setPrice(c telebot.Context, logCtx *logrus.Entry) error {
	id, location, price, err := parseSetPriceArgs(c.Args())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid command format")
		return c.Send(fmt.Sprintf("Fout: %v\n%s", err, usageSetPrice))
	}

	if err := h.admin.UpdateSoupPrice(h.ctx, id, location, price); err != nil {
		return c.Send(adminErrorText(logCtx.WithField("soup_id", id), "Failed to update price", err))
	}
	return c.Send(fmt.Sprintf("Prijs van soep %d bij %s is nu %s.", id, strings.ToUpper(location), menu.FormatPrice(price)))
}

func (h *adminCommands) listSoups(c telebot.Context, logCtx *logrus.Entry) error {
	soups, err := h.admin.ListSoups(h.ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list soups")
		return c.Send("Er is een fout opgetreden bij het ophalen van de soepen.")
	}
	if len(soups) == 0 {
		return c.Send("Er zijn nog geen soepen.")
	}

	var response strings.Builder
	response.WriteString("--- Soepen ---\n")
	for _, s := range soups {
		kind := "vlees"
		if s.Vegetarian {
			kind = "veg"
		}
		var offers []string
		for _, o := range s.Offers {
			offers = append(offers, fmt.Sprintf("%s=%s", o.LocationName, o.Price))
		}
		fmt.Fprintf(&response, "ID: %d, %s, %s (%s): %s\n",
			s.ID, s.Date.Format(adminDateLayout), s.Name, kind, strings.Join(offers, ","))
	}
	return c.Send(response.String())
}

func (h *adminCommands) listLocations(c telebot.Context, logCtx *logrus.Entry) error {
	locations, err := h.admin.ListLocations(h.ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list locations")
		return c.Send("Er is een fout opgetreden bij het ophalen van de locaties.")
	}
	if len(locations) == 0 {
		return c.Send("Er zijn nog geen locaties. " + usageAddLocation)
	}
	names := make([]string, 0, len(locations))
	for _, l := range locations {
		names = append(names, l.Name)
	}
	return c.Send("Locaties: " + strings.Join(names, ", "))
}

func (h *adminCommands) addLocation(c telebot.Context, logCtx *logrus.Entry) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send(usageAddLocation)
	}
	l, err := h.admin.AddLocation(h.ctx, args[0])
	if err != nil {
		return c.Send(adminErrorText(logCtx, "Failed to add location", err))
	}
	return c.Send(fmt.Sprintf("Locatie %s (ID: %d) staat klaar.", l.Name, l.ID))
}

// adminErrorText logs err and turns it into the reply for the admin.
func adminErrorText(logCtx *logrus.Entry, msg string, err error) string {
	logWithError := logCtx.WithError(err)
	switch {
	case errors.Is(err, app.ErrInvalidSoup), errors.Is(err, app.ErrInvalidLocation):
		logWithError.Warn(msg)
		return fmt.Sprintf("Fout: %v", err)
	case errors.Is(err, soup.ErrLocationNotFound):
		logWithError.Warn(msg)
		return fmt.Sprintf("Fout: onbekende locatie (%v). Gebruik /locations.", err)
	case errors.Is(err, soup.ErrSoupNotFound):
		logWithError.Warn(msg)
		return "Fout: soep niet gevonden."
	case errors.Is(err, soup.ErrOfferNotFound):
		logWithError.Warn(msg)
		return "Fout: deze soep wordt niet op die locatie verkocht."
	default:
		logWithError.Error(msg)
		return "Er is een fout opgetreden. Probeer het later opnieuw."
	}
}

// parseAddSoupArgs reads "<date> <veg|vlees> <LOC=price,...> <name...>".
func parseAddSoupArgs(args []string, loc *time.Location) (soup.NewSoup, error) {
	if len(args) < 4 {
		return soup.NewSoup{}, errUsage
	}

	date, err := time.ParseInLocation(adminDateLayout, args[0], loc)
	if err != nil {
		return soup.NewSoup{}, fmt.Errorf("ongeldige datum %q", args[0])
	}

	var vegetarian bool
	switch strings.ToLower(args[1]) {
	case "veg", "vega", "vegetarisch":
		vegetarian = true
	case "vlees", "nonveg":
		vegetarian = false
	default:
		return soup.NewSoup{}, fmt.Errorf("onbekend type %q, gebruik veg of vlees", args[1])
	}

	prices, err := parsePriceList(args[2])
	if err != nil {
		return soup.NewSoup{}, err
	}

	return soup.NewSoup{
		Name:       strings.Join(args[3:], " "),
		Vegetarian: vegetarian,
		Date:       date,
		Prices:     prices,
	}, nil
}

// parsePriceList reads "HQ=2.50,LD=2,75". A comma directly followed by a digit
// belongs to the price, any other comma separates entries.
func parsePriceList(s string) ([]soup.LocationPrice, error) {
	var entries []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			continue
		}
		if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			continue
		}
		entries = append(entries, s[start:i])
		start = i + 1
	}
	entries = append(entries, s[start:])

	prices := make([]soup.LocationPrice, 0, len(entries))
	for _, entry := range entries {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("ongeldige prijs %q, gebruik LOC=prijs", entry)
		}
		price, err := soup.ParseCents(raw)
		if err != nil {
			return nil, fmt.Errorf("ongeldige prijs voor %s: %q", name, raw)
		}
		prices = append(prices, soup.LocationPrice{LocationName: strings.ToUpper(strings.TrimSpace(name)), Price: price})
	}
	return prices, nil
}

func parseSetPriceArgs(args []string) (int64, string, soup.Cents, error) {
	if len(args) != 3 {
		return 0, "", 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", 0, fmt.Errorf("ID moet een getal zijn")
	}
	price, err := soup.ParseCents(args[2])
	if err != nil {
		return 0, "", 0, fmt.Errorf("ongeldige prijs %q", args[2])
	}
	return id, args[1], price, nil
}
