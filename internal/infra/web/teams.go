package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"soup_menu_bot/internal/domain/menu"

	"github.com/gin-gonic/gin"
)

// teamsActivity is the part of an outgoing webhook activity the bot reads.
type teamsActivity struct {
	Type string `json:"type"`
	Text string `json:"text"`
	From struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
}

type teamsAttachment struct {
	ContentType string             `json:"contentType"`
	Content     *menu.AdaptiveCard `json:"content"`
}

type teamsReply struct {
	Type        string            `json:"type"`
	Text        string            `json:"text,omitempty"`
	Attachments []teamsAttachment `json:"attachments,omitempty"`
}

var (
	mentionPattern = regexp.MustCompile(`(?s)<at>.*?</at>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// cleanTeamsText drops bot mentions and the HTML Teams wraps messages in.
func cleanTeamsText(text string) string {
	text = mentionPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func decodeTeamsSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("TEAMS_WEBHOOK_SECRET is not valid base64: %w", err)
	}
	return key, nil
}

// verifyTeamsSignature checks the "Authorization: HMAC <base64>" header against the body.
func verifyTeamsSignature(key, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(header, "HMAC ")
	if !ok {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hmac.Equal(given, mac.Sum(nil))
}

func (h *handlers) teamsMessage(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}
	if h.teamsSecret != nil && !verifyTeamsSignature(h.teamsSecret, body, c.GetHeader("Authorization")) {
		h.logger.Warn("Rejected Teams message with invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var activity teamsActivity
	if err := json.Unmarshal(body, &activity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity"})
		return
	}

	text := cleanTeamsText(activity.Text)
	h.logger.WithField("from", activity.From.Name).Debug("Teams message received")

	reply := h.teams.Answer(c.Request.Context(), text)
	resp := teamsReply{Type: "message", Text: reply.Text}
	if reply.Card != nil {
		resp.Attachments = []teamsAttachment{{ContentType: menu.AdaptiveCardContentType, Content: reply.Card}}
	}
	c.JSON(http.StatusOK, resp)
}
