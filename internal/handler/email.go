package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/notifier"
)

// EmailHandler forwards contact-form replies through the Resend client.
type EmailHandler struct {
	Email *notifier.EmailClient
}

func NewEmailHandler(email *notifier.EmailClient) *EmailHandler {
	return &EmailHandler{Email: email}
}

type sendReplyReq struct {
	RecipientEmail  string `json:"recipientEmail"`
	RecipientName   string `json:"recipientName"`
	Subject         string `json:"subject"`
	OriginalMessage string `json:"originalMessage"`
	ReplyText       string `json:"replyText"`
	MessageID       string `json:"messageId"`
}

// SendReply handles POST /api/email/send-reply. Mail goes to Resend's
// delivered@resend.dev sink until a sending domain is verified; the
// real recipient address stays in the request for when that flips.
func (h *EmailHandler) SendReply(c echo.Context) error {
	var req sendReplyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body"})
	}
	if req.ReplyText == "" || req.Subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
	}
	if !h.Email.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "message": "Email service not configured"})
	}

	const testRecipient = "delivered@resend.dev"
	subject := "Re: " + req.Subject
	html := replyHTML(req.RecipientName, req.ReplyText, req.OriginalMessage)

	if err := h.Email.Send(c.Request().Context(), testRecipient, subject, html); err != nil {
		c.Logger().Errorf("send reply email: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to send email"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Email sent successfully to test address",
		"note":    "This is a development environment. Email was sent to Resend test email instead of the actual recipient.",
	})
}

// replyHTML renders the branded reply template: the staff answer
// quoted above the reader's original message.
func replyHTML(recipientName, replyText, originalMessage string) string {
	reply := strings.ReplaceAll(replyText, "\n", "<br>")
	original := "No original message provided"
	if originalMessage != "" {
		original = strings.ReplaceAll(originalMessage, "\n", "<br>")
	}
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
          <div style="background-color: #333; color: white; padding: 20px; text-align: center;">
            <h1 style="margin: 0;">Merisols Times</h1>
          </div>

          <div style="padding: 20px; border: 1px solid #ddd; border-top: none;">
            <p>Dear %s,</p>

            <p>Thank you for contacting us. Below is our response to your inquiry:</p>

            <div style="background-color: #f9f9f9; padding: 15px; border-left: 4px solid #333; margin: 20px 0;">
              %s
            </div>

            <p style="margin-top: 30px;"><strong>Your original message:</strong></p>
            <div style="background-color: #f5f5f5; padding: 15px; color: #666; font-style: italic;">
              %s
            </div>

            <p style="margin-top: 30px; font-size: 13px; color: #777;">
              This is an automated response. Please do not reply to this email. If you have further questions,
              please submit a new inquiry through our contact form.
            </p>
          </div>

          <div style="background-color: #f5f5f5; padding: 15px; text-align: center; font-size: 12px; color: #666;">
            <p>&copy; %d Merisols Times. All rights reserved.</p>
            <p>461 Clementi Road, Singapore 599491</p>
          </div>
        </div>`,
		recipientName, reply, original, time.Now().Year())
}
