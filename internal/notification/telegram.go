package notification

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/smarttech/storefront/internal/request"
	"github.com/smarttech/storefront/model"
)

const orderDateLayout = "2006-01-02 15:04:05"

// TelegramMessenger posts HTML formatted messages through the Bot API.
type TelegramMessenger struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramMessenger creates a messenger for one bot and chat.
//
// Parameters:
// - baseURL string: the Bot API root, https://api.telegram.org in production.
// - token string: the bot token.
// - chatID string: the chat that receives the messages.
// - client *http.Client: the client used for every call.
//
// Returns:
// - *TelegramMessenger: the messenger, or nil when token or chat id is empty.
func NewTelegramMessenger(baseURL, token, chatID string, client *http.Client) *TelegramMessenger {
	if token == "" || chatID == "" {
		return nil
	}
	return &TelegramMessenger{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		client:  client,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendOrderNotification posts the new order summary to the operations chat.
//
// Parameters:
// - ctx context.Context: bounds the Bot API call.
// - p model.NotificationPayload: the order and customer snapshot.
//
// Returns:
// - error: a transport error, a non-2xx status or a response with ok=false.
func (t *TelegramMessenger) SendOrderNotification(ctx context.Context, p model.NotificationPayload) error {
	return t.send(ctx, FormatOrderMessage(p))
}

// SendStatusUpdate posts an order status change to the operations chat.
func (t *TelegramMessenger) SendStatusUpdate(ctx context.Context, p model.NotificationPayload) error {
	return t.send(ctx, FormatStatusUpdate(p))
}

func (t *TelegramMessenger) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	var resp sendMessageResponse
	_, err := request.PostJSON(ctx, t.client, url, nil, sendMessageRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram sendMessage rejected: %s", resp.Description)
	}
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// FormatOrderMessage renders the new-order message.
func FormatOrderMessage(p model.NotificationPayload) string {
	o, c := p.Order, p.Customer
	esc := html.EscapeString

	var b strings.Builder
	b.WriteString("🛒 <b>New Order Received!</b>\n\n")

	b.WriteString("📋 <b>Order Details:</b>\n")
	fmt.Fprintf(&b, "• Order ID: #%d\n", o.ID)
	fmt.Fprintf(&b, "• Product: %s\n", esc(o.ProductName))
	fmt.Fprintf(&b, "• Quantity: %d\n", o.Quantity)
	fmt.Fprintf(&b, "• Total: $%s\n", o.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "• Status: %s\n\n", esc(string(o.Status)))

	b.WriteString("👤 <b>Customer Information:</b>\n")
	fmt.Fprintf(&b, "• Name: %s\n", esc(c.FullName))
	fmt.Fprintf(&b, "• Email: %s\n", esc(c.Email))
	fmt.Fprintf(&b, "• Phone: %s\n", esc(c.Phone))
	fmt.Fprintf(&b, "• Address: %s\n", esc(orDefault(c.Address, "N/A")))
	fmt.Fprintf(&b, "• City: %s\n\n", esc(orDefault(c.City, "N/A")))

	b.WriteString("📝 <b>Special Requirements:</b>\n")
	b.WriteString(esc(orDefault(o.SpecialRequirements, "None")))
	b.WriteString("\n\n")

	b.WriteString("🚚 <b>Delivery Address:</b>\n")
	b.WriteString(esc(orDefault(o.DeliveryAddress, "Same as customer address")))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "📅 <b>Order Date:</b> %s", o.OrderDate.Format(orderDateLayout))
	return b.String()
}

// StatusLabel maps an order status to its marker and display label.
// Unknown statuses get a generic marker and are passed through unchanged.
func StatusLabel(status model.OrderStatus) (emoji, label string) {
	switch status {
	case model.OrderConfirmed:
		return "✅", "Confirmed"
	case model.OrderShipped:
		return "🚚", "Shipped"
	case model.OrderDelivered:
		return "📦", "Delivered"
	case model.OrderCancelled:
		return "❌", "Cancelled"
	default:
		return "ℹ️", string(status)
	}
}

// FormatStatusUpdate renders the status-change message.
func FormatStatusUpdate(p model.NotificationPayload) string {
	o, c := p.Order, p.Customer
	emoji, label := StatusLabel(o.Status)
	esc := html.EscapeString

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Order Status Update</b>\n\n", emoji)
	fmt.Fprintf(&b, "• Order ID: #%d\n", o.ID)
	fmt.Fprintf(&b, "• Product: %s\n", esc(o.ProductName))
	fmt.Fprintf(&b, "• Customer: %s\n", esc(c.FullName))
	fmt.Fprintf(&b, "• Phone: %s\n", esc(c.Phone))
	fmt.Fprintf(&b, "• Total: $%s\n\n", o.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "<b>New Status:</b> %s %s", emoji, esc(label))
	return b.String()
}
