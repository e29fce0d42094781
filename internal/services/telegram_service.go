package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/utils"
)

// TelegramService sends order notifications to the shop's admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// NotifyNewOrder posts a Vietnamese order summary to the admin chat.
// Callers fire it from a goroutine; a delivery failure never affects
// the order itself.
func (s *TelegramService) NotifyNewOrder(order *models.Order) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for _, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("• %s x%d - %s\n",
			item.ProductName,
			item.Quantity,
			utils.FormatVND(item.Price),
		))
	}

	paymentText := "COD"
	if order.PaymentMethod == models.PaymentMethodOnline {
		paymentText = "Chuyển khoản"
	}

	message := fmt.Sprintf(`🛒 <b>ĐƠN HÀNG MỚI</b> %s

👤 <b>Khách hàng:</b> %s
📞 <b>Điện thoại:</b> %s
📍 <b>Địa chỉ:</b> %s

📦 <b>Sản phẩm:</b>
%s
💰 <b>Tổng tiền:</b> %s
💳 <b>Thanh toán:</b> %s
🕐 <b>Ngày đặt:</b> %s`,
		order.OrderNumber,
		order.FullName,
		order.Phone,
		order.Address,
		itemsList.String(),
		utils.FormatVND(order.Total),
		paymentText,
		order.CreatedAt.Format("02/01/2006 15:04"),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
