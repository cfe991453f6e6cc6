package handlers

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/matching"
	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/realtime"
	"github.com/webteam-dev/webteam_be/internal/services/tripay"
)

type PaymentHandler struct {
	DB            *gorm.DB
	TripayService *tripay.TripayService
	Hub           *realtime.Hub
	ReturnURL     string
}

func NewPaymentHandler(db *gorm.DB, tripayService *tripay.TripayService, hub *realtime.Hub, returnURL string) *PaymentHandler {
	return &PaymentHandler{DB: db, TripayService: tripayService, Hub: hub, ReturnURL: returnURL}
}

func (h *PaymentHandler) GetChannels(c *fiber.Ctx) error {
	channels, err := h.TripayService.GetPaymentChannels()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch channels: " + err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": channels})
}

type CreatePaymentRequest struct {
	ProjectID     string `json:"project_id"`
	Tier          string `json:"tier"`
	PaymentMethod string `json:"payment_method"`
}

// CreatePayment opens a checkout for a tier's unlock fee. Freemium has no
// fee and never reaches the gateway.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	if req.PaymentMethod == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Payment method is required"})
	}

	tier := models.TeamTier(strings.ToLower(strings.TrimSpace(req.Tier)))
	if !models.ValidTier(string(tier)) {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid tier"})
	}
	if tier == models.TierFreemium {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Freemium tier has no unlock fee"})
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	var project models.Project
	if err := h.DB.Preload("Business").First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Project not found"})
	}

	if project.BusinessID != userUUID {
		return c.Status(403).JSON(fiber.Map{"success": false, "message": "Only the project owner can pay the unlock fee"})
	}

	// already paid for this tier?
	var paidCount int64
	h.DB.Model(&models.Transaction{}).
		Where("project_id = ? AND tier = ? AND status = ?", projectID, tier, models.TransactionStatusPaid).
		Count(&paidCount)
	if paidCount > 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Unlock fee already paid for this tier"})
	}

	fee := matching.UnlockFee(tier)
	merchantRef := "INV-" + models.GenerateInvoiceCode()

	customerName := ""
	customerEmail := ""
	customerPhone := ""
	if project.Business != nil {
		customerName = project.Business.Name
		customerEmail = project.Business.Email
		customerPhone = project.Business.Phone
	}

	// fetch channels to add the gateway fee on top of the unlock fee
	channels, err := h.TripayService.GetPaymentChannels()
	if err != nil {
		log.Printf("Failed to fetch channels for fee calculation: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to calculate fees"})
	}

	var selectedChannel tripay.PaymentChannel
	var channelFound bool
	for _, ch := range channels {
		if ch.Code == req.PaymentMethod {
			selectedChannel = ch
			channelFound = true
			break
		}
	}
	if !channelFound {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid payment method"})
	}

	toFloat := func(v interface{}) float64 {
		switch val := v.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
		return 0
	}

	flatFee := toFloat(selectedChannel.Fee.Flat)
	percentFee := toFloat(selectedChannel.Fee.Percent)
	totalFee := flatFee + (float64(fee) * percentFee / 100)
	totalAmount := fee + int64(math.Ceil(totalFee))

	itemName := fmt.Sprintf("%s team unlock fee", tier)

	resp, err := h.TripayService.CreateTransaction(
		merchantRef,
		totalAmount,
		customerName,
		customerEmail,
		customerPhone,
		itemName,
		req.PaymentMethod,
		h.ReturnURL,
	)
	if err != nil {
		log.Printf("Tripay error: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Payment gateway error: " + err.Error()})
	}

	trx := models.Transaction{
		ProjectID:         projectID,
		Tier:              tier,
		Reference:         resp.Data.Reference,
		MerchantRef:       resp.Data.MerchantRef,
		PaymentMethod:     req.PaymentMethod,
		PaymentMethodCode: req.PaymentMethod,
		Amount:            resp.Data.Amount,
		CheckoutURL:       resp.Data.CheckoutURL,
		Status:            models.TransactionStatusUnpaid,
	}

	if err := h.DB.Create(&trx).Error; err != nil {
		log.Printf("Failed to save transaction: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to save transaction"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"checkout_url": resp.Data.CheckoutURL,
			"reference":    resp.Data.Reference,
			"amount":       resp.Data.Amount,
		},
	})
}

type TripayCallbackPayload struct {
	Reference         string `json:"reference"`
	MerchantRef       string `json:"merchant_ref"`
	PaymentMethod     string `json:"payment_method"`
	PaymentMethodCode string `json:"payment_method_code"`
	TotalAmount       int64  `json:"total_amount"`
	IsClosedPayment   int    `json:"is_closed_payment"`
	Status            string `json:"status"` // PAID, EXPIRED, FAILED, REFUND
	PaidAt            int64  `json:"paid_at"`
	Note              string `json:"note"`
}

// HandleCallback processes the gateway's payment status webhook. A PAID
// status is what unlocks choosing a paid-tier team for the project.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	signature := c.Get("X-Callback-Signature")
	if signature == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Missing signature"})
	}

	body := c.Body()
	if !h.TripayService.ValidateSignature(signature, string(body)) {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid signature"})
	}

	var payload TripayCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid payload"})
	}

	var trx models.Transaction
	if err := h.DB.Where("reference = ?", payload.Reference).First(&trx).Error; err != nil {
		log.Printf("Transaction not found for ref: %s", payload.Reference)
		return c.JSON(fiber.Map{"success": false, "message": "Transaction not found, ignored"})
	}

	trx.Status = models.TransactionStatus(payload.Status)
	trx.PaymentMethod = payload.PaymentMethod
	trx.PaymentMethodCode = payload.PaymentMethodCode
	if payload.PaidAt > 0 {
		t := time.Unix(payload.PaidAt, 0)
		trx.PaidAt = &t
	}

	if err := h.DB.Save(&trx).Error; err != nil {
		log.Printf("Failed to update transaction %s: %v", trx.Reference, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to update transaction"})
	}

	if payload.Status == "PAID" {
		var project models.Project
		if err := h.DB.First(&project, "id = ?", trx.ProjectID).Error; err == nil {
			h.Hub.SendToUser(project.BusinessID, fiber.Map{
				"type":       "unlock_fee_paid",
				"project_id": project.ID.String(),
				"tier":       trx.Tier,
			})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
