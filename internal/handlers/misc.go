package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/automart/internal/assistant"
	"github.com/thereayou/automart/internal/emi"
	"github.com/thereayou/automart/internal/handlers/dto"
	"github.com/thereayou/automart/internal/mailer"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "AutoMart API is running",
		"timestamp": time.Now().UTC(),
	})
}

// CalculateEMI считает платёж по автокредиту
func CalculateEMI(c *gin.Context) {
	var req emi.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": emi.ErrMissingFields.Error()})
		return
	}

	res, err := emi.Calculate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

type ContactHandler struct {
	mail     *mailer.SMTPSender
	notifier mailer.Sender
	log      *slog.Logger
}

// NewContactHandler notifier может быть nil, если Telegram не настроен
func NewContactHandler(mail *mailer.SMTPSender, notifier mailer.Sender, log *slog.Logger) *ContactHandler {
	return &ContactHandler{mail: mail, notifier: notifier, log: log}
}

func (h *ContactHandler) Send(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide name, email, and message"})
		return
	}

	contact := mailer.Contact{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := contact.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.mail.Configured(); err != nil {
		h.log.Error("contact form unavailable", "err", err)
		msg := "Email service is not configured. Please contact the administrator."
		if errors.Is(err, mailer.ErrPlaceholderCredentials) {
			msg = "Email service is not properly configured. Please contact the administrator."
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": msg})
		return
	}

	if err := h.mail.Send(c.Request.Context(), contact); err != nil {
		h.log.Error("contact email failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send message. Please try again later."})
		return
	}

	if h.notifier != nil {
		// Копия оператору, ошибка только логируется
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.notifier.Send(ctx, contact); err != nil {
			h.log.Warn("contact notification failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Your message has been sent successfully! We will get back to you soon.",
	})
}

type AssistantHandler struct {
	assistant *assistant.Assistant
	log       *slog.Logger
}

func NewAssistantHandler(a *assistant.Assistant, log *slog.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: a, log: log}
}

// Chat отвечает на вопрос покупателя с помощью Gemini
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message is required"})
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		failure := assistant.Classify(err)
		h.log.Error("assistant failed", "err", err, "reason", failure.Message)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": failure.Message, "details": failure.Details})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "response": answer})
}

// ChatTest проверяет маршрут без обращения к модели
func (h *AssistantHandler) ChatTest(c *gin.Context) {
	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message is required"})
		return
	}

	items, err := h.assistant.Items()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Car database not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"response":      "Test response: received \"" + req.Message + "\"",
		"carsAvailable": len(items),
		"aiConfigured":  h.assistant.Configured(),
	})
}
