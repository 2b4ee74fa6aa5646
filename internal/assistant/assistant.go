package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/thereayou/automart/internal/models"
)

// Generator модель, которая отвечает на prompt
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Inventory источник объявлений в продаже
type Inventory interface {
	ListAvailableCars() ([]models.Car, error)
}

// InventoryItem объявление в том виде, в каком его видит модель
type InventoryItem struct {
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	Price       float64  `json:"price"`
	Mileage     float64  `json:"mileage"`
	Fuel        string   `json:"fuel"`
	Location    string   `json:"location"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Assistant консультант по наличию машин
type Assistant struct {
	model     Generator
	inventory Inventory
}

func New(model Generator, inventory Inventory) *Assistant {
	return &Assistant{model: model, inventory: inventory}
}

func (a *Assistant) Configured() bool {
	return a.model.Configured()
}

// Items текущий каталог для prompt
func (a *Assistant) Items() ([]InventoryItem, error) {
	cars, err := a.inventory.ListAvailableCars()
	if err != nil {
		return nil, err
	}
	return lo.Map(cars, func(c models.Car, _ int) InventoryItem {
		return InventoryItem{
			Brand:       c.Brand,
			Model:       c.Model,
			Year:        c.Year,
			Price:       c.Price,
			Mileage:     c.Mileage,
			Fuel:        c.Fuel,
			Location:    c.Location,
			Description: c.Description,
			Features:    c.Features,
		}
	}), nil
}

// Ask отвечает на вопрос покупателя по текущему каталогу
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if !a.model.Configured() {
		return "", ErrNotConfigured
	}

	items, err := a.Items()
	if err != nil {
		return "", err
	}

	prompt, err := BuildPrompt(items, question)
	if err != nil {
		return "", err
	}
	return a.model.Generate(ctx, prompt)
}

// BuildPrompt собирает инструкцию для модели с каталогом в JSON
func BuildPrompt(items []InventoryItem, question string) (string, error) {
	inventory, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a helpful car sales assistant for an Indian car dealership. You have access to the following car inventory:\n\n")
	b.Write(inventory)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString(`

Instructions:
- Answer ONLY based on the car data provided above
- Be friendly and helpful
- If the user asks about a car that's not in the inventory, say: "Is car ki info available nahi hai."
- If the user asks about features not mentioned in the data, say: "Is car ki detailed info available nahi hai."
- Provide prices in Indian Rupees format
- You can compare cars, suggest cars based on budget, fuel type, transmission, etc.
- Keep responses concise and helpful
- Use a mix of English and Hindi (Hinglish) to sound natural

Answer:`)
	return b.String(), nil
}

// Failure описание ошибки для клиента
type Failure struct {
	Message string
	Details string
}

// Classify переводит ошибку модели в понятное пользователю сообщение
func Classify(err error) Failure {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case strings.Contains(apiErr.Message, "API_KEY_INVALID") || strings.Contains(apiErr.Message, "API key not valid"):
			return Failure{
				Message: "Invalid API key. Please check your GEMINI_API_KEY in .env file.",
				Details: "Get a new API key from: https://aistudio.google.com/app/apikey",
			}
		case apiErr.StatusCode == http.StatusNotFound || apiErr.Status == "NOT_FOUND":
			return Failure{
				Message: "Model not found. Using incorrect API endpoint.",
				Details: "Make sure you are using the correct model name: gemini-1.5-flash",
			}
		case apiErr.StatusCode == http.StatusForbidden || apiErr.Status == "PERMISSION_DENIED":
			return Failure{
				Message: "Permission denied. API key may not have access to Gemini API.",
				Details: "Enable Gemini API for your API key at: https://aistudio.google.com",
			}
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
			return Failure{
				Message: "Rate limit exceeded. Please wait a moment and try again.",
				Details: "You have hit the free tier limit.",
			}
		}
	}

	if errors.Is(err, ErrNotConfigured) {
		return Failure{
			Message: "Chatbot configuration incomplete. Please add GEMINI_API_KEY to .env file.",
			Details: "Get your API key from: https://aistudio.google.com/app/apikey",
		}
	}

	return Failure{
		Message: "Chatbot me kuch problem hai. Please try again.",
		Details: err.Error(),
	}
}
