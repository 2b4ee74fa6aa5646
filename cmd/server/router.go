package main

import (
	"github.com/gin-gonic/gin"
	"github.com/thereayou/automart/internal/handlers"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Car       *handlers.CarHandler
	Wishlist  *handlers.WishlistHandler
	Room      *handlers.RoomHandler
	Contact   *handlers.ContactHandler
	Assistant *handlers.AssistantHandler
	WebSocket *handlers.WebSocketHandler

	Protect   gin.HandlerFunc
	ProtectWS gin.HandlerFunc
}

func APIEndpoints(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")

	api.GET("/health", handlers.Health)

	// Auth endpoints, одни и те же под тремя префиксами
	for _, prefix := range []string{"/auth", "/user", "/users"} {
		g := api.Group(prefix)
		{
			g.POST("/signup", h.Auth.Signup)
			g.POST("/login", h.Auth.Login)
			g.GET("/profile", h.Protect, h.User.GetMe)
			g.GET("/me", h.Protect, h.User.GetMe)
			g.PUT("/profile", h.Protect, h.User.UpdateMe)
			g.POST("/logout", h.Protect, h.Auth.Logout)
		}
	}

	cars := api.Group("/cars")
	{
		cars.GET("", h.Car.ListCars)
		cars.POST("", h.Protect, h.Car.CreateCar)
		cars.GET("/user/me", h.Protect, h.Car.MyCars)
		cars.GET("/:id", h.Car.GetCar)
		cars.PUT("/:id", h.Protect, h.Car.UpdateCar)
		cars.DELETE("/:id", h.Protect, h.Car.DeleteCar)
		cars.GET("/:id/chat", h.Protect, h.Room.CarChatRoom)
	}
	api.GET("/chat/rooms/:roomId", h.Protect, h.Room.GetRoom)

	wishlist := api.Group("/wishlist", h.Protect)
	{
		wishlist.POST("/toggle", h.Wishlist.Toggle)
		wishlist.GET("", h.Wishlist.Get)
		wishlist.GET("/user/:id", h.Wishlist.Get)
		wishlist.GET("/check/:carId", h.Wishlist.Check)
	}

	api.POST("/contact", h.Contact.Send)
	api.POST("/emi", handlers.CalculateEMI)
	api.POST("/chat", h.Assistant.Chat)
	api.POST("/chat-test", h.Assistant.ChatTest)

	r.GET("/ws", h.ProtectWS, h.WebSocket.HandleWebSocket)
}
