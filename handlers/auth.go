package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"checkin-backend/models"
	"checkin-backend/store"
	"checkin-backend/utils"
)

const generatedPasswordLength = 8

type AuthHandler struct {
	store store.Store
}

func NewAuthHandler(store store.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// Register creates a user with a server-generated password. The password is
// returned in the response in place of email delivery.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and Email are required"})
		return
	}

	password := utils.GeneratePassword(generatedPasswordLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, err = h.store.CreateUser(c, req.Name, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		log.Printf("Error registering user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error inserting user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "User registered successfully",
		"email":             req.Email,
		"generatedPassword": password,
	})
}

// Login verifies credentials and issues a one-hour token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		log.Printf("Error fetching user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Name)
	if err != nil {
		log.Printf("Error signing token for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"token":   token,
	})
}

// ListUsers returns every registered user without credential fields.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	type userSummary struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	summaries := make([]userSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, userSummary{ID: user.ID, Name: user.Name, Email: user.Email})
	}

	c.JSON(http.StatusOK, summaries)
}
