package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"checkin-backend/hub"
	"checkin-backend/models"
	"checkin-backend/sessions"
	"checkin-backend/store"
	"checkin-backend/timeutil"
)

type CheckHandler struct {
	store store.Store
	hub   *hub.Hub

	// Serializes check-in/out per user so concurrent requests cannot interleave
	// presence updates for the same user.
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewCheckHandler(store store.Store, hub *hub.Hub) *CheckHandler {
	return &CheckHandler{
		store: store,
		hub:   hub,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (h *CheckHandler) userLock(userID int64) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	lock, ok := h.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[userID] = lock
	}
	return lock
}

// CheckIn appends a checkin event, flips the user's presence flag and notifies
// subscribed admin observers.
func (h *CheckHandler) CheckIn(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	user, eventID, ok := h.appendEvent(c, req.UserID, models.ActionCheckin)
	if !ok {
		return
	}

	payload, err := json.Marshal(gin.H{
		"event":   "newCheckIn",
		"message": user.Name + " has Checked In",
	})
	if err == nil {
		h.hub.Publish(payload)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Check-in successful",
		"checkin_id": eventID,
	})
}

// CheckOut appends a checkout event and clears the presence flag. No broadcast.
func (h *CheckHandler) CheckOut(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	_, eventID, ok := h.appendEvent(c, req.UserID, models.ActionCheckout)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Check-out successful",
		"checkout_id": eventID,
	})
}

// appendEvent does the shared store write for both check directions. It writes
// the error response itself and reports success through ok.
func (h *CheckHandler) appendEvent(c *gin.Context, userID int64, action string) (user *models.User, eventID int64, ok bool) {
	lock := h.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := h.store.GetUserByID(c, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return nil, 0, false
		}
		log.Printf("Error fetching user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, 0, false
	}

	eventID, err = h.store.AppendEvent(c, userID, action)
	if err != nil {
		log.Printf("Error recording %s for user %d: %v", action, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
		return nil, 0, false
	}

	return user, eventID, true
}

// CheckStatus reports the cached presence flag for one user.
func (h *CheckHandler) CheckStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	checkedIn, err := h.store.IsCheckedIn(c, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("Error fetching status for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"isCheckedIn": checkedIn,
	})
}

// History replays the filtered event log into paired sessions.
func (h *CheckHandler) History(c *gin.Context) {
	var filter models.EventFilter

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		filter.UserID = userID
	}
	filter.StartDate = c.Query("start_date")
	filter.EndDate = c.Query("end_date")

	events, err := h.store.ListEvents(c, filter)
	if err != nil {
		log.Printf("Error fetching history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, sessions.Reconstruct(events))
}

// OnlineUsers lists everyone currently checked in with their latest check-in time.
func (h *CheckHandler) OnlineUsers(c *gin.Context) {
	online, err := h.store.OnlineUsers(c)
	if err != nil {
		log.Printf("Error fetching online users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch online users"})
		return
	}

	if online == nil {
		online = []models.OnlineUser{}
	}
	c.JSON(http.StatusOK, online)
}

// UpdateCheckout administratively corrects the timestamp of a checkout event.
// The action predicate keeps a checkin event from being edited by id mistake.
func (h *CheckHandler) UpdateCheckout(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req models.UpdateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkout_time is required"})
		return
	}
	if _, err := timeutil.Parse(req.CheckoutTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkout_time must use format " + timeutil.Layout})
		return
	}

	err = h.store.UpdateEventTimestamp(c, eventID, models.ActionCheckout, req.CheckoutTime)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Checkout event not found"})
			return
		}
		log.Printf("Error updating checkout %d: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checkout time updated successfully"})
}

// ClearDB wipes all users, resources and events. Test/demo resets only.
func (h *CheckHandler) ClearDB(c *gin.Context) {
	if err := h.store.Clear(c); err != nil {
		log.Printf("Error clearing database: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear database"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Database cleared successfully"})
}
