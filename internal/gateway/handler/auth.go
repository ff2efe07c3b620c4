package handler

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"campusvote/internal/voting/models"
)

type authenticateRequest struct {
	StudentIDNumber string `json:"studentIdNumber"`
	Password        string `json:"password"`
	SecretKey       string `json:"secretKey"`
}

type authenticateResponse struct {
	Token string          `json:"token"`
	Role  models.UserRole `json:"role"`
}

// handleAuthenticate verifies credentials against the on-chain user record
// and issues a session token. Admin accounts additionally present the secret
// key. Failed attempts count toward the lockout policy.
func (h *Handler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentIDNumber == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	locked, err := h.lockout.Locked(ctx, req.StudentIDNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "lockout check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if locked {
		h.metrics.IncrementLockedAccounts()
		writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}

	user, ok := h.lookupUser(ctx, req.StudentIDNumber)
	if ok {
		ok = credentialsMatch(user, req.Password, req.SecretKey)
	}
	if !ok {
		h.metrics.IncrementLogin("failure")
		if _, err := h.lockout.RecordFailure(ctx, req.StudentIDNumber); err != nil {
			h.logger.ErrorContext(ctx, "recording login failure", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Wrong password or secret key!")
		return
	}

	if err := h.lockout.RecordSuccess(ctx, req.StudentIDNumber); err != nil {
		h.logger.ErrorContext(ctx, "resetting login failures", "error", err)
	}

	token, err := h.tokens.Generate(user.StudentIDNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "issuing token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.IncrementLogin("success")
	writeJSON(w, http.StatusOK, authenticateResponse{Token: token, Role: user.Role})
}

// lookupUser evaluates GetExistingUser as the account itself, which the
// contract permits for any registered user. A missing account and a wrong
// password are indistinguishable to the client.
func (h *Handler) lookupUser(ctx context.Context, studentIDNumber string) (*models.User, bool) {
	ctx, cancel := context.WithTimeout(ctx, invokeTimeout)
	defer cancel()

	payload, err := h.invoker.Evaluate(ctx, "GetExistingUser", studentIDNumber, studentIDNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "login lookup failed",
			"studentIdNumber", studentIDNumber,
			"error", err,
		)
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(payload, &user); err != nil {
		h.logger.ErrorContext(ctx, "unparsable user record", "error", err)
		return nil, false
	}
	return &user, true
}

func credentialsMatch(user *models.User, password, secretKey string) bool {
	if !hashEqual(user.PasswordHash, password) {
		return false
	}
	if user.Role == models.RoleAdmin {
		return hashEqual(user.SecretKeyHash, secretKey)
	}
	return true
}

func hashEqual(storedHex, plaintext string) bool {
	sum := sha256.Sum256([]byte(plaintext))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(storedHex)) == 1
}
