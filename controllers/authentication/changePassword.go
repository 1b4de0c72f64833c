package authentication

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/users"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword: смена пароля пользователя (только для локальных аккаунтов).
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}

	var user users.User
	if err := h.db.WithContext(r.Context()).First(&user, "id = ?", UserIDFromContext(r.Context())).Error; err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "User not found")
		return
	}
	if user.PasswordHash == "" {
		httpjson.Error(w, http.StatusBadRequest, "Account has no password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Fail(w, r, err, "Error updating password")
		return
	}
	if err := h.db.WithContext(r.Context()).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		httpjson.Fail(w, r, err, "Error updating password")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
