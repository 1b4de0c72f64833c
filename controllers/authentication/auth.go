package authentication

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/users"
)

const (
	sessionName   = "gift-session"
	sessionUserID = "user_id"
)

type ctxKey string

const userIDKey ctxKey = "userID"

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// Handler - регистрация, вход и сессии. Все зависимости передаются из main.
type Handler struct {
	db       *gorm.DB
	sessions sessions.Store
	jwtKey   []byte
	tokenTTL time.Duration
	google   *oauth2.Config
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// nil disables Google sign-in
	Google *oauth2.Config
}

func NewHandler(db *gorm.DB, store sessions.Store, opts Options) *Handler {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{
		db:       db,
		sessions: store,
		jwtKey:   []byte(opts.JWTSecret),
		tokenTTL: ttl,
		google:   opts.Google,
	}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func viewOf(u *users.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Signup - регистрация по email и паролю.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing users.User
	err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		httpjson.Error(w, http.StatusConflict, "Email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpjson.Fail(w, r, err, "An error occurred during signup")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred during signup")
		return
	}

	user := users.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Provider:     users.ProviderLocal,
	}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		httpjson.Fail(w, r, err, "An error occurred during signup")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("user registered")
	httpjson.Write(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    viewOf(&user),
	})
}

// Login - вход с паролем, выдаёт JWT и открывает cookie-сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	var user users.User
	err := h.db.WithContext(r.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpjson.Fail(w, r, err, "An error occurred during login")
		return
	}
	if err != nil || user.PasswordHash == "" {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.startSession(w, r, &user, "Login successful")
}

// startSession issues a token, stores the user in the cookie session and writes the login response.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *users.User, message string) {
	token, err := h.IssueToken(user)
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred during login")
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values[sessionUserID] = user.ID
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("failed to save session")
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"token":   token,
		"user":    viewOf(user),
	})
}

// Logout - завершение сеанса.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	var user users.User
	err := h.db.WithContext(r.Context()).First(&user, "id = ?", UserIDFromContext(r.Context())).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpjson.Error(w, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching the profile")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"user": user})
}

// IssueToken signs an HS256 token for user.
func (h *Handler) IssueToken(user *users.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(h.tokenTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtKey)
}

// ValidateToken parses the bearer token of r.
func (h *Handler) ValidateToken(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("authorization header required")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return h.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// Middleware accepts a bearer token or the cookie session and puts the user id into the context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if r.Header.Get("Authorization") != "" {
			claims, err := h.ValidateToken(r)
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			userID = claims.UserID
		} else if session, err := h.sessions.Get(r, sessionName); err == nil {
			userID, _ = session.Values[sessionUserID].(string)
		}

		if userID == "" {
			httpjson.Error(w, http.StatusUnauthorized, "Authorization required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID marks ctx as authenticated as userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequestOwner returns the authenticated user id. A non-empty claimed id must be the same user.
func RequestOwner(r *http.Request, claimed string) (string, error) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		return "", httpjson.NewError(http.StatusUnauthorized, "Authorization required", nil)
	}
	if claimed != "" && claimed != userID {
		return "", httpjson.NewError(http.StatusForbidden, "Access denied", nil)
	}
	return userID, nil
}

// UserIDFromContext returns the id set by Middleware.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
