package authentication

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/users"
)

const sessionOAuthState = "oauth_state"

// GoogleConfig builds the OAuth config, or nil when the client id is not set.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// HandleGoogleLogin initiates Google OAuth login
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httpjson.Error(w, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	session, _ := h.sessions.Get(r, sessionName)
	session.Values[sessionOAuthState] = state
	if err := session.Save(r, w); err != nil {
		httpjson.Fail(w, r, err, "Failed to start Google sign-in")
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback exchanges the code, loads the Google profile and signs the user in.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httpjson.Error(w, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	expected, _ := session.Values[sessionOAuthState].(string)
	if expected == "" || r.FormValue("state") != expected {
		httpjson.Error(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	delete(session.Values, sessionOAuthState)

	token, err := h.google.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Warn().Err(err).Msg("google code exchange failed")
		httpjson.Error(w, http.StatusUnauthorized, "Google sign-in failed")
		return
	}

	info, err := h.fetchGoogleProfile(r.Context(), token)
	if err != nil {
		httpjson.Fail(w, r, err, "Failed to load Google profile")
		return
	}

	user, err := h.linkGoogleAccount(r.Context(), info, token.AccessToken)
	if err != nil {
		httpjson.Fail(w, r, err, "Failed to sign in with Google")
		return
	}

	h.startSession(w, r, user, "Login successful")
}

func (h *Handler) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*oauth2api.Userinfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(h.google.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if info.Id == "" || info.Email == "" {
		return nil, errors.New("google profile without id or email")
	}
	return info, nil
}

// linkGoogleAccount finds or creates the user for the Google profile and refreshes the link row.
func (h *Handler) linkGoogleAccount(ctx context.Context, info *oauth2api.Userinfo, accessToken string) (*users.User, error) {
	email := strings.ToLower(info.Email)
	var user users.User

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = users.User{
				Email:    email,
				Name:     strings.TrimSpace(info.GivenName + " " + info.FamilyName),
				Provider: users.ProviderGoogle,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			log.Info().Str("user_id", user.ID).Msg("user created from google profile")
		} else if err != nil {
			return err
		}

		link := users.GoogleUser{
			UserID:      user.ID,
			GoogleID:    info.Id,
			Email:       email,
			FirstName:   info.GivenName,
			LastName:    info.FamilyName,
			AccessToken: accessToken,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "access_token", "updated_at"}),
		}).Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
