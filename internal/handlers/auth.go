package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"toolhub/internal/middleware"
	"toolhub/internal/render"
	"toolhub/internal/session"
	"toolhub/internal/store"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "ToolHub"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Fully authenticated users have nothing to do here.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && !sess.TwoFAPending {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Email": ""},
	})
}

// LoginSubmit processes the login form. Accounts with TOTP enabled get a
// pending session and must verify a code before the session counts as
// authenticated.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginError(w, r, email, "An unexpected error occurred.")
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.loginError(w, r, email, "Invalid email or password.")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		IsAdmin:      user.IsAdmin,
		TwoFAPending: user.TOTPEnabled,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPEnabled {
		http.Redirect(w, r, "/2fa/verify", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loginError re-renders the login form with a credentials error.
func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, email, msg string) {
	a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "login", &render.PageData{
		Title:  "Sign In",
		Errors: map[string]string{"credentials": msg},
		Data:   map[string]any{"Email": email},
	})
}

// TwoFASetupPage generates a TOTP secret for the signed-in user and
// displays the QR code to scan.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Save the secret; it is not considered enabled until a code verifies.
	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the 2FA code entry form for users whose session
// is pending verification.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
		Data:  map[string]any{},
	})
}

// TwoFAVerifySubmit validates the TOTP code. It serves both first-time
// setup confirmation (enabling TOTP for the account) and the login-time
// check that releases a pending session.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.FormValue("code")

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		if !user.TOTPEnabled {
			// Still in setup: re-render with the same QR code.
			qrPNG, _ := qrcode.Encode(
				fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s", totpIssuer, user.Email, *user.TOTPSecret, totpIssuer),
				qrcode.Medium, 256,
			)
			a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "2fa_setup", &render.PageData{
				Title:  "Set Up Two-Factor Authentication",
				Errors: map[string]string{"code": "Invalid code. Please try again."},
				Data: map[string]any{
					"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
					"Secret": *user.TOTPSecret,
				},
			})
			return
		}

		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "2fa_verify", &render.PageData{
			Title:  "Two-Factor Authentication",
			Errors: map[string]string{"code": "Invalid code. Please try again."},
			Data:   map[string]any{},
		})
		return
	}

	// First-time setup: record that TOTP is live for this account.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	if sess.TwoFAPending {
		sess.TwoFAPending = false
		if err := a.sessions.Update(r.Context(), r, sess); err != nil {
			slog.Error("session update failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
