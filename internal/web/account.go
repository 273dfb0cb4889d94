package web

import (
	"net/http"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
)

type loginData struct {
	Next     string
	Username string
}

func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	if a.session.Snapshot().IsAuthenticated() {
		back(w, r, "/")
		return
	}
	a.render(w, r, http.StatusOK, "login", "Log in", loginData{Next: safeNext(r.URL.Query().Get("next"))})
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	req := models.LoginRequest{
		UsernameOrEmail: strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
	}
	next := safeNext(r.FormValue("next"))

	if !a.session.Login(r.Context(), req) {
		a.render(w, r, http.StatusUnauthorized, "login", "Log in", loginData{Next: next, Username: req.UsernameOrEmail})
		return
	}
	back(w, r, next)
}

type registerData struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (a *App) registerForm(w http.ResponseWriter, r *http.Request) {
	if a.session.Snapshot().IsAuthenticated() {
		back(w, r, "/")
		return
	}
	a.render(w, r, http.StatusOK, "register", "Register", registerData{})
}

func (a *App) registerAccount(w http.ResponseWriter, r *http.Request) {
	req := models.RegisterRequest{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FirstName:       strings.TrimSpace(r.FormValue("first_name")),
		LastName:        strings.TrimSpace(r.FormValue("last_name")),
	}
	if !a.session.Register(r.Context(), req) {
		a.render(w, r, http.StatusBadRequest, "register", "Register", registerData{
			Username: req.Username, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName,
		})
		return
	}
	back(w, r, "/")
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	a.session.Logout(r.Context())
	a.chatMu.Lock()
	a.chat.Reset()
	a.turns = nil
	a.chatMu.Unlock()
	back(w, r, "/")
}

type profileData struct {
	User    *models.User
	Ratings []models.Rating
}

func (a *App) profile(w http.ResponseWriter, r *http.Request) {
	d := profileData{User: a.session.Snapshot().User}
	ratings, err := a.actions.Client().Ratings.Mine(r.Context())
	if err != nil {
		a.logger.Debug("ratings unavailable", "error", err)
	}
	d.Ratings = ratings
	a.render(w, r, http.StatusOK, "profile", "Profile", d)
}

func (a *App) updateProfile(w http.ResponseWriter, r *http.Request) {
	req := models.UpdateProfileRequest{
		FirstName:      strings.TrimSpace(r.FormValue("first_name")),
		LastName:       strings.TrimSpace(r.FormValue("last_name")),
		ProfilePicture: strings.TrimSpace(r.FormValue("profile_picture")),
		FavoriteGenres: splitList(r.FormValue("favorite_genres")),
	}
	a.session.UpdateProfile(r.Context(), req)
	back(w, r, "/profile")
}
