// handlers/auth.go
package handlers

import (
	"log"
	"net/http"
	"strings"

	"p9e.in/choferes/models"
)

// Login accepts {"username","password"} as JSON and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, req)
}

// Token is the OAuth2 password-flow variant: form fields username and password.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, models.NewAppError(models.ErrBadRequest, "invalid form body"))
		return
	}
	h.issue(w, r, models.LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	})
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, req models.LoginRequest) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, models.NewAppError(models.ErrBadRequest, "username and password are required"))
		return
	}

	driver, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.auth.IssueToken(driver)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Printf("✅ driver %d (%s) logged in", driver.ID, driver.Username)
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}
