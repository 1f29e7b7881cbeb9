package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/repository"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
)

type authHandlers struct {
	service *iam.Service
}

type signupRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Mobile       string `json:"mobile,omitempty"`
	AadharNumber string `json:"aadharNumber,omitempty"`
	VillageID    string `json:"villageId,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *iam.Profile `json:"user"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (h *authHandlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "Request body must be valid JSON")
		return
	}

	user, err := h.service.Signup(r.Context(), iam.SignupInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		Mobile:       req.Mobile,
		AadharNumber: req.AadharNumber,
		VillageID:    req.VillageID,
	})
	if err != nil {
		switch {
		case errors.Is(err, iam.ErrEmailTaken):
			respondError(w, http.StatusConflict, codeEmailTaken, "An account with this email already exists")
		case errors.Is(err, iam.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, codeValidationError, err.Error())
		default:
			internalError(w, "signup", err)
		}
		return
	}

	respond(w, http.StatusCreated,
		map[string]string{"userId": user.ID},
		"Registration received. Your account is pending approval.")
}

func (h *authHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "Request body must be valid JSON")
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, iam.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, codeInvalidLogin, "Invalid email or password")
		case errors.Is(err, iam.ErrAccountRejected):
			respondError(w, http.StatusForbidden, codeAccountRejected, "Your registration was rejected. Contact the village office.")
		default:
			internalError(w, "login", err)
		}
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		internalError(w, "login profile", err)
		return
	}

	respond(w, http.StatusOK, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         profile,
	}, "")
}

func (h *authHandlers) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "Request body must be valid JSON")
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, iam.ErrInvalidRefreshToken) {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "Refresh token is invalid or expired")
			return
		}
		internalError(w, "refresh", err)
		return
	}

	respond(w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "")
}

func (h *authHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	// A missing or malformed body still logs out the access token
	_ = json.NewDecoder(r.Body).Decode(&req)

	claims := claimsFromContext(r.Context())
	if err := h.service.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		internalError(w, "logout", err)
		return
	}

	respond(w, http.StatusOK, nil, "Logged out")
}

func (h *authHandlers) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "Account no longer exists")
			return
		}
		internalError(w, "me", err)
		return
	}

	respond(w, http.StatusOK, profile, "")
}

func internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)
	respondError(w, http.StatusInternalServerError, codeInternalError, "Something went wrong. Please try again.")
}
