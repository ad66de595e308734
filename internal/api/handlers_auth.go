package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-portal/internal/identity"
)

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", name+" must be an integer")
		return 0, false
	}
	return id, true
}

func signupHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if !decodeBody(w, r, &req) {
			return
		}

		acct, err := svc.Register(r.Context(), identity.Registration{
			Email:           req.Email,
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
			GivenName:       req.GivenName,
			Surname:         req.Surname,
			ClinicID:        req.ClinicID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAccountResponse(acct))
	}
}

func signinHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SigninRequest
		if !decodeBody(w, r, &req) {
			return
		}

		token, acct, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			Token:   token,
			Account: toAccountResponse(acct),
		})
	}
}

func profileHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		acct, err := svc.GetAccount(r.Context(), actor.AccountID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(acct))
	}
}

func updateProfileHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req ProfileUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := svc.UpdateProfile(r.Context(), actor, req.GivenName, req.Surname); err != nil {
			writeDomainError(w, err)
			return
		}

		acct, err := svc.GetAccount(r.Context(), actor.AccountID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(acct))
	}
}

func changePasswordHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		var req PasswordChangeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		err := svc.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
