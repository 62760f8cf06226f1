/*
Package handler provides HTTP handler functions for the contact list and
conversation history, both gated by a verified bearer token.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

// HandleListContacts returns every registered user except the caller,
// stripped of secret material.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		contacts, err := deps.Users.List(r.Context(), identity.Name)
		if err != nil {
			logx.Error(err, "Failed to list contacts", "caller", identity.Name)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, contacts)
	}
}

// HandleGetMessages returns the conversation between the caller and the
// named contact, ascending by timestamp. The pair scope comes from the
// verified token, so a caller can only ever read its own conversations.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		contactName := chi.URLParam(r, "contactName")
		if contactName == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		history, err := deps.Messages.History(r.Context(), identity.Name, contactName)
		if err != nil {
			logx.Error(err, "Failed to fetch history",
				"caller", identity.Name,
				"contact", contactName,
			)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, history)
	}
}
