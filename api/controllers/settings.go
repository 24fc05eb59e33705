package controllers

import (
	"net/http"

	"github.com/satriaputra/tokopos-backend/api/responses"
	"github.com/satriaputra/tokopos-backend/api/validators"
	"github.com/satriaputra/tokopos-backend/internal/settings"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

// SettingsGet returns the store's settings, cache-backed.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type settingsUpdateRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

// SettingsUpdate upserts the provided keys and invalidates the cache.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settingsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), storeID, settings.UpdateInput{Values: payload.Values})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}
