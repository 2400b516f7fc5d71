package controllers

import (
	"io"
	"mime"
	"net/http"

	"github.com/angelmondragon/shopdesk-backend/api/middleware"
	"github.com/angelmondragon/shopdesk-backend/api/responses"
	"github.com/angelmondragon/shopdesk-backend/api/validators"
	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

type partnerUpdateRequest struct {
	URL string `json:"url" validate:"required"`
}

// PartnerUpdate replaces the caller's catalog. A JSON body names a feed URL to
// fetch; any other content type is treated as the YAML feed itself.
func PartnerUpdate(svc catalog.Service, maxFeedBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		principal := middleware.PrincipalFromContext(r.Context())

		if isJSON(r) {
			var body partnerUpdateRequest
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			result, err := svc.ImportFromURL(r.Context(), principal, body.URL)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		// One byte past the cap lets the service report the oversize feed.
		reader := io.Reader(r.Body)
		if maxFeedBytes > 0 {
			reader = io.LimitReader(r.Body, maxFeedBytes+1)
		}
		raw, err := io.ReadAll(reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "read feed body"))
			return
		}
		if len(raw) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMissingArguments, "missing arguments").
				WithDetails(map[string][]string{"url": {"this field is required"}}))
			return
		}

		result, err := svc.Import(r.Context(), principal, raw, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type partnerStateRequest struct {
	State types.Flag `json:"state"`
}

// PartnerState reports the caller's shop on GET and opens or closes it on POST.
func PartnerState(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		principal := middleware.PrincipalFromContext(r.Context())

		if r.Method == http.MethodGet {
			shop, err := svc.ShopState(r.Context(), principal)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, shop)
			return
		}

		var body partnerStateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !body.State.Set {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMissingArguments, "missing arguments").
				WithDetails(map[string][]string{"state": {"this field is required"}}))
			return
		}
		shop, err := svc.SetShopState(r.Context(), principal, body.State.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
