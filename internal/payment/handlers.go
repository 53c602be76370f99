package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/groundsforsupport/donate/internal/common"
	"github.com/groundsforsupport/donate/internal/donation"
	"github.com/groundsforsupport/donate/internal/obs"
)

// Handler exposes the payment intent endpoint.
type Handler struct {
	Svc *Service
}

type intentResp struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent handles POST /create-payment-intent. Input is validated here
// regardless of any checks the browser already ran.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.InternalError(w)
		return
	}

	var in donation.Input
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			common.BadRequest(w, "request body is required")
			return
		}
		common.BadRequest(w, "request body is not valid JSON")
		return
	}

	if errs := in.Validate(); len(errs) > 0 {
		out := make(map[string][]string, len(errs))
		for field, msgs := range errs {
			out[string(field)] = msgs
			if obs.DonationValidationFailures != nil {
				obs.DonationValidationFailures.WithLabelValues(string(field)).Inc()
			}
		}
		common.ValidationProblem(w, out)
		return
	}

	res := h.Svc.CreateIntent(r.Context(), in)
	if !res.Succeeded() {
		common.InternalError(w)
		return
	}
	common.JSON(w, http.StatusOK, intentResp{ClientSecret: res.Intent.ClientSecret})
}
