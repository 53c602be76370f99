// Package web serves the donation page: either a prebuilt client bundle from disk
// or the built-in server-rendered form.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/groundsforsupport/donate/internal/donation"
	"github.com/groundsforsupport/donate/internal/form"
	"github.com/groundsforsupport/donate/internal/payment"
)

//go:embed templates/*.html
var templateFS embed.FS

const msgFailure = "We could not start your donation. Please try again later."

var errRejected = errors.New("web: donation rejected by server rules")

// HandlerConfig configures the page handler.
type HandlerConfig struct {
	Service *payment.Service
	// StaticDir holds a built client bundle. When it contains index.html that file
	// replaces the built-in form.
	StaticDir string
	Title     string
	Currency  string
}

// Handler renders the donation form and serves static assets.
type Handler struct {
	svc       *payment.Service
	staticDir string
	title     string
	currency  string
	page      *template.Template
	assets    http.Handler
}

type pageData struct {
	Title        string
	Currency     string
	AmountValue  string
	EmailValue   string
	AmountError  string
	EmailError   string
	Focus        donation.Field
	ClientSecret string
	Failure      string
}

// NewHandler parses the page template and prepares the asset server.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	page, err := template.ParseFS(templateFS, "templates/donate.html")
	if err != nil {
		return nil, err
	}
	h := &Handler{
		svc:       cfg.Service,
		staticDir: strings.TrimSpace(cfg.StaticDir),
		title:     cfg.Title,
		currency:  strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		page:      page,
		assets:    http.NotFoundHandler(),
	}
	if h.title == "" {
		h.title = "Grounds for Support"
	}
	if h.currency == "" {
		h.currency = strings.ToUpper(payment.DefaultCurrency)
	}
	if h.staticDir != "" {
		info, err := os.Stat(h.staticDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, errors.New("web: static dir is not a directory")
		}
		h.assets = http.FileServer(http.Dir(h.staticDir))
	}
	return h, nil
}

// Index serves the bundle's index.html when present, otherwise the empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if index := h.bundleIndex(); index != "" {
		http.ServeFile(w, r, index)
		return
	}
	h.render(w, r, http.StatusOK, pageData{})
}

// Assets serves files from the static bundle directory.
func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	h.assets.ServeHTTP(w, r)
}

// Donate handles a form post from the built-in page.
func (h *Handler) Donate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, pageData{Failure: "The form could not be read."})
		return
	}
	st := form.New().
		SetAmount(r.PostFormValue("amount")).
		SetEmail(r.PostFormValue("email"))

	sub, err := st.Submit(r.Context(), form.SubmitterFunc(h.submit))
	data := pageDataFor(sub)
	switch {
	case errors.Is(err, form.ErrInvalid):
		h.render(w, r, http.StatusBadRequest, data)
	case err != nil:
		data.Failure = msgFailure
		h.render(w, r, http.StatusInternalServerError, data)
	default:
		data.ClientSecret = sub.ClientSecret
		h.render(w, r, http.StatusOK, data)
	}
}

func (h *Handler) submit(ctx context.Context, p form.Payload) (string, error) {
	email := p.Email
	in := donation.Input{Amount: decimal.NewFromInt(p.Amount), Email: &email}
	if errs := in.Validate(); len(errs) > 0 {
		return "", errRejected
	}
	res := h.svc.CreateIntent(ctx, in)
	if !res.Succeeded() {
		return "", res.Err
	}
	return res.Intent.ClientSecret, nil
}

func pageDataFor(sub form.Submission) pageData {
	data := pageData{
		EmailValue:  sub.State.Email(),
		AmountError: sub.State.Error(donation.FieldAmount),
		EmailError:  sub.State.Error(donation.FieldEmail),
		Focus:       sub.Focus,
	}
	if amount, ok := sub.State.Amount(); ok {
		data.AmountValue = strconv.FormatInt(amount, 10)
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Title = h.title
	data.Currency = h.currency
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render donation page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) bundleIndex() string {
	if h.staticDir == "" {
		return ""
	}
	index := filepath.Join(h.staticDir, "index.html")
	if info, err := os.Stat(index); err != nil || info.IsDir() {
		return ""
	}
	return index
}
