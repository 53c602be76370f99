package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/groundsforsupport/donate/internal/form"
	"github.com/groundsforsupport/donate/internal/payment"
	"github.com/groundsforsupport/donate/internal/web"
)

type fakeGateway struct {
	calls []payment.IntentRequest
	err   error
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreateIntent(_ context.Context, req payment.IntentRequest) (payment.Intent, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return payment.Intent{}, f.err
	}
	return payment.Intent{ID: "pi_web", ClientSecret: "pi_web_secret_1"}, nil
}

func (f *fakeGateway) Ping(context.Context) error { return nil }

func newHandler(t *testing.T, gw payment.Gateway, staticDir string) *web.Handler {
	t.Helper()
	h, err := web.NewHandler(web.HandlerConfig{
		Service:   &payment.Service{Gateway: gw, Logger: zerolog.Nop()},
		StaticDir: staticDir,
	})
	require.NoError(t, err)
	return h
}

func postForm(h *web.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Donate(rr, req)
	return rr
}

func TestIndexRendersForm(t *testing.T) {
	h := newHandler(t, &fakeGateway{}, "")
	rr := httptest.NewRecorder()
	h.Index(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, `<label for="amount">Amount</label>`)
	require.Contains(t, body, `<label for="email">Email</label>`)
	require.Contains(t, body, `<button type="submit">Donate</button>`)
	require.NotContains(t, body, "autofocus")
}

func TestDonateMissingAmountFocusesAmount(t *testing.T) {
	gw := &fakeGateway{}
	rr := postForm(newHandler(t, gw, ""), url.Values{"amount": {""}, "email": {"invalid-email"}})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, form.MsgAmount)
	require.Contains(t, body, form.MsgEmail)
	require.Regexp(t, `id="amount"[^>]*autofocus`, body)
	require.NotRegexp(t, `id="email"[^>]*autofocus`, body)
	require.Empty(t, gw.calls)
}

func TestDonateInvalidEmailFocusesEmail(t *testing.T) {
	gw := &fakeGateway{}
	rr := postForm(newHandler(t, gw, ""), url.Values{"amount": {"10"}, "email": {"invalid-email"}})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	require.NotContains(t, body, form.MsgAmount)
	require.Regexp(t, `id="email"[^>]*autofocus`, body)
	require.Contains(t, body, `value="10"`)
	require.Contains(t, body, `value="invalid-email"`)
	require.Empty(t, gw.calls)
}

func TestDonateAmountAboveMaximum(t *testing.T) {
	gw := &fakeGateway{}
	rr := postForm(newHandler(t, gw, ""), url.Values{"amount": {"92233720368547758"}, "email": {""}})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, form.MsgAmountMax)
	require.Regexp(t, `id="amount"[^>]*autofocus`, body)
	require.Empty(t, gw.calls)
}

func TestDonateSuccessWithoutEmail(t *testing.T) {
	gw := &fakeGateway{}
	rr := postForm(newHandler(t, gw, ""), url.Values{"amount": {"10"}, "email": {""}})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `data-client-secret="pi_web_secret_1"`)
	require.Len(t, gw.calls, 1)
	require.Equal(t, int64(1000), gw.calls[0].AmountMinorUnits)
	require.Equal(t, "usd", gw.calls[0].Currency)
	require.Empty(t, gw.calls[0].ReceiptEmail)
}

func TestDonateGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("declined: internal code 42")}
	rr := postForm(newHandler(t, gw, ""), url.Values{"amount": {"5"}})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "We could not start your donation")
	require.NotContains(t, body, "internal code 42")
}

func TestStaticBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=root></div>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	h := newHandler(t, &fakeGateway{}, dir)

	rr := httptest.NewRecorder()
	h.Index(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "<div id=root></div>", rr.Body.String())

	rr = httptest.NewRecorder()
	h.Assets(rr, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "console.log(1)", rr.Body.String())
}

func TestAssetsWithoutBundle(t *testing.T) {
	h := newHandler(t, &fakeGateway{}, "")
	rr := httptest.NewRecorder()
	h.Assets(rr, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewHandlerRejectsMissingDir(t *testing.T) {
	_, err := web.NewHandler(web.HandlerConfig{StaticDir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}
