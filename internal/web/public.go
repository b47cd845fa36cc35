package web

import (
	"math"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/intake"
	"github.com/bwservices06-art/bwservicesweb/internal/site"
)

type formView struct {
	intake.Form
	Action    string
	Anchor    string
	Confirmed bool
	// ConfirmMS is how long the confirmation still shows.
	ConfirmMS int64
	PlanNames []string
}

type indexView struct {
	Page      site.Page
	Inquiry   formView
	Order     formView
	LivePaths []string
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, nil)
}

// Contact handles POST /contact.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, content.KindInquiry)
}

// Order handles POST /order.
func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, content.KindOrder)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, kind content.Kind) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}

	form := h.intake.Submit(r.Context(), kind, values)
	if form.Failed() {
		status := http.StatusUnprocessableEntity
		if form.Error != "" {
			status = http.StatusServiceUnavailable
		}
		h.renderIndex(w, r, status, &form)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     confirmCookie(kind),
		Value:    strconv.FormatInt(form.ConfirmedUntil.UnixMilli(), 10),
		Path:     "/",
		MaxAge:   int(math.Ceil(h.intake.ConfirmDelay(kind).Seconds())),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/#"+anchor(kind), http.StatusSeeOther)
}

// PublicLive handles GET /live/{path} for the paths the public page shows.
func (h *Handler) PublicLive(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	if !slices.Contains(site.PublicPaths(), path) {
		http.NotFound(w, r)
		return
	}
	h.broker.ServeTopic(w, r, path)
}

func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, submitted *intake.Form) {
	page := site.BuildPage(h.live)
	now := h.now()
	view := indexView{
		Page:      page,
		Inquiry:   h.formView(r, content.KindInquiry, now),
		Order:     h.formView(r, content.KindOrder, now),
		LivePaths: site.PublicPaths(),
	}
	view.Order.PlanNames = page.PlanNames
	if submitted != nil {
		fv := formView{Form: *submitted, Action: "/" + action(submitted.Kind), Anchor: anchor(submitted.Kind)}
		if submitted.Kind == content.KindOrder {
			fv.PlanNames = page.PlanNames
			view.Order = fv
		} else {
			view.Inquiry = fv
		}
	}
	h.render(w, status, "index.html", view)
}

// formView restores a pending confirmation from the cookie set after a
// successful submit. The form itself always starts empty.
func (h *Handler) formView(r *http.Request, kind content.Kind, now time.Time) formView {
	form := intake.NewForm(kind)
	if c, err := r.Cookie(confirmCookie(kind)); err == nil {
		if ms, err := strconv.ParseInt(c.Value, 10, 64); err == nil {
			form.ConfirmedUntil = time.UnixMilli(ms)
		}
	}
	form = form.Tick(now)
	fv := formView{Form: form, Action: "/" + action(kind), Anchor: anchor(kind)}
	if form.Confirmed(now) {
		fv.Confirmed = true
		fv.ConfirmMS = form.ConfirmedUntil.Sub(now).Milliseconds()
	}
	return fv
}

func confirmCookie(kind content.Kind) string {
	return "bw_sent_" + kind.Path()
}

func action(kind content.Kind) string {
	if kind == content.KindOrder {
		return "order"
	}
	return "contact"
}

func anchor(kind content.Kind) string {
	if kind == content.KindOrder {
		return "pricing"
	}
	return "contact"
}
