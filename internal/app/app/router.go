package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/alice"
	"opslab/internal/app/handler"
	mw "opslab/internal/app/middleware"
)

func (a *App) Router() http.Handler {

	r := chi.NewRouter()

	th := handler.NewTransactionHandler(a.transactions)
	fh := handler.NewFaultHandler(a.config.Fault.TimeoutMax)

	r.Get("/health", handler.Health)

	// fault injection drills
	r.Get("/fail", fh.Fail)
	r.Get("/timeout", fh.Timeout)

	// api
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/recent", th.Recent)
		r.Get("/search", th.Search)
		r.Get("/bad-query", th.BadQuery)
		r.Get("/by-user/{user_id}", th.ByUser)
		r.Post("/", th.Create)
		r.Put("/{order_id}/status", th.UpdateStatus)
	})

	// instrumentation outside, recovery inside: a panic is converted to a 500
	// first and then shows up in the access record
	return alice.New(
		mw.RequestLog(a.logger),
		mw.Recover(),
	).Then(r)
}
