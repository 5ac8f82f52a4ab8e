package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	jsonMiddleware := standardMiddleware.Append(makeResponseJSON)

	mux := pat.New()

	// Health
	mux.Get("/api/health", jsonMiddleware.ThenFunc(app.healthCheck))
	mux.Post("/api/health", jsonMiddleware.ThenFunc(app.healthCheck))
	mux.Get("/health", jsonMiddleware.ThenFunc(app.healthCheck))

	// Payments
	mux.Post("/api/pagos/cupo", jsonMiddleware.ThenFunc(app.paymentHandler.CreateCupo))

	// Libélula webhook: delivered as GET with query params or POST with a body.
	mux.Get("/api/libelula/pago-exitoso", standardMiddleware.ThenFunc(app.libelulaHandler.PaymentCallback))
	mux.Post("/api/libelula/pago-exitoso", standardMiddleware.ThenFunc(app.libelulaHandler.PaymentCallback))
	mux.Get("/return", standardMiddleware.ThenFunc(app.libelulaHandler.ReturnPage))

	// Notifications
	mux.Post("/api/notifications/send", jsonMiddleware.ThenFunc(app.notificationHandler.Send))

	return mux
}
