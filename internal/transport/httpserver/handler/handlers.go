package handler

import (
	"net/http"

	analyticsdomain "opsboard/internal/domain/analytics"
	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	unitsdomain "opsboard/internal/domain/units"
	userdomain "opsboard/internal/domain/user"
	"opsboard/pkg/logger"
)

type Handlers struct {
	Units        *unitsdomain.Service
	Transactions *transactionsdomain.Service
	Seminars     *seminarsdomain.Service
	Analytics    *analyticsdomain.Service
	Profiles     *userdomain.Service
	log          logger.Logger
}

func New(units *unitsdomain.Service, transactions *transactionsdomain.Service, seminars *seminarsdomain.Service, analytics *analyticsdomain.Service, profiles *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Units:        units,
		Transactions: transactions,
		Seminars:     seminars,
		Analytics:    analytics,
		Profiles:     profiles,
		log:          log,
	}
}

// logger returns the request-scoped logger set up by the router, falling
// back to the handler's own.
func (h *Handlers) logger(r *http.Request) logger.Logger {
	return logger.FromContext(r.Context(), h.log)
}
