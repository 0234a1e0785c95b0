package server

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/handlers"
	"github.com/bassignana/kruscotto/internal/httpx"
	"github.com/bassignana/kruscotto/internal/services"
)

// New constructs the root http.Handler with all routes applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	termsSvc := services.NewTermsService(db)
	importSvc := services.NewImportService(db)
	cashflowSvc := services.NewCashflowService(db)

	// Company profile
	ch := handlers.NewCompanyHandler(db)
	mux.HandleFunc("/company", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.Get(w, r)
		case http.MethodPost:
			ch.Set(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})

	// Documents (invoices and movements)
	dh := handlers.NewDocumentHandler(db, termsSvc)
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			dh.List(w, r)
		case http.MethodPost:
			dh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/documents/update", requirePost(dh.Update))
	mux.HandleFunc("/documents/delete", requirePost(dh.Delete))

	// Installment schedules
	th := handlers.NewTermsHandler(termsSvc)
	mux.HandleFunc("/documents/terms", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			th.List(w, r)
		case http.MethodPost:
			th.Replace(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/documents/terms/split", requirePost(th.Split))
	mux.HandleFunc("/installments/pay", requirePost(th.Pay))

	// XML import
	ih := handlers.NewImportHandler(db, importSvc)
	mux.HandleFunc("/import", requirePost(ih.Upload))

	// Reporting
	cfh := handlers.NewCashflowHandler(cashflowSvc, termsSvc)
	mux.HandleFunc("/cashflow", cfh.Report)
	mux.HandleFunc("/anomalies", cfh.Anomalies)

	return mux
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}
