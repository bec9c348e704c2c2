package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	database "github.com/campo/CampManager/db"
	"github.com/campo/CampManager/internal/auth"
	"github.com/campo/CampManager/internal/camp"
	"github.com/campo/CampManager/internal/importer"
	"github.com/campo/CampManager/internal/intranet"
	"github.com/campo/CampManager/internal/member"
	"github.com/campo/CampManager/internal/payment"
	"github.com/campo/CampManager/internal/prepayment"
	"github.com/campo/CampManager/internal/site"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("Request completed")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router            *http.ServeMux
	authHandler       *auth.Handler
	authService       auth.ServiceInterface
	memberHandler     *member.Handler
	siteHandler       *site.Handler
	campHandler       *camp.Handler
	paymentHandler    *payment.Handler
	prepaymentHandler *prepayment.Handler
	intranetHandler   *intranet.Handler
	importHandler     *importer.Handler
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.ServiceInterface,
	memberHandler *member.Handler,
	siteHandler *site.Handler,
	campHandler *camp.Handler,
	paymentHandler *payment.Handler,
	prepaymentHandler *prepayment.Handler,
	intranetHandler *intranet.Handler,
	importHandler *importer.Handler,
) *Server {
	return &Server{
		router:            http.NewServeMux(),
		authHandler:       authHandler,
		authService:       authService,
		memberHandler:     memberHandler,
		siteHandler:       siteHandler,
		campHandler:       campHandler,
		paymentHandler:    paymentHandler,
		prepaymentHandler: prepaymentHandler,
		intranetHandler:   intranetHandler,
		importHandler:     importHandler,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("SESSION_SECRET") == "" {
		return errors.New("no SESSION_SECRET Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) RegisterRoutes() {
	protect := auth.RequireSession(s.authService, respondError)

	router := http.NewServeMux()

	// Public routes
	router.HandleFunc("POST /api/login", s.authHandler.HandleLogin)
	router.HandleFunc("POST /api/logout", s.authHandler.HandleLogout)
	router.HandleFunc("GET /api/check-auth", s.authHandler.HandleCheckAuth)
	router.HandleFunc("GET /api/ready", s.handleReady)
	router.HandleFunc("GET /api/public/intranet", s.intranetHandler.HandlePage)
	router.HandleFunc("GET /api/public/sites-map", s.siteHandler.HandlePublicMap)
	router.HandleFunc("POST /api/waitlist", s.siteHandler.HandleWaitlistSubmit)

	// Members
	router.HandleFunc("GET /api/members", protect(s.memberHandler.HandleList))
	router.HandleFunc("POST /api/members", protect(s.memberHandler.HandleCreate))
	router.HandleFunc("POST /api/member/update", protect(s.memberHandler.HandleUpdate))
	router.HandleFunc("POST /api/member/delete", protect(s.memberHandler.HandleDelete))
	router.HandleFunc("GET /api/member/history", protect(s.memberHandler.HandleHistory))
	router.HandleFunc("POST /api/members/delete-all", protect(s.memberHandler.HandleDeleteAll))

	// Sites and allocations
	router.HandleFunc("GET /api/sites", protect(s.siteHandler.HandleList))
	router.HandleFunc("POST /api/sites", protect(s.siteHandler.HandleCreate))
	router.HandleFunc("POST /api/site/update", protect(s.siteHandler.HandleUpdate))
	router.HandleFunc("POST /api/site/delete", protect(s.siteHandler.HandleDelete))
	router.HandleFunc("POST /api/sites/map", protect(s.siteHandler.HandleMapCoords))
	router.HandleFunc("POST /api/site/allocate", protect(s.siteHandler.HandleAllocate))
	router.HandleFunc("POST /api/site/deallocate", protect(s.siteHandler.HandleDeallocate))
	router.HandleFunc("GET /api/waitlist", protect(s.siteHandler.HandleWaitlistList))
	router.HandleFunc("POST /api/site/waitlist-update", protect(s.siteHandler.HandleWaitlistUpdate))
	router.HandleFunc("POST /api/site/waitlist-delete", protect(s.siteHandler.HandleWaitlistDelete))

	// Camps and rates
	router.HandleFunc("GET /api/camps", protect(s.campHandler.HandleList))
	router.HandleFunc("GET /api/camps/active", protect(s.campHandler.HandleActive))
	router.HandleFunc("POST /api/camps", protect(s.campHandler.HandleCreate))
	router.HandleFunc("POST /api/camp/update", protect(s.campHandler.HandleUpdate))
	router.HandleFunc("POST /api/camp/delete", protect(s.campHandler.HandleDelete))
	router.HandleFunc("GET /api/rates", protect(s.campHandler.HandleRates))
	router.HandleFunc("POST /api/rates", protect(s.campHandler.HandleCreateRate))
	router.HandleFunc("POST /api/rate/update", protect(s.campHandler.HandleUpdateRate))
	router.HandleFunc("POST /api/rate/delete", protect(s.campHandler.HandleDeleteRate))
	router.HandleFunc("POST /api/rates/clone", protect(s.campHandler.HandleCloneRates))

	// Payments
	router.HandleFunc("GET /api/payments", protect(s.paymentHandler.HandleList))
	router.HandleFunc("POST /api/payments", protect(s.paymentHandler.HandlePost))
	router.HandleFunc("POST /api/payment/update", protect(s.paymentHandler.HandleUpdate))
	router.HandleFunc("POST /api/payment/delete", protect(s.paymentHandler.HandleDelete))
	router.HandleFunc("GET /api/payments/summary", protect(s.paymentHandler.HandleSummary))
	router.HandleFunc("GET /api/dashboard-stats", protect(s.paymentHandler.HandleDashboardStats))

	// Prepaid credits
	router.HandleFunc("GET /api/prepayments", protect(s.prepaymentHandler.HandleList))
	router.HandleFunc("POST /api/prepayments/match", protect(s.prepaymentHandler.HandleMatch))
	router.HandleFunc("POST /api/prepayments/delete-all", protect(s.prepaymentHandler.HandleDeleteAll))

	// CSV imports
	router.HandleFunc("POST /api/import/members", protect(s.importHandler.HandleImportMembers))
	router.HandleFunc("POST /api/import/prepayments", protect(s.importHandler.HandleImportPrepayments))
	router.HandleFunc("POST /api/import/rates", protect(s.importHandler.HandleImportRates))
	router.HandleFunc("POST /api/import/legacy", protect(s.importHandler.HandleImportLegacy))

	// Intranet content
	router.HandleFunc("GET /api/intranet/admin", protect(s.intranetHandler.HandlePage))
	router.HandleFunc("POST /api/intranet/save", protect(s.intranetHandler.HandleSave))

	router.HandleFunc("/", notFoundHandler)

	s.router = router
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	sessionManager := auth.NewSessionManager()
	tokenManager := auth.NewTokenManager()
	userRepo := auth.NewUserRepository(dbService.DB)
	authService := auth.NewService(userRepo, sessionManager, tokenManager)
	authHandler := auth.NewHandler(authService, respondJSON, respondError)

	memberRepo := member.NewRepository(dbService.DB)
	memberService := member.NewService(memberRepo)
	memberHandler := member.NewHandler(memberService, respondJSON, respondError)

	siteRepo := site.NewRepository(dbService.DB)
	siteService := site.NewService(siteRepo)
	siteHandler := site.NewHandler(siteService, respondJSON, respondError)

	campRepo := camp.NewRepository(dbService.DB)
	campService := camp.NewService(campRepo)
	campHandler := camp.NewHandler(campService, respondJSON, respondError)

	prepaymentRepo := prepayment.NewRepository(dbService.DB)
	prepaymentService := prepayment.NewService(prepaymentRepo)
	prepaymentHandler := prepayment.NewHandler(prepaymentService, respondJSON, respondError)

	ledgerRepo := member.NewLedgerRepository(dbService.DB)
	paymentRepo := payment.NewRepository(dbService.DB, ledgerRepo, prepaymentRepo)
	paymentService := payment.NewService(paymentRepo)
	paymentHandler := payment.NewHandler(paymentService, respondJSON, respondError)

	intranetRepo := intranet.NewRepository(dbService.DB)
	intranetService := intranet.NewService(intranetRepo)
	intranetHandler := intranet.NewHandler(intranetService, respondJSON, respondError)

	importRepo := importer.NewRepository(dbService.DB)
	importService := importer.NewService(importRepo)
	importHandler := importer.NewHandler(importService, respondJSON, respondError)

	server := NewServer(
		authHandler,
		authService,
		memberHandler,
		siteHandler,
		campHandler,
		paymentHandler,
		prepaymentHandler,
		intranetHandler,
		importHandler,
	)
	server.RegisterRoutes()

	if err := StartScheduler(memberService, sessionManager); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(server.router)
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func StartScheduler(memberService *member.Service, sessions auth.SessionManagerInterface) error {
	c := cron.New()

	// Nightly sweep marks members whose site fee lapsed as Expired.
	_, err := c.AddFunc("0 2 * * *", func() {
		count, err := memberService.RefreshFeeStatuses()
		if err != nil {
			log.Printf("Error refreshing member fee statuses: %v", err)
		} else if count > 0 {
			log.Printf("Marked %d members as fee expired", count)
		}
	})
	if err != nil {
		return err
	}

	_, err = c.AddFunc("@every 1h", func() {
		sessions.CleanupExpired()
	})
	if err != nil {
		return err
	}

	c.Start()
	return nil
}
