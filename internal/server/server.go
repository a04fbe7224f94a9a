//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/engine"
	"github.com/ecomshop/order-engine/internal/repository"
)

// Engine is the order lifecycle surface the HTTP layer exposes.
type Engine interface {
	GetOrder(ctx context.Context, orderID int64) (*repository.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]*repository.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID int64, target string) error
	Cancel(ctx context.Context, orderID int64, reason, notes string) error
	AssignDeliveryAgent(ctx context.Context, orderID, agentID int64) error
	ApproveReturn(ctx context.Context, orderID int64, itemID *int64) error
	RejectReturn(ctx context.Context, orderID int64, itemID *int64, reason string) error
	ProcessRefund(ctx context.Context, orderID int64) error
	ApproveReplacement(ctx context.Context, orderID int64, itemID *int64) error
	RejectReplacement(ctx context.Context, orderID int64, itemID *int64, reason string) error
	ProcessReplacement(ctx context.Context, orderID int64, itemID *int64) error
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

type Server struct {
	engine   Engine
	userRepo UserRepo
	validate *validator.Validate
	logger   *zap.Logger
	server   *http.Server
}

func New(engine Engine, userRepo UserRepo, logger *zap.Logger) *Server {
	return &Server{
		engine:   engine,
		userRepo: userRepo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *Server) Run(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info("server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(s.basicAuthMiddleware)

	api.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}/items", s.handleGetOrderItems).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}/status", s.handleUpdateStatus).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/delivery-agent", s.handleAssignDeliveryAgent).Methods(http.MethodPost)

	api.HandleFunc("/orders/{id:[0-9]+}/return/approve", s.handleApproveReturn).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/return/reject", s.handleRejectReturn).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/refund", s.handleProcessRefund).Methods(http.MethodPost)

	api.HandleFunc("/orders/{id:[0-9]+}/replacement/approve", s.handleApproveReplacement).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/replacement/reject", s.handleRejectReplacement).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/replacement/process", s.handleProcessReplacement).Methods(http.MethodPost)

	return r
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		valid, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil || !valid {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrOrderNotFound),
		errors.Is(err, engine.ErrOrderItemNotFound),
		errors.Is(err, engine.ErrProductNotFound),
		errors.Is(err, engine.ErrAgentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case engine.IsPrecondition(err), engine.IsBatchRejection(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func orderID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.engine.GetOrder(r.Context(), orderID(r))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetOrderItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.GetOrderItems(r.Context(), orderID(r))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.UpdateStatus(r.Context(), orderID(r), req.Status); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.Cancel(r.Context(), orderID(r), req.Reason, req.Notes); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}

type assignAgentRequest struct {
	AgentID int64 `json:"agent_id" validate:"required"`
}

func (s *Server) handleAssignDeliveryAgent(w http.ResponseWriter, r *http.Request) {
	var req assignAgentRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.AssignDeliveryAgent(r.Context(), orderID(r), req.AgentID); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Delivery agent assigned"})
}

type itemRequest struct {
	ItemID *int64 `json:"item_id"`
}

type rejectRequest struct {
	ItemID *int64 `json:"item_id"`
	Reason string `json:"reason"`
}

func (s *Server) handleApproveReturn(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.ApproveReturn(r.Context(), orderID(r), req.ItemID); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Return approved"})
}

func (s *Server) handleRejectReturn(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.RejectReturn(r.Context(), orderID(r), req.ItemID, req.Reason); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Return rejected"})
}

func (s *Server) handleProcessRefund(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ProcessRefund(r.Context(), orderID(r)); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Refund processed"})
}

func (s *Server) handleApproveReplacement(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.ApproveReplacement(r.Context(), orderID(r), req.ItemID); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Replacement approved"})
}

func (s *Server) handleRejectReplacement(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.RejectReplacement(r.Context(), orderID(r), req.ItemID, req.Reason); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Replacement rejected"})
}

func (s *Server) handleProcessReplacement(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.engine.ProcessReplacement(r.Context(), orderID(r), req.ItemID); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Replacement processed"})
}
