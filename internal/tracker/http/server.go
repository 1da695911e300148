package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/domain"
	"github.com/radieske/bet-tracker/internal/stats"
	"github.com/radieske/bet-tracker/internal/store"
	"github.com/radieske/bet-tracker/internal/tracker/auth"
	"github.com/radieske/bet-tracker/internal/tracker/dto"
)

// SessionStore valida e emite tokens bearer.
type SessionStore interface {
	Issue(ctx context.Context, role auth.Role) (string, error)
	Role(ctx context.Context, token string) (auth.Role, error)
}

// Server expõe a API do tracker: apostas, carteira, estatísticas e login.
// Toda validação de entrada acontece aqui; o motor de reconciliação confia
// no que recebe.
type Server struct {
	log      *zap.Logger
	store    *store.Store
	sessions SessionStore
}

func NewServer(log *zap.Logger, st *store.Store, sessions SessionStore) *Server {
	return &Server{log: log, store: st, sessions: sessions}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", s.login)              // POST
	mux.HandleFunc("/bets", s.bets)                // GET (filtros) | POST
	mux.HandleFunc("/bets/", s.betByID)            // GET | PUT | DELETE /bets/{id}
	mux.HandleFunc("/wallet", s.getWallet)         // GET
	mux.HandleFunc("/wallet/deposit", s.deposit)   // POST
	mux.HandleFunc("/wallet/withdraw", s.withdraw) // POST
	mux.HandleFunc("/stats", s.getStats)           // GET
	mux.HandleFunc("/stats/profit", s.getProfit)   // GET
	return s.authenticate(mux)
}

// authenticate exige token bearer válido em tudo menos /token. Escritas
// exigem papel USER; VISITOR é somente leitura.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			writeError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		role, err := s.sessions.Role(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, "authentication failed or token expired", http.StatusUnauthorized)
				return
			}
			writeError(w, "session lookup failed", http.StatusInternalServerError)
			return
		}

		if role == auth.RoleVisitor && r.Method != http.MethodGet {
			writeError(w, "visitor tokens are read-only", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "bad json", http.StatusBadRequest)
		return
	}
	role := auth.Role(req.Role)
	if role != auth.RoleUser && role != auth.RoleVisitor {
		writeError(w, "role must be USER or VISITOR", http.StatusBadRequest)
		return
	}

	token, err := s.sessions.Issue(r.Context(), role)
	if err != nil {
		writeError(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBets(w, r)
	case http.MethodPost:
		s.addBet(w, r)
	default:
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// listBets aplica os filtros de consulta (outcome, type, favorite, skip, limit)
// sobre a coleção corrente.
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bets := s.store.Bets()

	filtered := bets[:0:0]
	for _, b := range bets {
		if v := q.Get("outcome"); v != "" && string(b.Outcome) != v {
			continue
		}
		if v := q.Get("type"); v != "" && string(b.Type) != v {
			continue
		}
		if v := q.Get("favorite"); v != "" {
			fav, err := strconv.ParseBool(v)
			if err != nil || b.Favorite != fav {
				continue
			}
		}
		filtered = append(filtered, b)
	}

	skip, _ := strconv.Atoi(q.Get("skip"))
	if skip < 0 {
		skip = 0
	}
	if skip > len(filtered) {
		skip = len(filtered)
	}
	filtered = filtered[skip:]

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err == nil && limit >= 0 && limit < len(filtered) {
			filtered = filtered[:limit]
		}
	}

	out := make([]dto.BetResponse, 0, len(filtered))
	for _, b := range filtered {
		out = append(out, dto.FromBet(b))
	}
	writeJSON(w, out)
}

func (s *Server) addBet(w http.ResponseWriter, r *http.Request) {
	var req dto.BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "bad json", http.StatusBadRequest)
		return
	}
	bet, detail := betFromRequest(req)
	if detail != "" {
		writeError(w, detail, http.StatusBadRequest)
		return
	}

	// Saldo insuficiente é rejeição de validação, não regra do motor: daqui
	// pra dentro o ledger aceita o que vier.
	if bet.Amount.GreaterThan(s.store.Balance()) {
		writeError(w, "insufficient funds", http.StatusUnprocessableEntity)
		return
	}

	bet.ID = uuid.NewString()
	created, err := s.store.AddBet(r.Context(), bet)
	if err != nil {
		s.log.Error("add bet", zap.String("betId", bet.ID), zap.Error(err))
		writeError(w, "persistence failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dto.FromBet(created))
}

func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/bets/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, "betId required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		bet, err := s.store.Bet(id)
		if err != nil {
			writeError(w, "bet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, dto.FromBet(bet))

	case http.MethodPut:
		var req dto.BetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "bad json", http.StatusBadRequest)
			return
		}
		next, detail := betFromRequest(req)
		if detail != "" {
			writeError(w, detail, http.StatusBadRequest)
			return
		}
		updated, err := s.store.EditBet(r.Context(), id, next)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, "bet not found", http.StatusNotFound)
				return
			}
			s.log.Error("edit bet", zap.String("betId", id), zap.Error(err))
			writeError(w, "persistence failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, dto.FromBet(updated))

	case http.MethodDelete:
		if err := s.store.DeleteBet(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, "bet not found", http.StatusNotFound)
				return
			}
			s.log.Error("delete bet", zap.String("betId", id), zap.Error(err))
			writeError(w, "persistence failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, dto.FromWallet(s.store.Wallet()))
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.movementAmount(w, r)
	if !ok {
		return
	}
	wallet, err := s.store.Deposit(r.Context(), amount)
	if err != nil {
		s.log.Error("deposit", zap.Error(err))
		writeError(w, "persistence failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.FromWallet(wallet))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.movementAmount(w, r)
	if !ok {
		return
	}
	if amount.GreaterThan(s.store.Balance()) {
		writeError(w, "insufficient funds", http.StatusUnprocessableEntity)
		return
	}
	wallet, err := s.store.Withdraw(r.Context(), amount)
	if err != nil {
		s.log.Error("withdraw", zap.Error(err))
		writeError(w, "persistence failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.FromWallet(wallet))
}

func (s *Server) movementAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return decimal.Zero, false
	}
	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "bad json", http.StatusBadRequest)
		return decimal.Zero, false
	}
	if !req.Amount.IsPositive() {
		writeError(w, "amount must be positive", http.StatusBadRequest)
		return decimal.Zero, false
	}
	return req.Amount, true
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, dto.FromSummary(stats.Summarize(s.store.Bets())))
}

func (s *Server) getProfit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	series := stats.ProfitSeries(s.store.Bets())
	out := make([]dto.ProfitPointResponse, 0, len(series))
	for _, p := range series {
		out = append(out, dto.ProfitPointResponse{Date: p.Day, Profit: p.Cumulative})
	}
	writeJSON(w, out)
}

// betFromRequest monta a entidade a partir do payload, recalculando os campos
// derivados e validando enums e faixas. Retorna a mensagem de erro vazia
// quando o payload é válido.
func betFromRequest(req dto.BetRequest) (domain.Bet, string) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Bet{}, "invalid date"
	}
	typ := domain.BetType(req.Type)
	if !typ.Valid() {
		return domain.Bet{}, "invalid bet type"
	}
	outcome := domain.BetOutcome(req.Outcome)
	if !outcome.Valid() {
		return domain.Bet{}, "invalid outcome"
	}
	if req.Amount.IsNegative() {
		return domain.Bet{}, "amount must be >= 0"
	}
	if req.Odds.LessThan(decimal.NewFromInt(1)) {
		return domain.Bet{}, "odds must be >= 1"
	}

	return domain.Bet{
		Date:     date,
		Type:     typ,
		Amount:   req.Amount,
		Odds:     req.Odds,
		Outcome:  outcome,
		Notes:    req.Notes,
		Favorite: req.Favorite,
	}, ""
}

// parseDate aceita RFC 3339 e o formato curto de datetime-local do formulário.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", s)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, detail string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: detail})
}
