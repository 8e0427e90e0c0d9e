// Package rpc exposes the ledger's read surface over HTTP. Mutations enter
// the processor through embedding programs, not through this API.
package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"veledger/core"
	"veledger/core/types"
	"veledger/native/bonds"
	"veledger/native/locker"
	"veledger/observability"
)

// Server serves the query API over a processor.
type Server struct {
	proc   *core.Processor
	logger *slog.Logger
}

// NewServer constructs a query API server. A nil logger falls back to the
// process default.
func NewServer(proc *core.Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, logger: logger}
}

// Router builds the chi router with request-id, logging and metrics
// middleware applied to every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/token/{symbol}/supply", s.handleTokenSupply)
		v1.Get("/token/{symbol}/balance/{address}", s.handleTokenBalance)
		v1.Get("/token/{symbol}/allowance/{owner}/{spender}", s.handleTokenAllowance)

		v1.Get("/locks/total", s.handleTotalLocked)
		v1.Get("/locks/{id}", s.handleLock)
		v1.Get("/accounts/{address}/locks", s.handleAccountLocks)
		v1.Get("/accounts/{address}/power", s.handleAccountPower)
		v1.Get("/power/total", s.handleTotalPower)

		v1.Get("/rewards/global", s.handleRewardsGlobal)

		v1.Get("/bonds/{teller}", s.handleBondMarket)
		v1.Get("/bonds/{teller}/bonds/{id}", s.handleBond)

		v1.Get("/scp/supply", s.handleScpSupply)
		v1.Get("/scp/{address}", s.handleScpAccount)

		v1.Get("/airdrop/root", s.handleAirdropRoot)
		v1.Get("/airdrop/{address}", s.handleAirdropStatus)

		v1.Get("/gov", s.handleGov)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		route := chi.RouteContext(r.Context()).RoutePattern()
		observability.API().Observe(route, rec.status, duration)
		if rec.status >= 500 {
			s.logger.Error("query failed",
				slog.String("route", route),
				slog.Int("status", rec.status),
				slog.Duration("duration", duration))
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps not-found style engine errors to 404 and everything else to
// 500; the processor never surfaces caller mistakes on read paths beyond
// these.
func statusFor(err error) int {
	switch {
	case errors.Is(err, locker.ErrLockNotFound),
		errors.Is(err, bonds.ErrBondNotFound),
		errors.Is(err, core.ErrUnknownTeller):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAddressParam(r *http.Request, name string) (types.Address, error) {
	return types.ParseAddress(chi.URLParam(r, name))
}

func parseIDParam(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, name), 10, 64)
}

func (s *Server) handleTokenSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.proc.TokenSupply(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"supply": bigString(supply)})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := s.proc.TokenBalance(chi.URLParam(r, "symbol"), addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": bigString(balance)})
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddressParam(r, "owner")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	spender, err := parseAddressParam(r, "spender")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	allowance, err := s.proc.TokenAllowance(chi.URLParam(r, "symbol"), owner, spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": bigString(allowance)})
}

type lockResponse struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	Delegatee     string `json:"delegatee"`
	Amount        string `json:"amount"`
	End           uint64 `json:"end"`
	VotePower     string `json:"votePower"`
	PendingReward string `json:"pendingReward"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lock, err := s.proc.GetLock(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	owner, err := s.proc.LockOwner(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	delegatee, err := s.proc.LockDelegatee(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	power, err := s.proc.VotePowerOfLock(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	pending, err := s.proc.PendingReward(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, lockResponse{
		ID:            id,
		Owner:         owner.Hex(),
		Delegatee:     delegatee.Hex(),
		Amount:        bigString(lock.Amount),
		End:           lock.End,
		VotePower:     bigString(power),
		PendingReward: bigString(pending),
	})
}

func (s *Server) handleAccountLocks(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	owned, err := s.proc.OwnedLocks(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	delegated, err := s.proc.DelegatedLocks(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if owned == nil {
		owned = []uint64{}
	}
	if delegated == nil {
		delegated = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"owned": owned, "delegated": delegated})
}

func (s *Server) handleAccountPower(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	own, err := s.proc.VotePowerOf(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	delegated, err := s.proc.DelegatedVotePowerOf(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owned":     bigString(own),
		"delegated": bigString(delegated),
	})
}

func (s *Server) handleTotalLocked(w http.ResponseWriter, r *http.Request) {
	total, err := s.proc.TotalLocked()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"totalLocked": bigString(total)})
}

func (s *Server) handleTotalPower(w http.ResponseWriter, r *http.Request) {
	total, err := s.proc.TotalVotePower()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"totalPower": bigString(total)})
}

type rewardsResponse struct {
	RewardPerSecond   string `json:"rewardPerSecond"`
	AccRewardPerShare string `json:"accRewardPerShare"`
	ValueStaked       string `json:"valueStaked"`
	LastRewardTime    uint64 `json:"lastRewardTime"`
	StartTime         uint64 `json:"startTime"`
	EndTime           uint64 `json:"endTime"`
}

func (s *Server) handleRewardsGlobal(w http.ResponseWriter, r *http.Request) {
	global, err := s.proc.RewardsGlobal()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rewardsResponse{
		RewardPerSecond:   bigString(global.RewardPerSecond),
		AccRewardPerShare: bigString(global.AccRewardPerShare),
		ValueStaked:       bigString(global.ValueStaked),
		LastRewardTime:    global.LastRewardTime,
		StartTime:         global.StartTime,
		EndTime:           global.EndTime,
	})
}

type marketResponse struct {
	TermsSet       bool   `json:"termsSet"`
	Paused         bool   `json:"paused"`
	Price          string `json:"price"`
	RemainingCap   string `json:"remainingCap"`
	MaxPayout      string `json:"maxPayout"`
	ProtocolFeeBps uint64 `json:"protocolFeeBps"`
	StartTime      uint64 `json:"startTime"`
	EndTime        uint64 `json:"endTime"`
	VestingTerm    uint64 `json:"vestingTerm"`
}

func (s *Server) handleBondMarket(w http.ResponseWriter, r *http.Request) {
	teller := chi.URLParam(r, "teller")
	market, err := s.proc.BondMarket(teller)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	price, err := s.proc.BondPrice(teller)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, marketResponse{
		TermsSet:       market.TermsSet,
		Paused:         market.Paused,
		Price:          bigString(price),
		RemainingCap:   bigString(market.RemainingCap),
		MaxPayout:      bigString(market.MaxPayout),
		ProtocolFeeBps: market.ProtocolFeeBps,
		StartTime:      market.StartTime,
		EndTime:        market.EndTime,
		VestingTerm:    market.GlobalVestingTerm,
	})
}

type bondResponse struct {
	Owner         string `json:"owner"`
	Payout        string `json:"payout"`
	Claimed       string `json:"claimed"`
	PrincipalPaid string `json:"principalPaid"`
	VestingStart  uint64 `json:"vestingStart"`
	VestingTerm   uint64 `json:"vestingTerm"`
}

func (s *Server) handleBond(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bond, err := s.proc.Bond(chi.URLParam(r, "teller"), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, bondResponse{
		Owner:         bond.Owner.Hex(),
		Payout:        bigString(bond.PayoutAmount),
		Claimed:       bigString(bond.PayoutAlreadyClaimed),
		PrincipalPaid: bigString(bond.PrincipalPaid),
		VestingStart:  bond.VestingStart,
		VestingTerm:   bond.LocalVestingTerm,
	})
}

func (s *Server) handleScpAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := s.proc.ScpBalance(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	nonRefundable, err := s.proc.ScpNonRefundable(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	minRequired, err := s.proc.ScpMinRequired(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"balance":       bigString(balance),
		"nonRefundable": bigString(nonRefundable),
		"minRequired":   bigString(minRequired),
	})
}

func (s *Server) handleScpSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.proc.ScpTotalSupply()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"supply": bigString(supply)})
}

func (s *Server) handleAirdropRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"root": s.proc.AirdropRoot().Hex()})
}

func (s *Server) handleAirdropStatus(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	claimed, err := s.proc.AirdropClaimed(addr)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"claimed": claimed})
}

func (s *Server) handleGov(w http.ResponseWriter, r *http.Request) {
	governor, err := s.proc.Governor()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	pending, err := s.proc.PendingGovernor()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"governor": governor.Hex(),
		"pending":  pending.Hex(),
	})
}
