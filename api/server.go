package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofrs/uuid"

	"github.com/duskdawn/mintd/logger"
	"github.com/duskdawn/mintd/mint"
)

// Server exposes the mint queue and the read paths over JSON HTTP. Writes
// only enqueue, the engine loop settles them, callers poll the trace id.
type Server struct {
	engine *mint.Engine
	store  mint.Store
	listen string
}

func NewServer(engine *mint.Engine, store mint.Store, conf *mint.Configuration) *Server {
	return &Server{
		engine: engine,
		store:  store,
		listen: conf.API.Listen,
	}
}

func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	log := logger.Logger()
	log.Info().Str("listen", s.listen).Msg("api server started")
	return http.Serve(listener, s.Handler())
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mint/raffle", s.handleRaffleMint)
	mux.HandleFunc("/mint/allow", s.handleAllowMint)
	mux.HandleFunc("/mint/public", s.handlePublicMint)
	mux.HandleFunc("/admin/", s.handleAdmin)
	mux.HandleFunc("/requests/", s.handleRequest)
	mux.HandleFunc("/tokens/", s.handleTokenURI)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

type submitBody struct {
	TraceId   string   `json:"trace_id"`
	Wallet    string   `json:"wallet"`
	Origin    string   `json:"origin"`
	Amount    uint64   `json:"amount"`
	Allowance uint64   `json:"allowance"`
	Proof     []string `json:"proof"`
	Payment   string   `json:"payment"`

	Key       string `json:"key"`
	Phase     string `json:"phase"`
	Cap       uint64 `json:"cap"`
	Price     string `json:"price"`
	Root      string `json:"root"`
	DawnURI   string `json:"dawn_uri"`
	DuskURI   string `json:"dusk_uri"`
	Recipient string `json:"recipient"`
}

func (s *Server) handleRaffleMint(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	wallet, proof, err := parseWalletProof(body)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return
	}
	s.submit(w, r, body, &mint.Request{
		Kind:    mint.KindRaffleMint,
		Wallet:  wallet,
		Proof:   proof,
		Payment: body.Payment,
	})
}

func (s *Server) handleAllowMint(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	wallet, proof, err := parseWalletProof(body)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return
	}
	s.submit(w, r, body, &mint.Request{
		Kind:      mint.KindAllowMint,
		Wallet:    wallet,
		Amount:    body.Amount,
		Allowance: body.Allowance,
		Proof:     proof,
		Payment:   body.Payment,
	})
}

func (s *Server) handlePublicMint(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	if !common.IsHexAddress(body.Wallet) || !common.IsHexAddress(body.Origin) {
		renderError(w, http.StatusBadRequest, fmt.Errorf("invalid wallet or origin"))
		return
	}
	s.submit(w, r, body, &mint.Request{
		Kind:    mint.KindPublicMint,
		Wallet:  common.HexToAddress(body.Wallet),
		Origin:  common.HexToAddress(body.Origin),
		Payment: body.Payment,
	})
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	req := &mint.Request{Key: body.Key, Cap: body.Cap, Price: body.Price}
	switch strings.TrimPrefix(r.URL.Path, "/admin/") {
	case "cap":
		req.Kind = mint.KindSetCap
	case "price":
		req.Kind = mint.KindSetPrice
	case "root":
		req.Kind = mint.KindSetRoot
	case "uris":
		req.Kind = mint.KindSetURIs
		req.DawnURI = body.DawnURI
		req.DuskURI = body.DuskURI
	case "cycle":
		req.Kind = mint.KindCycle
	case "jump":
		req.Kind = mint.KindJump
		phase, err := parsePhase(body.Phase)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		req.Phase = phase
	case "reset":
		req.Kind = mint.KindReset
	case "airdrop":
		req.Kind = mint.KindAirdrop
		req.Amount = body.Amount
	case "withdraw":
		req.Kind = mint.KindWithdraw
	default:
		http.NotFound(w, r)
		return
	}
	if body.Root != "" {
		root, err := parseHash(body.Root)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		req.Root = root
	}
	if body.Recipient != "" {
		if !common.IsHexAddress(body.Recipient) {
			renderError(w, http.StatusBadRequest, fmt.Errorf("invalid recipient %s", body.Recipient))
			return
		}
		req.Recipient = common.HexToAddress(body.Recipient)
	}
	s.submit(w, r, body, req)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	traceId := strings.TrimPrefix(r.URL.Path, "/requests/")
	req, err := s.store.ReadRequest(traceId)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err)
		return
	}
	if req == nil {
		http.NotFound(w, r)
		return
	}
	renderJSON(w, map[string]interface{}{
		"trace_id": req.TraceId,
		"kind":     req.Kind,
		"state":    req.StateName(),
		"reason":   req.Reason,
	})
}

func (s *Server) handleTokenURI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/tokens/")
	idStr, ok := strings.CutSuffix(path, "/uri")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return
	}
	uri, err := s.engine.TokenURI(id, time.Now())
	if err != nil {
		renderError(w, http.StatusNotFound, err)
		return
	}
	renderJSON(w, map[string]interface{}{"id": id, "uri": uri})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state, err := s.engine.ReadState()
	if err != nil {
		renderError(w, http.StatusInternalServerError, err)
		return
	}
	renderJSON(w, map[string]interface{}{
		"phase":  state.Phase.String(),
		"root":   state.Root.Hex(),
		"cap":    state.Cap,
		"issued": state.Issued,
		"price":  state.Price,
		"vault":  state.Vault,
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, body *submitBody, req *mint.Request) {
	req.TraceId = body.TraceId
	if req.TraceId == "" {
		req.TraceId = uuid.Must(uuid.NewV4()).String()
	}
	err := s.engine.Submit(r.Context(), req)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return
	}
	renderJSON(w, map[string]interface{}{"trace_id": req.TraceId})
}

func decodeSubmit(w http.ResponseWriter, r *http.Request) (*submitBody, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	var body submitBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return &body, true
}

func parseWalletProof(body *submitBody) (common.Address, []common.Hash, error) {
	if !common.IsHexAddress(body.Wallet) {
		return common.Address{}, nil, fmt.Errorf("invalid wallet %s", body.Wallet)
	}
	proof := make([]common.Hash, len(body.Proof))
	for i, p := range body.Proof {
		h, err := parseHash(p)
		if err != nil {
			return common.Address{}, nil, err
		}
		proof[i] = h
	}
	return common.HexToAddress(body.Wallet), proof, nil
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash %s", s)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash length %d", len(b))
	}
	return common.BytesToHash(b), nil
}

func parsePhase(s string) (mint.Phase, error) {
	switch s {
	case "none":
		return mint.PhaseNone, nil
	case "raffle":
		return mint.PhaseRaffle, nil
	case "allow":
		return mint.PhaseAllow, nil
	case "public":
		return mint.PhasePublic, nil
	}
	return 0, fmt.Errorf("invalid phase %s", s)
}

func renderJSON(w http.ResponseWriter, val interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(val)
}

func renderError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
