package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"evmex/pkg/models"
	"evmex/pkg/query"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
)

// HeadPollInterval controls how often the websocket loop checks for a new
// chain head.
var HeadPollInterval = 12 * time.Second

const headFetchTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DataSource is the read-only chain view the server exposes over HTTP.
type DataSource interface {
	GetNetworkInfo(ctx context.Context) (*models.NetworkInfo, error)
	GetBlock(ctx context.Context, number *big.Int) (*models.BlockData, error)
	GetHead(ctx context.Context) (*models.BlockInfo, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*models.TxInfo, error)
	GetAddress(ctx context.Context, addr common.Address) (*models.AddressInfo, error)
	ResolveEns(ctx context.Context, name string) (common.Address, error)
}

type Server struct {
	source   DataSource
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
	mux      *http.ServeMux
	lastHead *headMessage
	stopChan chan struct{}
}

func NewServer(source DataSource) *Server {
	s := &Server{
		source:   source,
		clients:  make(map[*websocket.Conn]bool),
		mux:      http.NewServeMux(),
		stopChan: make(chan struct{}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/network", s.handleNetwork)
	s.mux.HandleFunc("GET /api/block/{number}", s.handleBlock)
	s.mux.HandleFunc("GET /api/tx/{hash}", s.handleTx)
	s.mux.HandleFunc("GET /api/address/{addr}", s.handleAddress)
	s.mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) Start(port int) error {
	go s.pollHeads()

	fmt.Printf("API server listening on :%d\n", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}

// Stop ends the head polling loop.
func (s *Server) Stop() {
	close(s.stopChan)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	info, err := s.source.GetNetworkInfo(r.Context())
	if err != nil {
		s.fetchError(w, err)
		return
	}
	writeJSON(w, newNetworkResponse(info))
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("number")
	var number *big.Int
	if raw != "latest" {
		intent := query.Classify(raw)
		if intent.Kind != query.KindBlockNumber {
			writeError(w, http.StatusBadRequest, "invalid block number")
			return
		}
		number = new(big.Int).SetUint64(intent.BlockNumber)
	}

	block, err := s.source.GetBlock(r.Context(), number)
	if err != nil {
		s.fetchError(w, err)
		return
	}
	writeJSON(w, newBlockResponse(block))
}

func (s *Server) handleTx(w http.ResponseWriter, r *http.Request) {
	intent := query.Classify(r.PathValue("hash"))
	if intent.Kind != query.KindTxHash {
		writeError(w, http.StatusBadRequest, "invalid transaction hash")
		return
	}

	tx, err := s.source.GetTransaction(r.Context(), intent.TxHash)
	if err != nil {
		s.fetchError(w, err)
		return
	}
	writeJSON(w, newTxResponse(tx))
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	intent := query.Classify(r.PathValue("addr"))
	addr := intent.Address
	switch intent.Kind {
	case query.KindAddress:
	case query.KindEnsName:
		resolved, err := s.source.ResolveEns(r.Context(), intent.EnsName)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		addr = resolved
	default:
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	info, err := s.source.GetAddress(r.Context(), addr)
	if err != nil {
		s.fetchError(w, err)
		return
	}
	writeJSON(w, newAddressResponse(info))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Send the most recent head before registering, so the initial write
	// cannot race a broadcast on the same connection.
	s.mu.Lock()
	last := s.lastHead
	s.mu.Unlock()
	if last != nil {
		_ = conn.WriteJSON(last)
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) pollHeads() {
	s.checkHead()

	ticker := time.NewTicker(HeadPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.checkHead()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) checkHead() {
	ctx, cancel := context.WithTimeout(context.Background(), headFetchTimeout)
	defer cancel()

	info, err := s.source.GetHead(ctx)
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.lastHead != nil && info.Number <= s.lastHead.Number {
		s.mu.Unlock()
		return
	}
	msg := newHeadMessage(info)
	s.lastHead = &msg
	s.mu.Unlock()

	s.broadcast(msg)
}

func (s *Server) broadcast(msg headMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(msg); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) fetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, ethereum.NotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
