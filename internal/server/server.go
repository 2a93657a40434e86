package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rfinnegan/boxroom/internal/backup"
	"github.com/rfinnegan/boxroom/internal/email"
	"github.com/rfinnegan/boxroom/internal/handler"
	"github.com/rfinnegan/boxroom/internal/middleware"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	ws "github.com/rfinnegan/boxroom/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	householdH    *handler.HouseholdHandler
	homeH         *handler.HomeHandler
	accessH       *handler.AccessHandler
	memberH       *handler.MemberHandler
	labelH        *handler.LabelHandler
	itemH         *handler.ItemHandler
	settingsH     *handler.SettingsHandler
	backupH       *handler.BackupHandler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, backupManager *backup.Manager, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	householdStore := store.NewHouseholdStore(db)
	homeStore := store.NewHomeStore(db)
	memberStore := store.NewMemberStore(db)
	inviteStore := store.NewInviteStore(db)
	overrideStore := store.NewOverrideStore(db)
	labelStore := store.NewLabelStore(db)
	itemStore := store.NewItemStore(db)
	settingsStore := store.NewSettingsStore(db)

	sharingSvc := sharing.NewService(db, logger.With("component", "sharing"))

	return &Server{
		db:            db,
		hub:           hub,
		householdH:    handler.NewHouseholdHandler(householdStore, hub, logger.With("component", "household")),
		homeH:         handler.NewHomeHandler(homeStore, householdStore, hub, logger.With("component", "home")),
		accessH:       handler.NewAccessHandler(sharingSvc, homeStore, overrideStore, hub, logger.With("component", "access")),
		memberH:       handler.NewMemberHandler(memberStore, inviteStore, householdStore, sharingSvc, emailClient, hub, logger.With("component", "member")),
		labelH:        handler.NewLabelHandler(labelStore, householdStore, sharingSvc, hub, logger.With("component", "label")),
		itemH:         handler.NewItemHandler(itemStore, homeStore, sharingSvc, hub, logger.With("component", "item")),
		settingsH:     handler.NewSettingsHandler(settingsStore, householdStore, hub, logger.With("component", "settings")),
		backupH:       handler.NewBackupHandler(backupManager, hub, logger.With("component", "backup_handler")),
		backupManager: backupManager,
		logger:        logger,
	}
}

// Hub returns the websocket hub for out-of-band broadcasts.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Household
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.HandleFunc("PUT /api/household", s.householdH.Update)

	// Homes
	mux.HandleFunc("GET /api/homes", s.homeH.List)
	mux.HandleFunc("POST /api/homes", s.homeH.Create)
	mux.HandleFunc("GET /api/homes/{id}", s.homeH.Get)
	mux.HandleFunc("PUT /api/homes/{id}/privacy", s.homeH.SetPrivacy)
	mux.HandleFunc("DELETE /api/homes/{id}", s.homeH.Delete)

	// Access evaluation + overrides
	mux.HandleFunc("GET /api/homes/{id}/access", s.accessH.ListStates)
	mux.HandleFunc("PUT /api/homes/{id}/access/{member_id}", s.accessH.SetOverride)
	mux.HandleFunc("DELETE /api/homes/{id}/access/{member_id}", s.accessH.ClearOverride)

	// Members + invites
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("POST /api/members/{id}/revoke", s.memberH.Revoke)
	mux.HandleFunc("POST /api/reconcile", s.memberH.Reconcile)
	mux.HandleFunc("GET /api/invites", s.memberH.ListInvites)
	mux.HandleFunc("POST /api/invites", s.memberH.CreateInvite)
	mux.HandleFunc("POST /api/invites/accept", s.memberH.AcceptInvite)
	mux.HandleFunc("GET /invite/accept", s.memberH.AcceptInviteLink)

	// Labels
	mux.HandleFunc("GET /api/labels", s.labelH.List)
	mux.HandleFunc("POST /api/labels", s.labelH.Create)
	mux.HandleFunc("PUT /api/labels/{id}", s.labelH.Update)
	mux.HandleFunc("DELETE /api/labels/{id}", s.labelH.Delete)

	// Items
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/move", s.itemH.Move)
	mux.HandleFunc("GET /api/homes/{id}/items", s.itemH.ListByHome)

	// Settings
	mux.HandleFunc("GET /api/settings/scoping", s.settingsH.GetScoping)
	mux.HandleFunc("PUT /api/settings/scoping", s.settingsH.UpdateScoping)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/run", s.backupH.Run)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "error": "database unreachable"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
