package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/rfinnegan/boxroom/internal/email"
	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

// MemberHandler covers the membership lifecycle: listing, invites, acceptance,
// revocation, and stale-override reconciliation.
type MemberHandler struct {
	members     *store.MemberStore
	invites     *store.InviteStore
	households  *store.HouseholdStore
	sharing     *sharing.Service
	emailClient *email.Client
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, is *store.InviteStore, hs *store.HouseholdStore, svc *sharing.Service, ec *email.Client, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		members:     ms,
		invites:     is,
		households:  hs,
		sharing:     svc,
		emailClient: ec,
		hub:         hub,
		logger:      logger,
	}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	members, err := h.members.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	if members == nil {
		members = []model.HouseholdMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Revoke marks a member revoked and reconciles overrides that no longer
// reference an active member. The member row is kept for history.
func (h *MemberHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.sharing.RevokeMember(id); err != nil {
		writeSharingError(w, h.logger, err, "failed to revoke member")
		return
	}

	removed, err := h.sharing.ReconcileStaleOverrides()
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to reconcile overrides")
		return
	}

	broadcast(h.hub, websocket.NewMessage("member", "revoked", id, map[string]any{"overrides_removed": removed}))
	writeJSON(w, http.StatusOK, map[string]any{"status": "revoked", "overrides_removed": removed})
}

// Reconcile removes overrides pointing at non-active members. Revocation
// already does this inline; the endpoint exists as a repair hatch.
func (h *MemberHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	removed, err := h.sharing.ReconcileStaleOverrides()
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to reconcile overrides")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"overrides_removed": removed})
}

type inviteRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// CreateInvite issues a pending invite. No member row exists until the invite
// is accepted. The invite email is best-effort: a delivery failure leaves the
// invite valid.
func (h *MemberHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display_name is required"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
			return
		}
	}

	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	invite, err := h.sharing.CreateInvite(household.ID, req.DisplayName, req.Email)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to create invite")
		return
	}

	if req.Email != "" && h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendInvite(req.Email, invite.Token, household.Name); err != nil {
			h.logger.Warn("send invite email", "invite_id", invite.ID, "error", err)
		}
	}

	broadcast(h.hub, websocket.NewMessage("invite", "created", invite.ID, nil))

	// The token is exposed once here so the UI can share the link directly.
	writeJSON(w, http.StatusCreated, map[string]any{
		"invite": invite,
		"token":  invite.Token,
	})
}

func (h *MemberHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	invites, err := h.invites.ListPending(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list invites"})
		return
	}
	if invites == nil {
		invites = []model.Invite{}
	}
	writeJSON(w, http.StatusOK, invites)
}

type acceptRequest struct {
	Token string `json:"token"`
}

// AcceptInvite consumes a token and materializes the member. Used invites
// conflict, expired invites are gone.
func (h *MemberHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	h.acceptToken(w, req.Token)
}

// AcceptInviteLink handles the emailed link form: GET /invite/accept?token=...
func (h *MemberHandler) AcceptInviteLink(w http.ResponseWriter, r *http.Request) {
	h.acceptToken(w, r.URL.Query().Get("token"))
}

func (h *MemberHandler) acceptToken(w http.ResponseWriter, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	member, err := h.sharing.AcceptInvite(token)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to accept invite")
		return
	}

	broadcast(h.hub, websocket.NewMessage("member", "joined", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}
