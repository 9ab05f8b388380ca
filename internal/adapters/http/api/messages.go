package api

import (
	"net/http"

	"github.com/okian/elocompare/internal/adapters/notify"
)

// MessagesHandler hands pending user messages to the page.
type MessagesHandler struct {
	inbox Inbox
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(inbox Inbox) *MessagesHandler {
	return &MessagesHandler{inbox: inbox}
}

// HandleGetMessages handles GET /api/messages requests. Returned messages
// are removed from the inbox.
func (h *MessagesHandler) HandleGetMessages(w http.ResponseWriter, _ *http.Request) {
	msgs := h.inbox.Drain()
	if msgs == nil {
		msgs = []notify.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
