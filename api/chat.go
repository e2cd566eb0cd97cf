package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apimodel "github.com/smarttech/storefront/api/model"
)

// Chat answers 200 whenever the turn could be stored; the assistant always
// produces some text, even if only an apology with the contact number.
func (a Api) Chat(c *gin.Context) {
	var req apimodel.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateChatRequest(); err != nil {
		invalidRequest(c, err)
		return
	}

	reply, err := a.storefront.Chat(c.Request.Context(), req.Message, req.SessionID, req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (a Api) ChatHistory(c *gin.Context) {
	history, err := a.storefront.ChatHistory(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
