package model

// ChatRequest is the chat form payload.
type ChatRequest struct {
	Message string `form:"message" json:"message" binding:"required,max=4000"`
}
