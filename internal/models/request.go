package models

type AddCommentRequest struct {
	PhotoID     string `json:"photoId"`
	CommentText string `json:"commentText"`
	// Optional display name supplied by the client
	UserName string `json:"userName,omitempty"`
}

type CommentCountsRequest struct {
	PhotoIDs []string `json:"photoIds"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
