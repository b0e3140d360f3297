package models

type HealthResponse struct {
	Status string `json:"status"`
}

type PhotoResponse struct {
	Photo
	DisplayURL string `json:"display_url"`
}

type PhotoListResponse struct {
	Success bool            `json:"success"`
	Photos  []PhotoResponse `json:"photos"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	ID       string `json:"id"`
	Photo    *Photo `json:"photo"`
}

type CommentListResponse struct {
	Success  bool      `json:"success"`
	Comments []Comment `json:"comments"`
}

type CommentResponse struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type DatabaseStatusResponse struct {
	Connected   bool   `json:"connected"`
	TableExists bool   `json:"tableExists"`
	Message     string `json:"message"`
}

type UserResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
