package kits

type CreateKitRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

type AddStepRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=200"`
	Kind     string `json:"kind" binding:"required,oneof=form upload signature review payment"`
	Position int    `json:"position"`
	Required bool   `json:"required"`
	Config   string `json:"config"`
}

type InviteClientRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Email string `json:"email" binding:"required,email"`
}
