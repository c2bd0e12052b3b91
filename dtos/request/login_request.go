package request

type LoginRequest struct {
	Intent   string `form:"intent" json:"intent" validate:"required,oneof=registration authentication"`
	Username string `form:"username" json:"username" validate:"omitempty,max=100"`
	// Response is the JSON serialised PublicKeyCredential produced by the browser.
	Response string `form:"response" json:"response" validate:"required"`
}

type LoginOptionsRequest struct {
	Username string `query:"username" validate:"omitempty,max=100"`
}

type ThemeRequest struct {
	Theme string `form:"theme" json:"theme" validate:"required,oneof=system light dark"`
}
