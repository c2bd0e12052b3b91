package request

type ShortenRequest struct {
	URL string `form:"url" json:"url" validate:"required,url,https"`
}
